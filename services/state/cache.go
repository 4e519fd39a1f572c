package state

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"streamnest/models"
)

const sessionCacheFileName = "session.json"

// sessionCache persists a non-authoritative copy of the session for fast
// reload. Search state is deliberately never part of it.
type sessionCache struct {
	fs   afero.Fs
	path string
}

type cachedSession struct {
	User       *models.User     `json:"user"`
	Profiles   []models.Profile `json:"profiles"`
	SelectedID string           `json:"selected_id,omitempty"`
	SavedAt    time.Time        `json:"saved_at"`
}

// WithSessionCache enables the session snapshot cache under the given
// directory.
func WithSessionCache(fs afero.Fs, dir string) Option {
	return func(s *Service) {
		if err := fs.MkdirAll(dir, 0o700); err != nil {
			log.Printf("[state] warning: session cache disabled: %v", err)
			return
		}
		s.cache = &sessionCache{fs: fs, path: filepath.Join(dir, sessionCacheFileName)}
	}
}

func (s *Service) saveCacheLocked() {
	if s.cache == nil || s.state.Session.User == nil {
		return
	}
	snapshot := cachedSession{
		User:       s.state.Session.User,
		Profiles:   s.state.Session.Profiles,
		SelectedID: s.selectedProfileIDLocked(),
		SavedAt:    time.Now().UTC(),
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		log.Printf("[state] warning: failed to encode session cache: %v", err)
		return
	}
	if err := afero.WriteFile(s.cache.fs, s.cache.path, data, 0o600); err != nil {
		log.Printf("[state] warning: failed to write session cache: %v", err)
	}
}

func (s *Service) clearCacheLocked() {
	if s.cache == nil {
		return
	}
	if err := s.cache.fs.Remove(s.cache.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[state] warning: failed to remove session cache: %v", err)
	}
}

// loadCacheWarmStart pre-populates session state from the cached snapshot
// while restore's authoritative fetch is in flight. It only fills an empty
// session; a live one is never overwritten by the cache.
func (s *Service) loadCacheWarmStart() {
	if s.cache == nil {
		return
	}
	data, err := afero.ReadFile(s.cache.fs, s.cache.path)
	if err != nil {
		return
	}
	var snapshot cachedSession
	if err := json.Unmarshal(data, &snapshot); err != nil || snapshot.User == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Session.User != nil {
		return
	}
	s.state.Session.User = snapshot.User
	s.state.Session.Profiles = snapshot.Profiles
	if snapshot.SelectedID != "" {
		for i := range snapshot.Profiles {
			if snapshot.Profiles[i].ID == snapshot.SelectedID {
				profile := snapshot.Profiles[i]
				s.state.Selected = &profile
				break
			}
		}
	}
	log.Printf("[state] warm start from session cache savedAt=%s", snapshot.SavedAt.Format(time.RFC3339))
}
