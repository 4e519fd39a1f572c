// Package state is the client's single mutable state container: session
// user, profiles and selection, subscription plans, avatar catalog,
// watchlist, and transient UI flags. Every network-backed operation runs
// pending -> fulfilled/rejected bookkeeping on its slice and commits
// results only after the backend call resolves; errors are recorded in
// state and returned, never panicked.
package state

import (
	"context"
	"errors"
	"sync"

	"streamnest/models"
	"streamnest/services/gateway"
)

var (
	ErrNoSession       = errors.New("no active session")
	ErrProfileNotFound = errors.New("profile not found")
)

// Backend is the slice of the gateway the store depends on.
// *gateway.BackendClient satisfies it; tests use fakes.
type Backend interface {
	Login(ctx context.Context, email, password string) (gateway.AuthResponse, error)
	Register(ctx context.Context, email, password string) (gateway.AuthResponse, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (models.User, error)
	Profiles(ctx context.Context, userID string) ([]models.Profile, error)
	CreateProfile(ctx context.Context, payload gateway.ProfileCreate) (models.Profile, error)
	UpdateProfile(ctx context.Context, profileID string, payload gateway.ProfileUpdate) (models.Profile, error)
	DeleteProfile(ctx context.Context, profileID string) error
	UpdateProfileAvatar(ctx context.Context, profileID, avatarURL string) (models.Profile, error)
	Avatars(ctx context.Context, category models.AvatarCategory) ([]models.Avatar, error)
	Watchlist(ctx context.Context, profileID string) ([]models.WatchlistItem, error)
	AddWatchlistItem(ctx context.Context, profileID string, movieID int64, payload models.WatchlistUpsert) (models.WatchlistItem, error)
	RemoveWatchlistItem(ctx context.Context, profileID string, movieID int64) error
	Plans(ctx context.Context) ([]models.Plan, error)
	UpdateSubscription(ctx context.Context, userID, planID string) error
}

// TokenStore is the opaque token side channel written by the auth flows.
type TokenStore interface {
	Save(token string) error
	Clear() error
	HasUsableToken() bool
}

// WatchlistState is the per-profile watchlist slice, nested under the session.
type WatchlistState struct {
	Items   []models.WatchlistItem
	Loading bool
	Err     string
}

// SessionState holds the authenticated user and everything scoped to it.
type SessionState struct {
	User      *models.User
	Profiles  []models.Profile
	Watchlist WatchlistState
	Loading   bool
	Err       string
}

// PlansState is the read-only subscription plan catalog slice.
type PlansState struct {
	Items   []models.Plan
	Loading bool
	Err     string
}

// AvatarsState is the read-only avatar catalog slice.
type AvatarsState struct {
	Items   []models.Avatar
	Loading bool
	Err     string
}

// UIState carries the transient interface flags. The two auth-panel flags
// are mutually exclusive; the mutators enforce that.
type UIState struct {
	ShowSignIn     bool
	ShowSignUp     bool
	IsAnyModalOpen bool
}

// State is a point-in-time snapshot of the whole store.
type State struct {
	Session  SessionState
	Selected *models.Profile
	Plans    PlansState
	Avatars  AvatarsState
	UI       UIState
}

// Service is the state store. All mutation goes through its methods; the
// mutex makes each commit atomic with respect to readers.
type Service struct {
	mu      sync.Mutex
	backend Backend
	tokens  TokenStore
	cache   *sessionCache
	state   State
}

// Option configures optional store behavior.
type Option func(*Service)

// NewService creates a state store over the given backend and token store.
func NewService(backend Backend, tokens TokenStore, opts ...Option) *Service {
	svc := &Service{backend: backend, tokens: tokens}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Snapshot returns a copy of the current state. Slices are copied so the
// caller can hold the snapshot across further mutations.
func (s *Service) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyStateLocked()
}

func (s *Service) copyStateLocked() State {
	snap := s.state
	if s.state.Session.User != nil {
		user := *s.state.Session.User
		snap.Session.User = &user
	}
	if s.state.Selected != nil {
		selected := *s.state.Selected
		snap.Selected = &selected
	}
	snap.Session.Profiles = append([]models.Profile(nil), s.state.Session.Profiles...)
	snap.Session.Watchlist.Items = append([]models.WatchlistItem(nil), s.state.Session.Watchlist.Items...)
	snap.Plans.Items = append([]models.Plan(nil), s.state.Plans.Items...)
	snap.Avatars.Items = append([]models.Avatar(nil), s.state.Avatars.Items...)
	return snap
}

// CatalogReady reports the auth-guard invariant: a session exists, the
// profile list is non-empty, and exactly one profile is selected.
func (s *Service) CatalogReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Session.User != nil && len(s.state.Session.Profiles) > 0 && s.state.Selected != nil
}

// errMessage flattens an error to the string stored in slice state.
func errMessage(err error) string {
	if err == nil {
		return ""
	}
	if remoteErr, ok := gateway.AsRemoteError(err); ok {
		return remoteErr.Message
	}
	return err.Error()
}

// selectedProfileIDLocked returns the selected profile id or "".
func (s *Service) selectedProfileIDLocked() string {
	if s.state.Selected == nil {
		return ""
	}
	return s.state.Selected.ID
}
