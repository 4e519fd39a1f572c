package state

import (
	"context"
	"log"

	"streamnest/models"
	"streamnest/services/gateway"
)

// autoSelectLocked applies the selection rules after a profile list load:
// when nothing is selected yet, pick the first profile flagged active, or
// the only profile when the list has exactly one. Multiple active flags
// are a data error; first in list order wins, deterministically.
func (s *Service) autoSelectLocked() {
	if s.state.Selected != nil || len(s.state.Session.Profiles) == 0 {
		return
	}
	for i := range s.state.Session.Profiles {
		if s.state.Session.Profiles[i].ActiveProfile {
			profile := s.state.Session.Profiles[i]
			s.state.Selected = &profile
			return
		}
	}
	if len(s.state.Session.Profiles) == 1 {
		profile := s.state.Session.Profiles[0]
		s.state.Selected = &profile
	}
}

// replaceProfileLocked swaps an updated profile into the list and keeps
// the selection consistent when the mutated profile is the selected one.
func (s *Service) replaceProfileLocked(updated models.Profile) {
	for i := range s.state.Session.Profiles {
		if s.state.Session.Profiles[i].ID == updated.ID {
			s.state.Session.Profiles[i] = updated
			break
		}
	}
	if s.state.Selected != nil && s.state.Selected.ID == updated.ID {
		profile := updated
		s.state.Selected = &profile
	}
}

func (s *Service) beginProfiles() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Session.User == nil {
		return "", ErrNoSession
	}
	s.state.Session.Loading = true
	s.state.Session.Err = ""
	return s.state.Session.User.ID, nil
}

func (s *Service) endProfiles(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Loading = false
	s.state.Session.Err = errMessage(err)
}

// FetchProfiles reloads the profile list from the backend and re-applies
// the auto-select rules.
func (s *Service) FetchProfiles(ctx context.Context) error {
	userID, err := s.beginProfiles()
	if err != nil {
		return err
	}

	profiles, err := s.backend.Profiles(ctx, userID)
	if err != nil {
		s.endProfiles(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Profiles = profiles
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	if s.state.Selected != nil {
		// Drop a selection that no longer exists server-side.
		stillExists := false
		for i := range profiles {
			if profiles[i].ID == s.state.Selected.ID {
				stillExists = true
				break
			}
		}
		if !stillExists {
			s.state.Selected = nil
		}
	}
	s.autoSelectLocked()
	s.saveCacheLocked()
	return nil
}

// CreateProfile adds a profile; local state commits only after the
// backend call resolves.
func (s *Service) CreateProfile(ctx context.Context, name, avatarURL string, isKids bool) (models.Profile, error) {
	userID, err := s.beginProfiles()
	if err != nil {
		return models.Profile{}, err
	}

	profile, err := s.backend.CreateProfile(ctx, gateway.ProfileCreate{
		UserID:    userID,
		Name:      name,
		AvatarURL: avatarURL,
		IsKids:    isKids,
	})
	if err != nil {
		s.endProfiles(err)
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Profiles = append(s.state.Session.Profiles, profile)
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.saveCacheLocked()
	return profile, nil
}

// UpdateProfile mutates a profile and refreshes the selection when the
// selected profile is the one just updated.
func (s *Service) UpdateProfile(ctx context.Context, profileID string, payload gateway.ProfileUpdate) (models.Profile, error) {
	if _, err := s.beginProfiles(); err != nil {
		return models.Profile{}, err
	}

	updated, err := s.backend.UpdateProfile(ctx, profileID, payload)
	if err != nil {
		s.endProfiles(err)
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceProfileLocked(updated)
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.saveCacheLocked()
	return updated, nil
}

// UpdateProfileAvatar changes a profile's avatar, with the same
// selection-refresh rule as UpdateProfile.
func (s *Service) UpdateProfileAvatar(ctx context.Context, profileID, avatarURL string) (models.Profile, error) {
	if _, err := s.beginProfiles(); err != nil {
		return models.Profile{}, err
	}

	updated, err := s.backend.UpdateProfileAvatar(ctx, profileID, avatarURL)
	if err != nil {
		s.endProfiles(err)
		return models.Profile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceProfileLocked(updated)
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.saveCacheLocked()
	return updated, nil
}

// DeleteProfile removes a profile after the backend confirms. Deleting the
// selected profile clears the selection; the backend cascades watchlist
// removal, the client just drops its local copy.
func (s *Service) DeleteProfile(ctx context.Context, profileID string) error {
	if _, err := s.beginProfiles(); err != nil {
		return err
	}

	if err := s.backend.DeleteProfile(ctx, profileID); err != nil {
		s.endProfiles(err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.state.Session.Profiles[:0]
	for _, profile := range s.state.Session.Profiles {
		if profile.ID != profileID {
			kept = append(kept, profile)
		}
	}
	s.state.Session.Profiles = kept
	if s.state.Selected != nil && s.state.Selected.ID == profileID {
		s.state.Selected = nil
		s.state.Session.Watchlist = WatchlistState{}
	}
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.saveCacheLocked()
	return nil
}

// SetSelectedProfile selects a profile for the current UI session. Pure
// local state, no I/O.
func (s *Service) SetSelectedProfile(profileID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Session.Profiles {
		if s.state.Session.Profiles[i].ID == profileID {
			profile := s.state.Session.Profiles[i]
			s.state.Selected = &profile
			s.state.Session.Watchlist = WatchlistState{}
			s.saveCacheLocked()
			return nil
		}
	}
	return ErrProfileNotFound
}

// ClearSelectedProfile drops the selection, sending the UI back to the
// profile picker.
func (s *Service) ClearSelectedProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Selected = nil
	s.state.Session.Watchlist = WatchlistState{}
	s.saveCacheLocked()
}

// SetActiveProfile marks a profile as the one to auto-select on next load
// and selects it now. The chosen profile is persisted via the backend;
// sibling flags are mirrored false locally in the same commit so there is
// a single source of truth for "last used profile".
func (s *Service) SetActiveProfile(ctx context.Context, profileID string) error {
	s.mu.Lock()
	if s.state.Session.User == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	var current *models.Profile
	for i := range s.state.Session.Profiles {
		if s.state.Session.Profiles[i].ID == profileID {
			profile := s.state.Session.Profiles[i]
			current = &profile
			break
		}
	}
	if current == nil {
		s.mu.Unlock()
		return ErrProfileNotFound
	}
	s.state.Session.Loading = true
	s.state.Session.Err = ""
	s.mu.Unlock()

	updated, err := s.backend.UpdateProfile(ctx, profileID, gateway.ProfileUpdate{
		Name:          current.Name,
		AvatarURL:     current.AvatarURL,
		IsKids:        current.IsKids,
		ActiveProfile: true,
	})
	if err != nil {
		s.endProfiles(err)
		return err
	}
	// Some backend responses omit unchanged fields; the flag must hold
	// after this call regardless.
	updated.ActiveProfile = true

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.Session.Profiles {
		if s.state.Session.Profiles[i].ID == updated.ID {
			s.state.Session.Profiles[i] = updated
		} else if s.state.Session.Profiles[i].ActiveProfile {
			s.state.Session.Profiles[i].ActiveProfile = false
		}
	}
	profile := updated
	s.state.Selected = &profile
	s.state.Session.Watchlist = WatchlistState{}
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.saveCacheLocked()
	log.Printf("[state] active profile set profileId=%s", updated.ID)
	return nil
}
