package state

import (
	"context"
	"log"

	"streamnest/models"
)

func (s *Service) beginSession() {
	s.mu.Lock()
	s.state.Session.Loading = true
	s.state.Session.Err = ""
	s.mu.Unlock()
}

func (s *Service) failSession(err error) {
	s.mu.Lock()
	s.state.Session.Loading = false
	s.state.Session.Err = errMessage(err)
	s.mu.Unlock()
}

// commitAuth installs a fresh session after a successful login or
// register, clears the auth panels, and applies the profile auto-select
// rules.
func (s *Service) commitAuth(user models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := user
	s.state.Session.User = &u
	s.state.Session.Profiles = append([]models.Profile(nil), user.Profiles...)
	s.state.Session.Watchlist = WatchlistState{}
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.state.Selected = nil
	s.state.UI.ShowSignIn = false
	s.state.UI.ShowSignUp = false
	s.autoSelectLocked()
	s.saveCacheLocked()
}

func (s *Service) clearSessionLocked() {
	s.state.Session = SessionState{}
	s.state.Selected = nil
}

// Login authenticates and replaces the session on success. On failure the
// prior session state is left untouched and the error is recorded for the
// caller to surface.
func (s *Service) Login(ctx context.Context, email, password string) error {
	s.beginSession()
	resp, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.failSession(err)
		return err
	}

	if err := s.tokens.Save(resp.AccessToken); err != nil {
		log.Printf("[state] warning: failed to persist token: %v", err)
	}
	s.commitAuth(resp.User)
	return nil
}

// Register creates an account and starts a session, same contract as Login.
func (s *Service) Register(ctx context.Context, email, password string) error {
	s.beginSession()
	resp, err := s.backend.Register(ctx, email, password)
	if err != nil {
		s.failSession(err)
		return err
	}

	if err := s.tokens.Save(resp.AccessToken); err != nil {
		log.Printf("[state] warning: failed to persist token: %v", err)
	}
	s.commitAuth(resp.User)
	return nil
}

// Logout always succeeds from the client's point of view: a server
// failure is logged and swallowed, and session state is cleared
// unconditionally.
func (s *Service) Logout(ctx context.Context) {
	if err := s.backend.Logout(ctx); err != nil {
		log.Printf("[state] logout server call failed (ignored): %v", err)
	}
	if err := s.tokens.Clear(); err != nil {
		log.Printf("[state] warning: failed to clear token: %v", err)
	}

	s.mu.Lock()
	s.clearSessionLocked()
	s.clearCacheLocked()
	s.mu.Unlock()
}

// RestoreSession re-establishes the session from the stored token on app
// start. It reports whether a session exists afterwards and never fails:
// any error degrades to the logged-out state.
func (s *Service) RestoreSession(ctx context.Context) bool {
	if !s.tokens.HasUsableToken() {
		s.mu.Lock()
		s.clearSessionLocked()
		s.mu.Unlock()
		return false
	}

	// Warm start from the cached snapshot so the UI has something to
	// render while the authoritative fetch is in flight. Never trusted
	// past that: the backend response below replaces it entirely.
	s.loadCacheWarmStart()

	s.beginSession()
	user, err := s.backend.CurrentUser(ctx)
	if err != nil {
		log.Printf("[state] session restore failed, falling back to logged out: %v", err)
		s.mu.Lock()
		s.clearSessionLocked()
		s.clearCacheLocked()
		s.mu.Unlock()
		if clearErr := s.tokens.Clear(); clearErr != nil {
			log.Printf("[state] warning: failed to clear token: %v", clearErr)
		}
		return false
	}

	if len(user.Profiles) == 0 {
		if profiles, err := s.backend.Profiles(ctx, user.ID); err == nil {
			user.Profiles = profiles
		} else {
			log.Printf("[state] profile fetch during restore failed: %v", err)
		}
	}

	s.mu.Lock()
	u := user
	s.state.Session.User = &u
	s.state.Session.Profiles = append([]models.Profile(nil), user.Profiles...)
	s.state.Session.Loading = false
	s.state.Session.Err = ""
	s.autoSelectLocked()
	s.saveCacheLocked()
	s.mu.Unlock()
	return true
}

// UpdateSubscription switches the session user's plan.
func (s *Service) UpdateSubscription(ctx context.Context, planID string) error {
	s.mu.Lock()
	if s.state.Session.User == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	userID := s.state.Session.User.ID
	s.state.Session.Loading = true
	s.state.Session.Err = ""
	s.mu.Unlock()

	err := s.backend.UpdateSubscription(ctx, userID, planID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Session.Loading = false
	if err != nil {
		s.state.Session.Err = errMessage(err)
		return err
	}
	if s.state.Session.User != nil {
		s.state.Session.User.SubscriptionPlan = planID
	}
	s.saveCacheLocked()
	return nil
}
