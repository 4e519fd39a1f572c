package state_test

import (
	"context"
	"sync"

	"streamnest/models"
	"streamnest/services/gateway"
)

// fakeBackend implements state.Backend with pluggable behavior per call.
// Unset functions return zero values.
type fakeBackend struct {
	mu    sync.Mutex
	calls map[string]int

	loginFn              func(email, password string) (gateway.AuthResponse, error)
	registerFn           func(email, password string) (gateway.AuthResponse, error)
	logoutFn             func() error
	currentUserFn        func() (models.User, error)
	profilesFn           func(userID string) ([]models.Profile, error)
	createProfileFn      func(payload gateway.ProfileCreate) (models.Profile, error)
	updateProfileFn      func(profileID string, payload gateway.ProfileUpdate) (models.Profile, error)
	deleteProfileFn      func(profileID string) error
	updateAvatarFn       func(profileID, avatarURL string) (models.Profile, error)
	avatarsFn            func(category models.AvatarCategory) ([]models.Avatar, error)
	watchlistFn          func(profileID string) ([]models.WatchlistItem, error)
	addWatchlistFn       func(profileID string, movieID int64, payload models.WatchlistUpsert) (models.WatchlistItem, error)
	removeWatchlistFn    func(profileID string, movieID int64) error
	plansFn              func() ([]models.Plan, error)
	updateSubscriptionFn func(userID, planID string) error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{calls: make(map[string]int)}
}

func (f *fakeBackend) record(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeBackend) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeBackend) Login(_ context.Context, email, password string) (gateway.AuthResponse, error) {
	f.record("login")
	if f.loginFn != nil {
		return f.loginFn(email, password)
	}
	return gateway.AuthResponse{}, nil
}

func (f *fakeBackend) Register(_ context.Context, email, password string) (gateway.AuthResponse, error) {
	f.record("register")
	if f.registerFn != nil {
		return f.registerFn(email, password)
	}
	return gateway.AuthResponse{}, nil
}

func (f *fakeBackend) Logout(context.Context) error {
	f.record("logout")
	if f.logoutFn != nil {
		return f.logoutFn()
	}
	return nil
}

func (f *fakeBackend) CurrentUser(context.Context) (models.User, error) {
	f.record("currentUser")
	if f.currentUserFn != nil {
		return f.currentUserFn()
	}
	return models.User{}, nil
}

func (f *fakeBackend) Profiles(_ context.Context, userID string) ([]models.Profile, error) {
	f.record("profiles")
	if f.profilesFn != nil {
		return f.profilesFn(userID)
	}
	return nil, nil
}

func (f *fakeBackend) CreateProfile(_ context.Context, payload gateway.ProfileCreate) (models.Profile, error) {
	f.record("createProfile")
	if f.createProfileFn != nil {
		return f.createProfileFn(payload)
	}
	return models.Profile{}, nil
}

func (f *fakeBackend) UpdateProfile(_ context.Context, profileID string, payload gateway.ProfileUpdate) (models.Profile, error) {
	f.record("updateProfile")
	if f.updateProfileFn != nil {
		return f.updateProfileFn(profileID, payload)
	}
	return models.Profile{}, nil
}

func (f *fakeBackend) DeleteProfile(_ context.Context, profileID string) error {
	f.record("deleteProfile")
	if f.deleteProfileFn != nil {
		return f.deleteProfileFn(profileID)
	}
	return nil
}

func (f *fakeBackend) UpdateProfileAvatar(_ context.Context, profileID, avatarURL string) (models.Profile, error) {
	f.record("updateAvatar")
	if f.updateAvatarFn != nil {
		return f.updateAvatarFn(profileID, avatarURL)
	}
	return models.Profile{}, nil
}

func (f *fakeBackend) Avatars(_ context.Context, category models.AvatarCategory) ([]models.Avatar, error) {
	f.record("avatars")
	if f.avatarsFn != nil {
		return f.avatarsFn(category)
	}
	return nil, nil
}

func (f *fakeBackend) Watchlist(_ context.Context, profileID string) ([]models.WatchlistItem, error) {
	f.record("watchlist")
	if f.watchlistFn != nil {
		return f.watchlistFn(profileID)
	}
	return nil, nil
}

func (f *fakeBackend) AddWatchlistItem(_ context.Context, profileID string, movieID int64, payload models.WatchlistUpsert) (models.WatchlistItem, error) {
	f.record("addWatchlist")
	if f.addWatchlistFn != nil {
		return f.addWatchlistFn(profileID, movieID, payload)
	}
	return models.WatchlistItem{}, nil
}

func (f *fakeBackend) RemoveWatchlistItem(_ context.Context, profileID string, movieID int64) error {
	f.record("removeWatchlist")
	if f.removeWatchlistFn != nil {
		return f.removeWatchlistFn(profileID, movieID)
	}
	return nil
}

func (f *fakeBackend) Plans(context.Context) ([]models.Plan, error) {
	f.record("plans")
	if f.plansFn != nil {
		return f.plansFn()
	}
	return nil, nil
}

func (f *fakeBackend) UpdateSubscription(_ context.Context, userID, planID string) error {
	f.record("updateSubscription")
	if f.updateSubscriptionFn != nil {
		return f.updateSubscriptionFn(userID, planID)
	}
	return nil
}

// fakeTokens implements state.TokenStore in memory.
type fakeTokens struct {
	mu     sync.Mutex
	token  string
	usable bool
}

func (f *fakeTokens) Save(token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
	f.usable = true
	return nil
}

func (f *fakeTokens) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
	f.usable = false
	return nil
}

func (f *fakeTokens) HasUsableToken() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usable
}

func (f *fakeTokens) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}
