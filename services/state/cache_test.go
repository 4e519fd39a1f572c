package state_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"streamnest/models"
	"streamnest/services/gateway"
	"streamnest/services/state"
)

func TestSessionCacheWarmStart(t *testing.T) {
	fs := afero.NewMemMapFs()

	// First run: log in so the snapshot gets written.
	backend := newFakeBackend()
	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(models.Profile{ID: "p1", Name: "Main", ActiveProfile: true}), nil
	}
	tokenStore := &fakeTokens{}
	first := state.NewService(backend, tokenStore, state.WithSessionCache(fs, "/data"))
	require.NoError(t, first.Login(context.Background(), "user@example.com", "hunter2"))

	// Second run: the authoritative fetch is held open so the warm start
	// is observable before it lands.
	release := make(chan struct{})
	backend2 := newFakeBackend()
	backend2.currentUserFn = func() (models.User, error) {
		<-release
		return models.User{
			ID:       "u1",
			Email:    "fresh@example.com",
			Profiles: []models.Profile{{ID: "p1", Name: "Renamed", ActiveProfile: true}},
		}, nil
	}
	second := state.NewService(backend2, tokenStore, state.WithSessionCache(fs, "/data"))

	done := make(chan bool, 1)
	go func() { done <- second.RestoreSession(context.Background()) }()

	require.Eventually(t, func() bool {
		snap := second.Snapshot()
		return snap.Session.User != nil && snap.Session.User.Email == "user@example.com"
	}, 2*time.Second, 5*time.Millisecond, "cached session should pre-populate state")
	require.NotNil(t, second.Snapshot().Selected)

	close(release)
	require.True(t, <-done)

	snap := second.Snapshot()
	require.Equal(t, "fresh@example.com", snap.Session.User.Email, "backend response must replace the cached copy")
	require.Equal(t, "Renamed", snap.Session.Profiles[0].Name)
}

func TestLogoutRemovesSessionCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	backend := newFakeBackend()
	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(models.Profile{ID: "p1", Name: "Main"}), nil
	}
	tokenStore := &fakeTokens{}
	svc := state.NewService(backend, tokenStore, state.WithSessionCache(fs, "/data"))
	require.NoError(t, svc.Login(context.Background(), "user@example.com", "hunter2"))

	exists, err := afero.Exists(fs, "/data/session.json")
	require.NoError(t, err)
	require.True(t, exists)

	svc.Logout(context.Background())

	exists, err = afero.Exists(fs, "/data/session.json")
	require.NoError(t, err)
	require.False(t, exists)
}
