package state_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"streamnest/models"
	"streamnest/services/gateway"
	"streamnest/services/state"
)

func authResponse(profiles ...models.Profile) gateway.AuthResponse {
	return gateway.AuthResponse{
		AccessToken: "tok-1",
		User: models.User{
			ID:       "u1",
			Email:    "user@example.com",
			Profiles: profiles,
		},
	}
}

func TestLoginSuccess(t *testing.T) {
	backend := newFakeBackend()
	backend.loginFn = func(email, password string) (gateway.AuthResponse, error) {
		require.Equal(t, "user@example.com", email)
		return authResponse(
			models.Profile{ID: "p1", Name: "Main", ActiveProfile: true},
			models.Profile{ID: "p2", Name: "Kids", IsKids: true},
		), nil
	}
	tokenStore := &fakeTokens{}
	svc := state.NewService(backend, tokenStore)

	svc.ShowSignIn()
	require.NoError(t, svc.Login(context.Background(), "user@example.com", "hunter2"))

	snap := svc.Snapshot()
	require.NotNil(t, snap.Session.User)
	require.Equal(t, "u1", snap.Session.User.ID)
	require.Len(t, snap.Session.Profiles, 2)
	require.False(t, snap.Session.Loading)
	require.Empty(t, snap.Session.Err)
	require.False(t, snap.UI.ShowSignIn)
	require.False(t, snap.UI.ShowSignUp)
	require.Equal(t, "tok-1", tokenStore.current())

	// The flagged profile auto-selects.
	require.NotNil(t, snap.Selected)
	require.Equal(t, "p1", snap.Selected.ID)
}

func TestLoginFailureLeavesPriorSession(t *testing.T) {
	backend := newFakeBackend()
	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(models.Profile{ID: "p1", Name: "Main"}), nil
	}
	svc := state.NewService(backend, &fakeTokens{})
	require.NoError(t, svc.Login(context.Background(), "user@example.com", "hunter2"))

	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return gateway.AuthResponse{}, &gateway.RemoteError{StatusCode: 401, Message: "invalid credentials"}
	}
	err := svc.Login(context.Background(), "user@example.com", "wrong")
	require.Error(t, err)

	snap := svc.Snapshot()
	require.NotNil(t, snap.Session.User, "prior session must survive a failed login")
	require.Equal(t, "u1", snap.Session.User.ID)
	require.Equal(t, "invalid credentials", snap.Session.Err)
	require.False(t, snap.Session.Loading, "loading flag must settle")
}

func TestRegisterMatchesLoginContract(t *testing.T) {
	backend := newFakeBackend()
	backend.registerFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(models.Profile{ID: "p1", Name: "Main"}), nil
	}
	tokenStore := &fakeTokens{}
	svc := state.NewService(backend, tokenStore)
	svc.ShowSignUp()

	require.NoError(t, svc.Register(context.Background(), "user@example.com", "hunter2"))
	snap := svc.Snapshot()
	require.NotNil(t, snap.Session.User)
	require.False(t, snap.UI.ShowSignUp)
	require.Equal(t, "tok-1", tokenStore.current())
}

func TestLogoutSwallowsServerError(t *testing.T) {
	backend := newFakeBackend()
	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(models.Profile{ID: "p1", Name: "Main"}), nil
	}
	backend.logoutFn = func() error { return errors.New("server exploded") }
	tokenStore := &fakeTokens{}
	svc := state.NewService(backend, tokenStore)
	require.NoError(t, svc.Login(context.Background(), "user@example.com", "hunter2"))

	svc.Logout(context.Background())

	snap := svc.Snapshot()
	require.Nil(t, snap.Session.User)
	require.Empty(t, snap.Session.Profiles)
	require.Nil(t, snap.Selected)
	require.Empty(t, tokenStore.current())
}

func TestRestoreSessionWithoutToken(t *testing.T) {
	backend := newFakeBackend()
	svc := state.NewService(backend, &fakeTokens{})

	require.False(t, svc.RestoreSession(context.Background()))
	require.Zero(t, backend.callCount("currentUser"), "no token means no network call")
}

func TestRestoreSessionFailureFallsBackToLoggedOut(t *testing.T) {
	backend := newFakeBackend()
	backend.currentUserFn = func() (models.User, error) {
		return models.User{}, &gateway.RemoteError{StatusCode: 401, Message: "token expired"}
	}
	tokenStore := &fakeTokens{}
	require.NoError(t, tokenStore.Save("stale-token"))
	svc := state.NewService(backend, tokenStore)

	require.False(t, svc.RestoreSession(context.Background()))

	snap := svc.Snapshot()
	require.Nil(t, snap.Session.User)
	require.False(t, snap.Session.Loading)
	require.Empty(t, tokenStore.current(), "failed restore clears the stale token")
}

func TestRestoreSessionFetchesProfilesWhenMissing(t *testing.T) {
	backend := newFakeBackend()
	backend.currentUserFn = func() (models.User, error) {
		return models.User{ID: "u1", Email: "user@example.com"}, nil
	}
	backend.profilesFn = func(userID string) ([]models.Profile, error) {
		require.Equal(t, "u1", userID)
		return []models.Profile{{ID: "p1", Name: "Main"}}, nil
	}
	tokenStore := &fakeTokens{}
	require.NoError(t, tokenStore.Save("tok"))
	svc := state.NewService(backend, tokenStore)

	require.True(t, svc.RestoreSession(context.Background()))

	snap := svc.Snapshot()
	require.NotNil(t, snap.Session.User)
	require.Len(t, snap.Session.Profiles, 1)
	require.NotNil(t, snap.Selected, "single profile auto-selects after restore")
}

func TestUpdateSubscription(t *testing.T) {
	backend := newFakeBackend()
	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(models.Profile{ID: "p1", Name: "Main"}), nil
	}
	var gotUser, gotPlan string
	backend.updateSubscriptionFn = func(userID, planID string) error {
		gotUser, gotPlan = userID, planID
		return nil
	}
	svc := state.NewService(backend, &fakeTokens{})
	require.NoError(t, svc.Login(context.Background(), "user@example.com", "hunter2"))

	require.NoError(t, svc.UpdateSubscription(context.Background(), "premium"))
	require.Equal(t, "u1", gotUser)
	require.Equal(t, "premium", gotPlan)
	require.Equal(t, "premium", svc.Snapshot().Session.User.SubscriptionPlan)
}

func TestUpdateSubscriptionRequiresSession(t *testing.T) {
	svc := state.NewService(newFakeBackend(), &fakeTokens{})
	require.ErrorIs(t, svc.UpdateSubscription(context.Background(), "premium"), state.ErrNoSession)
}
