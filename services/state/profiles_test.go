package state_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"streamnest/models"
	"streamnest/services/gateway"
	"streamnest/services/state"
)

func loggedInService(t *testing.T, backend *fakeBackend, profiles ...models.Profile) *state.Service {
	t.Helper()
	backend.loginFn = func(string, string) (gateway.AuthResponse, error) {
		return authResponse(profiles...), nil
	}
	svc := state.NewService(backend, &fakeTokens{})
	require.NoError(t, svc.Login(context.Background(), "user@example.com", "hunter2"))
	return svc
}

func TestAutoSelectSingleProfile(t *testing.T) {
	svc := loggedInService(t, newFakeBackend(), models.Profile{ID: "p1", Name: "Only"})

	snap := svc.Snapshot()
	require.NotNil(t, snap.Selected)
	require.Equal(t, "p1", snap.Selected.ID)
}

func TestAutoSelectFlaggedProfile(t *testing.T) {
	svc := loggedInService(t, newFakeBackend(),
		models.Profile{ID: "p1", Name: "One"},
		models.Profile{ID: "p2", Name: "Two", ActiveProfile: true},
		models.Profile{ID: "p3", Name: "Three"},
	)

	snap := svc.Snapshot()
	require.NotNil(t, snap.Selected)
	require.Equal(t, "p2", snap.Selected.ID)
}

func TestAutoSelectSkipsMultiProfileWithoutFlag(t *testing.T) {
	svc := loggedInService(t, newFakeBackend(),
		models.Profile{ID: "p1", Name: "One"},
		models.Profile{ID: "p2", Name: "Two"},
	)
	require.Nil(t, svc.Snapshot().Selected, "no auto-select with several unflagged profiles")
	require.False(t, svc.CatalogReady())
}

func TestAutoSelectMultipleFlaggedFirstWins(t *testing.T) {
	svc := loggedInService(t, newFakeBackend(),
		models.Profile{ID: "p1", Name: "One", ActiveProfile: true},
		models.Profile{ID: "p2", Name: "Two", ActiveProfile: true},
	)
	require.Equal(t, "p1", svc.Snapshot().Selected.ID)
}

func TestSetSelectedProfile(t *testing.T) {
	svc := loggedInService(t, newFakeBackend(),
		models.Profile{ID: "p1", Name: "One"},
		models.Profile{ID: "p2", Name: "Two"},
	)

	require.NoError(t, svc.SetSelectedProfile("p2"))
	require.Equal(t, "p2", svc.Snapshot().Selected.ID)
	require.True(t, svc.CatalogReady())

	require.ErrorIs(t, svc.SetSelectedProfile("nope"), state.ErrProfileNotFound)

	svc.ClearSelectedProfile()
	require.Nil(t, svc.Snapshot().Selected)
}

func TestCreateProfileCommitsAfterBackend(t *testing.T) {
	backend := newFakeBackend()
	backend.createProfileFn = func(payload gateway.ProfileCreate) (models.Profile, error) {
		require.Equal(t, "u1", payload.UserID)
		return models.Profile{ID: "p9", Name: payload.Name, IsKids: payload.IsKids}, nil
	}
	svc := loggedInService(t, backend, models.Profile{ID: "p1", Name: "Main"})

	created, err := svc.CreateProfile(context.Background(), "Junior", "", true)
	require.NoError(t, err)
	require.Equal(t, "p9", created.ID)
	require.Len(t, svc.Snapshot().Session.Profiles, 2)
}

func TestCreateProfileFailureLeavesListUnchanged(t *testing.T) {
	backend := newFakeBackend()
	backend.createProfileFn = func(gateway.ProfileCreate) (models.Profile, error) {
		return models.Profile{}, &gateway.RemoteError{StatusCode: 422, Message: "name required"}
	}
	svc := loggedInService(t, backend, models.Profile{ID: "p1", Name: "Main"})

	_, err := svc.CreateProfile(context.Background(), "", "", false)
	require.Error(t, err)

	snap := svc.Snapshot()
	require.Len(t, snap.Session.Profiles, 1)
	require.Equal(t, "name required", snap.Session.Err)
	require.False(t, snap.Session.Loading)
}

func TestUpdateProfileRefreshesSelection(t *testing.T) {
	backend := newFakeBackend()
	backend.updateProfileFn = func(profileID string, payload gateway.ProfileUpdate) (models.Profile, error) {
		return models.Profile{ID: profileID, Name: payload.Name, AvatarURL: payload.AvatarURL}, nil
	}
	svc := loggedInService(t, backend, models.Profile{ID: "p1", Name: "Old"})
	require.Equal(t, "Old", svc.Snapshot().Selected.Name)

	_, err := svc.UpdateProfile(context.Background(), "p1", gateway.ProfileUpdate{Name: "New"})
	require.NoError(t, err)

	snap := svc.Snapshot()
	require.Equal(t, "New", snap.Session.Profiles[0].Name)
	require.Equal(t, "New", snap.Selected.Name, "selection must track the mutated profile")
}

func TestUpdateAvatarRefreshesSelection(t *testing.T) {
	backend := newFakeBackend()
	backend.updateAvatarFn = func(profileID, avatarURL string) (models.Profile, error) {
		return models.Profile{ID: profileID, Name: "Main", AvatarURL: avatarURL}, nil
	}
	svc := loggedInService(t, backend, models.Profile{ID: "p1", Name: "Main"})

	_, err := svc.UpdateProfileAvatar(context.Background(), "p1", "https://cdn/avatar9.png")
	require.NoError(t, err)
	require.Equal(t, "https://cdn/avatar9.png", svc.Snapshot().Selected.AvatarURL)
}

func TestDeleteSelectedProfileClearsSelection(t *testing.T) {
	backend := newFakeBackend()
	svc := loggedInService(t, backend,
		models.Profile{ID: "p1", Name: "One", ActiveProfile: true},
		models.Profile{ID: "p2", Name: "Two"},
	)
	require.Equal(t, "p1", svc.Snapshot().Selected.ID)

	require.NoError(t, svc.DeleteProfile(context.Background(), "p1"))

	snap := svc.Snapshot()
	require.Len(t, snap.Session.Profiles, 1)
	require.Nil(t, snap.Selected)
	require.Empty(t, snap.Session.Watchlist.Items)
}

func TestSetActiveProfileMarksSiblingsInactive(t *testing.T) {
	backend := newFakeBackend()
	backend.updateProfileFn = func(profileID string, payload gateway.ProfileUpdate) (models.Profile, error) {
		require.True(t, payload.ActiveProfile)
		return models.Profile{ID: profileID, Name: payload.Name, ActiveProfile: true}, nil
	}
	svc := loggedInService(t, backend,
		models.Profile{ID: "p1", Name: "One", ActiveProfile: true},
		models.Profile{ID: "p2", Name: "Two"},
		models.Profile{ID: "p3", Name: "Three"},
	)

	require.NoError(t, svc.SetActiveProfile(context.Background(), "p3"))

	snap := svc.Snapshot()
	require.Equal(t, "p3", snap.Selected.ID)
	for _, profile := range snap.Session.Profiles {
		if profile.ID == "p3" {
			require.True(t, profile.ActiveProfile)
		} else {
			require.False(t, profile.ActiveProfile, "sibling %s must lose the flag", profile.ID)
		}
	}
}

func TestFetchProfilesDropsVanishedSelection(t *testing.T) {
	backend := newFakeBackend()
	backend.profilesFn = func(string) ([]models.Profile, error) {
		return []models.Profile{{ID: "p2", Name: "Two"}, {ID: "p3", Name: "Three"}}, nil
	}
	svc := loggedInService(t, backend, models.Profile{ID: "p1", Name: "One"})
	require.Equal(t, "p1", svc.Snapshot().Selected.ID)

	require.NoError(t, svc.FetchProfiles(context.Background()))

	snap := svc.Snapshot()
	require.Len(t, snap.Session.Profiles, 2)
	require.Nil(t, snap.Selected, "selection of a deleted profile must not survive a refetch")
}

func TestProfileOpsRequireSession(t *testing.T) {
	svc := state.NewService(newFakeBackend(), &fakeTokens{})
	require.ErrorIs(t, svc.FetchProfiles(context.Background()), state.ErrNoSession)
	_, err := svc.CreateProfile(context.Background(), "x", "", false)
	require.ErrorIs(t, err, state.ErrNoSession)
	require.ErrorIs(t, svc.SetActiveProfile(context.Background(), "p1"), state.ErrNoSession)
}
