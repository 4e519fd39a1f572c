// Package gateway holds the typed HTTP wrappers for the two remote
// collaborators: the REST backend (auth, profiles, watchlists,
// subscriptions) and the movie metadata provider. Both normalize failures
// into RemoteError and perform no retries of their own.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"streamnest/models"
)

// TokenSource supplies the current bearer token. It is read on every call,
// never cached, so a token refresh takes effect on the next request.
type TokenSource interface {
	Token() string
}

// BackendClient issues calls against the REST backend.
type BackendClient struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
}

// NewBackendClient creates a backend client. tokens may be nil for flows
// that never authenticate (not the normal case).
func NewBackendClient(baseURL string, timeout time.Duration, tokens TokenSource) *BackendClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &BackendClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: timeout},
		tokens:  tokens,
	}
}

func (c *BackendClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return &RemoteError{Message: fmt.Sprintf("backend unreachable: %v", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		remoteErr := remoteErrorFromResponse(resp)
		log.Printf("[gateway] %s %s failed status=%d requestId=%s msg=%q",
			method, path, resp.StatusCode, req.Header.Get("X-Request-ID"), remoteErr.Message)
		return remoteErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &RemoteError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}

// AuthResponse is what login and register return.
type AuthResponse struct {
	AccessToken string      `json:"access_token"`
	User        models.User `json:"user"`
}

// Login authenticates with email and password.
func (c *BackendClient) Login(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", payload, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// Register creates an account and returns a fresh session, same shape as Login.
func (c *BackendClient) Register(ctx context.Context, email, password string) (AuthResponse, error) {
	var resp AuthResponse
	payload := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", payload, &resp); err != nil {
		return AuthResponse{}, err
	}
	return resp, nil
}

// Logout invalidates the session server-side.
func (c *BackendClient) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil)
}

// CurrentUser fetches the session user for the stored token.
func (c *BackendClient) CurrentUser(ctx context.Context) (models.User, error) {
	var resp struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return models.User{}, err
	}
	return resp.User, nil
}

// Profiles lists the viewing profiles owned by a user.
func (c *BackendClient) Profiles(ctx context.Context, userID string) ([]models.Profile, error) {
	var profiles []models.Profile
	if err := c.do(ctx, http.MethodGet, "/profiles/user/"+url.PathEscape(userID), nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ProfileCreate is the payload for creating a profile.
type ProfileCreate struct {
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsKids    bool   `json:"is_kids"`
}

// CreateProfile adds a profile to the account.
func (c *BackendClient) CreateProfile(ctx context.Context, payload ProfileCreate) (models.Profile, error) {
	var profile models.Profile
	if err := c.do(ctx, http.MethodPost, "/profiles", payload, &profile); err != nil {
		return models.Profile{}, err
	}
	return profile, nil
}

// ProfileUpdate is the payload for updating a profile.
type ProfileUpdate struct {
	Name          string `json:"name"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	IsKids        bool   `json:"is_kids"`
	ActiveProfile bool   `json:"active_profile"`
}

// UpdateProfile replaces a profile's mutable fields.
func (c *BackendClient) UpdateProfile(ctx context.Context, profileID string, payload ProfileUpdate) (models.Profile, error) {
	var resp struct {
		Profile models.Profile `json:"profile"`
	}
	if err := c.do(ctx, http.MethodPut, "/profiles/"+url.PathEscape(profileID), payload, &resp); err != nil {
		return models.Profile{}, err
	}
	return resp.Profile, nil
}

// DeleteProfile removes a profile. The backend cascades watchlist deletion.
func (c *BackendClient) DeleteProfile(ctx context.Context, profileID string) error {
	return c.do(ctx, http.MethodDelete, "/profiles/"+url.PathEscape(profileID), nil, nil)
}

// UpdateProfileAvatar sets a profile's avatar.
func (c *BackendClient) UpdateProfileAvatar(ctx context.Context, profileID, avatarURL string) (models.Profile, error) {
	var resp struct {
		Profile models.Profile `json:"profile"`
	}
	payload := map[string]string{"avatar_data": avatarURL}
	if err := c.do(ctx, http.MethodPut, "/profiles/"+url.PathEscape(profileID)+"/avatar", payload, &resp); err != nil {
		return models.Profile{}, err
	}
	return resp.Profile, nil
}

// Avatars fetches the predefined avatar catalog for a category.
func (c *BackendClient) Avatars(ctx context.Context, category models.AvatarCategory) ([]models.Avatar, error) {
	var resp struct {
		Avatars []models.Avatar `json:"avatars"`
	}
	path := "/avatars"
	if category != "" {
		path += "?category=" + url.QueryEscape(string(category))
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Avatars, nil
}

// Watchlist fetches one profile's saved titles.
func (c *BackendClient) Watchlist(ctx context.Context, profileID string) ([]models.WatchlistItem, error) {
	var items []models.WatchlistItem
	if err := c.do(ctx, http.MethodGet, "/watchlist/"+url.PathEscape(profileID), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddWatchlistItem saves a title to a profile's watchlist.
func (c *BackendClient) AddWatchlistItem(ctx context.Context, profileID string, movieID int64, payload models.WatchlistUpsert) (models.WatchlistItem, error) {
	var resp struct {
		Item models.WatchlistItem `json:"item"`
	}
	path := fmt.Sprintf("/watchlist/%s/%d", url.PathEscape(profileID), movieID)
	if err := c.do(ctx, http.MethodPost, path, payload, &resp); err != nil {
		return models.WatchlistItem{}, err
	}
	return resp.Item, nil
}

// RemoveWatchlistItem deletes a title from a profile's watchlist.
func (c *BackendClient) RemoveWatchlistItem(ctx context.Context, profileID string, movieID int64) error {
	path := fmt.Sprintf("/watchlist/%s/%d", url.PathEscape(profileID), movieID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// Plans fetches the subscription plan catalog.
func (c *BackendClient) Plans(ctx context.Context) ([]models.Plan, error) {
	var resp struct {
		Plans []models.Plan `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/plans", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Plans, nil
}

// UpdateSubscription changes the user's subscription plan.
func (c *BackendClient) UpdateSubscription(ctx context.Context, userID, planID string) error {
	payload := map[string]string{"subscription_plan": planID}
	return c.do(ctx, http.MethodPut, "/subscription/"+url.PathEscape(userID), payload, nil)
}
