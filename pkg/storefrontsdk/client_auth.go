package storefrontsdk

import (
	"context"
	"net/http"
)

// Login authenticates with email and password. It does not persist anything;
// see AuthenticateWithPassword.
func (c *SDKClient) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	return c.requestAuth(ctx, "/Auth/login", req, msgLogin)
}

// Register creates a user account and returns its first tokens.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	return c.requestAuth(ctx, "/Auth/register", req, msgRegister)
}

// Refresh exchanges a refresh token for a new token pair. The API expects the
// body to be the refresh token as a bare JSON string.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	if refreshToken == "" {
		return nil, errNoRefreshToken
	}
	return c.requestAuth(ctx, "/Auth/refresh-token", refreshToken, msgRefresh)
}

// AuthenticateWithPassword logs in and persists the resulting session.
func (c *SDKClient) AuthenticateWithPassword(ctx context.Context, email, password string) (*Session, error) {
	auth, err := c.Login(ctx, LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	return c.startSession(ctx, auth)
}

// RegisterAndAuthenticate registers a user and persists the resulting session.
func (c *SDKClient) RegisterAndAuthenticate(ctx context.Context, req RegisterRequest) (*Session, error) {
	auth, err := c.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	return c.startSession(ctx, auth)
}

// ResumeSession opens the session already held by the client's store.
// Returns ErrNoSession if nobody is logged in.
func (c *SDKClient) ResumeSession(ctx context.Context) (*Session, error) {
	s := newSession(c)
	if _, err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *SDKClient) startSession(ctx context.Context, auth *AuthResponse) (*Session, error) {
	s := newSession(c)
	if err := s.Save(ctx, auth); err != nil {
		return nil, err
	}
	c.Logger.Info("session started", "user_id", string(auth.User.ID))
	return s, nil
}

func (c *SDKClient) requestAuth(ctx context.Context, path string, payload any, fallback string) (*AuthResponse, error) {
	body, err := encodeJSON(payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return nil, err
	}

	var auth AuthResponse
	if err := decodeJSON(resp, &auth, fallback); err != nil {
		return nil, err
	}

	return &auth, nil
}
