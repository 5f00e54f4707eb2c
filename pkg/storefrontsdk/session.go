package storefrontsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aussiebroadwan/storefront/internal/storefront/store"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// Storage keys of the persisted session.
const (
	KeyAccessToken  = "auth_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// Session represents an authenticated session backed by the client's store.
// All Session methods handle an expired access token transparently with a
// single refresh and retry.
type Session struct {
	client *SDKClient
	store  store.Store

	// mu orders whole-session writes (Save, Clear) against reads so no caller
	// sees a half written session.
	mu sync.RWMutex

	refreshes singleflight.Group
}

func newSession(client *SDKClient) *Session {
	return &Session{client: client, store: client.Store}
}

// Save persists the tokens and user profile of an auth response.
func (s *Session) Save(ctx context.Context, auth *AuthResponse) error {
	user, err := json.Marshal(auth.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, KeyAccessToken, auth.Token); err != nil {
		return fmt.Errorf("save access token: %w", err)
	}
	if err := s.store.Set(ctx, KeyRefreshToken, auth.RefreshToken); err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if err := s.store.Set(ctx, KeyUser, string(user)); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// Load returns the persisted session or ErrNoSession.
func (s *Session) Load(ctx context.Context) (*SessionData, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, err := s.get(ctx, KeyAccessToken)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoSession
	}

	refreshToken, err := s.get(ctx, KeyRefreshToken)
	if err != nil {
		return nil, err
	}

	data := &SessionData{AccessToken: token, RefreshToken: refreshToken}

	raw, err := s.get(ctx, KeyUser)
	if err != nil {
		return nil, err
	}
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &data.User); err != nil {
			return nil, fmt.Errorf("failed to decode stored user: %w", err)
		}
	}

	return data, nil
}

// Clear removes every session key from the store.
func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, KeyAccessToken, KeyRefreshToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Logout ends the session locally. The API has no logout endpoint.
func (s *Session) Logout(ctx context.Context) error {
	if err := s.Clear(ctx); err != nil {
		return err
	}
	s.client.Logger.Info("session cleared")
	return nil
}

// IsAuthenticated reports whether an access token is present. Expiry is not
// checked; it is discovered when a request is rejected.
func (s *Session) IsAuthenticated(ctx context.Context) bool {
	token, err := s.accessToken(ctx)
	return err == nil && token != ""
}

// User returns the stored user profile.
func (s *Session) User(ctx context.Context) (*UserProfile, error) {
	data, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &data.User, nil
}

// AccessTokenExpiry reads the exp claim of the access token without verifying
// it. It is informational only and never gates requests. ok is false when
// there is no token, it is not a JWT, or it has no exp claim.
func (s *Session) AccessTokenExpiry(ctx context.Context) (expiresAt time.Time, ok bool) {
	token, err := s.accessToken(ctx)
	if err != nil || token == "" {
		return time.Time{}, false
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// accessToken returns the stored access token, "" when there is none.
func (s *Session) accessToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(ctx, KeyAccessToken)
}

// get reads key treating a missing key as "". Callers hold mu.
func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := s.store.Get(ctx, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return v, nil
}

// refreshExpired obtains a fresh access token after stale was rejected as
// expired. Concurrent callers share one refresh. If stale has already been
// replaced the current token is returned without another refresh.
//
// The shared refresh runs detached from any single caller's cancellation; a
// cancelled ctx only stops this caller from waiting and leaves the session
// alone. On any refresh failure the session is cleared and ErrSessionExpired
// is returned.
func (s *Session) refreshExpired(ctx context.Context, stale string) (string, error) {
	shared := context.WithoutCancel(ctx)

	ch := s.refreshes.DoChan("refresh", func() (any, error) {
		current, err := s.accessToken(shared)
		if err != nil {
			return "", err
		}
		if current != "" && current != stale {
			return current, nil
		}

		return s.refresh(shared)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		if res.Shared {
			s.client.Logger.Debug("joined in-flight session refresh")
		}
		return res.Val.(string), nil
	}
}

// refresh exchanges the stored refresh token for a new session.
func (s *Session) refresh(ctx context.Context) (string, error) {
	log := s.client.Logger

	s.mu.RLock()
	refreshToken, err := s.get(ctx, KeyRefreshToken)
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}

	if refreshToken == "" {
		err = errNoRefreshToken
	} else {
		var auth *AuthResponse
		if auth, err = s.client.Refresh(ctx, refreshToken); err == nil {
			if err = s.Save(ctx, auth); err == nil {
				log.Info("session refreshed")
				return auth.Token, nil
			}
			// A partial save can pair the new access token with the old
			// refresh token
			err = fmt.Errorf("save refreshed session: %w", err)
		}
	}

	log.Warn("session refresh failed, clearing session", "error", err)
	if clearErr := s.Clear(ctx); clearErr != nil {
		log.Error("failed to clear session", "error", clearErr)
	}
	return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
}
