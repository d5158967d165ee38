package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/vitaltrack/vitaltrack/internal/client/stores"
	"github.com/vitaltrack/vitaltrack/internal/logging"
	"github.com/vitaltrack/vitaltrack/internal/models"
)

// AuthResponse is the success shape of the signup/signin endpoints.
type AuthResponse struct {
	Success bool                `json:"success"`
	Token   string              `json:"token"`
	User    *models.UserProfile `json:"user"`
	Message string              `json:"message"`
}

// sessionResponse is the body of the session validity endpoint. Both
// field spellings are seen across backend versions.
type sessionResponse struct {
	Valid         *bool `json:"valid"`
	Authenticated *bool `json:"authenticated"`
}

// AuthClient provides the typed authentication operations. On successful
// signup/signin the token and profile are persisted before the call
// returns, so callers can rely on storage being consistent immediately.
type AuthClient struct {
	gw       *Gateway
	creds    stores.CredentialStore
	profiles stores.ProfileStore
	log      logging.Logger
}

func NewAuthClient(gw *Gateway, creds stores.CredentialStore, profiles stores.ProfileStore, log logging.Logger) *AuthClient {
	return &AuthClient{gw: gw, creds: creds, profiles: profiles, log: log.With("component", "auth")}
}

type signupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup creates an account. Validation order: presence, password match,
// password strength, email shape; the first failure is returned without
// any network I/O.
func (c *AuthClient) Signup(ctx context.Context, email, password, confirmPassword string) (*AuthResponse, error) {
	if verr := validateSignup(email, password, confirmPassword); verr != nil {
		return nil, verr
	}

	body := signupRequest{
		Email:           normalizeEmail(email),
		Password:        password,
		ConfirmPassword: confirmPassword,
	}
	raw, err := c.gw.Request(ctx, http.MethodPost, SignupPath, body)
	if err != nil {
		return nil, err
	}
	return c.completeAuth(ctx, raw)
}

// Signin authenticates an existing account.
func (c *AuthClient) Signin(ctx context.Context, email, password string) (*AuthResponse, error) {
	if verr := validateSignin(email, password); verr != nil {
		return nil, verr
	}

	body := signinRequest{Email: normalizeEmail(email), Password: password}
	raw, err := c.gw.Request(ctx, http.MethodPost, SigninPath, body)
	if err != nil {
		return nil, err
	}
	return c.completeAuth(ctx, raw)
}

// completeAuth decodes the server response and persists token and profile.
// Persistence happens before control returns: a failed token write fails
// the whole operation.
func (c *AuthClient) completeAuth(ctx context.Context, raw json.RawMessage) (*AuthResponse, error) {
	var resp AuthResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}
	if !resp.Success || resp.Token == "" {
		message := resp.Message
		if message == "" {
			message = "Authentication failed."
		}
		return nil, newError(KindUnknown, message)
	}

	if err := c.creds.SetToken(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if resp.User != nil {
		if err := c.profiles.SetUser(ctx, resp.User); err != nil {
			return nil, fmt.Errorf("persist profile: %w", err)
		}
	}
	return &resp, nil
}

// Logout notifies the server on a best-effort basis and unconditionally
// clears local state. It never fails from the caller's point of view;
// that is the contract, not an accident of error handling.
func (c *AuthClient) Logout(ctx context.Context) {
	if _, err := c.gw.Request(ctx, http.MethodPost, LogoutPath, nil); err != nil {
		c.log.Warn(ctx, "logout request failed, clearing local state anyway", "error", err)
	}

	if err := c.creds.RemoveToken(ctx); err != nil {
		c.log.Error(ctx, "failed to remove token on logout", "error", err)
	}
	if err := c.profiles.RemoveUser(ctx); err != nil {
		c.log.Error(ctx, "failed to remove profile on logout", "error", err)
	}
}

// IsAuthenticated reports whether a token is currently stored. This is a
// local presence check only; it does not validate the token server-side.
func (c *AuthClient) IsAuthenticated(ctx context.Context) bool {
	token, err := c.creds.Token(ctx)
	if err != nil {
		c.log.Warn(ctx, "token read failed during presence check", "error", err)
		return false
	}
	return token != ""
}

// CurrentUser returns the cached profile, or nil. Read errors are
// swallowed; the cache is best-effort.
func (c *AuthClient) CurrentUser(ctx context.Context) *models.UserProfile {
	user, err := c.profiles.User(ctx)
	if err != nil {
		c.log.Warn(ctx, "profile read failed", "error", err)
		return nil
	}
	return user
}

// ValidateSession asks the server whether the stored token is still
// valid. A 401 answer means "no" (and the gateway has already wiped the
// stored credentials); other failures are returned to the caller.
func (c *AuthClient) ValidateSession(ctx context.Context) (bool, error) {
	raw, err := c.gw.Request(ctx, http.MethodGet, SessionPath, nil)
	if err != nil {
		if IsKind(err, KindSessionExpired) {
			return false, nil
		}
		return false, err
	}

	if len(raw) == 0 {
		return true, nil
	}
	var resp sessionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		// A 2xx with an unreadable body still means the token was accepted.
		return true, nil
	}
	if resp.Valid != nil {
		return *resp.Valid, nil
	}
	if resp.Authenticated != nil {
		return *resp.Authenticated, nil
	}
	return true, nil
}
