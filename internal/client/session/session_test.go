package session

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vitaltrack/vitaltrack/internal/client/api"
	"github.com/vitaltrack/vitaltrack/internal/logging"
	"github.com/vitaltrack/vitaltrack/internal/models"
)

// ---- fakes ----

type fakeCreds struct {
	token  string
	getErr error
}

func (f *fakeCreds) SetToken(ctx context.Context, token string) error {
	f.token = token
	return nil
}

func (f *fakeCreds) Token(ctx context.Context) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.token, nil
}

func (f *fakeCreds) RemoveToken(ctx context.Context) error {
	f.token = ""
	return nil
}

type fakeProfiles struct {
	user   *models.UserProfile
	setErr error

	setCalls int
}

func (f *fakeProfiles) SetUser(ctx context.Context, user *models.UserProfile) error {
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.user = user
	return nil
}

func (f *fakeProfiles) User(ctx context.Context) (*models.UserProfile, error) {
	return f.user, nil
}

func (f *fakeProfiles) RemoveUser(ctx context.Context) error {
	f.user = nil
	return nil
}

type fakeAuthAPI struct {
	signupResp *api.AuthResponse
	signupErr  error
	signinResp *api.AuthResponse
	signinErr  error

	validateOK   bool
	validateErr  error
	validateHits int

	logoutHits int
	onLogout   func()
}

func (f *fakeAuthAPI) Signup(ctx context.Context, email, password, confirm string) (*api.AuthResponse, error) {
	return f.signupResp, f.signupErr
}

func (f *fakeAuthAPI) Signin(ctx context.Context, email, password string) (*api.AuthResponse, error) {
	return f.signinResp, f.signinErr
}

func (f *fakeAuthAPI) Logout(ctx context.Context) {
	f.logoutHits++
	if f.onLogout != nil {
		f.onLogout()
	}
}

func (f *fakeAuthAPI) ValidateSession(ctx context.Context) (bool, error) {
	f.validateHits++
	return f.validateOK, f.validateErr
}

func newSession(authAPI *fakeAuthAPI, creds *fakeCreds, profiles *fakeProfiles, opts ...Option) *Session {
	return New(authAPI, creds, profiles, logging.New(false), opts...)
}

func storedUser() *models.UserProfile {
	return &models.UserProfile{ID: "1", Email: "a@b.com"}
}

// ---- tests ----

func TestNew_StartsLoadingAndSignedOut(t *testing.T) {
	s := newSession(&fakeAuthAPI{}, &fakeCreds{}, &fakeProfiles{})
	require.True(t, s.IsLoading())
	require.False(t, s.IsAuthenticated())
	require.Nil(t, s.User())
}

func TestInitialize_FailClosedMatrix(t *testing.T) {
	validateErr := errors.New("server unreachable")

	tests := []struct {
		name        string
		token       string
		user        *models.UserProfile
		validateOK  bool
		validateErr error
		wantAuth    bool
		wantChecks  int
	}{
		{name: "restores valid session", token: "tok123", user: storedUser(), validateOK: true, wantAuth: true, wantChecks: 1},
		{name: "server rejects stored token", token: "tok123", user: storedUser(), validateOK: false, wantChecks: 1},
		{name: "server unreachable", token: "tok123", user: storedUser(), validateErr: validateErr, wantChecks: 1},
		{name: "no token", user: storedUser()},
		{name: "no profile", token: "tok123"},
		{name: "nothing stored"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			authAPI := &fakeAuthAPI{validateOK: tc.validateOK, validateErr: tc.validateErr}
			creds := &fakeCreds{token: tc.token}
			profiles := &fakeProfiles{user: tc.user}
			s := newSession(authAPI, creds, profiles)

			s.Initialize(context.Background())

			require.Equal(t, tc.wantAuth, s.IsAuthenticated())
			require.False(t, s.IsLoading())
			require.Equal(t, tc.wantChecks, authAPI.validateHits,
				"missing token or profile must skip the server round-trip")
			if tc.wantAuth {
				require.Equal(t, "tok123", s.Token())
				require.Equal(t, "a@b.com", s.User().Email)
			} else {
				require.Empty(t, s.Token())
				require.Nil(t, s.User())
			}
		})
	}
}

func TestInitialize_RejectedSessionWipesStorage(t *testing.T) {
	creds := &fakeCreds{token: "tok123"}
	profiles := &fakeProfiles{user: storedUser()}
	authAPI := &fakeAuthAPI{validateOK: false}
	authAPI.onLogout = func() {
		_ = creds.RemoveToken(context.Background())
		_ = profiles.RemoveUser(context.Background())
	}
	s := newSession(authAPI, creds, profiles)

	s.Initialize(context.Background())

	require.False(t, s.IsAuthenticated())
	require.Equal(t, 1, authAPI.logoutHits)
	require.Empty(t, creds.token)
	require.Nil(t, profiles.user)
}

func TestInitialize_StorageReadErrorFailsClosed(t *testing.T) {
	creds := &fakeCreds{getErr: errors.New("both stores down")}
	s := newSession(&fakeAuthAPI{validateOK: true}, creds, &fakeProfiles{user: storedUser()})

	s.Initialize(context.Background())

	require.False(t, s.IsAuthenticated())
	require.False(t, s.IsLoading())
}

func TestSignin_Success(t *testing.T) {
	authAPI := &fakeAuthAPI{signinResp: &api.AuthResponse{
		Success: true,
		Token:   "tok123",
		User:    &models.UserProfile{ID: "1", Email: "a@b.com"},
	}}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

	res := s.Signin(context.Background(), "a@b.com", "secret1")

	require.True(t, res.Success)
	require.True(t, s.IsAuthenticated())
	require.Equal(t, "tok123", s.Token())
	require.Equal(t, json.Number("1"), s.User().ID)
	require.Empty(t, s.LastError())
	require.False(t, s.IsLoading())
}

func TestSignin_FailureSurfacesMessageAndClearsState(t *testing.T) {
	authAPI := &fakeAuthAPI{signinErr: &api.Error{Kind: api.KindSessionExpired, Message: "bad credentials", Status: 401}}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

	res := s.Signin(context.Background(), "a@b.com", "wrong1")

	require.False(t, res.Success)
	require.Equal(t, "bad credentials", res.Error)
	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Token())
	require.Nil(t, s.User())
	require.Equal(t, "bad credentials", s.LastError())
}

func TestSignup_TransitionShapeMatchesSignin(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		authAPI := &fakeAuthAPI{signupResp: &api.AuthResponse{Success: true, Token: "tokNew", User: storedUser()}}
		s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

		res := s.Signup(context.Background(), "a@b.com", "secret1", "secret1")
		require.True(t, res.Success)
		require.True(t, s.IsAuthenticated())
		require.Equal(t, "tokNew", s.Token())
	})

	t.Run("validation failure", func(t *testing.T) {
		authAPI := &fakeAuthAPI{signupErr: &api.Error{Kind: api.KindWeakPassword, Message: "Password must be at least 6 characters."}}
		s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

		res := s.Signup(context.Background(), "a@b.com", "abc12", "abc12")
		require.False(t, res.Success)
		require.Contains(t, res.Error, "6 characters")
		require.False(t, s.IsAuthenticated())
	})
}

func TestSignin_ClearsPreviousError(t *testing.T) {
	authAPI := &fakeAuthAPI{signinErr: &api.Error{Kind: api.KindUnknown, Message: "first failure"}}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

	_ = s.Signin(context.Background(), "a@b.com", "wrong1")
	require.Equal(t, "first failure", s.LastError())

	authAPI.signinErr = nil
	authAPI.signinResp = &api.AuthResponse{Success: true, Token: "tok123", User: storedUser()}
	res := s.Signin(context.Background(), "a@b.com", "secret1")
	require.True(t, res.Success)
	require.Empty(t, s.LastError())
}

func TestLogout_IsIdempotent(t *testing.T) {
	authAPI := &fakeAuthAPI{}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

	// Already unauthenticated; must not panic and must stay signed out.
	s.Logout(context.Background())
	s.Logout(context.Background())

	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Token())
	require.Nil(t, s.User())
	require.False(t, s.IsLoading())
	require.Equal(t, 2, authAPI.logoutHits)
}

func TestLogout_ClearsAuthenticatedState(t *testing.T) {
	authAPI := &fakeAuthAPI{signinResp: &api.AuthResponse{Success: true, Token: "tok123", User: storedUser()}}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})
	_ = s.Signin(context.Background(), "a@b.com", "secret1")
	require.True(t, s.IsAuthenticated())

	s.Logout(context.Background())

	require.False(t, s.IsAuthenticated())
	require.Empty(t, s.Token())
	require.Nil(t, s.User())
	require.Empty(t, s.LastError())
}

func TestClearError_TouchesNothingElse(t *testing.T) {
	authAPI := &fakeAuthAPI{signinErr: &api.Error{Kind: api.KindUnknown, Message: "boom"}}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})
	_ = s.Signin(context.Background(), "a@b.com", "secret1")

	s.ClearError()

	require.Empty(t, s.LastError())
	require.False(t, s.IsAuthenticated())
	require.False(t, s.IsLoading())
}

func TestUpdateUser_MergesAndPersists(t *testing.T) {
	authAPI := &fakeAuthAPI{signinResp: &api.AuthResponse{
		Success: true, Token: "tok123",
		User: &models.UserProfile{ID: "1", Email: "a@b.com", Extra: map[string]any{"goal": "cutting"}},
	}}
	profiles := &fakeProfiles{}
	s := newSession(authAPI, &fakeCreds{}, profiles)
	_ = s.Signin(context.Background(), "a@b.com", "secret1")

	s.UpdateUser(context.Background(), map[string]any{"goal": "maintenance", "age": 30})

	require.Equal(t, "maintenance", s.User().Extra["goal"])
	require.Equal(t, 30, s.User().Extra["age"])
	require.NotNil(t, profiles.user)
	require.Equal(t, "maintenance", profiles.user.Extra["goal"])
}

func TestUpdateUser_PersistFailureKeepsInMemoryUpdate(t *testing.T) {
	authAPI := &fakeAuthAPI{signinResp: &api.AuthResponse{Success: true, Token: "tok123", User: storedUser()}}
	profiles := &fakeProfiles{setErr: errors.New("disk full")}
	s := newSession(authAPI, &fakeCreds{}, profiles)
	_ = s.Signin(context.Background(), "a@b.com", "secret1")

	s.UpdateUser(context.Background(), map[string]any{"goal": "bulking"})

	require.Equal(t, "bulking", s.User().Extra["goal"])
}

func TestUpdateUser_IgnoredWhileSignedOut(t *testing.T) {
	profiles := &fakeProfiles{}
	s := newSession(&fakeAuthAPI{}, &fakeCreds{}, profiles)

	s.UpdateUser(context.Background(), map[string]any{"goal": "bulking"})

	require.Nil(t, s.User())
	require.Zero(t, profiles.setCalls)
}

func TestCheckSession(t *testing.T) {
	t.Run("no token short-circuits", func(t *testing.T) {
		authAPI := &fakeAuthAPI{validateOK: true}
		s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})

		require.False(t, s.CheckSession(context.Background()))
		require.Zero(t, authAPI.validateHits)
	})

	t.Run("valid session", func(t *testing.T) {
		authAPI := &fakeAuthAPI{
			signinResp: &api.AuthResponse{Success: true, Token: "tok123", User: storedUser()},
			validateOK: true,
		}
		s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})
		_ = s.Signin(context.Background(), "a@b.com", "secret1")

		require.True(t, s.CheckSession(context.Background()))
		// CheckSession itself mutates nothing.
		require.True(t, s.IsAuthenticated())
	})

	t.Run("invalid session does not mutate state", func(t *testing.T) {
		authAPI := &fakeAuthAPI{
			signinResp: &api.AuthResponse{Success: true, Token: "tok123", User: storedUser()},
			validateOK: false,
		}
		s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{})
		_ = s.Signin(context.Background(), "a@b.com", "secret1")

		require.False(t, s.CheckSession(context.Background()))
		require.True(t, s.IsAuthenticated(), "callers decide what to do with a false result")
	})
}

func TestChangeListener_SeesAuthTransitions(t *testing.T) {
	var snaps []Snapshot
	authAPI := &fakeAuthAPI{signinResp: &api.AuthResponse{Success: true, Token: "tok123", User: storedUser()}}
	s := newSession(authAPI, &fakeCreds{}, &fakeProfiles{},
		WithChangeListener(func(snap Snapshot) { snaps = append(snaps, snap) }))

	_ = s.Signin(context.Background(), "a@b.com", "secret1")

	require.NotEmpty(t, snaps)
	last := snaps[len(snaps)-1]
	require.True(t, last.IsAuthenticated)
	require.False(t, last.IsLoading)
}
