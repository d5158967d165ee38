// Package session holds the process-wide authentication state machine.
// It is the only component that mutates session state, and the single
// place where failures become user-visible messages: its operations never
// return errors to the UI layer, only Result values, with the last error
// separately inspectable.
package session

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/vitaltrack/vitaltrack/internal/client/api"
	"github.com/vitaltrack/vitaltrack/internal/client/stores"
	"github.com/vitaltrack/vitaltrack/internal/logging"
	"github.com/vitaltrack/vitaltrack/internal/models"
)

// AuthAPI is the slice of the authentication client the state machine
// depends on. *api.AuthClient satisfies it; tests provide fakes.
type AuthAPI interface {
	Signup(ctx context.Context, email, password, confirmPassword string) (*api.AuthResponse, error)
	Signin(ctx context.Context, email, password string) (*api.AuthResponse, error)
	Logout(ctx context.Context)
	ValidateSession(ctx context.Context) (bool, error)
}

// Result is the outcome of an authentication operation. Error carries the
// user-facing message when Success is false.
type Result struct {
	Success bool
	Error   string
}

// Snapshot is the read-only view handed to the UI layer. It deliberately
// excludes the token; screens never need the credential itself.
type Snapshot struct {
	IsLoading       bool
	IsAuthenticated bool
	User            *models.UserProfile
	Error           string
}

// Session is the authentication state machine. Constructed once at
// process start and injected into whatever consumes it; there is no
// package-level singleton. All state transitions happen under the mutex,
// so the store contracts stay atomic per operation.
type Session struct {
	api      AuthAPI
	creds    stores.CredentialStore
	profiles stores.ProfileStore
	log      logging.Logger
	onChange func(Snapshot)

	mu            sync.RWMutex
	loading       bool
	authenticated bool
	user          *models.UserProfile
	token         string
	errMsg        string
}

type Option func(*Session)

// WithChangeListener registers a callback invoked after every state
// change. The screen router uses it to navigate on auth transitions. The
// callback runs outside the session lock.
func WithChangeListener(fn func(Snapshot)) Option {
	return func(s *Session) { s.onChange = fn }
}

// New returns a Session in its initial state: loading, unauthenticated.
// Call Initialize to run the startup restoration sequence.
func New(authAPI AuthAPI, creds stores.CredentialStore, profiles stores.ProfileStore, log logging.Logger, opts ...Option) *Session {
	s := &Session{
		api:      authAPI,
		creds:    creds,
		profiles: profiles,
		log:      log.With("component", "session"),
		loading:  true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize restores a prior session if one is stored and the server
// still accepts it. Every failure path fails closed into the
// unauthenticated state; only token-present, profile-present and a
// positive server answer reaches the authenticated state.
func (s *Session) Initialize(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	var (
		token string
		user  *models.UserProfile
	)

	// Token and profile reads are independent; the server check must not
	// start until both have completed.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		token, err = s.creds.Token(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		user, err = s.profiles.User(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Warn(ctx, "startup restore failed, staying signed out", "error", err)
		s.transition(false, nil, "", "")
		return
	}

	if token == "" || user == nil {
		s.log.Debug(ctx, "no stored session to restore")
		s.transition(false, nil, "", "")
		return
	}

	valid, err := s.api.ValidateSession(ctx)
	if err != nil {
		// Could not reach the server; stored credentials are kept for the
		// next launch, but this process starts signed out.
		s.log.Warn(ctx, "session validation unreachable, staying signed out", "error", err)
		s.transition(false, nil, "", "")
		return
	}
	if !valid {
		s.log.Info(ctx, "stored session rejected by server, logging out")
		s.api.Logout(ctx)
		s.transition(false, nil, "", "")
		return
	}

	s.log.Info(ctx, "session restored")
	s.transition(true, user, token, "")
}

// Signup creates an account and signs the user in.
func (s *Session) Signup(ctx context.Context, email, password, confirmPassword string) Result {
	s.beginOperation()
	defer s.setLoading(false)

	resp, err := s.api.Signup(ctx, email, password, confirmPassword)
	if err != nil {
		message := err.Error()
		s.transition(false, nil, "", message)
		return Result{Success: false, Error: message}
	}

	s.transition(true, resp.User, resp.Token, "")
	return Result{Success: true}
}

// Signin authenticates an existing account.
func (s *Session) Signin(ctx context.Context, email, password string) Result {
	s.beginOperation()
	defer s.setLoading(false)

	resp, err := s.api.Signin(ctx, email, password)
	if err != nil {
		message := err.Error()
		s.transition(false, nil, "", message)
		return Result{Success: false, Error: message}
	}

	s.transition(true, resp.User, resp.Token, "")
	return Result{Success: true}
}

// Logout signs the user out. It always succeeds from the caller's point
// of view and is safe to call when already unauthenticated.
func (s *Session) Logout(ctx context.Context) {
	s.setLoading(true)
	defer s.setLoading(false)

	s.api.Logout(ctx)
	s.transition(false, nil, "", "")
}

// ClearError clears the last failure message and nothing else.
func (s *Session) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

// UpdateUser merges partial fields into the cached profile, persists the
// merged record, and updates the in-memory snapshot. Persistence is
// best-effort: a store failure is logged but the in-memory update stands,
// since token validity, not the cache, is authoritative for session state.
// Ignored while unauthenticated to keep the user/token invariant.
func (s *Session) UpdateUser(ctx context.Context, partial map[string]any) {
	s.mu.Lock()
	if s.token == "" {
		s.mu.Unlock()
		s.log.Warn(ctx, "profile update ignored while signed out")
		return
	}
	base := s.user
	if base == nil {
		base = &models.UserProfile{}
	}
	merged := base.Merge(partial)
	s.user = merged
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err := s.profiles.SetUser(ctx, merged); err != nil {
		s.log.Warn(ctx, "profile persist failed, keeping in-memory update", "error", err)
	}
	s.notify(snap)
}

// CheckSession reports whether the current session is still valid
// server-side. It mutates nothing; callers decide how to react to false
// (typically by invoking Logout).
func (s *Session) CheckSession(ctx context.Context) bool {
	s.mu.RLock()
	token := s.token
	s.mu.RUnlock()
	if token == "" {
		return false
	}

	valid, err := s.api.ValidateSession(ctx)
	if err != nil {
		s.log.Warn(ctx, "session check failed", "error", err)
		return false
	}
	return valid
}

// ---- accessors ----

func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

func (s *Session) User() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the in-memory working copy of the credential. It is for
// internal consumers; it must never be logged or rendered.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// ---- internals ----

// transition moves the machine between the authenticated and
// unauthenticated states. The user/token invariant holds by construction:
// user is only ever set together with a token.
func (s *Session) transition(authenticated bool, user *models.UserProfile, token, errMsg string) {
	s.mu.Lock()
	s.authenticated = authenticated
	s.user = user
	s.token = token
	s.errMsg = errMsg
	if !authenticated {
		s.user = nil
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) beginOperation() {
	s.mu.Lock()
	s.loading = true
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) setLoading(loading bool) {
	s.mu.Lock()
	if s.loading == loading {
		s.mu.Unlock()
		return
	}
	s.loading = loading
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		IsLoading:       s.loading,
		IsAuthenticated: s.authenticated,
		User:            s.user,
		Error:           s.errMsg,
	}
}

func (s *Session) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}
