package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/vitaltrack/vitaltrack/internal/client/stores"
	"github.com/vitaltrack/vitaltrack/internal/logging"
)

// Backend endpoint paths.
const (
	SignupPath  = "/api/auth/signup"
	SigninPath  = "/api/auth/signin"
	LogoutPath  = "/api/auth/logout"
	SessionPath = "/api/auth/session"
)

const (
	clientIDHeader = "X-Client-Id"

	msgTimeout = "The request timed out. Please try again."
	msgNetwork = "Cannot reach the server. Check your connection and try again."
)

// Gateway wraps outbound calls to the backend API: one network attempt
// per call, a hard per-request timeout, default header injection, and
// translation of HTTP statuses into error kinds. Retries are a caller
// concern and are deliberately absent here.
type Gateway struct {
	baseURL  string
	timeout  time.Duration
	http     *http.Client
	creds    stores.CredentialStore
	profiles stores.ProfileStore
	clientID string
	log      logging.Logger
}

type GatewayOption func(*Gateway)

// WithHTTPClient replaces the underlying HTTP client (used in tests).
func WithHTTPClient(c *http.Client) GatewayOption {
	return func(g *Gateway) { g.http = c }
}

// WithClientID attaches the per-install identifier to every request.
func WithClientID(id string) GatewayOption {
	return func(g *Gateway) { g.clientID = id }
}

func NewGateway(baseURL string, timeout time.Duration, creds stores.CredentialStore,
	profiles stores.ProfileStore, log logging.Logger, opts ...GatewayOption) *Gateway {

	g := &Gateway{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  timeout,
		http:     &http.Client{},
		creds:    creds,
		profiles: profiles,
		log:      log.With("component", "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type requestOptions struct {
	headers map[string]string
}

type RequestOption func(*requestOptions)

// WithHeader sets a header on this request, overriding any default.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// errorBody is the JSON shape of a non-2xx response.
type errorBody struct {
	Message string `json:"message"`
}

// Request issues one HTTP call and returns the raw JSON response body.
// A non-nil body is JSON-encoded. Failures are always *Error values.
//
// The bearer token is injected automatically whenever one is stored,
// except for the signup and signin endpoints, which stay unauthenticated.
// A 401 response wipes the stored token and cached profile before the
// error is returned, so stale credentials never survive an auth rejection.
func (g *Gateway) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (json.RawMessage, error) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.clientID != "" {
		req.Header.Set(clientIDHeader, g.clientID)
	}
	g.injectBearer(ctx, req, path)
	for key, value := range ro.headers {
		req.Header.Set(key, value)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			g.log.Warn(ctx, "request timed out", "method", method, "path", path, "timeout", g.timeout)
			return nil, newError(KindTimeout, msgTimeout)
		}
		g.log.Warn(ctx, "request transport failure", "method", method, "path", path, "error", err)
		return nil, newError(KindNetworkUnavailable, msgNetwork)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		g.log.Warn(ctx, "response read failure", "method", method, "path", path, "error", err)
		return nil, newError(KindNetworkUnavailable, msgNetwork)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if len(raw) == 0 {
			return nil, nil
		}
		return json.RawMessage(raw), nil
	}

	return nil, g.translateFailure(ctx, resp, raw, method, path)
}

// injectBearer adds the Authorization header unless the path is one of
// the unauthenticated auth endpoints or no token is stored. A store read
// error is logged and treated as token-absent.
func (g *Gateway) injectBearer(ctx context.Context, req *http.Request, path string) {
	if path == SignupPath || path == SigninPath {
		return
	}
	token, err := g.creds.Token(ctx)
	if err != nil {
		g.log.Warn(ctx, "token read failed, sending unauthenticated request", "error", err)
		return
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (g *Gateway) translateFailure(ctx context.Context, resp *http.Response, raw []byte, method, path string) *Error {
	message := resp.Status
	var eb errorBody
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Message != "" {
		message = eb.Message
	}

	kind := kindForStatus(resp.StatusCode)
	g.log.Debug(ctx, "request rejected", "method", method, "path", path,
		"status", resp.StatusCode, "kind", kind.String())

	if kind == KindSessionExpired {
		// The wipe must complete before the error is handed back, and it
		// must run even if the request deadline has since lapsed.
		wipeCtx := context.WithoutCancel(ctx)
		if err := g.creds.RemoveToken(wipeCtx); err != nil {
			g.log.Error(wipeCtx, "failed to clear token after auth rejection", "error", err)
		}
		if err := g.profiles.RemoveUser(wipeCtx); err != nil {
			g.log.Error(wipeCtx, "failed to clear profile after auth rejection", "error", err)
		}
	}

	return &Error{Kind: kind, Message: message, Status: resp.StatusCode}
}
