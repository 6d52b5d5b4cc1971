// Package session wraps the bare HTTP transport with authenticated-session
// behavior: it attaches the current bearer token to every outgoing request,
// corrects an expired access token by running at most one coordinated refresh
// no matter how many requests fail at once, retries each failed request
// exactly once with the new token, and turns a failed refresh into a single
// clean sign-out.
package session

import (
	"context"
	"net/http"
	"sync"

	"github.com/jrsteele09/go-storefront-client/credentials"
	"github.com/jrsteele09/go-storefront-client/transport"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Topics published on the application event bus.
const (
	TopicLoggedIn       = "auth:login"
	TopicLoggedOut      = "auth:logout"
	TopicSessionExpired = "auth:session-expired"
)

// RouteRefreshToken is the backend endpoint that exchanges a refresh token
// for a new token pair.
const RouteRefreshToken = "/auth/refresh-token"

// authRoutes are excluded from the refresh-and-retry path. A 401 from login
// means bad credentials, not an expired token, and retrying the refresh
// endpoint through itself would loop.
var authRoutes = map[string]struct{}{
	"/auth/login":     {},
	"/auth/register":  {},
	RouteRefreshToken: {},
}

// Bus is the slice of the event bus the session manager publishes on.
type Bus interface {
	Publish(topic string, args ...interface{})
}

// refreshCycle is the in-flight refresh ticket. The first request to observe
// a 401 creates and resolves it; every request that fails while it is live
// waits on done. The slot holding it is cleared the moment it resolves, so
// the next expiry starts a fresh cycle.
type refreshCycle struct {
	done chan struct{}
	err  error
}

// Manager is the authenticated API session manager.
type Manager struct {
	transport transport.Doer
	store     credentials.Store
	bus       Bus

	lock    sync.Mutex
	current *refreshCycle
}

var _ transport.Doer = (*Manager)(nil)

// Option defines a function type to modify the Manager instance.
type Option func(*Manager)

// WithBus attaches an application event bus for login/logout/session-expired
// notifications.
func WithBus(bus Bus) Option {
	return func(m *Manager) {
		m.bus = bus
	}
}

// New creates a session Manager over the given transport and credential
// store.
func New(doer transport.Doer, store credentials.Store, options ...Option) (*Manager, error) {
	if doer == nil {
		return nil, errors.Wrap(TransportRequiredErr, "[session.New]")
	}
	if store == nil {
		return nil, errors.Wrap(StoreRequiredErr, "[session.New]")
	}

	manager := &Manager{
		transport: doer,
		store:     store,
	}
	for _, opt := range options {
		opt(manager)
	}
	return manager, nil
}

// Store returns the credential store this session reads and writes.
func (m *Manager) Store() credentials.Store {
	return m.store
}

// Do sends the request with the current bearer token attached. On a 401 for a
// non-auth endpoint it joins the shared refresh cycle and retries the request
// exactly once with the refreshed token. Every failure comes back as a
// normalized *transport.Error.
func (m *Manager) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	resp, err := m.send(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || !refreshEligible(req.Path) {
		return normalize(resp)
	}

	if err := m.Refresh(ctx); err != nil {
		return nil, err
	}

	// One retry with the new token. A second 401 here is surfaced, never
	// re-refreshed.
	resp, err = m.send(ctx, req)
	if err != nil {
		return nil, err
	}
	return normalize(resp)
}

// Refresh joins the in-flight refresh cycle, starting one if none is
// running, and blocks until the shared outcome is known. Exactly one refresh
// request reaches the backend per cycle regardless of how many callers pile
// in; a failed cycle clears the credential store and announces the expired
// session once.
func (m *Manager) Refresh(ctx context.Context) error {
	cycle, owner := m.joinRefresh()
	if owner {
		m.runRefresh(ctx, cycle)
	}

	select {
	case <-cycle.done:
	case <-ctx.Done():
		return transport.NewTransportError(ctx.Err())
	}

	if cycle.err != nil {
		return transport.NewSessionExpiredError("")
	}
	return nil
}

// SignOut clears the credential store and announces the end of the session.
// Safe to call repeatedly and from concurrent triggers; only the call that
// actually clears state publishes the notification.
func (m *Manager) SignOut() {
	if m.store.Clear() {
		log.Debug().Msg("session cleared")
		m.publish(TopicLoggedOut)
	}
}

// joinRefresh returns the live refresh cycle, creating it when none exists.
// The check-and-set is a single critical section: two concurrent 401s can
// never both become owners, which would double-spend the single-use refresh
// token.
func (m *Manager) joinRefresh() (cycle *refreshCycle, owner bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.current != nil {
		return m.current, false
	}
	m.current = &refreshCycle{done: make(chan struct{})}
	return m.current, true
}

// runRefresh performs the refresh as the cycle owner and resolves the shared
// ticket. The store update happens before the ticket resolves, so no waiter
// ever resends with a stale token; on failure the store is cleared before
// any waiter is released.
func (m *Manager) runRefresh(ctx context.Context, cycle *refreshCycle) {
	// The cycle outcome is shared; one caller's cancellation must not
	// abort the refresh for everyone else.
	err := m.refresh(context.WithoutCancel(ctx))

	m.lock.Lock()
	cycle.err = err
	m.current = nil
	m.lock.Unlock()

	if err != nil {
		m.expireSession(err)
	}
	close(cycle.done)
}

// refresh performs the actual token exchange. Requires a refresh token in the
// store; without one it fails immediately and no network call is made.
func (m *Manager) refresh(ctx context.Context) error {
	refreshToken := m.store.RefreshToken()
	if refreshToken == "" {
		return NoRefreshTokenErr
	}

	log.Debug().Msg("access token rejected, refreshing session")

	resp, err := m.transport.Do(ctx, &transport.Request{
		Method: http.MethodPost,
		Path:   RouteRefreshToken,
		Body:   refreshRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return errors.Wrap(err, "[Manager.refresh] transport.Do")
	}
	if resp.StatusCode != http.StatusOK {
		return errors.Wrapf(RefreshRejectedErr, "[Manager.refresh] HTTP %d", resp.StatusCode)
	}

	var payload refreshResponse
	if err := resp.DecodeJSON(&payload); err != nil {
		return errors.Wrap(MalformedRefreshErr, err.Error())
	}
	if !payload.Success || payload.Data == nil || payload.Data.AccessToken == "" {
		return MalformedRefreshErr
	}

	user := credentials.User{
		ID:       payload.Data.User.UserID,
		Email:    payload.Data.User.Email,
		FullName: payload.Data.User.FullName,
		Role:     payload.Data.User.RoleName,
	}
	m.store.Replace(credentials.Credentials{
		AccessToken:  payload.Data.AccessToken,
		RefreshToken: payload.Data.RefreshToken,
		User:         &user,
	})

	log.Debug().Msg("session refreshed")
	return nil
}

// expireSession is the terminal-failure path: clear everything, tell the
// application once. Concurrent triggers are no-ops past the first.
func (m *Manager) expireSession(cause error) {
	if m.store.Clear() {
		log.Info().Err(cause).Msg("token refresh failed, session ended")
		m.publish(TopicSessionExpired)
	}
}

// send issues the request with the current token attached. Headers are
// cloned so a retry re-attaches a fresh Authorization value instead of
// mutating the caller's descriptor.
func (m *Manager) send(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	attempt := *req
	attempt.Header = cloneHeader(req.Header)
	if token := m.store.AccessToken(); token != "" {
		attempt.Header.Set("Authorization", "Bearer "+token)
	}
	return m.transport.Do(ctx, &attempt)
}

func (m *Manager) publish(topic string) {
	if m.bus != nil {
		m.bus.Publish(topic)
	}
}

// normalize maps failure statuses onto the error taxonomy. Success responses
// pass through untouched.
func normalize(resp *transport.Response) (*transport.Response, error) {
	if resp.StatusCode < 400 {
		return resp, nil
	}
	return nil, transport.NewStatusError(resp.StatusCode, resp.Body)
}

func refreshEligible(path string) bool {
	_, isAuthRoute := authRoutes[path]
	return !isAuthRoute
}

func cloneHeader(header http.Header) http.Header {
	cloned := make(http.Header, len(header)+1)
	for key, values := range header {
		cloned[key] = append([]string(nil), values...)
	}
	return cloned
}

// Wire shapes for the refresh exchange (same envelope as login).
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Data    *refreshData `json:"data"`
}

type refreshData struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	User         refreshUser `json:"user"`
}

type refreshUser struct {
	UserID   string `json:"userId"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	RoleName string `json:"roleName"`
}
