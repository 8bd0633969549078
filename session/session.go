// Package session owns the access/refresh token pair for a console login.
// It is the only component allowed to mutate credential state: the API
// client and the services read tokens through it but never write them.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/techcorp/partsquote/auth"
	errs "github.com/techcorp/partsquote/internal/errors"
	"github.com/techcorp/partsquote/internal/metrics"
)

// Role is the closed set of roles a login can carry.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleVendor Role = "vendor"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleVendor:
		return true
	}
	return false
}

// User is the identity record derived from the access-token claims.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// DefaultTenantID is used when Login is called without a tenant.
const DefaultTenantID = "techcorp"

const (
	defaultRefreshMargin = 30 * time.Second
	refreshTimeout       = 10 * time.Second
)

// AuthAPI is the slice of the auth client the manager depends on.
type AuthAPI interface {
	Login(ctx context.Context, email, password, tenantID string) (*auth.TokenPair, error)
	Refresh(ctx context.Context, refreshToken, tenantID string) (*auth.TokenPair, error)
}

type refreshCall struct {
	done chan struct{}
	err  error
}

// Manager holds the session state and drives the proactive refresh timer.
// The user record and the access token are always set and cleared together:
// there is never a half-authenticated state.
type Manager struct {
	authAPI   AuthAPI
	log       zerolog.Logger
	margin    time.Duration
	now       func() time.Time
	afterFunc func(d time.Duration, f func()) *time.Timer
	onExpired func()

	mu       sync.Mutex
	user     *User
	token    *oauth2.Token
	tenantID string
	timer    *time.Timer
	inflight *refreshCall
	closed   bool
}

// ManagerOption configures the Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) ManagerOption {
	return func(m *Manager) { m.log = l }
}

// WithRefreshMargin sets the lead time before expiry at which a proactive
// refresh is triggered.
func WithRefreshMargin(margin time.Duration) ManagerOption {
	return func(m *Manager) { m.margin = margin }
}

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = nowFunc }
}

// WithAfterFunc sets the one-shot timer constructor (primarily for testing).
func WithAfterFunc(afterFunc func(d time.Duration, f func()) *time.Timer) ManagerOption {
	return func(m *Manager) { m.afterFunc = afterFunc }
}

// WithSessionExpiredCallback registers the callback invoked whenever an
// authenticated session ends, either through Logout or a failed refresh.
// The console uses it to return to the login screen.
func WithSessionExpiredCallback(cb func()) ManagerOption {
	return func(m *Manager) { m.onExpired = cb }
}

// NewManager creates a session manager bound to the given auth client.
func NewManager(authAPI AuthAPI, options ...ManagerOption) *Manager {
	m := &Manager{
		authAPI:   authAPI,
		log:       zerolog.Nop(),
		margin:    defaultRefreshMargin,
		now:       time.Now,
		afterFunc: time.AfterFunc,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// Login authenticates against the backend and establishes the session.
// Every failure, transport or decode, clears all session state and is
// returned as an error value; nothing escapes uncaught.
func (m *Manager) Login(ctx context.Context, email, password, tenantID string) error {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}

	pair, err := m.authAPI.Login(ctx, email, password, tenantID)
	if err != nil {
		m.clear()
		m.log.Warn().Err(err).Str("tenant", tenantID).Msg("login failed")
		return errs.Wrapf(err, "[Manager.Login]")
	}

	claims, err := DecodeAccessClaims(pair.AccessToken)
	if err != nil {
		m.clear()
		return errs.Wrapf(err, "[Manager.Login] decode access token")
	}

	user, err := UserFromClaims(claims)
	if err != nil {
		m.clear()
		return errs.Wrapf(err, "[Manager.Login] user from claims")
	}

	m.mu.Lock()
	m.user = user
	m.tenantID = tenantID
	m.token = &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       claims.ExpiresAt,
	}
	m.scheduleLocked(claims.ExpiresAt)
	m.mu.Unlock()

	m.log.Info().Str("user", user.Email).Str("tenant", tenantID).Msg("session established")
	return nil
}

// Logout ends the session: it cancels any armed refresh timer and clears
// the user record and both tokens. Safe to call when already logged out.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.cancelTimerLocked()
	wasAuthenticated := m.user != nil
	m.user = nil
	m.token = nil
	m.tenantID = ""
	cb := m.onExpired
	m.mu.Unlock()

	if wasAuthenticated {
		m.log.Info().Msg("session cleared")
		if cb != nil {
			cb()
		}
	}
}

// Close disposes the manager. Timer fires and refresh responses that land
// after Close are ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.Logout()
}

// Refresh renews the token pair. Concurrent callers, whether the proactive
// timer, the API client's 401 path, or the token source, coalesce on a
// single in-flight network call and all observe its outcome. Any refresh
// failure is terminal: the session is logged out, no retry.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, "reactive")
}

func (m *Manager) refresh(ctx context.Context, trigger string) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errs.ErrSessionExpired
	}
	if call := m.inflight; call != nil {
		m.mu.Unlock()
		select {
		case <-call.done:
			return call.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if m.token == nil || m.token.RefreshToken == "" || m.tenantID == "" {
		m.mu.Unlock()
		m.log.Warn().Str("trigger", trigger).Msg("refresh without refresh token, logging out")
		m.Logout()
		return errs.ErrMissingRefresh
	}
	call := &refreshCall{done: make(chan struct{})}
	m.inflight = call
	refreshToken := m.token.RefreshToken
	tenantID := m.tenantID
	m.mu.Unlock()

	err := m.doRefresh(ctx, refreshToken, tenantID)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	metrics.SessionRefreshes.WithLabelValues(trigger, outcome).Inc()

	m.mu.Lock()
	m.inflight = nil
	m.mu.Unlock()
	call.err = err
	close(call.done)
	return err
}

func (m *Manager) doRefresh(ctx context.Context, refreshToken, tenantID string) error {
	pair, err := m.authAPI.Refresh(ctx, refreshToken, tenantID)
	if err != nil {
		m.log.Warn().Err(err).Msg("refresh failed, logging out")
		m.Logout()
		return errs.Wrapf(err, "[Manager.refresh]")
	}

	claims, err := DecodeAccessClaims(pair.AccessToken)
	if err != nil {
		m.log.Warn().Err(err).Msg("refreshed token undecodable, logging out")
		m.Logout()
		return errs.Wrapf(err, "[Manager.refresh] decode access token")
	}

	newRefreshToken := pair.RefreshToken
	if newRefreshToken == "" {
		newRefreshToken = refreshToken
	}

	m.mu.Lock()
	if m.closed || m.user == nil {
		// Logged out while the call was in flight; drop the response.
		m.mu.Unlock()
		return errs.ErrSessionExpired
	}
	m.token = &oauth2.Token{
		AccessToken:  pair.AccessToken,
		RefreshToken: newRefreshToken,
		TokenType:    "Bearer",
		Expiry:       claims.ExpiresAt,
	}
	m.scheduleLocked(claims.ExpiresAt)
	m.mu.Unlock()

	m.log.Debug().Time("expiry", claims.ExpiresAt).Msg("token refreshed")
	return nil
}

// scheduleLocked arms the proactive refresh timer for the given expiry.
// Exactly one timer is armed at any time: any previous timer is cancelled
// first. A token already inside the margin triggers an immediate refresh.
func (m *Manager) scheduleLocked(expiry time.Time) {
	m.cancelTimerLocked()

	delay := expiry.Sub(m.now()) - m.margin
	if delay > 0 {
		m.timer = m.afterFunc(delay, m.proactiveRefresh)
		return
	}
	go m.proactiveRefresh()
}

func (m *Manager) proactiveRefresh() {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := m.refresh(ctx, "proactive"); err != nil {
		m.log.Warn().Err(err).Msg("proactive refresh failed")
	}
}

func (m *Manager) cancelTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
}

func (m *Manager) clear() {
	m.mu.Lock()
	m.cancelTimerLocked()
	m.user = nil
	m.token = nil
	m.tenantID = ""
	m.mu.Unlock()
}

// User returns a copy of the authenticated user, or nil.
func (m *Manager) User() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsAuthenticated reports whether a user and an access token are both present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.token != nil && m.token.AccessToken != ""
}

// AccessToken returns the current access token, or "" when logged out.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return ""
	}
	return m.token.AccessToken
}

// TenantID returns the tenant of the current login, or "".
func (m *Manager) TenantID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tenantID
}

// Token implements oauth2.TokenSource: it returns the current token,
// refreshing through the single-flight path when it is within the margin.
func (m *Manager) Token() (*oauth2.Token, error) {
	m.mu.Lock()
	tok := m.token
	margin := m.margin
	now := m.now()
	m.mu.Unlock()

	if tok == nil {
		return nil, errs.ErrSessionExpired
	}
	if now.Add(margin).Before(tok.Expiry) {
		t := *tok
		return &t, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
	defer cancel()
	if err := m.refresh(ctx, "source"); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == nil {
		return nil, errs.ErrSessionExpired
	}
	t := *m.token
	return &t, nil
}

// TokenSource exposes the session as an oauth2.TokenSource.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return m
}

var _ oauth2.TokenSource = (*Manager)(nil)
