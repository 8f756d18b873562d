package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/linguahub/client/internal/domain/entities"
)

// SessionService owns the single authenticated identity of the running
// client: token pair, user object, persistence and renewal. It implements
// the API client's Authenticator.
type SessionService struct {
	api   AuthAPI
	users UserAPI
	store SessionStore
	log   *zap.Logger

	mu      sync.RWMutex
	session *entities.Session

	// renewMu serializes token renewals so concurrent 401s don't race on
	// the refresh token.
	renewMu sync.Mutex

	obsMu     sync.Mutex
	observers []func(*entities.User)
}

func NewSessionService(api AuthAPI, users UserAPI, store SessionStore, log *zap.Logger) *SessionService {
	return &SessionService{
		api:   api,
		users: users,
		store: store,
		log:   log,
	}
}

// Login exchanges credentials for a session. On failure no state is
// written; the returned AuthError carries the backend message when one was
// provided.
func (s *SessionService) Login(ctx context.Context, email, password string) (*entities.User, error) {
	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, &AuthError{Message: messageOr(err, "login failed"), Err: err}
	}
	return s.establish(ctx, res)
}

// Register creates an account and logs in with the same contract as Login.
// The backend rejects duplicate emails.
func (s *SessionService) Register(ctx context.Context, name, email, password string) (*entities.User, error) {
	res, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		return nil, &AuthError{Message: messageOr(err, "registration failed"), Err: err}
	}
	return s.establish(ctx, res)
}

// establish persists and installs a fresh session as one unit.
func (s *SessionService) establish(ctx context.Context, res *entities.AuthResult) (*entities.User, error) {
	sess := entities.NewSession(res.AccessToken, res.RefreshToken, res.User)

	if err := s.persist(ctx, sess); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	user := res.User
	s.notify(&user)
	return &user, nil
}

// Restore loads the persisted session at startup. Missing or malformed
// state is treated as absence: everything is wiped and the session stays
// empty. Restore never fails the caller.
func (s *SessionService) Restore(ctx context.Context) *entities.User {
	rec, ok, err := s.store.Load(ctx)
	if err != nil || !ok {
		if err != nil {
			s.log.Warn("session restore failed, starting anonymous", zap.Error(err))
		}
		s.wipe(ctx)
		return nil
	}

	var user entities.User
	if rec.AccessToken == "" || json.Unmarshal([]byte(rec.UserJSON), &user) != nil || user.ID == "" {
		s.log.Warn("persisted session is malformed, wiping")
		s.wipe(ctx)
		return nil
	}

	sess := entities.NewSession(rec.AccessToken, rec.RefreshToken, user)
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()

	u := user
	return &u
}

// Logout clears in-memory and persisted session unconditionally.
func (s *SessionService) Logout(ctx context.Context) {
	s.wipe(ctx)
	s.notify(nil)
}

// UpdateUser shallow-merges the patch into the current user and
// re-persists. A no-op without an active session.
func (s *SessionService) UpdateUser(ctx context.Context, patch entities.UserPatch) *entities.User {
	s.mu.Lock()
	if !s.session.Active() {
		s.mu.Unlock()
		return nil
	}

	merged := patch.Apply(*s.session.User)
	s.session.User = &merged
	sess := *s.session
	s.mu.Unlock()

	if err := s.persist(ctx, &sess); err != nil {
		s.log.Warn("persist updated user failed", zap.Error(err))
	}

	u := merged
	s.notify(&u)
	return &u
}

// Profile re-fetches the user from the backend and replaces the cached one
// wholesale.
func (s *SessionService) Profile(ctx context.Context) (*entities.User, error) {
	if !s.Active() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.users.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch profile: %w", err)
	}

	s.replaceUser(ctx, *user)
	u := *user
	return &u, nil
}

// UpdateProfile sends a partial profile update and installs the server's
// resulting user object.
func (s *SessionService) UpdateProfile(ctx context.Context, patch entities.UserPatch) (*entities.User, error) {
	if !s.Active() {
		return nil, ErrNotAuthenticated
	}

	user, err := s.users.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, &AuthError{Message: messageOr(err, "profile update failed"), Err: err}
	}

	s.replaceUser(ctx, *user)
	u := *user
	return &u, nil
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (s *SessionService) CurrentUser() *entities.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.session.Active() {
		return nil
	}
	u := *s.session.User
	return &u
}

// Active reports whether a session is established.
func (s *SessionService) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Active()
}

// AccessToken returns the current bearer token, or "" when anonymous.
func (s *SessionService) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.AccessToken
}

// AccessTokenExpiry peeks at the access token's exp claim. The token is
// not verified here; the client holds no signing key and only needs the
// timestamp for proactive renewal.
func (s *SessionService) AccessTokenExpiry() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Renew exchanges the refresh token for a new access token. On any failure
// the session is torn down and ErrSessionExpired is returned; the caller
// must not retry.
func (s *SessionService) Renew(ctx context.Context) (string, error) {
	s.renewMu.Lock()
	defer s.renewMu.Unlock()

	s.mu.RLock()
	refresh := ""
	if s.session != nil {
		refresh = s.session.RefreshToken
	}
	s.mu.RUnlock()

	if refresh == "" {
		s.teardown(ctx)
		return "", ErrSessionExpired
	}

	token, err := s.api.RefreshToken(ctx, refresh)
	if err != nil {
		s.log.Info("token renewal failed, tearing down session", zap.Error(err))
		s.teardown(ctx)
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, err)
	}

	s.mu.Lock()
	if !s.session.Active() {
		// Logged out while the renewal was in flight.
		s.mu.Unlock()
		return "", ErrSessionExpired
	}
	s.session.AccessToken = token
	sess := *s.session
	s.mu.Unlock()

	if err := s.persist(ctx, &sess); err != nil {
		s.log.Warn("persist renewed token failed", zap.Error(err))
	}
	return token, nil
}

// Expire tears the session down after a renewed token was rejected again.
func (s *SessionService) Expire(ctx context.Context) error {
	s.teardown(ctx)
	return ErrSessionExpired
}

// OnChange registers an observer invoked with the user after login and
// profile changes, and with nil after logout or expiry.
func (s *SessionService) OnChange(fn func(*entities.User)) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	s.observers = append(s.observers, fn)
}

func (s *SessionService) replaceUser(ctx context.Context, user entities.User) {
	s.mu.Lock()
	if !s.session.Active() {
		s.mu.Unlock()
		return
	}
	s.session.User = &user
	sess := *s.session
	s.mu.Unlock()

	if err := s.persist(ctx, &sess); err != nil {
		s.log.Warn("persist refreshed user failed", zap.Error(err))
	}
	u := user
	s.notify(&u)
}

func (s *SessionService) persist(ctx context.Context, sess *entities.Session) error {
	userJSON, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user for persistence: %w", err)
	}

	rec := entities.SessionRecord{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		UserJSON:     string(userJSON),
	}
	if err := s.store.Save(ctx, rec); err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func (s *SessionService) teardown(ctx context.Context) {
	s.wipe(ctx)
	s.notify(nil)
}

func (s *SessionService) wipe(ctx context.Context) {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()

	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn("clear persisted session failed", zap.Error(err))
	}
}

func (s *SessionService) notify(user *entities.User) {
	s.obsMu.Lock()
	observers := make([]func(*entities.User), len(s.observers))
	copy(observers, s.observers)
	s.obsMu.Unlock()

	for _, fn := range observers {
		fn(user)
	}
}
