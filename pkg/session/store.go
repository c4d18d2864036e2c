package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/vantagecrm/vantage-go/pkg/api"
	"github.com/vantagecrm/vantage-go/pkg/observability"
	"github.com/vantagecrm/vantage-go/pkg/storage"
	"github.com/vantagecrm/vantage-go/pkg/transport"
)

const (
	loginPath              = "/api/auth/login"
	registerPath           = "/api/auth/register"
	registrationStatusPath = "/api/auth/registration-status"
)

// ErrNotAuthenticated is returned by operations that need a live session.
var ErrNotAuthenticated = errors.New("session: not authenticated")

// Hook runs after a session-changing operation. Login hooks run strictly
// after the login state is committed; their failure never unwinds the login.
type Hook func(ctx context.Context) error

// RegisterParams carries the registration form. TenantSubdomain is derived
// by the caller from the company name (see DeriveSubdomain) before submission.
type RegisterParams struct {
	Email           string
	Password        string
	FirstName       string
	LastName        string
	TenantName      string
	TenantSubdomain string
}

// Store is the single source of truth for who is logged in. State mutations
// write through to the injected storage adapter before returning, so a
// process restart rehydrates the same session.
type Store struct {
	mu      sync.RWMutex
	current Session
	lastErr string

	client      *transport.Client
	storage     storage.Adapter
	logger      *observability.Logger
	loginHooks  []Hook
	logoutHooks []Hook
}

// persistedState is the auth-storage blob layout.
type persistedState struct {
	User          *User  `json:"user"`
	AccessToken   string `json:"accessToken"`
	RefreshToken  string `json:"refreshToken"`
	Authenticated bool   `json:"isAuthenticated"`
}

// NewStore creates a session store over the shared gateway client and the
// persisted storage adapter.
func NewStore(client *transport.Client, adapter storage.Adapter, logger *observability.Logger) *Store {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Store{
		client:  client,
		storage: adapter,
		logger:  logger,
	}
}

// OnLogin registers a hook to run after every successful login or
// registration. The module store's fetch is wired here, keeping the
// cross-store dependency explicit.
func (s *Store) OnLogin(hook Hook) {
	s.loginHooks = append(s.loginHooks, hook)
}

// OnLogout registers a hook to run on logout.
func (s *Store) OnLogout(hook Hook) {
	s.logoutHooks = append(s.logoutHooks, hook)
}

// Login submits credentials and commits the resulting session. On failure
// the store records the gateway's message (see LastError) and returns the
// error unchanged; nothing is retried.
func (s *Store) Login(ctx context.Context, email, password string) error {
	var resp api.AuthResponse
	err := s.client.Post(ctx, loginPath, api.LoginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		s.recordFailure(err)
		return err
	}
	return s.commit(ctx, &resp)
}

// Register creates a tenant and its first user, committing the issued
// session exactly like Login.
func (s *Store) Register(ctx context.Context, params RegisterParams) error {
	var resp api.AuthResponse
	err := s.client.Post(ctx, registerPath, api.RegisterRequest{
		Email:           params.Email,
		Password:        params.Password,
		FirstName:       params.FirstName,
		LastName:        params.LastName,
		TenantName:      params.TenantName,
		TenantSubdomain: params.TenantSubdomain,
	}, &resp)
	if err != nil {
		s.recordFailure(err)
		return err
	}
	return s.commit(ctx, &resp)
}

// commit persists tokens and profile, then runs the login hooks. Login
// success is final once the state is stored; a failing hook is logged and
// dropped.
func (s *Store) commit(ctx context.Context, resp *api.AuthResponse) error {
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		return fmt.Errorf("session: gateway issued incomplete credentials")
	}

	user := &User{
		ID:          resp.UserID,
		Email:       resp.Email,
		FirstName:   resp.FirstName,
		LastName:    resp.LastName,
		TenantID:    resp.TenantID,
		TenantName:  resp.TenantName,
		Roles:       resp.Roles,
		Permissions: resp.Permissions,
	}

	s.mu.Lock()
	s.current = Session{
		User:          user,
		AccessToken:   resp.AccessToken,
		RefreshToken:  resp.RefreshToken,
		Authenticated: true,
	}
	s.lastErr = ""
	err := s.persistLocked(ctx)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id":   user.ID,
		"tenant_id": user.TenantID,
	}).Info("session established")

	for _, hook := range s.loginHooks {
		if hookErr := hook(ctx); hookErr != nil {
			s.logger.WithError(hookErr).Warn("post-login hook failed")
		}
	}
	return nil
}

// Logout clears tokens and profile from memory and storage and runs the
// logout hooks. Idempotent.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.current = Session{}
	s.lastErr = ""
	err := s.storage.Delete(ctx,
		storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyAuthStorage)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("session: failed to clear persisted state: %w", err)
	}

	for _, hook := range s.logoutHooks {
		if hookErr := hook(ctx); hookErr != nil {
			s.logger.WithError(hookErr).Warn("logout hook failed")
		}
	}
	s.logger.Info("session cleared")
	return nil
}

// SetUser replaces the in-memory profile without touching tokens, for
// out-of-band profile edits. The persisted blob is rewritten to match.
func (s *Store) SetUser(ctx context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.User = user
	return s.persistLocked(ctx)
}

// Current returns a snapshot of the session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := s.current
	if s.current.User != nil {
		user := *s.current.User
		snapshot.User = &user
	}
	return snapshot
}

// LastError returns the human-readable message from the most recent failed
// login or registration, for the caller's form to display.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Restore rehydrates the session from persisted storage at startup. A
// missing or incomplete blob leaves the store logged out; it is not an error.
func (s *Store) Restore(ctx context.Context) error {
	blob, err := s.storage.Get(ctx, storage.KeyAuthStorage)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("session: failed to read persisted state: %w", err)
	}

	var state persistedState
	if err := json.Unmarshal([]byte(blob), &state); err != nil {
		return fmt.Errorf("session: persisted state is corrupt: %w", err)
	}

	// Tokens travel as a pair; half a credential is no credential.
	if !state.Authenticated || state.AccessToken == "" || state.RefreshToken == "" {
		return nil
	}

	s.mu.Lock()
	s.current = Session{
		User:          state.User,
		AccessToken:   state.AccessToken,
		RefreshToken:  state.RefreshToken,
		Authenticated: true,
	}
	s.mu.Unlock()
	return nil
}

// Invalidate drops the in-memory session without touching storage. The
// transport calls this (via the session-expiry hook) after it has already
// purged credentials.
func (s *Store) Invalidate() {
	s.mu.Lock()
	s.current = Session{}
	s.mu.Unlock()
}

// RegistrationEnabled reports whether the gateway accepts self-service
// registration.
func (s *Store) RegistrationEnabled(ctx context.Context) (bool, error) {
	var enabled bool
	if err := s.client.Get(ctx, registrationStatusPath, &enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

// WatchStorage re-restores the session whenever another process writes the
// shared storage slice. Returns immediately when the adapter cannot watch.
// Blocks until ctx is canceled.
func (s *Store) WatchStorage(ctx context.Context) error {
	watcher, ok := s.storage.(storage.Watcher)
	if !ok {
		return nil
	}
	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			s.Invalidate()
			if err := s.Restore(ctx); err != nil {
				s.logger.WithError(err).Warn("failed to restore session after storage change")
			}
		}
	}
}

func (s *Store) recordFailure(err error) {
	message := err.Error()
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		message = apiErr.Message
	}
	s.mu.Lock()
	s.lastErr = message
	s.mu.Unlock()
}

// persistLocked writes tokens and the auth-storage blob. Callers hold s.mu.
func (s *Store) persistLocked(ctx context.Context) error {
	blob, err := json.Marshal(persistedState{
		User:          s.current.User,
		AccessToken:   s.current.AccessToken,
		RefreshToken:  s.current.RefreshToken,
		Authenticated: s.current.Authenticated,
	})
	if err != nil {
		return fmt.Errorf("session: failed to encode state: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyAccessToken, s.current.AccessToken); err != nil {
		return fmt.Errorf("session: failed to persist access token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyRefreshToken, s.current.RefreshToken); err != nil {
		return fmt.Errorf("session: failed to persist refresh token: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyAuthStorage, string(blob)); err != nil {
		return fmt.Errorf("session: failed to persist session state: %w", err)
	}
	return nil
}
