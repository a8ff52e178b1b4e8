package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	userTypes "github.com/finnscodingadventure/digilizeforms/pkg/user-management/types"
)

// Auth lifecycle events as emitted by the backend.
const (
	EVENT_SIGNED_IN       = "SIGNED_IN"
	EVENT_SIGNED_OUT      = "SIGNED_OUT"
	EVENT_TOKEN_REFRESHED = "TOKEN_REFRESHED"
	EVENT_USER_UPDATED    = "USER_UPDATED"
)

// Bound on the initial session restore. When the backend does not answer
// within this window the store settles to logged-out instead of keeping
// the caller in a loading state.
const DEFAULT_START_TIMEOUT = 8 * time.Second

// Session is a validated authentication state: a token plus the identity
// it encodes.
type Session struct {
	Token       string
	UserID      string
	Email       string
	DisplayName string
	IsAdmin     bool
	ExpiresAt   time.Time
}

// Gateway covers the authentication calls the session store relays to the
// backend. Implementations surface errors verbatim; all retry and
// best-effort policy lives in the store.
type Gateway interface {
	CurrentSession(ctx context.Context) (*Session, error)
	Authenticate(ctx context.Context, email string, password string) (*Session, error)
	CreateAccount(ctx context.Context, email string, password string, displayName string) (string, error)
	SignOut(ctx context.Context, token string) error
	GetProfile(ctx context.Context, userID string) (*userTypes.Profile, error)
	CreateProfile(ctx context.Context, profile userTypes.Profile) error
}

// Store tracks the current session and profile and notifies subscribers
// whenever the authenticated identity changes. All profile maintenance is
// best-effort and never blocks a login.
type Store struct {
	gateway      Gateway
	startTimeout time.Duration

	mu          sync.Mutex
	loading     bool
	session     *Session
	profile     *userTypes.Profile
	subscribers []func(userID string)
}

// NewStore wires the session store to its gateway. A non-positive timeout
// falls back to the default restore bound.
func NewStore(gateway Gateway, startTimeout time.Duration) *Store {
	if startTimeout <= 0 {
		startTimeout = DEFAULT_START_TIMEOUT
	}
	return &Store{
		gateway:      gateway,
		startTimeout: startTimeout,
		loading:      true,
	}
}

// Subscribe registers a listener for identity changes. The listener
// receives the new user id, or the empty string on logout. Listeners run
// synchronously outside the store lock.
func (s *Store) Subscribe(fn func(userID string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session != nil
}

// UserID returns the current identity, or the empty string when logged
// out.
func (s *Store) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.UserID
}

func (s *Store) Profile() *userTypes.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// setSession swaps the current session under the lock and returns the
// subscribers to notify when the identity actually changed.
func (s *Store) setSession(session *Session) (changed bool, notify []func(string), userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := ""
	if s.session != nil {
		previous = s.session.UserID
	}
	next := ""
	if session != nil {
		next = session.UserID
	}

	s.session = session
	s.loading = false
	if session == nil {
		s.profile = nil
	}
	if previous == next {
		return false, nil, next
	}
	return true, append([]func(string){}, s.subscribers...), next
}

func (s *Store) applySession(ctx context.Context, session *Session) {
	changed, notify, userID := s.setSession(session)
	if !changed {
		return
	}
	if session != nil {
		s.ensureProfile(ctx, session)
	}
	for _, fn := range notify {
		fn(userID)
	}
}

// Start restores a persisted session. The restore is bounded; a timeout
// or failure settles the store to logged-out so the caller never hangs in
// a loading state.
func (s *Store) Start(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, s.startTimeout)
	defer cancel()

	session, err := s.gateway.CurrentSession(sctx)
	if err != nil {
		slog.Debug("no session restored", slog.String("error", err.Error()))
		s.applySession(ctx, nil)
		return
	}
	s.applySession(ctx, session)
}

// Login authenticates with email and password. It reports success as a
// boolean; the failure reason is logged, not surfaced, so that callers
// cannot distinguish a wrong password from an unknown account.
func (s *Store) Login(ctx context.Context, email string, password string) bool {
	session, err := s.gateway.Authenticate(ctx, email, password)
	if err != nil {
		slog.Info("login failed", slog.String("error", err.Error()))
		return false
	}
	s.applySession(ctx, session)
	return true
}

// Signup creates a new account with the user's chosen display name. The
// caller stays logged out; a follow-up Login is required.
func (s *Store) Signup(ctx context.Context, email string, password string, displayName string) bool {
	if _, err := s.gateway.CreateAccount(ctx, email, password, displayName); err != nil {
		slog.Info("signup failed", slog.String("error", err.Error()))
		return false
	}
	return true
}

// Logout is fail-open: the local session is cleared even when the
// backend call fails, since a user who asked to leave must always end up
// logged out.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	token := ""
	if s.session != nil {
		token = s.session.Token
	}
	s.mu.Unlock()

	if token != "" {
		if err := s.gateway.SignOut(ctx, token); err != nil {
			slog.Warn("sign-out call failed, clearing local session anyway", slog.String("error", err.Error()))
		}
	}
	s.applySession(ctx, nil)
}

// HandleAuthEvent applies a backend auth lifecycle event. SIGNED_OUT is
// authoritative and idempotent; it never triggers profile maintenance.
// Token refreshes for the same identity update the session silently
// without re-running the profile ensure.
func (s *Store) HandleAuthEvent(ctx context.Context, event string, session *Session) {
	switch event {
	case EVENT_SIGNED_OUT:
		s.applySession(ctx, nil)
	case EVENT_SIGNED_IN, EVENT_TOKEN_REFRESHED, EVENT_USER_UPDATED:
		if session == nil {
			return
		}
		if changed, notify, userID := s.setSession(session); changed {
			s.ensureProfile(ctx, session)
			for _, fn := range notify {
				fn(userID)
			}
		}
	default:
		slog.Debug("ignoring auth event", slog.String("event", event))
	}
}

// EnsureProfile repairs a missing profile row for the current identity.
// It is idempotent and safe to call at any time; without a session it does
// nothing.
func (s *Store) EnsureProfile(ctx context.Context) {
	s.mu.Lock()
	session := s.session
	s.mu.Unlock()
	if session == nil {
		return
	}
	s.ensureProfile(ctx, session)
}

// ensureProfile loads the identity's profile and creates it when absent.
// Any failure is logged and swallowed: a missing profile row must never
// block a login.
func (s *Store) ensureProfile(ctx context.Context, session *Session) {
	profile, err := s.gateway.GetProfile(ctx, session.UserID)
	if err != nil {
		slog.Warn("failed to load profile", slog.String("userID", session.UserID), slog.String("error", err.Error()))
		return
	}

	if profile == nil {
		profile = &userTypes.Profile{
			ID:    session.UserID,
			Name:  session.DisplayName,
			Email: session.Email,
		}
		if err := s.gateway.CreateProfile(ctx, *profile); err != nil {
			slog.Warn("failed to create profile", slog.String("userID", session.UserID), slog.String("error", err.Error()))
			return
		}
	}

	s.mu.Lock()
	if s.session != nil && s.session.UserID == session.UserID {
		s.profile = profile
	}
	s.mu.Unlock()
}
