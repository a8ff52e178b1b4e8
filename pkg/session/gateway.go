package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/finnscodingadventure/digilizeforms/pkg/db/users"
	jwthandling "github.com/finnscodingadventure/digilizeforms/pkg/jwt-handling"
	"github.com/finnscodingadventure/digilizeforms/pkg/user-management/pwhash"
	userTypes "github.com/finnscodingadventure/digilizeforms/pkg/user-management/types"
	umUtils "github.com/finnscodingadventure/digilizeforms/pkg/user-management/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidEmail       = errors.New("email format is invalid")
	ErrWeakPassword       = errors.New("password does not meet the requirements")
	ErrAccountExists      = errors.New("account already exists")
)

const (
	// LoginFailedAttemptWindow is the window, in seconds, over which
	// failed login attempts are counted and retained.
	LoginFailedAttemptWindow = 5 * 60
	// AllowedPasswordAttempts is the number of failed attempts tolerated
	// inside the window before logins are rejected outright.
	AllowedPasswordAttempts = 10
)

// TokenSource persists the session token between restarts, taking the
// place the browser's local storage had before.
type TokenSource interface {
	Load() (string, error)
	Store(token string) error
	Clear() error
}

// MemoryTokenSource keeps the token in memory only; sessions do not
// survive a restart.
type MemoryTokenSource struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryTokenSource) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryTokenSource) Store(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryTokenSource) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// DBGateway implements Gateway against the user database and the JWT
// token scheme.
type DBGateway struct {
	userDB       *users.UserDBService
	tokens       TokenSource
	tokenSignKey string
	tokenExpires time.Duration
}

func NewDBGateway(userDB *users.UserDBService, tokens TokenSource, tokenSignKey string, tokenExpires time.Duration) *DBGateway {
	if tokens == nil {
		tokens = &MemoryTokenSource{}
	}
	return &DBGateway{
		userDB:       userDB,
		tokens:       tokens,
		tokenSignKey: tokenSignKey,
		tokenExpires: tokenExpires,
	}
}

func (g *DBGateway) sessionFromToken(token string) (*Session, error) {
	claims, valid, err := jwthandling.ValidateUserToken(token, g.tokenSignKey)
	if err != nil || !valid {
		return nil, errors.New("session token is invalid or expired")
	}
	return &Session{
		Token:     token,
		UserID:    claims.Subject,
		Email:     claims.Email,
		IsAdmin:   claims.IsAdmin,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// CurrentSession restores the persisted token if it still validates.
func (g *DBGateway) CurrentSession(ctx context.Context) (*Session, error) {
	token, err := g.tokens.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, errors.New("no persisted session")
	}
	session, err := g.sessionFromToken(token)
	if err != nil {
		_ = g.tokens.Clear()
		return nil, err
	}
	return session, nil
}

// Authenticate verifies the credentials and mints a fresh token. Unknown
// accounts, rate-limited accounts and wrong passwords all collapse into
// the same error.
func (g *DBGateway) Authenticate(ctx context.Context, email string, password string) (*Session, error) {
	email = umUtils.SanitizeEmail(email)

	user, err := g.userDB.GetUserByEmail(email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if userTypes.HasMoreAttemptsRecently(user.Account.FailedLoginAttempts, AllowedPasswordAttempts, LoginFailedAttemptWindow) {
		slog.Warn("login attempt with too many failed attempts", slog.String("userID", user.ID.Hex()))
		if err := g.userDB.SaveFailedLoginAttempt(user.ID.Hex()); err != nil {
			slog.Error("failed to save failed login attempt", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidCredentials
	}

	match, err := pwhash.ComparePasswordWithHash(user.Account.Password, password)
	if err != nil || !match {
		if err := g.userDB.SaveFailedLoginAttempt(user.ID.Hex()); err != nil {
			slog.Error("failed to save failed login attempt", slog.String("error", err.Error()))
		}
		return nil, ErrInvalidCredentials
	}

	token, err := jwthandling.GenerateNewUserToken(
		g.tokenExpires,
		user.ID.Hex(),
		user.Account.Email,
		false,
		g.tokenSignKey,
	)
	if err != nil {
		return nil, err
	}
	if err := g.tokens.Store(token); err != nil {
		return nil, err
	}

	user.Timestamps.LastLogin = time.Now().Unix()
	user.Account.FailedLoginAttempts = userTypes.RemoveAttemptsOlderThan(user.Account.FailedLoginAttempts, LoginFailedAttemptWindow)
	if _, err := g.userDB.ReplaceUser(user); err != nil {
		return nil, err
	}

	session, err := g.sessionFromToken(token)
	if err != nil {
		return nil, err
	}
	session.DisplayName = user.Account.DisplayName
	return session, nil
}

// accountDisplayName falls back to a name derived from the email address
// when the user did not choose one.
func accountDisplayName(email string, displayName string) string {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return umUtils.DisplayNameFromEmail(email)
	}
	return displayName
}

// CreateAccount registers a new user with the chosen display name. It
// does not log the user in.
func (g *DBGateway) CreateAccount(ctx context.Context, email string, password string, displayName string) (string, error) {
	email = umUtils.SanitizeEmail(email)
	if !umUtils.CheckEmailFormat(email) {
		return "", ErrInvalidEmail
	}
	if !umUtils.CheckPasswordFormat(password) {
		return "", ErrWeakPassword
	}

	if _, err := g.userDB.GetUserByEmail(email); err == nil {
		return "", ErrAccountExists
	}

	hash, err := pwhash.HashPassword(password)
	if err != nil {
		return "", err
	}

	user := userTypes.User{
		Account: userTypes.Account{
			Email:       email,
			Password:    hash,
			DisplayName: accountDisplayName(email, displayName),
		},
	}
	return g.userDB.CreateUser(user)
}

// EnsureProfile creates the profile row for a user when it is missing.
// Existing rows are left untouched.
func (g *DBGateway) EnsureProfile(ctx context.Context, userID string, name string, email string) error {
	profile, err := g.userDB.GetProfileByID(userID)
	if err != nil {
		return err
	}
	if profile != nil {
		return nil
	}
	return g.userDB.CreateProfile(userTypes.Profile{
		ID:    userID,
		Name:  name,
		Email: email,
	})
}

// SignOut drops the persisted token. The token itself stays valid until
// it expires; revocation is out of scope for the HS256 scheme.
func (g *DBGateway) SignOut(ctx context.Context, token string) error {
	return g.tokens.Clear()
}

func (g *DBGateway) GetProfile(ctx context.Context, userID string) (*userTypes.Profile, error) {
	return g.userDB.GetProfileByID(userID)
}

func (g *DBGateway) CreateProfile(ctx context.Context, profile userTypes.Profile) error {
	return g.userDB.CreateProfile(profile)
}
