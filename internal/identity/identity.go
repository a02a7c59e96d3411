// Package identity owns authentication and user provisioning: credential
// verification, JWT session tokens, the in-memory session registry, and
// admin-driven account creation. Password hashes never leave this package.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"sales-register/internal/core"
	"sales-register/internal/store"
)

var (
	// ErrInvalidCredentials covers unknown usernames and wrong passwords
	// alike, so callers cannot probe which of the two failed.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserExists is returned when provisioning collides with an existing
	// username. Usernames are compared case-insensitively.
	ErrUserExists = errors.New("username already taken")

	// ErrSessionRevoked is returned for a structurally valid token whose
	// session is no longer in the registry.
	ErrSessionRevoked = errors.New("session revoked")
)

const sessionTTL = 12 * time.Hour

// Session is one authenticated login. Token is the signed JWT handed to
// the client; ID keys the revocation registry.
type Session struct {
	ID        string
	Token     string
	Actor     core.Actor
	ExpiresAt time.Time
}

type tokenClaims struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Manager verifies credentials against the users collection and tracks
// live sessions. Revocation is registry-based: a token is valid only
// while its session ID is present, so logout takes effect immediately
// instead of waiting for JWT expiry.
type Manager struct {
	store  store.Store
	secret []byte
	log    *zap.Logger
	clock  func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

func NewManager(st store.Store, secret []byte, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:    st,
		secret:   secret,
		log:      log,
		clock:    time.Now,
		sessions: make(map[string]Session),
	}
}

// Login verifies the credentials and opens a session.
func (m *Manager) Login(ctx context.Context, username, password string) (*Session, error) {
	doc, err := m.findUser(ctx, username)
	if err != nil {
		return nil, err
	}
	hash, _ := doc.Fields["passwordHash"].(string)
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	account := core.UserFromDoc(*doc)

	session, err := m.open(account)
	if err != nil {
		return nil, err
	}
	m.log.Info("user logged in",
		zap.String("username", account.Username), zap.String("role", string(account.Role)))
	return session, nil
}

// Authenticate resolves a token back to its actor. The signature, expiry
// and session registry are all checked.
func (m *Manager) Authenticate(token string) (core.Actor, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return core.Actor{}, ErrInvalidCredentials
	}

	m.mu.Lock()
	session, ok := m.sessions[claims.SessionID]
	m.mu.Unlock()
	if !ok || m.clock().After(session.ExpiresAt) {
		return core.Actor{}, ErrSessionRevoked
	}
	return session.Actor, nil
}

// Logout revokes the session behind a token. Unknown or malformed tokens
// are a no-op; logout never fails.
func (m *Manager) Logout(token string) {
	claims := &tokenClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}); err != nil {
		return
	}
	m.mu.Lock()
	delete(m.sessions, claims.SessionID)
	m.mu.Unlock()
}

// CreateAccount provisions a new login. Admin only. The new account is
// verified end to end: after the document is written, an ephemeral probe
// session is opened with the supplied credentials and torn down before
// returning, on success and failure alike, so provisioning never leaves
// a stray live session and a reported success means the account can
// actually log in.
func (m *Manager) CreateAccount(ctx context.Context, actor core.Actor, username, password string, role core.Role) (*core.UserAccount, error) {
	if actor.Role != core.RoleAdmin {
		return nil, fmt.Errorf("create account as %s: %w", actor.Role, core.ErrForbidden)
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, errors.New("username is required")
	}
	if len(password) < 6 {
		return nil, errors.New("password must be at least 6 characters")
	}
	if role == "" {
		role = core.RoleRegistrar
	}

	if _, err := m.findUser(ctx, username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrInvalidCredentials) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	res := m.store.Create(ctx, store.Users, map[string]any{
		"username":     username,
		"passwordHash": string(hash),
		"role":         string(role),
	})
	if !res.OK {
		return nil, fmt.Errorf("create user %s: %w", username, res.Err)
	}

	probe, err := m.Login(ctx, username, password)
	if probe != nil {
		defer m.Logout(probe.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("verify new account %s: %w", username, err)
	}

	account := &core.UserAccount{ID: res.ID, Username: username, Role: role}
	m.log.Info("account provisioned",
		zap.String("username", username),
		zap.String("role", string(role)),
		zap.String("by", actor.Username))
	return account, nil
}

// ListAccounts returns all provisioned logins. Admin only.
func (m *Manager) ListAccounts(ctx context.Context, actor core.Actor) ([]core.UserAccount, error) {
	if actor.Role != core.RoleAdmin {
		return nil, fmt.Errorf("list accounts as %s: %w", actor.Role, core.ErrForbidden)
	}
	docs, err := m.store.List(ctx, store.Users, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	accounts := make([]core.UserAccount, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, core.UserFromDoc(d))
	}
	return accounts, nil
}

// SetRole changes an account's role. Admin only; admins cannot demote
// themselves, which keeps at least the acting admin in place.
func (m *Manager) SetRole(ctx context.Context, actor core.Actor, userID string, role core.Role) error {
	if actor.Role != core.RoleAdmin {
		return fmt.Errorf("set role as %s: %w", actor.Role, core.ErrForbidden)
	}
	if userID == actor.UserID && role != core.RoleAdmin {
		return errors.New("cannot demote own account")
	}
	res := m.store.Update(ctx, store.Users, userID, map[string]any{"role": string(role)})
	if !res.OK {
		return fmt.Errorf("set role for %s: %w", userID, res.Err)
	}
	m.log.Info("role changed",
		zap.String("user_id", userID), zap.String("role", string(role)),
		zap.String("by", actor.Username))
	return nil
}

// open creates and registers a session for an already verified account.
func (m *Manager) open(account core.UserAccount) (*Session, error) {
	now := m.clock()
	session := Session{
		ID: uuid.NewString(),
		Actor: core.Actor{
			UserID:   account.ID,
			Username: account.Username,
			Role:     account.Role,
		},
		ExpiresAt: now.Add(sessionTTL),
	}

	claims := &tokenClaims{
		UserID:    account.ID,
		Username:  account.Username,
		Role:      string(account.Role),
		SessionID: session.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	session.Token = signed

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()
	return &session, nil
}

// findUser scans the users collection for a case-insensitive username
// match. Misses report ErrInvalidCredentials so Login and CreateAccount
// share one lookup path.
func (m *Manager) findUser(ctx context.Context, username string) (*store.Document, error) {
	docs, err := m.store.List(ctx, store.Users, "createdAt")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range docs {
		if strings.EqualFold(docString(docs[i], "username"), username) {
			return &docs[i], nil
		}
	}
	return nil, ErrInvalidCredentials
}

func docString(d store.Document, field string) string {
	v, _ := d.Fields[field].(string)
	return v
}
