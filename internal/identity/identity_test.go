package identity

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"sales-register/internal/core"
	"sales-register/internal/store"
)

func seedUser(t *testing.T, st *store.Memory, username, password string, role core.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	res := st.Create(context.Background(), store.Users, map[string]any{
		"username":     username,
		"passwordHash": string(hash),
		"role":         string(role),
	})
	if !res.OK {
		t.Fatalf("seed user: %v", res.Err)
	}
	return res.ID
}

func (m *Manager) sessionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func TestLoginAndAuthenticate(t *testing.T) {
	st := store.NewMemory()
	id := seedUser(t, st, "jefa", "secreto1", core.RoleAdmin)
	m := NewManager(st, []byte("test-secret"), nil)

	session, err := m.Login(context.Background(), "jefa", "secreto1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.Actor.UserID != id || session.Actor.Role != core.RoleAdmin {
		t.Errorf("actor = %+v", session.Actor)
	}

	actor, err := m.Authenticate(session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if actor.Username != "jefa" {
		t.Errorf("username = %q", actor.Username)
	}
}

func TestLogin_UsernameIsCaseInsensitive(t *testing.T) {
	st := store.NewMemory()
	seedUser(t, st, "Jefa", "secreto1", core.RoleAdmin)
	m := NewManager(st, []byte("test-secret"), nil)

	if _, err := m.Login(context.Background(), "jefa", "secreto1"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	st := store.NewMemory()
	seedUser(t, st, "jefa", "secreto1", core.RoleAdmin)
	m := NewManager(st, []byte("test-secret"), nil)

	if _, err := m.Login(context.Background(), "jefa", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: err = %v", err)
	}
	if _, err := m.Login(context.Background(), "nadie", "secreto1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown user: err = %v", err)
	}
}

func TestLogout_RevokesImmediately(t *testing.T) {
	st := store.NewMemory()
	seedUser(t, st, "jefa", "secreto1", core.RoleAdmin)
	m := NewManager(st, []byte("test-secret"), nil)

	session, err := m.Login(context.Background(), "jefa", "secreto1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	m.Logout(session.Token)

	// The JWT is still unexpired; only the registry revokes it.
	if _, err := m.Authenticate(session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Errorf("err = %v, want ErrSessionRevoked", err)
	}

	m.Logout(session.Token) // second revoke is a no-op
	m.Logout("garbage")
}

func TestAuthenticate_RejectsForeignSignature(t *testing.T) {
	st := store.NewMemory()
	seedUser(t, st, "jefa", "secreto1", core.RoleAdmin)

	other := NewManager(st, []byte("other-secret"), nil)
	session, err := other.Login(context.Background(), "jefa", "secreto1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	m := NewManager(st, []byte("test-secret"), nil)
	if _, err := m.Authenticate(session.Token); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}
}

func TestCreateAccount(t *testing.T) {
	st := store.NewMemory()
	seedUser(t, st, "jefa", "secreto1", core.RoleAdmin)
	m := NewManager(st, []byte("test-secret"), nil)
	admin := core.Actor{UserID: "a1", Username: "jefa", Role: core.RoleAdmin}

	account, err := m.CreateAccount(context.Background(), admin, "vendedor", "clave123", core.RoleRegistrar)
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if account.Role != core.RoleRegistrar {
		t.Errorf("role = %s", account.Role)
	}

	// The verification probe must not leave a live session behind.
	if n := m.sessionCount(); n != 0 {
		t.Errorf("%d sessions left after provisioning, want 0", n)
	}

	if _, err := m.Login(context.Background(), "vendedor", "clave123"); err != nil {
		t.Errorf("new account cannot log in: %v", err)
	}
}

func TestCreateAccount_RejectsNonAdmin(t *testing.T) {
	st := store.NewMemory()
	m := NewManager(st, []byte("test-secret"), nil)

	registrar := core.Actor{Username: "vendedor", Role: core.RoleRegistrar}
	_, err := m.CreateAccount(context.Background(), registrar, "otro", "clave123", core.RoleRegistrar)
	if !errors.Is(err, core.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	docs, _ := st.List(context.Background(), store.Users, "createdAt")
	if len(docs) != 0 {
		t.Error("user written despite rejected provisioning")
	}
}

func TestCreateAccount_DuplicateUsername(t *testing.T) {
	st := store.NewMemory()
	seedUser(t, st, "Vendedor", "clave123", core.RoleRegistrar)
	m := NewManager(st, []byte("test-secret"), nil)
	admin := core.Actor{Username: "jefa", Role: core.RoleAdmin}

	// Case differs; the collision must still be detected.
	_, err := m.CreateAccount(context.Background(), admin, "vendedor", "clave456", core.RoleRegistrar)
	if !errors.Is(err, ErrUserExists) {
		t.Errorf("err = %v, want ErrUserExists", err)
	}
}

func TestSetRole(t *testing.T) {
	st := store.NewMemory()
	userID := seedUser(t, st, "vendedor", "clave123", core.RoleRegistrar)
	m := NewManager(st, []byte("test-secret"), nil)
	admin := core.Actor{UserID: "a1", Username: "jefa", Role: core.RoleAdmin}

	if err := m.SetRole(context.Background(), admin, userID, core.RoleAdmin); err != nil {
		t.Fatalf("set role: %v", err)
	}
	doc, _ := st.Get(context.Background(), store.Users, userID)
	if got := core.UserFromDoc(*doc).Role; got != core.RoleAdmin {
		t.Errorf("role = %s, want admin", got)
	}

	if err := m.SetRole(context.Background(), admin, "a1", core.RoleRegistrar); err == nil {
		t.Error("self-demotion accepted")
	}

	registrar := core.Actor{Username: "vendedor", Role: core.RoleRegistrar}
	if err := m.SetRole(context.Background(), registrar, userID, core.RoleAdmin); !errors.Is(err, core.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
}
