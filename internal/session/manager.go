package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
)

const (
	RoleAdmin = "admin"
	RoleGuest = "guest"
)

// Identity is who this session acts as. Role is the coarse UI role
// (every authenticated account is "admin" for the product screens);
// BackendRole is the authoritative ADMIN/USER designation that gates the
// user domain.
type Identity struct {
	ID          string
	Email       string
	Name        string
	Role        string
	BackendRole string
}

func (i Identity) IsGuest() bool { return i.Role == RoleGuest }
func (i Identity) IsAdmin() bool { return i.BackendRole == "ADMIN" }

// Manager owns the session lifecycle: it creates rows on
// login/register/guest entry and removes them on logout.
type Manager struct {
	store *Store
	api   *apiclient.Client
}

func NewManager(store *Store, api *apiclient.Client) *Manager {
	return &Manager{store: store, api: api}
}

// Login exchanges credentials for a token and then resolves the durable
// user id by email. When the lookup fails the email itself becomes the
// id; the mutation flows re-resolve it later.
func (m *Manager) Login(ctx context.Context, email, password string) (string, Identity, error) {
	sid := uuid.NewString()
	if err := m.store.Create(&Session{ID: sid}); err != nil {
		return "", Identity{}, err
	}
	ctx = WithSID(ctx, sid)

	if _, err := m.api.Login(ctx, email, password); err != nil {
		m.store.Delete(sid)
		return "", Identity{}, err
	}

	ident := Identity{
		ID:          email,
		Email:       email,
		Role:        RoleAdmin,
		BackendRole: "USER",
	}

	if u, err := m.api.CurrentUser(ctx, email); err == nil && u.ID != "" {
		ident = Identity{
			ID:          u.ID,
			Email:       firstNonEmpty(u.Email, email),
			Name:        u.Username,
			Role:        RoleAdmin,
			BackendRole: u.Rol,
		}
	} else {
		logging.FromContext(ctx).Warn("login_lookup_failed", "email", email, "error", err)
	}

	if err := m.store.SaveIdentity(sid, ident); err != nil {
		return "", Identity{}, err
	}
	return sid, ident, nil
}

func (m *Manager) Register(ctx context.Context, email, username, password string) (string, Identity, error) {
	sid := uuid.NewString()
	if err := m.store.Create(&Session{ID: sid}); err != nil {
		return "", Identity{}, err
	}
	ctx = WithSID(ctx, sid)

	u, err := m.api.Register(ctx, email, username, password)
	if err != nil {
		m.store.Delete(sid)
		return "", Identity{}, err
	}

	ident := Identity{
		ID:          u.ID,
		Email:       firstNonEmpty(u.Email, email),
		Name:        firstNonEmpty(u.Username, username),
		Role:        RoleAdmin,
		BackendRole: normalizeBackendRole(u.Rol),
	}

	if err := m.store.SaveIdentity(sid, ident); err != nil {
		return "", Identity{}, err
	}
	return sid, ident, nil
}

// Guest synthesizes a local-only identity. No backend call is made.
func (m *Manager) Guest(ctx context.Context) (string, Identity, error) {
	sid := uuid.NewString()
	ident := Identity{
		ID:   fmt.Sprintf("guest-%d", time.Now().UnixMilli()),
		Role: RoleGuest,
	}
	if err := m.store.Create(&Session{
		ID:     sid,
		UserID: ident.ID,
		Role:   ident.Role,
	}); err != nil {
		return "", Identity{}, err
	}
	return sid, ident, nil
}

// Logout destroys the session row, dropping identity and token together.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	return m.store.Delete(sid)
}

// Resolve loads the identity for a session id; ok is false for unknown
// or expired sessions.
func (m *Manager) Resolve(sid string) (Identity, bool) {
	sess, err := m.store.Get(sid)
	if err != nil || sess == nil {
		return Identity{}, false
	}
	return Identity{
		ID:          sess.UserID,
		Email:       sess.Email,
		Name:        sess.Name,
		Role:        sess.Role,
		BackendRole: sess.BackendRole,
	}, true
}

func normalizeBackendRole(rol string) string {
	if strings.EqualFold(rol, "ADMIN") {
		return "ADMIN"
	}
	return "USER"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
