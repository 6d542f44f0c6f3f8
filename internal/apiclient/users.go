package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
)

// User is a backend account. Password is write-only: it goes out on
// create/update and never comes back.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	Rol      string `json:"rol,omitempty"`
}

type NewUser struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Rol      string `json:"rol,omitempty"`
}

// UserUpdate always carries every field; the backend rejects partial
// bodies. An empty password means "do not change".
type UserUpdate struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Rol      string `json:"rol"`
	Password string `json:"password"`
}

const usersPath = "/domains/usuarios/users"

func (c *Client) Users(ctx context.Context) ([]User, error) {
	raw, err := c.request(ctx, http.MethodGet, usersPath, nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, &DecodeError{What: "la lista de usuarios no es un arreglo JSON"}
	}

	users := make([]User, 0, len(items))
	for _, item := range items {
		u, err := decodeUser(item)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

func (c *Client) User(ctx context.Context, id string) (*User, error) {
	raw, err := c.request(ctx, http.MethodGet, usersPath+"/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(raw)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser registers an account through the auth endpoint; rol is
// optional and omitted when empty.
func (c *Client) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	raw, err := c.request(ctx, http.MethodPost, "/auth/", user)
	if err != nil {
		return nil, err
	}
	u, err := decodeUser(unwrapUser(raw))
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, update UserUpdate) error {
	if update.Rol == "" {
		update.Rol = "USER"
	}
	_, err := c.request(ctx, http.MethodPut, usersPath+"/"+url.PathEscape(id), update)
	return err
}

func (c *Client) DeleteUser(ctx context.Context, id, userID, description string) error {
	_, err := c.request(ctx, http.MethodDelete, usersPath+"/"+url.PathEscape(id)+"?"+auditQuery(userID, description), nil)
	return err
}

// CurrentUser resolves a durable user id by scanning the backend's user
// list for the given email. The backend has no /me endpoint, so this is
// the lookup login and the mutation flows lean on.
func (c *Client) CurrentUser(ctx context.Context, email string) (*User, error) {
	raw, err := c.request(ctx, http.MethodGet, usersPath, nil)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		// Algunos despliegues devuelven el usuario autenticado directo.
		u, derr := decodeUser(raw)
		if derr != nil {
			return nil, &DecodeError{What: "la respuesta de usuarios no es ni lista ni objeto"}
		}
		if email != "" && !strings.EqualFold(u.Email, email) {
			return nil, &Error{Message: "El usuario obtenido no coincide con el email proporcionado"}
		}
		u.Rol = normalizeRol(u.Rol)
		return &u, nil
	}

	if len(items) == 0 {
		return nil, &Error{Message: "No se recibieron datos del usuario"}
	}

	for _, item := range items {
		u, err := decodeUser(item)
		if err != nil {
			return nil, err
		}
		if email == "" || strings.EqualFold(u.Email, email) {
			u.Rol = normalizeRol(u.Rol)
			return &u, nil
		}
	}

	return nil, &Error{Message: "No se encontró un usuario con el email " + email}
}

func normalizeRol(rol string) string {
	if strings.EqualFold(rol, "ADMIN") {
		return "ADMIN"
	}
	return "USER"
}

// unwrapUser peels the {"user": {...}} envelope some auth responses use.
func unwrapUser(raw json.RawMessage) json.RawMessage {
	var envelope struct {
		User json.RawMessage `json:"user"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.User) > 0 && !isJSONNull(envelope.User) {
		return envelope.User
	}
	return raw
}
