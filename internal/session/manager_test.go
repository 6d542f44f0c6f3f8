package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
)

func newTestManager(t *testing.T, backend http.Handler) (*Manager, *Store) {
	t.Helper()

	store, err := OpenStore(filepath.Join(t.TempDir(), "sessions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	api := apiclient.NewClient(srv.URL, store)
	return NewManager(store, api), store
}

func authBackend(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostFormValue("password") != "secreto" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"detail":"could not validate user"}`)
			return
		}
		fmt.Fprint(w, `{"access_token":"tok-login","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /domains/usuarios/users", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"id":42,"email":"ana@example.com","username":"ana","rol":"ADMIN"}]`)
	})
	mux.HandleFunc("POST /auth/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok-reg","user":{"id":7,"email":"nuevo@example.com","username":"nuevo","rol":"USER"}}`)
	})
	return mux
}

func TestLoginResolvesDurableIdentity(t *testing.T) {
	m, store := newTestManager(t, authBackend(t))

	sid, ident, err := m.Login(context.Background(), "ana@example.com", "secreto")
	require.NoError(t, err)
	require.NotEmpty(t, sid)
	require.Equal(t, "42", ident.ID)
	require.Equal(t, "ana@example.com", ident.Email)
	require.Equal(t, "ana", ident.Name)
	require.Equal(t, RoleAdmin, ident.Role)
	require.Equal(t, "ADMIN", ident.BackendRole)

	// el token quedó persistido bajo la sesión
	ctx := WithSID(context.Background(), sid)
	require.Equal(t, "tok-login", store.Token(ctx))

	got, ok := m.Resolve(sid)
	require.True(t, ok)
	require.Equal(t, ident, got)
}

func TestLoginFailureLeavesNoSession(t *testing.T) {
	m, _ := newTestManager(t, authBackend(t))

	_, _, err := m.Login(context.Background(), "ana@example.com", "mala")
	require.EqualError(t, err, "Usuario no validado. Verifica tu email y contraseña.")
}

func TestLoginLookupFailureFallsBackToEmail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /domains/usuarios/users", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"detail":"forbidden"}`)
	})
	m, _ := newTestManager(t, mux)

	sid, ident, err := m.Login(context.Background(), "ana@example.com", "secreto")
	require.NoError(t, err)
	require.NotEmpty(t, sid)
	require.Equal(t, "ana@example.com", ident.ID)
	require.Equal(t, "USER", ident.BackendRole)
}

func TestRegisterCreatesIdentity(t *testing.T) {
	m, store := newTestManager(t, authBackend(t))

	sid, ident, err := m.Register(context.Background(), "nuevo@example.com", "nuevo", "secreto")
	require.NoError(t, err)
	require.Equal(t, "7", ident.ID)
	require.Equal(t, "USER", ident.BackendRole)

	ctx := WithSID(context.Background(), sid)
	require.Equal(t, "tok-reg", store.Token(ctx))
}

func TestGuestNeverTouchesBackend(t *testing.T) {
	m, _ := newTestManager(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected backend call: %s %s", r.Method, r.URL.Path)
	}))

	sid, ident, err := m.Guest(context.Background())
	require.NoError(t, err)
	require.True(t, ident.IsGuest())
	require.True(t, strings.HasPrefix(ident.ID, "guest-"))

	got, ok := m.Resolve(sid)
	require.True(t, ok)
	require.Equal(t, RoleGuest, got.Role)
	require.False(t, got.IsAdmin())
}

func TestLogoutDropsSessionAndToken(t *testing.T) {
	m, store := newTestManager(t, authBackend(t))

	sid, _, err := m.Login(context.Background(), "ana@example.com", "secreto")
	require.NoError(t, err)

	require.NoError(t, m.Logout(context.Background(), sid))

	_, ok := m.Resolve(sid)
	require.False(t, ok)
	require.Empty(t, store.Token(WithSID(context.Background(), sid)))
}

func TestUnauthorizedResponseClearsSessionToken(t *testing.T) {
	var returnedList bool
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/token", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"access_token":"tok","token_type":"bearer"}`)
	})
	mux.HandleFunc("GET /domains/usuarios/users", func(w http.ResponseWriter, r *http.Request) {
		if !returnedList {
			returnedList = true
			fmt.Fprint(w, `[{"id":1,"email":"ana@example.com"}]`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"detail":"could not validate user"}`)
	})
	m, store := newTestManager(t, mux)

	sid, _, err := m.Login(context.Background(), "ana@example.com", "secreto")
	require.NoError(t, err)

	ctx := WithSID(context.Background(), sid)
	require.Equal(t, "tok", store.Token(ctx))

	// la siguiente petición recibe 401 y el token almacenado se descarta
	_, err = m.api.Users(ctx)
	require.Error(t, err)
	require.Empty(t, store.Token(ctx))

	// la fila de sesión sobrevive: solo cae el token
	_, ok := m.Resolve(sid)
	require.True(t, ok)
}
