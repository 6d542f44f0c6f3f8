package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArmandoYairZJ/FrontEnd/internal/audit"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
)

type loginData struct {
	CSRF     string
	Error    string
	Email    string
	Username string
}

func (s *Server) loginPage(c echo.Context) error {
	if _, ok := identityFrom(c); ok {
		return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
	}
	return c.Render(http.StatusOK, "login", loginData{CSRF: csrfToken(c)})
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "auth.login")

	email := c.FormValue("email")
	password := c.FormValue("password")

	sid, ident, err := s.Sessions.Login(ctx, email, password)
	if err != nil {
		l.Warn("login_failed", "email", email, "error", err)
		return c.Render(http.StatusUnauthorized, "login", loginData{
			CSRF:  csrfToken(c),
			Error: err.Error(),
			Email: email,
		})
	}

	if err := s.setSessionCookie(c, sid); err != nil {
		l.Error("session_cookie_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "no se pudo crear la sesión")
	}

	s.Audit.Publish(ctx, audit.Event{Type: "user_logged_in", UserID: ident.ID})
	l.Info("login_success", "user_id", ident.ID, "backend_role", ident.BackendRole)

	return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
}

func (s *Server) handleRegister(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "auth.register")

	email := c.FormValue("email")
	username := c.FormValue("username")
	password := c.FormValue("password")

	sid, ident, err := s.Sessions.Register(ctx, email, username, password)
	if err != nil {
		l.Warn("register_failed", "email", email, "error", err)
		return c.Render(http.StatusBadRequest, "login", loginData{
			CSRF:     csrfToken(c),
			Error:    err.Error(),
			Email:    email,
			Username: username,
		})
	}

	if err := s.setSessionCookie(c, sid); err != nil {
		l.Error("session_cookie_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "no se pudo crear la sesión")
	}

	s.Audit.Publish(ctx, audit.Event{Type: "user_registered", UserID: ident.ID})
	l.Info("register_success", "user_id", ident.ID)

	return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
}

func (s *Server) handleGuest(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)

	sid, ident, err := s.Sessions.Guest(ctx)
	if err != nil {
		s.Log.Error("guest_session_failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "no se pudo crear la sesión")
	}

	if err := s.setSessionCookie(c, sid); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "no se pudo crear la sesión")
	}

	s.Audit.Publish(ctx, audit.Event{Type: "guest_session_started", UserID: ident.ID})
	s.Log.Info("guest_session_started", "guest_id", ident.ID)
	return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)

	sid := sidFrom(c)
	ident, _ := identityFrom(c)

	if err := s.Sessions.Logout(ctx, sid); err != nil {
		s.Log.Error("logout_failed", "error", err)
	}
	s.Registry.Drop(sid)
	s.clearSessionCookie(c)

	s.Audit.Publish(ctx, audit.Event{Type: "user_logged_out", UserID: ident.ID})

	return c.Redirect(http.StatusSeeOther, "/")
}
