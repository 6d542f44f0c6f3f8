package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
	"github.com/ArmandoYairZJ/FrontEnd/internal/tokens"
)

const (
	sessionCookie = "dashboard_session"
	sessionTTL    = 7 * 24 * time.Hour

	ctxSID      = "sid"
	ctxIdentity = "identity"
)

// loadSession resolves the signed session cookie into an identity. A
// missing or invalid cookie is not an error here; the route guards
// decide what an anonymous visitor may see.
func (s *Server) loadSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		cookie, err := c.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			return next(c)
		}

		sid, err := tokens.SessionIDFromToken(cookie.Value, s.Secret)
		if err != nil || sid == "" {
			return next(c)
		}

		ident, ok := s.Sessions.Resolve(sid)
		if !ok {
			return next(c)
		}

		c.Set(ctxSID, sid)
		c.Set(ctxIdentity, ident)

		req := c.Request()
		c.SetRequest(req.WithContext(session.WithSID(req.Context(), sid)))

		return next(c)
	}
}

func (s *Server) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := identityFrom(c); !ok {
			return c.Redirect(http.StatusSeeOther, "/")
		}
		return next(c)
	}
}

// blockGuests keeps guest sessions on the read-only product screens.
func (s *Server) blockGuests(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := identityFrom(c)
		if !ok || ident.IsGuest() {
			return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
		}
		return next(c)
	}
}

// adminOnly gates the user domain on the backend's ADMIN role.
func (s *Server) adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ident, ok := identityFrom(c)
		if !ok || !ident.IsAdmin() {
			return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
		}
		return next(c)
	}
}

func identityFrom(c echo.Context) (session.Identity, bool) {
	ident, ok := c.Get(ctxIdentity).(session.Identity)
	return ident, ok
}

func sidFrom(c echo.Context) string {
	sid, _ := c.Get(ctxSID).(string)
	return sid
}

func (s *Server) setSessionCookie(c echo.Context, sid string) error {
	exp := time.Now().Add(sessionTTL)
	signed, err := tokens.NewSessionToken(sid, s.Secret, exp)
	if err != nil {
		return err
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  exp,
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HttpOnly: true,
		Secure:   s.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
