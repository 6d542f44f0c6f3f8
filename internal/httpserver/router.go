package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	ecM "github.com/labstack/echo/v4/middleware"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/audit"
	"github.com/ArmandoYairZJ/FrontEnd/internal/middleware/csrf"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
	"github.com/ArmandoYairZJ/FrontEnd/internal/store"
	"github.com/ArmandoYairZJ/FrontEnd/web"
)

type Server struct {
	Sessions *session.Manager
	Registry *store.Registry
	API      *apiclient.Client
	Audit    *audit.Publisher

	Secret       []byte
	CookieSecure bool
	Log          *slog.Logger
}

func Register(e *echo.Echo, s *Server) error {
	renderer, err := NewRenderer()
	if err != nil {
		return err
	}
	e.Renderer = renderer

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.StaticFS("/static", echo.MustSubFS(web.Static, "static"))

	e.Use(ecM.Recover())
	e.Use(ecM.RequestID())
	e.Use(ecM.Secure())

	csrfCfg := csrf.DefaultConfig()
	csrfCfg.Secure = s.CookieSecure
	csrfCfg.SkipPaths = []string{"/health/live", "/health/ready"}
	e.Use(csrf.Middleware(csrfCfg))

	e.Use(s.loadSession)

	e.GET("/", s.loginPage)
	e.POST("/login", s.handleLogin)
	e.POST("/register", s.handleRegister)
	e.POST("/guest", s.handleGuest)
	e.POST("/logout", s.handleLogout, s.requireLogin)

	dash := e.Group("/dashboard", s.requireLogin)
	dash.GET("", func(c echo.Context) error {
		return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
	})

	// Lectura de productos: visible para todos, invitados incluidos.
	dash.GET("/consultar", s.productList)
	dash.GET("/consultar-por-id", s.productLookupPage)
	dash.POST("/consultar-por-id", s.productLookup)

	// Mutaciones de productos: cualquier cuenta autenticada, nunca invitados.
	write := dash.Group("", s.blockGuests)
	write.GET("/crear", s.productCreatePage)
	write.POST("/crear", s.productCreate)
	write.GET("/actualizar", s.productEditPage)
	write.POST("/actualizar", s.productEditSave)
	write.POST("/actualizar/cancelar", s.productEditCancel)
	write.GET("/eliminar", s.productDeletePage)
	write.POST("/eliminar", s.productDelete)
	write.POST("/eliminar/cancelar", s.productDeleteCancel)

	// Dominio de usuarios: solo rol ADMIN del backend.
	users := dash.Group("/usuarios", s.blockGuests, s.adminOnly)
	users.GET("", s.userList)
	users.GET("/crear", s.userCreatePage)
	users.POST("/crear", s.userCreate)
	users.GET("/consultar", s.userLookupPage)
	users.POST("/consultar", s.userLookup)
	users.GET("/actualizar", s.userEditPage)
	users.POST("/actualizar", s.userEditSave)
	users.POST("/actualizar/cancelar", s.userEditCancel)
	users.GET("/eliminar", s.userDeletePage)
	users.POST("/eliminar", s.userDelete)
	users.POST("/eliminar/cancelar", s.userDeleteCancel)

	return nil
}

func (s *Server) stores(c echo.Context) *store.Stores {
	ident, _ := identityFrom(c)
	return s.Registry.For(sidFrom(c), ident)
}

func csrfToken(c echo.Context) string {
	token, _ := c.Get(csrf.CtxToken).(string)
	return token
}
