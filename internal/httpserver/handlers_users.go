package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/audit"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
	"github.com/ArmandoYairZJ/FrontEnd/internal/store"
)

type userPageData struct {
	Identity   session.Identity
	CSRF       string
	Error      string
	SearchTerm string
	Loading    bool

	Users []apiclient.User

	CreateForm store.CreateUserForm

	EditTarget *apiclient.User
	EditForm   store.EditUserForm

	DeleteTarget      *apiclient.User
	DeleteDescription string

	LookupID string
	Result   *apiclient.User
}

func (s *Server) userData(c echo.Context, st *store.UserStore) userPageData {
	ident, _ := identityFrom(c)
	return userPageData{
		Identity:   ident,
		CSRF:       csrfToken(c),
		Error:      st.Err(),
		SearchTerm: st.SearchTerm(),
		Loading:    st.Loading(),
		Users:      st.Filtered(),
	}
}

func (s *Server) userList(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Users

	st.SetSearchTerm(c.QueryParam("q"))
	st.Load(ctx)

	return c.Render(http.StatusOK, "users_list", s.userData(c, st))
}

func (s *Server) userCreatePage(c echo.Context) error {
	st := s.stores(c).Users
	data := s.userData(c, st)
	data.CreateForm = st.CreateForm()
	return c.Render(http.StatusOK, "user_create", data)
}

func (s *Server) userCreate(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "user.create")
	st := s.stores(c).Users

	// La unicidad del email se contrasta contra la lista cacheada.
	if len(st.Users()) == 0 {
		st.Load(ctx)
	}

	st.SetCreateForm(store.CreateUserForm{
		Email:    c.FormValue("email"),
		Username: c.FormValue("username"),
		Password: c.FormValue("password"),
		Rol:      c.FormValue("rol"),
	})

	if err := st.Create(ctx); err != nil {
		l.Warn("user_create_failed", "error", err)
		data := s.userData(c, st)
		data.CreateForm = st.CreateForm()
		return c.Render(http.StatusOK, "user_create", data)
	}

	ident, _ := identityFrom(c)
	s.Audit.Publish(ctx, audit.Event{Type: "user_created", UserID: ident.ID, Resource: "user"})
	l.Info("user_create_success")

	return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios")
}

func (s *Server) userLookupPage(c echo.Context) error {
	st := s.stores(c).Users
	return c.Render(http.StatusOK, "user_lookup", s.userData(c, st))
}

func (s *Server) userLookup(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Users

	id := c.FormValue("id")
	result := st.SearchByID(ctx, id)

	data := s.userData(c, st)
	data.LookupID = id
	data.Result = result
	return c.Render(http.StatusOK, "user_lookup", data)
}

func (s *Server) userEditPage(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Users

	st.SetSearchTerm(c.QueryParam("q"))
	st.Load(ctx)

	if id := c.QueryParam("id"); id != "" {
		st.StartEdit(id)
	}

	data := s.userData(c, st)
	data.EditTarget = st.EditTarget()
	data.EditForm = st.EditForm()
	return c.Render(http.StatusOK, "user_edit", data)
}

func (s *Server) userEditSave(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "user.update")
	st := s.stores(c).Users

	id := c.FormValue("id")
	if st.EditTarget() == nil {
		st.Load(ctx)
		if !st.StartEdit(id) {
			return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios/actualizar")
		}
	}

	st.SetEditForm(store.EditUserForm{
		Username: c.FormValue("username"),
		Email:    c.FormValue("email"),
		Rol:      c.FormValue("rol"),
		Password: c.FormValue("password"),
	})

	if err := st.SaveEdit(ctx); err != nil {
		l.Warn("user_update_failed", "id", id, "error", err)
		data := s.userData(c, st)
		data.EditTarget = st.EditTarget()
		data.EditForm = st.EditForm()
		return c.Render(http.StatusOK, "user_edit", data)
	}

	ident, _ := identityFrom(c)
	s.Audit.Publish(ctx, audit.Event{
		Type:       "user_updated",
		UserID:     ident.ID,
		Resource:   "user",
		ResourceID: id,
	})
	l.Info("user_update_success", "id", id)

	return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios/actualizar")
}

func (s *Server) userEditCancel(c echo.Context) error {
	s.stores(c).Users.CancelEdit()
	return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios/actualizar")
}

func (s *Server) userDeletePage(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Users

	st.SetSearchTerm(c.QueryParam("q"))
	st.Load(ctx)

	if id := c.QueryParam("id"); id != "" {
		st.StartDelete(id)
	}

	data := s.userData(c, st)
	data.DeleteTarget = st.DeleteTarget()
	return c.Render(http.StatusOK, "user_delete", data)
}

func (s *Server) userDelete(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "user.delete")
	st := s.stores(c).Users

	id := c.FormValue("id")
	if st.DeleteTarget() == nil {
		st.Load(ctx)
		if !st.StartDelete(id) {
			return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios/eliminar")
		}
	}

	st.SetDeleteDescription(c.FormValue("descripcion"))

	if err := st.Delete(ctx); err != nil {
		l.Warn("user_delete_failed", "id", id, "error", err)
		data := s.userData(c, st)
		data.DeleteTarget = st.DeleteTarget()
		data.DeleteDescription = c.FormValue("descripcion")
		return c.Render(http.StatusOK, "user_delete", data)
	}

	ident, _ := identityFrom(c)
	s.Audit.Publish(ctx, audit.Event{
		Type:        "user_deleted",
		UserID:      ident.ID,
		Resource:    "user",
		ResourceID:  id,
		Description: c.FormValue("descripcion"),
	})
	l.Info("user_delete_success", "id", id)

	return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios/eliminar")
}

func (s *Server) userDeleteCancel(c echo.Context) error {
	s.stores(c).Users.CancelDelete()
	return c.Redirect(http.StatusSeeOther, "/dashboard/usuarios/eliminar")
}
