package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/audit"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
	"github.com/ArmandoYairZJ/FrontEnd/internal/store"
)

type productPageData struct {
	Identity   session.Identity
	CSRF       string
	Error      string
	SearchTerm string
	Loading    bool

	Products []apiclient.Product

	CreateForm store.ProductForm
	Creating   bool

	EditForm          *apiclient.Product
	UpdateDescription string
	Saving            bool

	DeleteTarget      *apiclient.Product
	DeleteDescription string
	Deleting          bool

	LookupID string
	Result   *apiclient.Product
}

func (s *Server) productData(c echo.Context, st *store.ProductStore) productPageData {
	ident, _ := identityFrom(c)
	return productPageData{
		Identity:   ident,
		CSRF:       csrfToken(c),
		Error:      st.Err(),
		SearchTerm: st.SearchTerm(),
		Loading:    st.Loading(),
		Products:   st.Filtered(),
	}
}

func (s *Server) productList(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Products

	st.SetSearchTerm(c.QueryParam("q"))
	st.Load(ctx)

	return c.Render(http.StatusOK, "products_list", s.productData(c, st))
}

func (s *Server) productLookupPage(c echo.Context) error {
	st := s.stores(c).Products
	return c.Render(http.StatusOK, "product_lookup", s.productData(c, st))
}

func (s *Server) productLookup(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Products

	id := c.FormValue("id")
	result := st.SearchByID(ctx, id)

	data := s.productData(c, st)
	data.LookupID = id
	data.Result = result
	return c.Render(http.StatusOK, "product_lookup", data)
}

func (s *Server) productCreatePage(c echo.Context) error {
	st := s.stores(c).Products
	data := s.productData(c, st)
	data.CreateForm = st.CreateForm()
	return c.Render(http.StatusOK, "product_create", data)
}

func (s *Server) productCreate(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "product.create")
	st := s.stores(c).Products

	st.SetCreateForm(store.ProductForm{
		Nombre: c.FormValue("nombre"),
		Precio: c.FormValue("precio"),
		Stock:  c.FormValue("stock"),
		Marca:  c.FormValue("marca"),
	})

	if err := st.Create(ctx); err != nil {
		l.Warn("product_create_failed", "error", err)
		data := s.productData(c, st)
		data.CreateForm = st.CreateForm()
		return c.Render(http.StatusOK, "product_create", data)
	}

	ident, _ := identityFrom(c)
	s.Audit.Publish(ctx, audit.Event{Type: "product_created", UserID: ident.ID, Resource: "product"})
	l.Info("product_create_success")

	return c.Redirect(http.StatusSeeOther, "/dashboard/consultar")
}

func (s *Server) productEditPage(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Products

	st.SetSearchTerm(c.QueryParam("q"))
	st.Load(ctx)

	if id := c.QueryParam("id"); id != "" {
		st.StartEdit(id)
	}

	data := s.productData(c, st)
	data.EditForm = st.EditForm()
	return c.Render(http.StatusOK, "product_edit", data)
}

func (s *Server) productEditSave(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "product.update")
	st := s.stores(c).Products

	id := c.FormValue("id")
	if st.EditTarget() == nil {
		st.Load(ctx)
		if !st.StartEdit(id) {
			return c.Redirect(http.StatusSeeOther, "/dashboard/actualizar")
		}
	}

	precio, perr := strconv.ParseFloat(strings.TrimSpace(c.FormValue("precio")), 64)
	stock, serr := strconv.Atoi(strings.TrimSpace(c.FormValue("stock")))
	if perr != nil || serr != nil {
		data := s.productData(c, st)
		data.EditForm = st.EditForm()
		data.Error = "El precio y stock deben ser números"
		data.UpdateDescription = c.FormValue("descripcion")
		return c.Render(http.StatusOK, "product_edit", data)
	}

	st.SetEditForm(apiclient.Product{
		Nombre: c.FormValue("nombre"),
		Precio: precio,
		Stock:  stock,
		Marca:  c.FormValue("marca"),
	})
	st.SetUpdateDescription(c.FormValue("descripcion"))

	if err := st.SaveEdit(ctx); err != nil {
		l.Warn("product_update_failed", "id", id, "error", err)
		data := s.productData(c, st)
		data.EditForm = st.EditForm()
		data.UpdateDescription = c.FormValue("descripcion")
		return c.Render(http.StatusOK, "product_edit", data)
	}

	ident, _ := identityFrom(c)
	s.Audit.Publish(ctx, audit.Event{
		Type:        "product_updated",
		UserID:      ident.ID,
		Resource:    "product",
		ResourceID:  id,
		Description: c.FormValue("descripcion"),
	})
	l.Info("product_update_success", "id", id)

	return c.Redirect(http.StatusSeeOther, "/dashboard/actualizar")
}

func (s *Server) productEditCancel(c echo.Context) error {
	s.stores(c).Products.CancelEdit()
	return c.Redirect(http.StatusSeeOther, "/dashboard/actualizar")
}

func (s *Server) productDeletePage(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	st := s.stores(c).Products

	st.SetSearchTerm(c.QueryParam("q"))
	st.Load(ctx)

	if id := c.QueryParam("id"); id != "" {
		st.StartDelete(id)
	}

	data := s.productData(c, st)
	data.DeleteTarget = st.DeleteTarget()
	return c.Render(http.StatusOK, "product_delete", data)
}

func (s *Server) productDelete(c echo.Context) error {
	ctx := logging.IntoContext(c.Request().Context(), s.Log)
	l := s.Log.With("handler", "product.delete")
	st := s.stores(c).Products

	id := c.FormValue("id")
	if st.DeleteTarget() == nil {
		st.Load(ctx)
		if !st.StartDelete(id) {
			return c.Redirect(http.StatusSeeOther, "/dashboard/eliminar")
		}
	}

	st.SetDeleteDescription(c.FormValue("descripcion"))

	if err := st.Delete(ctx); err != nil {
		l.Warn("product_delete_failed", "id", id, "error", err)
		data := s.productData(c, st)
		data.DeleteTarget = st.DeleteTarget()
		data.DeleteDescription = c.FormValue("descripcion")
		return c.Render(http.StatusOK, "product_delete", data)
	}

	ident, _ := identityFrom(c)
	s.Audit.Publish(ctx, audit.Event{
		Type:        "product_deleted",
		UserID:      ident.ID,
		Resource:    "product",
		ResourceID:  id,
		Description: c.FormValue("descripcion"),
	})
	l.Info("product_delete_success", "id", id)

	return c.Redirect(http.StatusSeeOther, "/dashboard/eliminar")
}

func (s *Server) productDeleteCancel(c echo.Context) error {
	s.stores(c).Products.CancelDelete()
	return c.Redirect(http.StatusSeeOther, "/dashboard/eliminar")
}
