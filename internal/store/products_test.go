package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
)

type fakeProductAPI struct {
	products []apiclient.Product
	listErr  error

	createCalls int
	updateCalls int
	deleteCalls int

	lastUserID      string
	lastDescription string
	lastUpdate      apiclient.NewProduct

	currentUser *apiclient.User
}

func (f *fakeProductAPI) Products(context.Context) ([]apiclient.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeProductAPI) Product(_ context.Context, id string) (*apiclient.Product, error) {
	for _, p := range f.products {
		if p.ID == id {
			found := p
			return &found, nil
		}
	}
	return nil, &apiclient.Error{Status: 404, Message: "no encontrado"}
}

func (f *fakeProductAPI) CreateProduct(_ context.Context, p apiclient.NewProduct) (*apiclient.Product, error) {
	f.createCalls++
	created := apiclient.Product{ID: "new", Nombre: p.Nombre, Precio: p.Precio, Stock: p.Stock, Marca: p.Marca}
	f.products = append(f.products, created)
	return &created, nil
}

func (f *fakeProductAPI) UpdateProduct(_ context.Context, id string, p apiclient.NewProduct, userID, description string) error {
	f.updateCalls++
	f.lastUpdate = p
	f.lastUserID = userID
	f.lastDescription = description
	return nil
}

func (f *fakeProductAPI) DeleteProduct(_ context.Context, id, userID, description string) error {
	f.deleteCalls++
	f.lastUserID = userID
	f.lastDescription = description
	return nil
}

func (f *fakeProductAPI) CurrentUser(context.Context, string) (*apiclient.User, error) {
	if f.currentUser == nil {
		return nil, errors.New("sin backend")
	}
	return f.currentUser, nil
}

func sampleProducts() []apiclient.Product {
	return []apiclient.Product{
		{ID: "p1", Nombre: "Teclado mecánico", Marca: "Logi", Precio: 49.9, Stock: 10},
		{ID: "p2", Nombre: "Mouse", Marca: "Razer", Precio: 25, Stock: 4},
		{ID: "p3", Nombre: "Monitor", Marca: "LG", Precio: 199, Stock: 2},
	}
}

func TestProductFilter(t *testing.T) {
	api := &fakeProductAPI{products: sampleProducts()}
	st := NewProductStore(api, session.Identity{ID: "42"})
	st.Load(context.Background())

	// sin término, la lista filtrada es la lista completa
	require.Equal(t, st.Products(), st.Filtered())

	cases := []struct {
		term string
		want []string
	}{
		{"teclado", []string{"p1"}},
		{"RAZER", []string{"p2"}},
		{"p3", []string{"p3"}},
		{"  mouse  ", []string{"p2"}},
		{"noexiste", []string{}},
	}
	for _, tc := range cases {
		st.SetSearchTerm(tc.term)
		got := st.Filtered()
		ids := make([]string, 0, len(got))
		for _, p := range got {
			ids = append(ids, p.ID)
		}
		require.Equal(t, tc.want, ids, "term %q", tc.term)
	}
}

func TestProductCreateValidation(t *testing.T) {
	api := &fakeProductAPI{}
	st := NewProductStore(api, session.Identity{ID: "42"})

	st.SetCreateForm(ProductForm{Nombre: "Teclado", Precio: "49.9", Stock: ""})
	err := st.Create(context.Background())
	require.EqualError(t, err, "Por favor completa todos los campos")
	require.Equal(t, "Por favor completa todos los campos", st.Err())

	st.SetCreateForm(ProductForm{Nombre: "Teclado", Precio: "caro", Stock: "5", Marca: "Logi"})
	err = st.Create(context.Background())
	require.EqualError(t, err, "El precio y stock deben ser números")

	// ninguna validación fallida llega al gateway
	require.Zero(t, api.createCalls)
}

func TestProductCreateSuccess(t *testing.T) {
	api := &fakeProductAPI{}
	st := NewProductStore(api, session.Identity{ID: "42"})

	st.SetCreateForm(ProductForm{Nombre: "Teclado", Precio: "49.9", Stock: "10", Marca: "Logi"})
	require.NoError(t, st.Create(context.Background()))

	require.Equal(t, 1, api.createCalls)
	require.Equal(t, ProductForm{}, st.CreateForm())
	require.Len(t, st.Products(), 1)
	require.Empty(t, st.Err())
}

func TestProductSaveEditRequiresReason(t *testing.T) {
	api := &fakeProductAPI{products: sampleProducts()}
	st := NewProductStore(api, session.Identity{ID: "42"})
	st.Load(context.Background())
	require.True(t, st.StartEdit("p1"))

	st.SetUpdateDescription("   ")
	err := st.SaveEdit(context.Background())
	require.EqualError(t, err, "La descripción es obligatoria. Por favor, describe el motivo de la actualización.")
	require.Zero(t, api.updateCalls)

	st.SetEditForm(apiclient.Product{Nombre: "Teclado nuevo", Precio: 59.9, Stock: 8, Marca: "Logi"})
	st.SetUpdateDescription("ajuste de precio")
	require.NoError(t, st.SaveEdit(context.Background()))

	require.Equal(t, 1, api.updateCalls)
	require.Equal(t, "42", api.lastUserID)
	require.Equal(t, "ajuste de precio", api.lastDescription)
	require.Equal(t, apiclient.NewProduct{Nombre: "Teclado nuevo", Precio: 59.9, Stock: 8, Marca: "Logi"}, api.lastUpdate)
	require.Nil(t, st.EditTarget())
	require.Nil(t, st.EditForm())
}

func TestProductSetEditFormKeepsTargetID(t *testing.T) {
	api := &fakeProductAPI{products: sampleProducts()}
	st := NewProductStore(api, session.Identity{ID: "42"})
	st.Load(context.Background())
	require.True(t, st.StartEdit("p2"))

	st.SetEditForm(apiclient.Product{ID: "otro", Nombre: "Mouse inalámbrico"})
	require.Equal(t, "p2", st.EditForm().ID)
}

func TestProductDeleteRequiresReason(t *testing.T) {
	api := &fakeProductAPI{products: sampleProducts()}
	st := NewProductStore(api, session.Identity{ID: "42"})
	st.Load(context.Background())
	require.True(t, st.StartDelete("p1"))

	err := st.Delete(context.Background())
	require.EqualError(t, err, "La descripción es obligatoria. Por favor, describe el motivo de la eliminación.")
	require.Zero(t, api.deleteCalls)

	st.SetDeleteDescription("producto descontinuado")
	require.NoError(t, st.Delete(context.Background()))
	require.Equal(t, 1, api.deleteCalls)
	require.Equal(t, "producto descontinuado", api.lastDescription)
	require.Nil(t, st.DeleteTarget())
}

func TestProductActingUserResolvedFromEmail(t *testing.T) {
	api := &fakeProductAPI{
		products:    sampleProducts(),
		currentUser: &apiclient.User{ID: "99", Email: "ana@example.com"},
	}
	// sesiones antiguas guardaban el email como id
	st := NewProductStore(api, session.Identity{ID: "ana@example.com", Email: "ana@example.com"})
	st.Load(context.Background())
	require.True(t, st.StartDelete("p1"))
	st.SetDeleteDescription("duplicado")

	require.NoError(t, st.Delete(context.Background()))
	require.Equal(t, "99", api.lastUserID)
}

func TestProductActingUserLookupFailureTolerated(t *testing.T) {
	api := &fakeProductAPI{products: sampleProducts()}
	st := NewProductStore(api, session.Identity{ID: "ana@example.com", Email: "ana@example.com"})
	st.Load(context.Background())
	require.True(t, st.StartDelete("p1"))
	st.SetDeleteDescription("duplicado")

	require.NoError(t, st.Delete(context.Background()))
	require.Equal(t, "ana@example.com", api.lastUserID)
}

func TestProductLoadErrorKeepsMessage(t *testing.T) {
	api := &fakeProductAPI{listErr: &apiclient.Error{Status: 500, Message: "backend caído"}}
	st := NewProductStore(api, session.Identity{})

	st.Load(context.Background())
	require.Equal(t, "backend caído", st.Err())
	require.False(t, st.Loading())
	require.Empty(t, st.Products())
}

func TestProductSearchByID(t *testing.T) {
	api := &fakeProductAPI{products: sampleProducts()}
	st := NewProductStore(api, session.Identity{})

	p := st.SearchByID(context.Background(), "  p2  ")
	require.NotNil(t, p)
	require.Equal(t, "p2", p.ID)

	require.Nil(t, st.SearchByID(context.Background(), "nope"))
	require.Equal(t, "no encontrado", st.Err())
}
