package store

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
)

const (
	msgAllFieldsRequired    = "Por favor completa todos los campos"
	msgPriceStockNumeric    = "El precio y stock deben ser números"
	msgUpdateReasonRequired = "La descripción es obligatoria. Por favor, describe el motivo de la actualización."
	msgDeleteReasonRequired = "La descripción es obligatoria. Por favor, describe el motivo de la eliminación."
)

// ProductAPI is the slice of the gateway the product store needs.
// Satisfied by *apiclient.Client; tests plug in counting fakes.
type ProductAPI interface {
	Products(ctx context.Context) ([]apiclient.Product, error)
	Product(ctx context.Context, id string) (*apiclient.Product, error)
	CreateProduct(ctx context.Context, product apiclient.NewProduct) (*apiclient.Product, error)
	UpdateProduct(ctx context.Context, id string, product apiclient.NewProduct, userID, description string) error
	DeleteProduct(ctx context.Context, id, userID, description string) error
	CurrentUser(ctx context.Context, email string) (*apiclient.User, error)
}

// ProductForm carries raw form input; precio and stock stay strings
// until validation.
type ProductForm struct {
	Nombre string
	Precio string
	Stock  string
	Marca  string
}

// ProductStore owns the authoritative in-memory product list for one
// session plus the transient create/edit/delete state. Every successful
// mutation triggers a full reload instead of a local patch so the list
// stays authoritative.
type ProductStore struct {
	mu    sync.Mutex
	api   ProductAPI
	ident session.Identity

	products   []apiclient.Product
	searchTerm string
	loading    bool
	err        string

	createForm ProductForm
	creating   bool

	editTarget        *apiclient.Product
	editForm          *apiclient.Product
	updateDescription string
	saving            bool

	deleteTarget      *apiclient.Product
	deleteDescription string
	deleting          bool
}

func NewProductStore(api ProductAPI, ident session.Identity) *ProductStore {
	return &ProductStore{api: api, ident: ident}
}

func (s *ProductStore) Load(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	products, err := s.api.Products(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}
	s.products = products
}

func (s *ProductStore) Products() []apiclient.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.Product(nil), s.products...)
}

// Filtered derives the visible list: with an empty term it equals the
// full list, otherwise the case-insensitive substring match over
// id/nombre/marca.
func (s *ProductStore) Filtered() []apiclient.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(s.searchTerm))
	if term == "" {
		return append([]apiclient.Product(nil), s.products...)
	}

	filtered := make([]apiclient.Product, 0, len(s.products))
	for _, p := range s.products {
		if strings.Contains(strings.ToLower(p.ID), term) ||
			strings.Contains(strings.ToLower(p.Nombre), term) ||
			strings.Contains(strings.ToLower(p.Marca), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (s *ProductStore) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

func (s *ProductStore) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

func (s *ProductStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *ProductStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *ProductStore) SetCreateForm(f ProductForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createForm = f
}

func (s *ProductStore) CreateForm() ProductForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createForm
}

// Create validates the form and posts it. Validation failures never
// reach the gateway.
func (s *ProductStore) Create(ctx context.Context) error {
	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return nil
	}
	f := s.createForm

	if f.Nombre == "" || f.Precio == "" || f.Stock == "" || f.Marca == "" {
		s.err = msgAllFieldsRequired
		s.mu.Unlock()
		return errors.New(msgAllFieldsRequired)
	}
	precio, perr := strconv.ParseFloat(strings.TrimSpace(f.Precio), 64)
	stock, serr := strconv.Atoi(strings.TrimSpace(f.Stock))
	if perr != nil || serr != nil {
		s.err = msgPriceStockNumeric
		s.mu.Unlock()
		return errors.New(msgPriceStockNumeric)
	}

	s.creating = true
	s.err = ""
	s.mu.Unlock()

	_, err := s.api.CreateProduct(ctx, apiclient.NewProduct{
		Nombre: f.Nombre,
		Precio: precio,
		Stock:  stock,
		Marca:  f.Marca,
	})

	s.mu.Lock()
	s.creating = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}
	s.createForm = ProductForm{}
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

func (s *ProductStore) CancelCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createForm = ProductForm{}
	s.err = ""
}

// StartEdit seeds the working copy from the cached list.
func (s *ProductStore) StartEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			target := p
			form := p
			s.editTarget = &target
			s.editForm = &form
			s.updateDescription = ""
			s.err = ""
			return true
		}
	}
	return false
}

func (s *ProductStore) EditTarget() *apiclient.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editTarget == nil {
		return nil
	}
	copy := *s.editTarget
	return &copy
}

func (s *ProductStore) EditForm() *apiclient.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editForm == nil {
		return nil
	}
	copy := *s.editForm
	return &copy
}

func (s *ProductStore) SetEditForm(p apiclient.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editTarget == nil {
		return
	}
	p.ID = s.editTarget.ID
	s.editForm = &p
}

func (s *ProductStore) SetUpdateDescription(d string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updateDescription = d
}

// SaveEdit requires a non-empty audit description before the gateway is
// touched.
func (s *ProductStore) SaveEdit(ctx context.Context) error {
	s.mu.Lock()
	if s.saving || s.editTarget == nil || s.editForm == nil {
		s.mu.Unlock()
		return nil
	}
	if strings.TrimSpace(s.updateDescription) == "" {
		s.err = msgUpdateReasonRequired
		s.mu.Unlock()
		return errors.New(msgUpdateReasonRequired)
	}

	target := *s.editTarget
	form := *s.editForm
	description := s.updateDescription
	s.saving = true
	s.err = ""
	s.mu.Unlock()

	userID := resolveActingUserID(ctx, s.ident, s.api.CurrentUser)

	err := s.api.UpdateProduct(ctx, target.ID, apiclient.NewProduct{
		Nombre: form.Nombre,
		Precio: form.Precio,
		Stock:  form.Stock,
		Marca:  form.Marca,
	}, userID, description)

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}
	s.editTarget = nil
	s.editForm = nil
	s.updateDescription = ""
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

func (s *ProductStore) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editTarget = nil
	s.editForm = nil
	s.updateDescription = ""
	s.err = ""
}

func (s *ProductStore) StartDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			target := p
			s.deleteTarget = &target
			s.deleteDescription = ""
			s.err = ""
			return true
		}
	}
	return false
}

func (s *ProductStore) DeleteTarget() *apiclient.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteTarget == nil {
		return nil
	}
	copy := *s.deleteTarget
	return &copy
}

func (s *ProductStore) SetDeleteDescription(d string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDescription = d
}

func (s *ProductStore) Delete(ctx context.Context) error {
	s.mu.Lock()
	if s.deleting || s.deleteTarget == nil {
		s.mu.Unlock()
		return nil
	}
	if strings.TrimSpace(s.deleteDescription) == "" {
		s.err = msgDeleteReasonRequired
		s.mu.Unlock()
		return errors.New(msgDeleteReasonRequired)
	}

	target := *s.deleteTarget
	description := s.deleteDescription
	s.deleting = true
	s.err = ""
	s.mu.Unlock()

	userID := resolveActingUserID(ctx, s.ident, s.api.CurrentUser)

	err := s.api.DeleteProduct(ctx, target.ID, userID, description)

	s.mu.Lock()
	s.deleting = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}
	s.deleteTarget = nil
	s.deleteDescription = ""
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

func (s *ProductStore) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteTarget = nil
	s.deleteDescription = ""
	s.err = ""
}

// SearchByID fetches a single product straight from the backend; it does
// not touch the cached list.
func (s *ProductStore) SearchByID(ctx context.Context, id string) *apiclient.Product {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	p, err := s.api.Product(ctx, strings.TrimSpace(id))
	if err != nil {
		s.mu.Lock()
		s.err = err.Error()
		s.mu.Unlock()
		return nil
	}
	return p
}
