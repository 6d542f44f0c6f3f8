package store

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/ArmandoYairZJ/FrontEnd/internal/apiclient"
	"github.com/ArmandoYairZJ/FrontEnd/internal/logging"
	"github.com/ArmandoYairZJ/FrontEnd/internal/session"
)

const (
	msgEmailInvalid    = "Por favor ingresa un email válido"
	msgEmailInUse      = "Este correo electrónico ya está en uso"
	msgEmailInUseOther = "Este correo electrónico ya está en uso por otro usuario"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserAPI is the slice of the gateway the user store needs.
type UserAPI interface {
	Users(ctx context.Context) ([]apiclient.User, error)
	User(ctx context.Context, id string) (*apiclient.User, error)
	CreateUser(ctx context.Context, user apiclient.NewUser) (*apiclient.User, error)
	UpdateUser(ctx context.Context, id string, update apiclient.UserUpdate) error
	DeleteUser(ctx context.Context, id, userID, description string) error
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	CurrentUser(ctx context.Context, email string) (*apiclient.User, error)
}

type CreateUserForm struct {
	Email    string
	Username string
	Password string
	Rol      string
}

// EditUserForm holds the working copy for an edit; an empty password
// means "do not change".
type EditUserForm struct {
	Username string
	Email    string
	Rol      string
	Password string
}

// UserStore mirrors ProductStore for the user domain: cached list,
// derived filter over username/email, create/edit/delete sub-flows.
type UserStore struct {
	mu    sync.Mutex
	api   UserAPI
	ident session.Identity

	users      []apiclient.User
	searchTerm string
	loading    bool
	err        string

	createForm CreateUserForm
	creating   bool

	editTarget *apiclient.User
	editForm   EditUserForm
	saving     bool

	deleteTarget      *apiclient.User
	deleteDescription string
	deleting          bool
}

func NewUserStore(api UserAPI, ident session.Identity) *UserStore {
	return &UserStore{api: api, ident: ident}
}

func (s *UserStore) Load(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	users, err := s.api.Users(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}
	s.users = users
}

func (s *UserStore) Users() []apiclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]apiclient.User(nil), s.users...)
}

func (s *UserStore) Filtered() []apiclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	term := strings.ToLower(strings.TrimSpace(s.searchTerm))
	if term == "" {
		return append([]apiclient.User(nil), s.users...)
	}

	filtered := make([]apiclient.User, 0, len(s.users))
	for _, u := range s.users {
		if strings.Contains(strings.ToLower(u.Username), term) ||
			strings.Contains(strings.ToLower(u.Email), term) {
			filtered = append(filtered, u)
		}
	}
	return filtered
}

func (s *UserStore) SetSearchTerm(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchTerm = term
}

func (s *UserStore) SearchTerm() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchTerm
}

func (s *UserStore) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *UserStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *UserStore) SetCreateForm(f CreateUserForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createForm = f
}

func (s *UserStore) CreateForm() CreateUserForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createForm
}

// emailInUseLocked scans the cached list; excludeID skips the user being
// edited. Caller holds the mutex.
func (s *UserStore) emailInUseLocked(email, excludeID string) bool {
	for _, u := range s.users {
		if u.ID != excludeID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Create validates the form, pre-checks email uniqueness against the
// backend (falling back to the cached list when the check itself fails)
// and registers the account.
func (s *UserStore) Create(ctx context.Context) error {
	s.mu.Lock()
	if s.creating {
		s.mu.Unlock()
		return nil
	}
	f := s.createForm

	if f.Email == "" || f.Username == "" || f.Password == "" || f.Rol == "" {
		s.err = msgAllFieldsRequired
		s.mu.Unlock()
		return errors.New(msgAllFieldsRequired)
	}
	if !emailRegex.MatchString(f.Email) {
		s.err = msgEmailInvalid
		s.mu.Unlock()
		return errors.New(msgEmailInvalid)
	}
	localDup := s.emailInUseLocked(f.Email, "")
	s.mu.Unlock()

	exists, err := s.api.CheckEmailExists(ctx, f.Email)
	if err != nil {
		logging.FromContext(ctx).Warn("email_check_failed", "email", f.Email, "error", err)
		exists = localDup
	}
	if exists {
		s.mu.Lock()
		s.err = msgEmailInUse
		s.mu.Unlock()
		return errors.New(msgEmailInUse)
	}

	s.mu.Lock()
	s.creating = true
	s.err = ""
	s.mu.Unlock()

	_, err = s.api.CreateUser(ctx, apiclient.NewUser{
		Email:    f.Email,
		Username: f.Username,
		Password: f.Password,
		Rol:      f.Rol,
	})

	s.mu.Lock()
	s.creating = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}
	s.createForm = CreateUserForm{}
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

func (s *UserStore) CancelCreate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createForm = CreateUserForm{}
	s.err = ""
}

func (s *UserStore) StartEdit(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			target := u
			s.editTarget = &target
			s.editForm = EditUserForm{
				Username: u.Username,
				Email:    u.Email,
				Rol:      u.Rol,
			}
			s.err = ""
			return true
		}
	}
	return false
}

func (s *UserStore) EditTarget() *apiclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editTarget == nil {
		return nil
	}
	copy := *s.editTarget
	return &copy
}

func (s *UserStore) EditForm() EditUserForm {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editForm
}

func (s *UserStore) SetEditForm(f EditUserForm) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editTarget == nil {
		return
	}
	s.editForm = f
}

// SaveEdit re-validates the email and its uniqueness against the cached
// list, excluding the user being edited.
func (s *UserStore) SaveEdit(ctx context.Context) error {
	s.mu.Lock()
	if s.saving || s.editTarget == nil {
		s.mu.Unlock()
		return nil
	}
	target := *s.editTarget
	form := s.editForm

	if form.Email != "" && !emailRegex.MatchString(form.Email) {
		s.err = msgEmailInvalid
		s.mu.Unlock()
		return errors.New(msgEmailInvalid)
	}
	if !strings.EqualFold(form.Email, target.Email) && s.emailInUseLocked(form.Email, target.ID) {
		s.err = msgEmailInUseOther
		s.mu.Unlock()
		return errors.New(msgEmailInUseOther)
	}

	s.saving = true
	s.err = ""
	s.mu.Unlock()

	rol := form.Rol
	if rol == "" {
		rol = target.Rol
	}

	err := s.api.UpdateUser(ctx, target.ID, apiclient.UserUpdate{
		Username: form.Username,
		Email:    form.Email,
		Rol:      rol,
		Password: form.Password,
	})

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.err = err.Error()
		s.mu.Unlock()
		return err
	}
	s.editTarget = nil
	s.editForm = EditUserForm{}
	s.mu.Unlock()

	s.Load(ctx)
	return nil
}

func (s *UserStore) CancelEdit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editTarget = nil
	s.editForm = EditUserForm{}
	s.err = ""
}

func (s *UserStore) StartDelete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			target := u
			s.deleteTarget = &target
			s.deleteDescription = ""
			s.err = ""
			return true
		}
	}
	return false
}

func (s *UserStore) DeleteTarget() *apiclient.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.deleteTarget == nil {
		return nil
	}
	copy := *s.deleteTarget
	return &copy
}

func (s *UserStore) SetDeleteDescription(d string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteDescription = d
}

// Delete requires an audit reason, same as products do.
func (s *UserStore) Delete(ctx context.Context) error {
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

	err := s.api.DeleteUser(ctx, target.ID, userID, description)

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

func (s *UserStore) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteTarget = nil
	s.deleteDescription = ""
	s.err = ""
}

// SearchByID fetches one user straight from the backend.
func (s *UserStore) SearchByID(ctx context.Context, id string) *apiclient.User {
	s.mu.Lock()
	s.err = ""
	s.mu.Unlock()

	u, err := s.api.User(ctx, strings.TrimSpace(id))
	if err != nil {
		s.mu.Lock()
		s.err = err.Error()
		s.mu.Unlock()
		return nil
	}
	return u
}
