package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

// Session is one browser's persisted state: the identity fields plus the
// backend bearer token. The sqlite file plays the part the browser's
// localStorage played for the token and serialized identity.
type Session struct {
	ID          string `gorm:"primaryKey"`
	UserID      string
	Email       string
	Name        string
	Role        string
	BackendRole string
	Token       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Store struct {
	db *gorm.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la base de sesiones: %w", err)
	}
	if err := db.AutoMigrate(&Session{}); err != nil {
		return nil, fmt.Errorf("no se pudo migrar la base de sesiones: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Create(sess *Session) error {
	return s.db.Create(sess).Error
}

func (s *Store) Get(id string) (*Session, error) {
	var sess Session
	if err := s.db.Where("id = ?", id).First(&sess).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sess, nil
}

func (s *Store) Delete(id string) error {
	return s.db.Where("id = ?", id).Delete(&Session{}).Error
}

func (s *Store) SaveIdentity(id string, ident Identity) error {
	return s.db.Model(&Session{}).Where("id = ?", id).Updates(map[string]any{
		"user_id":      ident.ID,
		"email":        ident.Email,
		"name":         ident.Name,
		"role":         ident.Role,
		"backend_role": ident.BackendRole,
	}).Error
}

// Token, SaveToken and ClearToken implement apiclient.TokenStore. The
// session id travels in the request context; without one there is no
// token to speak of.
func (s *Store) Token(ctx context.Context) string {
	sid := SIDFromContext(ctx)
	if sid == "" {
		return ""
	}
	sess, err := s.Get(sid)
	if err != nil || sess == nil {
		return ""
	}
	return sess.Token
}

func (s *Store) SaveToken(ctx context.Context, token string) {
	sid := SIDFromContext(ctx)
	if sid == "" {
		return
	}
	s.db.Model(&Session{}).Where("id = ?", sid).Update("token", token)
}

// ClearToken drops the bearer token but keeps the session row: a 401
// invalidates the token, not the browser session. The layout's session
// check decides about redirecting.
func (s *Store) ClearToken(ctx context.Context) {
	sid := SIDFromContext(ctx)
	if sid == "" {
		return
	}
	s.db.Model(&Session{}).Where("id = ?", sid).Update("token", "")
}
