// Package store declares the persistence contracts shared by the SQL and CSV
// backends.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/inventory"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ProductFilter narrows a product listing. A nil Sections slice means every
// section; an empty non-nil slice matches nothing.
type ProductFilter struct {
	Sections []string
	Query    string
}

type ProductStore interface {
	ListProducts(ctx context.Context, f ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	// DeleteMatching removes every row equal to k and returns the removed rows.
	DeleteMatching(ctx context.Context, k inventory.Key) ([]models.Product, error)
	// ReplaceProducts overwrites the whole table with rows.
	ReplaceProducts(ctx context.Context, rows []models.Product) error
}

type UserStore interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	// CreateUser fails with ErrConflict when the username is taken.
	CreateUser(ctx context.Context, u *models.User) error
}

type StatusStore interface {
	// GetStatus returns ErrNotFound while no banner has been stored.
	GetStatus(ctx context.Context) (*models.Status, error)
	// SetStatus replaces the banner and appends it to the history in one step.
	SetStatus(ctx context.Context, s models.Status) (*models.StatusEntry, error)
	// StatusHistory lists entries newest first.
	StatusHistory(ctx context.Context, limit int) ([]models.StatusEntry, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error)
	// RotateSession swaps the refresh hash. It fails with ErrNotFound when the
	// session is revoked or oldHash is not the current one.
	RotateSession(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt int64) error
	RevokeSession(ctx context.Context, id uuid.UUID) error
}

type Store interface {
	ProductStore
	UserStore
	StatusStore
	SessionStore
}

// Matches reports whether p passes the section and free-text parts of f.
func (f ProductFilter) Matches(p models.Product) bool {
	if f.Sections != nil && !contains(f.Sections, p.Section) {
		return false
	}
	return f.Query == "" || containsFold(p.Code, f.Query) || containsFold(p.Name, f.Query)
}
