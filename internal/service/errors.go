package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = store.ErrNotFound
	ErrConflict           = store.ErrConflict
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidSession     = errors.New("invalid session")
)

// Principal is the caller an operation runs for.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Section  string
}

func PrincipalFromSession(s *models.Session) Principal {
	return Principal{UserID: s.UserID, Username: s.Username, Section: s.Section}
}

// LocalAdmin is the principal the operator CLI runs as.
func LocalAdmin(username string) Principal {
	return Principal{Username: username, Section: models.SectionAdmin}
}

func (p Principal) IsAdmin() bool { return p.Section == models.SectionAdmin }

func (p Principal) SeesAll() bool { return models.SeesAllSections(p.Section) }

// Scope is the section list for store filters; nil means every section.
func (p Principal) Scope() []string {
	if p.SeesAll() {
		return nil
	}
	return []string{p.Section}
}

func (p Principal) CanSee(section string) bool {
	return p.SeesAll() || p.Section == section
}
