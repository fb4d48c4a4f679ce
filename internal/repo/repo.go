package repo

import (
	"errors"

	"gorm.io/gorm"

	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

type GormRepo struct {
	DB *gorm.DB
}

var _ store.Store = (*GormRepo)(nil)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return store.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return store.ErrConflict
	default:
		return err
	}
}
