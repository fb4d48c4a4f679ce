package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return translate(r.DB.WithContext(ctx).Create(s).Error)
}

func (r *GormRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// RotateSession is a compare-and-swap on the refresh hash, so a replayed
// refresh token loses the race.
func (r *GormRepo) RotateSession(ctx context.Context, id uuid.UUID, oldHash, newHash string, expiresAt int64) error {
	res := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND refresh_hash = ? AND revoked = ?", id, oldHash, false).
		Updates(map[string]any{"refresh_hash": newHash, "expires_at": expiresAt})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *GormRepo) RevokeSession(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}
