package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

func (r *GormRepo) GetStatus(ctx context.Context) (*models.Status, error) {
	var s models.Status
	if err := r.DB.WithContext(ctx).Where("id = ?", models.StatusRowID).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *GormRepo) SetStatus(ctx context.Context, s models.Status) (*models.StatusEntry, error) {
	now := time.Now().UTC()
	s.ID = models.StatusRowID
	s.UpdatedAt = now
	entry := models.StatusEntry{
		Color:     s.Color,
		Message:   s.Message,
		CreatedAt: now,
		CreatedBy: s.UpdatedBy,
	}

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"color", "message", "updated_at", "updated_by"}),
		}).Create(&s).Error; err != nil {
			return err
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *GormRepo) StatusHistory(ctx context.Context, limit int) ([]models.StatusEntry, error) {
	entries := []models.StatusEntry{}
	if err := r.DB.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
