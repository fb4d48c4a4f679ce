package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Filipe-Ambrozio/stockwatch/internal/inventory"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

func (r *GormRepo) ListProducts(ctx context.Context, f store.ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.Sections != nil {
		if len(f.Sections) == 0 {
			return []models.Product{}, nil
		}
		q = q.Where("section IN ?", f.Sections)
	}
	if s := strings.TrimSpace(f.Query); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(code) LIKE ? OR LOWER(name) LIKE ?)", like, like)
	}

	items := []models.Product{}
	if err := q.Order("expiry_date ASC").Order("registered_at ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, translate(err)
	}
	return &product, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return translate(r.DB.WithContext(ctx).Create(p).Error)
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteMatching narrows candidates by code in SQL and leaves the tuple
// comparison to inventory so both backends normalise lots the same way.
func (r *GormRepo) DeleteMatching(ctx context.Context, k inventory.Key) ([]models.Product, error) {
	k = k.Normalize()
	var removed []models.Product
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var candidates []models.Product
		if err := tx.Where("code = ?", k.Code).Find(&candidates).Error; err != nil {
			return err
		}

		matched := inventory.Filter(candidates, k)
		if len(matched) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, 0, len(matched))
		for _, p := range matched {
			ids = append(ids, p.ID)
		}

		if err := tx.Where("id IN ?", ids).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		removed = matched
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func (r *GormRepo) ReplaceProducts(ctx context.Context, rows []models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return translate(tx.CreateInBatches(&rows, 200).Error)
	})
}
