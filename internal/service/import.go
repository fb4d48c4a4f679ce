package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

// Import replaces the product table with rows. Rows that would fail
// registration are skipped and counted; ids and registration times that
// survive are kept. A missing or repeated id gets a fresh one.
func (s *ProductService) Import(ctx context.Context, p Principal, rows []models.Product) (*transport.ImportResult, error) {
	l := logging.FromContext(ctx).With("svc", "product.import", "by", p.Username)

	if !p.IsAdmin() {
		l.Warn("import_failed", "status", 403, "reason", "admin only")
		return nil, fmt.Errorf("%w: only Admin may import", ErrForbidden)
	}

	res := &transport.ImportResult{}
	kept := make([]models.Product, 0, len(rows))
	seen := make(map[uuid.UUID]struct{}, len(rows))
	for _, row := range rows {
		req := normalizeProduct(transport.RegisterProductRequest{
			Code:       row.Code,
			Name:       row.Name,
			ExpiryDate: row.ExpiryDate,
			Lot:        row.Lot,
			Quantity:   row.Quantity,
			Section:    row.Section,
		})
		if err := validateStruct(req); err != nil {
			l.Warn("import_row_skipped", "code", row.Code, "error", err)
			res.Skipped++
			continue
		}
		date, err := expiry.ParseDate(req.ExpiryDate)
		if err != nil {
			res.Skipped++
			continue
		}

		out := models.Product{
			ID:           row.ID,
			Code:         req.Code,
			Name:         req.Name,
			ExpiryDate:   expiry.FormatDate(date),
			Lot:          req.Lot,
			Quantity:     req.Quantity,
			RegisteredAt: row.RegisteredAt,
			Section:      req.Section,
		}
		if _, dup := seen[out.ID]; dup || out.ID == uuid.Nil {
			out.ID = uuid.New()
		}
		seen[out.ID] = struct{}{}
		if out.RegisteredAt.IsZero() {
			out.RegisteredAt = time.Now().UTC()
		}
		kept = append(kept, out)
	}

	before, err := s.Products.ListProducts(ctx, store.ProductFilter{})
	if err != nil {
		return nil, err
	}
	if err := s.Products.ReplaceProducts(ctx, kept); err != nil {
		l.Error("import_failed", "status", 500, "error", err)
		return nil, err
	}
	res.Imported = len(kept)

	s.unindex(ctx, before)
	if s.Index != nil {
		for _, row := range kept {
			if err := s.Index.IndexProduct(ctx, row); err != nil {
				l.Warn("index_product_failed", "product_id", row.ID, "error", err)
			}
		}
	}

	l.Info("import_success", "imported", res.Imported, "skipped", res.Skipped)
	return res, nil
}
