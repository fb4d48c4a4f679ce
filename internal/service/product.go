package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/inventory"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
	"github.com/Filipe-Ambrozio/stockwatch/internal/util"
)

const searchLimit = 50

// Indexer mirrors products into a search engine.
type Indexer interface {
	IndexProduct(ctx context.Context, p models.Product) error
	RemoveProducts(ctx context.Context, products []models.Product) error
	Search(ctx context.Context, query string, sections []string, size int) ([]models.Product, error)
}

type ProductService struct {
	Products store.ProductStore
	Events   events.Publisher
	Index    Indexer
	Clock    expiry.Clock
}

func normalizeProduct(req transport.RegisterProductRequest) transport.RegisterProductRequest {
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	req.ExpiryDate = strings.TrimSpace(req.ExpiryDate)
	req.Section = strings.TrimSpace(req.Section)
	req.Lot = inventory.Key{Lot: req.Lot}.Normalize().Lot
	return req
}

func (s *ProductService) Register(ctx context.Context, p Principal, req transport.RegisterProductRequest) (*transport.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "product.register", "by", p.Username)

	req = normalizeProduct(req)
	if err := validateStruct(req); err != nil {
		l.Warn("register_product_failed", "status", 400, "error", err)
		return nil, err
	}
	if !p.CanSee(req.Section) {
		l.Warn("register_product_failed", "status", 403, "reason", "section outside scope", "section", req.Section)
		return nil, fmt.Errorf("%w: cannot register into section %s", ErrForbidden, req.Section)
	}
	date, err := expiry.ParseDate(req.ExpiryDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	product := models.Product{
		ID:           uuid.New(),
		Code:         req.Code,
		Name:         req.Name,
		ExpiryDate:   expiry.FormatDate(date),
		Lot:          req.Lot,
		Quantity:     req.Quantity,
		RegisteredAt: time.Now().UTC(),
		Section:      req.Section,
	}
	if err := s.Products.CreateProduct(ctx, &product); err != nil {
		l.Error("register_product_failed", "status", 500, "reason", "cannot add product to store", "error", err)
		return nil, err
	}

	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, product); err != nil {
			l.Warn("index_product_failed", "product_id", product.ID, "error", err)
		}
	}
	publish(ctx, s.Events, product.ID.String(), events.ProductRegistered, p.Username, product)

	v, err := view(s.Clock, product)
	if err != nil {
		return nil, err
	}
	l.Info("register_product_success", "product_id", product.ID, "tier", v.Tier)
	return &v, nil
}

// scope resolves the section filter for a listing. An explicit section
// outside the principal's reach is refused rather than silently emptied.
func scope(p Principal, section string) ([]string, error) {
	section = strings.TrimSpace(section)
	if section == "" {
		return p.Scope(), nil
	}
	if !models.IsDepartment(section) {
		return nil, fmt.Errorf("%w: unknown section %q", ErrValidation, section)
	}
	if !p.CanSee(section) {
		return nil, fmt.Errorf("%w: section %s is outside your scope", ErrForbidden, section)
	}
	return []string{section}, nil
}

func (s *ProductService) List(ctx context.Context, p Principal, q transport.ListProductsQuery) (*transport.ProductPage, error) {
	sections, err := scope(p, q.Section)
	if err != nil {
		return nil, err
	}

	var tier expiry.Tier
	if q.Tier != "" {
		t, ok := expiry.ParseTier(q.Tier)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tier %q", ErrValidation, q.Tier)
		}
		tier = t
	}

	rows, err := s.Products.ListProducts(ctx, store.ProductFilter{Sections: sections, Query: q.Query})
	if err != nil {
		return nil, err
	}

	all := views(ctx, s.Clock, rows)
	if tier != "" {
		kept := all[:0]
		for _, v := range all {
			if v.Tier == tier {
				kept = append(kept, v)
			}
		}
		all = kept
	}

	page := q.Page
	if page < 1 {
		page = 1
	}
	offset, limit := util.Calculate(page, q.Size)
	start, end := util.Window(offset, limit, len(all))

	return &transport.ProductPage{
		Data: all[start:end],
		Meta: transport.PageMeta{
			Page:       page,
			Size:       limit,
			Total:      len(all),
			TotalPages: util.TotalPages(len(all), limit),
			HasPrev:    page > 1,
			HasNext:    end < len(all),
		},
	}, nil
}

// Get hides rows outside the principal's scope as not found.
func (s *ProductService) Get(ctx context.Context, p Principal, id uuid.UUID) (*transport.ProductView, error) {
	product, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanSee(product.Section) {
		return nil, ErrNotFound
	}
	v, err := view(s.Clock, *product)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *ProductService) Delete(ctx context.Context, p Principal, id uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "product.delete", "by", p.Username)

	product, err := s.Products.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if !p.CanSee(product.Section) {
		return ErrNotFound
	}
	if err := s.Products.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.unindex(ctx, []models.Product{*product})
	publish(ctx, s.Events, product.ID.String(), events.ProductDeleted, p.Username, product)
	l.Info("delete_product_success", "product_id", id)
	return nil
}

// DeleteMatching removes every row equal to the submitted tuple. Zero matches
// is ErrNotFound and leaves the table as it was.
func (s *ProductService) DeleteMatching(ctx context.Context, p Principal, req transport.DeleteMatchRequest) (int, error) {
	l := logging.FromContext(ctx).With("svc", "product.delete_matching", "by", p.Username)

	key := req.Key()
	if err := validateStruct(transport.DeleteMatchRequest(key)); err != nil {
		l.Warn("delete_matching_failed", "status", 400, "error", err)
		return 0, err
	}
	if d, err := expiry.ParseDate(key.ExpiryDate); err == nil {
		key.ExpiryDate = expiry.FormatDate(d)
	}
	if !p.CanSee(key.Section) {
		l.Warn("delete_matching_failed", "status", 403, "reason", "section outside scope", "section", key.Section)
		return 0, fmt.Errorf("%w: section %s is outside your scope", ErrForbidden, key.Section)
	}

	removed, err := s.Products.DeleteMatching(ctx, key)
	if err != nil {
		l.Error("delete_matching_failed", "status", 500, "error", err)
		return 0, err
	}
	if len(removed) == 0 {
		l.Warn("delete_matching_failed", "status", 404, "reason", "no row matches", "code", key.Code)
		return 0, fmt.Errorf("%w: no product matches every field", ErrNotFound)
	}

	s.unindex(ctx, removed)
	for _, r := range removed {
		publish(ctx, s.Events, r.ID.String(), events.ProductDeleted, p.Username, r)
	}
	l.Info("delete_matching_success", "removed", len(removed))
	return len(removed), nil
}

func (s *ProductService) unindex(ctx context.Context, rows []models.Product) {
	if s.Index == nil {
		return
	}
	if err := s.Index.RemoveProducts(ctx, rows); err != nil {
		logging.FromContext(ctx).Warn("unindex_product_failed", "count", len(rows), "error", err)
	}
}

// Search asks the index when one is wired and falls back to a substring scan
// of the store when it is absent or failing.
func (s *ProductService) Search(ctx context.Context, p Principal, query string) ([]transport.ProductView, error) {
	l := logging.FromContext(ctx).With("svc", "product.search")

	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrValidation)
	}

	if s.Index != nil {
		rows, err := s.Index.Search(ctx, query, p.Scope(), searchLimit)
		if err == nil {
			return views(ctx, s.Clock, rows), nil
		}
		l.Warn("search_index_failed", "reason", "falling back to store", "error", err)
	}

	rows, err := s.Products.ListProducts(ctx, store.ProductFilter{Sections: p.Scope(), Query: query})
	if err != nil {
		return nil, err
	}
	if len(rows) > searchLimit {
		rows = rows[:searchLimit]
	}
	return views(ctx, s.Clock, rows), nil
}
