package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

type ReportService struct {
	Products store.ProductStore
	Clock    expiry.Clock
}

func (s *ReportService) visible(ctx context.Context, p Principal) ([]transport.ProductView, error) {
	rows, err := s.Products.ListProducts(ctx, store.ProductFilter{Sections: p.Scope()})
	if err != nil {
		return nil, err
	}
	return views(ctx, s.Clock, rows), nil
}

// Summary counts rows and units per section and per tier. Every section in
// scope and every tier is listed, zero or not.
func (s *ReportService) Summary(ctx context.Context, p Principal) (*transport.Summary, error) {
	rows, err := s.visible(ctx, p)
	if err != nil {
		return nil, err
	}

	sections := models.Departments
	if !p.SeesAll() {
		sections = []string{p.Section}
	}
	bySection := make(map[string]*transport.Bucket, len(sections))
	out := &transport.Summary{
		GeneratedAt: time.Now().UTC(),
		Today:       expiry.FormatDate(s.Clock.Today()),
		BySection:   make([]transport.SectionBucket, len(sections)),
		ByTier:      make([]transport.TierBucket, 0, 4),
	}
	for i, sec := range sections {
		out.BySection[i].Section = sec
		bySection[sec] = &out.BySection[i].Bucket
	}
	byTier := map[expiry.Tier]*transport.Bucket{}
	for _, t := range expiry.Tiers() {
		out.ByTier = append(out.ByTier, transport.TierBucket{Tier: t, Color: t.Color()})
	}
	for i := range out.ByTier {
		byTier[out.ByTier[i].Tier] = &out.ByTier[i].Bucket
	}

	for _, v := range rows {
		out.TotalProducts++
		out.TotalQuantity += v.Quantity
		if b, ok := bySection[v.Section]; ok {
			b.Products++
			b.Quantity += v.Quantity
		}
		if b, ok := byTier[v.Tier]; ok {
			b.Products++
			b.Quantity += v.Quantity
		}
	}
	return out, nil
}

var exportHeader = []string{
	"id", "code", "name", "expiry_date", "lot", "quantity", "section",
	"registered_at", "days_remaining", "status", "tier",
}

// ExportCSV writes the visible table, soonest expiry first.
func (s *ReportService) ExportCSV(ctx context.Context, p Principal, w io.Writer) error {
	rows, err := s.visible(ctx, p)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	for _, v := range rows {
		rec := []string{
			v.ID.String(), v.Code, v.Name, v.ExpiryDate, v.Lot, strconv.Itoa(v.Quantity), v.Section,
			v.RegisteredAt.UTC().Format(time.RFC3339), strconv.Itoa(v.DaysRemaining), v.Label, string(v.Tier),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
