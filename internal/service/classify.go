package service

import (
	"context"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

// views classifies rows against one reading of the clock so a listing never
// straddles midnight. Rows with an unreadable date are skipped.
func views(ctx context.Context, clock expiry.Clock, rows []models.Product) []transport.ProductView {
	today := clock.Today()
	out := make([]transport.ProductView, 0, len(rows))
	for _, p := range rows {
		res, err := expiry.ClassifyString(p.ExpiryDate, today)
		if err != nil {
			logging.FromContext(ctx).Warn("classify_skipped", "product_id", p.ID, "error", err)
			continue
		}
		out = append(out, transport.ProductView{Product: p, Result: res})
	}
	return out
}

func view(clock expiry.Clock, p models.Product) (transport.ProductView, error) {
	res, err := expiry.ClassifyString(p.ExpiryDate, clock.Today())
	if err != nil {
		return transport.ProductView{}, err
	}
	return transport.ProductView{Product: p, Result: res}, nil
}
