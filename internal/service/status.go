package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
)

// StatusCache is a read-through cache for the banner. Get returns (nil, nil)
// on a miss.
type StatusCache interface {
	Get(ctx context.Context) (*models.Status, error)
	Put(ctx context.Context, s models.Status) error
	Invalidate(ctx context.Context) error
}

type StatusService struct {
	Status store.StatusStore
	Cache  StatusCache
	Events events.Publisher
}

// Get falls back to the default banner while none has been stored.
func (s *StatusService) Get(ctx context.Context) (models.Status, error) {
	l := logging.FromContext(ctx).With("svc", "status.get")

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx)
		if err != nil {
			l.Warn("status_cache_failed", "op", "get", "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	cur, err := s.Status.GetStatus(ctx)
	var st models.Status
	switch {
	case errors.Is(err, store.ErrNotFound):
		st = models.DefaultStatus()
	case err != nil:
		return models.Status{}, err
	default:
		st = *cur
	}

	if s.Cache != nil {
		if err := s.Cache.Put(ctx, st); err != nil {
			l.Warn("status_cache_failed", "op", "put", "error", err)
		}
	}
	return st, nil
}

func (s *StatusService) Set(ctx context.Context, p Principal, req transport.SetStatusRequest) (*models.StatusEntry, error) {
	l := logging.FromContext(ctx).With("svc", "status.set", "by", p.Username)

	if !p.IsAdmin() {
		l.Warn("set_status_failed", "status", 403, "reason", "admin only")
		return nil, fmt.Errorf("%w: only Admin can change the status", ErrForbidden)
	}
	req.Color = strings.ToLower(strings.TrimSpace(req.Color))
	req.Message = strings.TrimSpace(req.Message)
	if err := validateStruct(req); err != nil {
		l.Warn("set_status_failed", "status", 400, "error", err)
		return nil, err
	}

	entry, err := s.Status.SetStatus(ctx, models.Status{Color: req.Color, Message: req.Message, UpdatedBy: p.Username})
	if err != nil {
		l.Error("set_status_failed", "status", 500, "error", err)
		return nil, err
	}

	if s.Cache != nil {
		cur := models.Status{
			ID:        models.StatusRowID,
			Color:     entry.Color,
			Message:   entry.Message,
			UpdatedAt: entry.CreatedAt,
			UpdatedBy: entry.CreatedBy,
		}
		// A concurrent Get may still cache the banner it read before this write.
		if err := s.Cache.Put(ctx, cur); err != nil {
			l.Warn("status_cache_failed", "op", "put", "error", err)
			if err := s.Cache.Invalidate(ctx); err != nil {
				l.Warn("status_cache_failed", "op", "invalidate", "error", err)
			}
		}
	}
	publish(ctx, s.Events, "status", events.StatusChanged, p.Username, entry)
	l.Info("set_status_success", "color", entry.Color)
	return entry, nil
}

// History lists past banners newest first. limit is clamped to
// [1, MaxHistoryLimit]; zero or negative selects the default.
func (s *StatusService) History(ctx context.Context, limit int) ([]models.StatusEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}
	return s.Status.StatusHistory(ctx, limit)
}
