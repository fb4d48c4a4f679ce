package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/db"
	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/repo"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

var (
	admin      = Principal{Username: "admin", Section: models.SectionAdmin}
	manager    = Principal{Username: "gerente", Section: models.SectionManagement}
	dairyClerk = Principal{Username: "ana", Section: "DAIRY"}
)

// fixedClock reads 2025-05-30 10:00 UTC.
func fixedClock() expiry.Clock {
	return expiry.Clock{Loc: time.UTC, Now: func() time.Time { return time.Date(2025, 5, 30, 10, 0, 0, 0, time.UTC) }}
}

func newRepo(t *testing.T) *repo.GormRepo {
	t.Helper()
	gdb, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return &repo.GormRepo{DB: gdb}
}

func milkRequest() transport.RegisterProductRequest {
	return transport.RegisterProductRequest{
		Code:       "7891000",
		Name:       "Milk",
		ExpiryDate: "2025-06-01",
		Quantity:   2,
		Section:    "DAIRY",
	}
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]models.Product
	failing bool
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]models.Product{}} }

func (f *fakeIndex) IndexProduct(_ context.Context, p models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[p.ID.String()] = p
	return nil
}

func (f *fakeIndex) RemoveProducts(_ context.Context, products []models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range products {
		delete(f.docs, p.ID.String())
	}
	return nil
}

// Search returns every indexed doc in scope; relevance is not modelled.
func (f *fakeIndex) Search(_ context.Context, _ string, sections []string, _ int) ([]models.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return nil, errors.New("cluster unavailable")
	}
	out := []models.Product{}
	for _, p := range f.docs {
		if sections == nil || contains(sections, p.Section) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeIndex) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type fakeCache struct {
	mu          sync.Mutex
	value       *models.Status
	invalidated int
}

func (c *fakeCache) Get(context.Context) (*models.Status, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.value == nil {
		return nil, nil
	}
	v := *c.value
	return &v, nil
}

func (c *fakeCache) Put(_ context.Context, s models.Status) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = &s
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value = nil
	c.invalidated++
	return nil
}

var _ events.Publisher = (*events.Recorder)(nil)
