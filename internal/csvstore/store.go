// Package csvstore keeps the tables as CSV files in one directory. Every
// mutation is a read-modify-write of a whole file under the store mutex, so it
// is safe for one process only.
package csvstore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Filipe-Ambrozio/stockwatch/internal/inventory"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/repo"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

type Store struct {
	*repo.MemorySessions

	dir string
	log *slog.Logger
	mu  sync.Mutex
}

var _ store.Store = (*Store)(nil)

// Open creates dir when needed. Tables are read lazily.
func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv: create %s: %w", dir, err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		MemorySessions: repo.NewMemorySessions(),
		dir:            dir,
		log:            log.With("store", "csv"),
	}, nil
}

func (s *Store) Dir() string { return s.dir }

func sortProducts(rows []models.Product) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].ExpiryDate != rows[j].ExpiryDate {
			return rows[i].ExpiryDate < rows[j].ExpiryDate
		}
		return rows[i].RegisteredAt.Before(rows[j].RegisteredAt)
	})
}

func (s *Store) ListProducts(_ context.Context, f store.ProductFilter) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Product{}
	for _, p := range load(s, products) {
		if f.Matches(p) {
			out = append(out, p)
		}
	}
	sortProducts(out)
	return out, nil
}

func (s *Store) GetProduct(_ context.Context, id uuid.UUID) (*models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range load(s, products) {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateProduct(_ context.Context, p *models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := load(s, products)
	for _, existing := range rows {
		if existing.ID == p.ID {
			return store.ErrConflict
		}
	}
	return save(s, products, append(rows, *p))
}

func (s *Store) DeleteProduct(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := load(s, products)
	kept := make([]models.Product, 0, len(rows))
	for _, p := range rows {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(rows) {
		return store.ErrNotFound
	}
	return save(s, products, kept)
}

// DeleteMatching leaves the file untouched when nothing matches.
func (s *Store) DeleteMatching(_ context.Context, k inventory.Key) ([]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := load(s, products)
	removed := inventory.Filter(rows, k)
	if len(removed) == 0 {
		return nil, nil
	}
	kept, _ := inventory.RemoveMatching(rows, k)
	if err := save(s, products, kept); err != nil {
		return nil, err
	}
	return removed, nil
}

func (s *Store) ReplaceProducts(_ context.Context, rows []models.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return save(s, products, rows)
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range load(s, users) {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := load(s, users)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Username < rows[j].Username })
	return rows, nil
}

func (s *Store) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := load(s, users)
	for _, existing := range rows {
		if existing.Username == u.Username {
			return store.ErrConflict
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return save(s, users, append(rows, *u))
}

func (s *Store) GetStatus(_ context.Context) (*models.Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := load(s, statuses)
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}
	return &rows[len(rows)-1], nil
}

// SetStatus appends the history entry before replacing the banner; a crash
// between the two writes leaves a history row for a banner that never showed,
// never the reverse.
func (s *Store) SetStatus(_ context.Context, st models.Status) (*models.StatusEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	st.ID = models.StatusRowID
	st.UpdatedAt = now

	entries := load(s, history)
	var next uint = 1
	for _, e := range entries {
		if e.ID >= next {
			next = e.ID + 1
		}
	}
	entry := models.StatusEntry{ID: next, Color: st.Color, Message: st.Message, CreatedAt: now, CreatedBy: st.UpdatedBy}

	if err := save(s, history, append(entries, entry)); err != nil {
		return nil, err
	}
	if err := save(s, statuses, []models.Status{st}); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Store) StatusHistory(_ context.Context, limit int) ([]models.StatusEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := load(s, history)
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].CreatedAt.After(entries[j].CreatedAt)
		}
		return entries[i].ID > entries[j].ID
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
