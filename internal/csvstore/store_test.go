package csvstore

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/inventory"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	return s
}

func milk(qty int) models.Product {
	return models.Product{
		ID:           uuid.New(),
		Code:         "7891000",
		Name:         "Milk",
		ExpiryDate:   "2025-06-01",
		Quantity:     qty,
		RegisteredAt: time.Date(2025, 5, 30, 9, 0, 0, 0, time.UTC),
		Section:      "DAIRY",
	}
}

func keySet(rows []models.Product) map[inventory.Key]int {
	set := map[inventory.Key]int{}
	for _, p := range rows {
		set[inventory.KeyOf(p)]++
	}
	return set
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	rows := []models.Product{
		milk(2),
		{ID: uuid.New(), Code: "7892000", Name: "Bread, sliced", ExpiryDate: "2025-05-31", Lot: "L \"7\"", Quantity: 10, RegisteredAt: time.Now().UTC(), Section: "BAKERY"},
	}
	require.NoError(t, s.ReplaceProducts(ctx, rows))

	reopened, err := Open(s.Dir(), nil)
	require.NoError(t, err)
	got, err := reopened.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, keySet(rows), keySet(got))

	p, err := reopened.GetProduct(ctx, rows[1].ID)
	require.NoError(t, err)
	assert.True(t, p.RegisteredAt.Equal(rows[1].RegisteredAt))
}

func TestMissingOrEmptyFilesAreEmptyTables(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), productsFile), nil, 0o644))

	rows, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	_, err = s.GetStatus(ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCorruptFileLoadsEmptyAndIsMovedAside(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	path := filepath.Join(s.Dir(), productsFile)
	require.NoError(t, os.WriteFile(path, []byte("code,name\n\"unterminated\n"), 0o644))

	rows, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)

	matches, err := filepath.Glob(path + ".corrupt-*")
	require.NoError(t, err)
	assert.Len(t, matches, 1)

	require.NoError(t, s.CreateProduct(ctx, ptr(milk(2))))
	rows, err = s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestBadQuantityIsCorrupt(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	body := strings.Join([]string{
		"id,code,name,expiry_date,lot,quantity,registered_at,section",
		",7891000,Milk,2025-06-01,,two,,DAIRY",
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), productsFile), []byte(body), 0o644))

	rows, err := s.ListProducts(context.Background(), store.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestRowsWithoutIDGetOne(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	body := "code,name,expiry_date,lot,quantity,section\n" +
		"7891000,Milk,01/06/2025,nan,2,DAIRY\n" +
		"7892000,Bread,2025-05-31,,10,BAKERY\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), productsFile), []byte(body), 0o644))

	rows, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.NotEqual(t, uuid.Nil, rows[0].ID)
	assert.Equal(t, "2025-06-01", rows[1].ExpiryDate)

	again, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, rows, again)

	got, err := s.GetProduct(ctx, rows[1].ID)
	require.NoError(t, err)
	assert.Equal(t, "Milk", got.Name)

	require.NoError(t, s.DeleteProduct(ctx, rows[0].ID))
	left, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, rows[1].ID, left[0].ID)

	removed, err := s.DeleteMatching(ctx, inventory.Key{
		Code: "7891000", Name: "Milk", ExpiryDate: "2025-06-01", Quantity: 2, Section: "DAIRY",
	})
	require.NoError(t, err)
	assert.Len(t, removed, 1)
}

func TestUsersWithoutIDKeepTheirID(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	body := "username,password_hash,section\nana,x,DAIRY\n"
	require.NoError(t, os.WriteFile(filepath.Join(s.Dir(), usersFile), []byte(body), 0o644))

	first, err := s.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	second, err := s.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestDeleteMatching(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	a, b := milk(2), milk(3)
	require.NoError(t, s.ReplaceProducts(ctx, []models.Product{a, b}))

	before, err := os.ReadFile(filepath.Join(s.Dir(), productsFile))
	require.NoError(t, err)

	k := inventory.KeyOf(a)
	k.Section = "DELI"
	removed, err := s.DeleteMatching(ctx, k)
	require.NoError(t, err)
	assert.Empty(t, removed)

	after, err := os.ReadFile(filepath.Join(s.Dir(), productsFile))
	require.NoError(t, err)
	assert.Equal(t, before, after)

	removed, err = s.DeleteMatching(ctx, inventory.KeyOf(a))
	require.NoError(t, err)
	require.Len(t, removed, 1)

	rows, err := s.ListProducts(ctx, store.ProductFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()
	p := milk(2)
	require.NoError(t, s.CreateProduct(ctx, &p))
	assert.ErrorIs(t, s.CreateProduct(ctx, &p), store.ErrConflict)

	require.NoError(t, s.DeleteProduct(ctx, p.ID))
	assert.ErrorIs(t, s.DeleteProduct(ctx, p.ID), store.ErrNotFound)
	_, err := s.GetProduct(ctx, p.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	u := models.User{ID: uuid.New(), Username: "ana", PasswordHash: "h1", Section: "DAIRY"}
	require.NoError(t, s.CreateUser(ctx, &u))
	assert.False(t, u.CreatedAt.IsZero())

	dup := models.User{ID: uuid.New(), Username: "ana", PasswordHash: "h2", Section: "DELI"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), store.ErrConflict)

	list, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "h1", list[0].PasswordHash)

	got, err := s.GetUserByUsername(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestStatus(t *testing.T) {
	t.Parallel()

	s := newStore(t)
	ctx := context.Background()

	for _, msg := range []string{"one", "two", "three"} {
		_, err := s.SetStatus(ctx, models.Status{Color: models.ColorGreen, Message: msg, UpdatedBy: "admin"})
		require.NoError(t, err)
	}

	cur, err := s.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, "three", cur.Message)

	hist, err := s.StatusHistory(ctx, 2)
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, "three", hist[0].Message)
	assert.Equal(t, "two", hist[1].Message)
	assert.Equal(t, uint(3), hist[0].ID)
}

func ptr[T any](v T) *T { return &v }
