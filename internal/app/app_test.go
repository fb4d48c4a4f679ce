package app

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/config"
	"github.com/Filipe-Ambrozio/stockwatch/internal/csvstore"
	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/logging"
	"github.com/Filipe-Ambrozio/stockwatch/internal/repo"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/transport"
)

func testConfig(t *testing.T, backend string) config.Config {
	t.Helper()
	dir := t.TempDir()
	return config.Config{
		StoreBackend:     backend,
		DBDriver:         "sqlite",
		DatabaseURL:      filepath.Join(dir, "stock.db"),
		CSVDir:           filepath.Join(dir, "csv"),
		JWTAccessSecret:  []byte("a"),
		JWTRefreshSecret: []byte("r"),
		Location:         time.UTC,
		ESIndex:          "products",
	}
}

func TestNew_Backends(t *testing.T) {
	log := logging.NewWithWriter(io.Discard, "error", "json")

	tests := []struct {
		backend string
		check   func(t *testing.T, a *App)
	}{
		{backend: config.BackendDB, check: func(t *testing.T, a *App) {
			assert.IsType(t, &repo.GormRepo{}, a.Store)
		}},
		{backend: config.BackendCSV, check: func(t *testing.T, a *App) {
			assert.IsType(t, &csvstore.Store{}, a.Store)
		}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.backend, func(t *testing.T) {
			ctx := context.Background()
			a, err := New(ctx, testConfig(t, tt.backend), log)
			require.NoError(t, err)
			t.Cleanup(func() { _ = a.Close() })

			tt.check(t, a)
			assert.Equal(t, events.Nop{}, a.Events)
			assert.Nil(t, a.Products.Index)
			assert.Nil(t, a.Status.Cache)
			require.NoError(t, a.Ready(ctx))

			require.NoError(t, a.Auth.EnsureAdmin(ctx, "pw"))
			admin := service.LocalAdmin(service.AdminUsername)
			_, err = a.Products.Register(ctx, admin, transport.RegisterProductRequest{
				Code: "7891000", Name: "Milk", ExpiryDate: "2025-06-01", Quantity: 2, Section: "DAIRY",
			})
			require.NoError(t, err)

			sum, err := a.Reports.Summary(ctx, admin)
			require.NoError(t, err)
			assert.Equal(t, 1, sum.TotalProducts)
		})
	}
}

func TestNew_UnreachableIntegrationsAreSkipped(t *testing.T) {
	cfg := testConfig(t, config.BackendDB)
	cfg.ESURL = "http://127.0.0.1:1"
	cfg.RedisAddr = "127.0.0.1:1"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, err := New(ctx, cfg, logging.NewWithWriter(io.Discard, "error", "json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.Nil(t, a.Products.Index)
	assert.Nil(t, a.Status.Cache)
}

func TestOpenStore_UnknownBackend(t *testing.T) {
	cfg := testConfig(t, "ftp")
	_, _, _, err := OpenStore(context.Background(), cfg, logging.NewWithWriter(io.Discard, "error", "json"))
	require.Error(t, err)
}
