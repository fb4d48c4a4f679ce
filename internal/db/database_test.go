package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

func TestOpenMemory_Migrates(t *testing.T) {
	gdb, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	for _, m := range models.AllModels() {
		assert.True(t, gdb.Migrator().HasTable(m))
	}
}

func TestOpen_FileSqlite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stock.db")
	gdb, err := Open(context.Background(), "sqlite", path)
	require.NoError(t, err)
	require.NoError(t, Close(gdb))

	assert.FileExists(t, path)
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(context.Background(), "sqlite", "")
	assert.Error(t, err)

	_, err = Open(context.Background(), "oracle", "dsn")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}
