package csvstore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

// Source reads the tables of another CSV directory without creating,
// repairing or rewriting anything in it.
type Source struct {
	dir string
}

// OpenSource requires dir to exist and to hold a products table.
func OpenSource(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("csv: source %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("csv: source %s is not a directory", dir)
	}
	if _, err := os.Stat(filepath.Join(dir, productsFile)); err != nil {
		return nil, fmt.Errorf("csv: source %s: %w", dir, err)
	}
	return &Source{dir: dir}, nil
}

// Products returns every product row. A table that cannot be parsed is an error.
func (s *Source) Products() ([]models.Product, error) {
	return readSource(s.dir, products, false)
}

// Users returns every account row. A missing users table is empty.
func (s *Source) Users() ([]models.User, error) {
	return readSource(s.dir, users, true)
}

func readSource[T any](dir string, t table[T], optional bool) ([]T, error) {
	rows, _, err := readFile(filepath.Join(dir, t.file), t)
	switch {
	case err == nil:
		return rows, nil
	case errors.Is(err, io.EOF):
		return []T{}, nil
	case optional && errors.Is(err, os.ErrNotExist):
		return []T{}, nil
	default:
		return nil, fmt.Errorf("csv: read %s: %w", filepath.Join(dir, t.file), err)
	}
}
