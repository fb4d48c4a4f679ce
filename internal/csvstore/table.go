package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// table describes how rows of one file map to and from CSV records.
type table[T any] struct {
	file     string
	header   []string
	required []string
	encode   func(T) []string
	decode   func(record) (T, error)
	// blankIDs marks tables whose decode assigns a fresh id to rows without one.
	blankIDs bool
}

// record is one CSV line addressed by column name.
type record map[string]string

func (r record) atoi(col string) (int, error) {
	v, err := strconv.Atoi(r[col])
	if err != nil {
		return 0, fmt.Errorf("column %s: %w", col, err)
	}
	return v, nil
}

func (r record) timestamp(col string) (time.Time, error) {
	if r[col] == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, r[col])
	if err != nil {
		return time.Time{}, fmt.Errorf("column %s: %w", col, err)
	}
	return t, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

var errCorrupt = errors.New("corrupt table")

// load reads every row of t. A missing or empty file is an empty table. A file
// that cannot be parsed is moved aside and also read as an empty table. Ids
// assigned to rows that had none are written back so they stay stable.
func load[T any](s *Store, t table[T]) []T {
	path := filepath.Join(s.dir, t.file)
	rows, assigned, err := readFile(path, t)
	switch {
	case err == nil:
		if assigned {
			if err := save(s, t, rows); err != nil {
				s.log.Warn("csv_assign_ids_failed", "file", t.file, "error", err)
			} else {
				s.log.Info("csv_ids_assigned", "file", t.file)
			}
		}
		return rows
	case errors.Is(err, os.ErrNotExist), errors.Is(err, io.EOF):
		return []T{}
	default:
		aside := fmt.Sprintf("%s.corrupt-%d", path, time.Now().Unix())
		if rerr := os.Rename(path, aside); rerr != nil {
			s.log.Warn("csv_table_unreadable", "file", t.file, "error", err, "rename_error", rerr)
		} else {
			s.log.Warn("csv_table_unreadable", "file", t.file, "moved_to", aside, "error", err)
		}
		return []T{}
	}
}

// readFile parses path without touching it. assigned reports whether any row
// was missing its id.
func readFile[T any](path string, t table[T]) (rows []T, assigned bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, false, err
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	for _, col := range t.required {
		if _, ok := index[col]; !ok {
			return nil, false, fmt.Errorf("%w: missing column %s", errCorrupt, col)
		}
	}

	rows = []T{}
	for line := 2; ; line++ {
		fields, err := r.Read()
		if errors.Is(err, io.EOF) {
			return rows, assigned, nil
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", errCorrupt, err)
		}
		if len(fields) != len(header) {
			return nil, false, fmt.Errorf("%w: line %d has %d fields, want %d", errCorrupt, line, len(fields), len(header))
		}

		rec := make(record, len(header))
		for col, i := range index {
			rec[col] = fields[i]
		}
		if t.blankIDs && strings.TrimSpace(rec["id"]) == "" {
			assigned = true
		}
		row, err := t.decode(rec)
		if err != nil {
			return nil, false, fmt.Errorf("%w: line %d: %v", errCorrupt, line, err)
		}
		rows = append(rows, row)
	}
}

// save replaces the file through a temp file and rename so readers never see a
// half-written table.
func save[T any](s *Store, t table[T], rows []T) error {
	tmp, err := os.CreateTemp(s.dir, t.file+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(t.header); err != nil {
		tmp.Close()
		return fmt.Errorf("csv: write %s: %w", t.file, err)
	}
	for _, row := range rows {
		if err := w.Write(t.encode(row)); err != nil {
			tmp.Close()
			return fmt.Errorf("csv: write %s: %w", t.file, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return fmt.Errorf("csv: flush %s: %w", t.file, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("csv: sync %s: %w", t.file, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("csv: close %s: %w", t.file, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, t.file)); err != nil {
		return fmt.Errorf("csv: replace %s: %w", t.file, err)
	}
	return nil
}
