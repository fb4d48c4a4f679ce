package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		page, size  int
		offset, lim int
	}{
		{name: "defaults", page: 0, size: 0, offset: 0, lim: DefaultPageSize},
		{name: "third page", page: 3, size: 10, offset: 20, lim: 10},
		{name: "size capped", page: 1, size: 1000, offset: 0, lim: MaxPageSize},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			offset, limit := Calculate(tt.page, tt.size)
			assert.Equal(t, tt.offset, offset)
			assert.Equal(t, tt.lim, limit)
		})
	}
}

func TestWindow(t *testing.T) {
	t.Parallel()

	start, end := Window(20, 10, 25)
	assert.Equal(t, 20, start)
	assert.Equal(t, 25, end)

	start, end = Window(40, 10, 25)
	assert.Equal(t, 25, start)
	assert.Equal(t, 25, end)
}

func TestParseIntDefault(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 7, ParseIntDefault("", 7))
	assert.Equal(t, 7, ParseIntDefault("x", 7))
	assert.Equal(t, 3, ParseIntDefault("3", 7))
	assert.Equal(t, 3, TotalPages(21, 10))
	assert.Equal(t, 0, TotalPages(0, 10))
}
