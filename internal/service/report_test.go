package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/models"
)

func TestSummary(t *testing.T) {
	env := newProductEnv(t)
	seedTable(t, env)
	svc := &ReportService{Products: env.store, Clock: fixedClock()}
	ctx := context.Background()

	sum, err := svc.Summary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "2025-05-30", sum.Today)
	assert.Equal(t, 5, sum.TotalProducts)
	assert.Equal(t, 21, sum.TotalQuantity)
	require.Len(t, sum.BySection, len(models.Departments))
	require.Len(t, sum.ByTier, 4)

	sections := map[string]int{}
	for _, b := range sum.BySection {
		sections[b.Section] = b.Products
	}
	assert.Equal(t, 4, sections["DAIRY"])
	assert.Equal(t, 1, sections["BAKERY"])
	assert.Equal(t, 0, sections["DELI"])

	assert.Equal(t, expiry.TierExpired, sum.ByTier[0].Tier)
	assert.Equal(t, 1, sum.ByTier[0].Products)
	assert.Equal(t, 2, sum.ByTier[1].Products)
	assert.Equal(t, 12, sum.ByTier[1].Quantity)
	assert.Equal(t, expiry.ColorUrgent, sum.ByTier[1].Color)

	clerk, err := svc.Summary(ctx, dairyClerk)
	require.NoError(t, err)
	require.Len(t, clerk.BySection, 1)
	assert.Equal(t, 4, clerk.TotalProducts)
}

func TestExportCSV(t *testing.T) {
	env := newProductEnv(t)
	seedTable(t, env)
	svc := &ReportService{Products: env.store, Clock: fixedClock()}

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), dairyClerk, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 5)
	assert.Equal(t, exportHeader, records[0])
	assert.Equal(t, "Old yogurt", records[1][2])
	assert.Equal(t, "EXPIRED (10 days)", records[1][9])
	assert.Equal(t, "expires in 2 days", records[2][9])
}
