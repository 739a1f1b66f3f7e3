package jobs

import (
	"context"
	"errors"
	"testing"

	"asset-inventory-backend/internal/dashboard"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	levels []dashboard.StockLevel
	err    error
}

func (f fakeChecker) LowStock(context.Context) ([]dashboard.StockLevel, error) {
	return f.levels, f.err
}

func TestReportLowStockLogsEachType(t *testing.T) {
	log, hook := test.NewNullLogger()
	checker := fakeChecker{levels: []dashboard.StockLevel{
		{AssetTypeID: 1, AssetTypeName: "Chair", MinimumStockLevel: 5, CurrentStock: 4},
		{AssetTypeID: 2, AssetTypeName: "Desk", MinimumStockLevel: 2, CurrentStock: 0},
	}}

	n, err := ReportLowStock(context.Background(), checker, log)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.Len(t, hook.Entries, 2)
	assert.Equal(t, logrus.WarnLevel, hook.Entries[0].Level)
	assert.Equal(t, "Chair", hook.Entries[0].Data["assetTypeName"])
	assert.Equal(t, 0, hook.Entries[1].Data["currentStock"])
}

func TestReportLowStockError(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := ReportLowStock(context.Background(), fakeChecker{err: errors.New("db down")}, log)
	assert.Error(t, err)
}

func TestStartLowStockReportRejectsBadSpec(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := StartLowStockReport("every tuesday", fakeChecker{}, log)
	assert.Error(t, err)

	c, err := StartLowStockReport("@every 1h", fakeChecker{}, log)
	require.NoError(t, err)
	c.Stop()
}
