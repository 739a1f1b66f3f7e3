// Package jobs holds background work scheduled with cron.
package jobs

import (
	"context"
	"time"

	"asset-inventory-backend/internal/dashboard"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type StockChecker interface {
	LowStock(ctx context.Context) ([]dashboard.StockLevel, error)
}

// ReportLowStock logs one warning per asset type below its threshold and
// returns how many were found.
func ReportLowStock(ctx context.Context, checker StockChecker, log logrus.FieldLogger) (int, error) {
	low, err := checker.LowStock(ctx)
	if err != nil {
		return 0, err
	}
	for _, l := range low {
		log.WithFields(logrus.Fields{
			"assetTypeId":       l.AssetTypeID,
			"assetTypeName":     l.AssetTypeName,
			"categoryName":      l.CategoryName,
			"currentStock":      l.CurrentStock,
			"minimumStockLevel": l.MinimumStockLevel,
		}).Warn("asset type below minimum stock")
	}
	return len(low), nil
}

// StartLowStockReport schedules ReportLowStock on a cron expression. The caller stops the
// returned cron on shutdown.
func StartLowStockReport(spec string, checker StockChecker, log logrus.FieldLogger) (*cron.Cron, error) {
	log = log.WithField("job", "low-stock-report")
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		n, err := ReportLowStock(ctx, checker, log)
		if err != nil {
			log.WithError(err).Error("low stock report failed")
			return
		}
		log.WithField("lowStockTypes", n).Info("low stock report finished")
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
