package importer

import (
	"context"
	"testing"

	"asset-inventory-backend/internal/database"
	"asset-inventory-backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportIsAtomic(t *testing.T) {
	db := database.OpenForTest(t)
	svc := NewService(db, logrus.New())

	bad := validRowFor("Chair")
	bad.UnitCost = nil
	_, err := svc.Import(context.Background(), []Row{validRowFor("Chair"), bad, validRowFor("Chair")})
	requireRowError(t, err, 2, "unitCost")

	var n int64
	require.NoError(t, db.Model(&models.AssetInstance{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.AssetType{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, db.Model(&models.AssetCategory{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestImportFindsOrCreates(t *testing.T) {
	db := database.OpenForTest(t)
	ctx := context.Background()
	svc := NewService(db, logrus.New())

	cat := models.AssetCategory{Name: "IT"}
	require.NoError(t, db.Create(&cat).Error)
	monitor := models.AssetType{Name: "Monitor", CategoryID: cat.ID, UnitOfMeasure: "pcs"}
	require.NoError(t, db.Create(&monitor).Error)

	existing := validRowFor("monitor")
	existing.CategoryName, existing.UnitOfMeasure = "", ""
	fresh := validRowFor("Desk")
	fresh.MinimumStockLevel = qty(3)
	again := validRowFor("Desk")
	again.CategoryName = "office"

	res, err := svc.Import(ctx, []Row{existing, fresh, again})
	require.NoError(t, err)
	assert.Equal(t, Result{Imported: 3, CreatedCategories: 1, CreatedTypes: 1}, res)

	var desks []models.AssetType
	require.NoError(t, db.Where("name = ?", "Desk").Find(&desks).Error)
	require.Len(t, desks, 1)
	require.NotNil(t, desks[0].MinimumStockLevel)
	assert.Equal(t, 3, *desks[0].MinimumStockLevel)

	var instances []models.AssetInstance
	require.NoError(t, db.Order("id").Find(&instances).Error)
	require.Len(t, instances, 3)
	assert.Equal(t, monitor.ID, instances[0].AssetTypeID)
	for _, inst := range instances {
		assert.Equal(t, models.StatusOnStock, inst.Status)
		assert.Equal(t, "12.50", inst.UnitCost.StringFixed(2))
	}

	var logs int64
	require.NoError(t, db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionImport).Count(&logs).Error)
	assert.EqualValues(t, 1, logs)
}
