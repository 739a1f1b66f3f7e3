package database

import (
	"testing"

	"asset-inventory-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSourceInstanceForeignKey(t *testing.T) {
	db := OpenForTest(t)

	cat := models.AssetCategory{Name: "Furniture"}
	require.NoError(t, db.Create(&cat).Error)
	typ := models.AssetType{Name: "Chair", CategoryID: cat.ID, UnitOfMeasure: "pcs"}
	require.NoError(t, db.Create(&typ).Error)

	dangling := uint(9999)
	orphan := models.AssetInstance{
		AssetTypeID: typ.ID, InventoryNumber: "INV-X", Quantity: 1,
		UnitCost: decimal.RequireFromString("1.00"), Status: models.StatusOnStock,
		SourceInstanceID: &dangling,
	}
	err := db.Create(&orphan).Error
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

	batch := models.AssetInstance{
		AssetTypeID: typ.ID, InventoryNumber: "INV-1", Quantity: 4,
		UnitCost: decimal.RequireFromString("1.00"), Status: models.StatusOnStock,
	}
	require.NoError(t, db.Create(&batch).Error)
	unit := models.AssetInstance{
		AssetTypeID: typ.ID, InventoryNumber: "INV-1", Quantity: 1,
		UnitCost: decimal.RequireFromString("1.00"), Status: models.StatusOnStock,
		SourceInstanceID: &batch.ID,
	}
	require.NoError(t, db.Create(&unit).Error)

	var loaded models.AssetInstance
	require.NoError(t, db.Preload("SourceInstance").First(&loaded, unit.ID).Error)
	require.NotNil(t, loaded.SourceInstance)
	assert.Equal(t, batch.ID, loaded.SourceInstance.ID)

	// Deleting the batch keeps the unit and clears its lineage.
	require.NoError(t, db.Delete(&models.AssetInstance{}, batch.ID).Error)
	var after models.AssetInstance
	require.NoError(t, db.First(&after, unit.ID).Error)
	assert.Nil(t, after.SourceInstanceID)
}
