package lifecycle

import (
	"context"
	"sync"
	"testing"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/database"
	"asset-inventory-backend/internal/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db  *gorm.DB
	svc *Service
	typ models.AssetType
	emp models.Employee
}

func newFixture(t *testing.T) *fixture {
	db := database.OpenForTest(t)
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)

	cat := models.AssetCategory{Name: "Furniture"}
	require.NoError(t, db.Create(&cat).Error)
	typ := models.AssetType{Name: "Chair", CategoryID: cat.ID, UnitOfMeasure: "pcs"}
	require.NoError(t, db.Create(&typ).Error)
	emp := models.Employee{FullName: "Ivan Petrenko", Status: models.EmployeeActive, CommissionRole: models.CommissionNone}
	require.NoError(t, db.Create(&emp).Error)

	return &fixture{db: db, svc: NewService(db, log), typ: typ, emp: emp}
}

func (f *fixture) batch(t *testing.T, qty int) models.AssetInstance {
	inst := models.AssetInstance{
		AssetTypeID:     f.typ.ID,
		InventoryNumber: "INV-100",
		Quantity:        qty,
		UnitCost:        decimal.RequireFromString("12.50"),
		Status:          models.StatusOnStock,
	}
	require.NoError(t, f.db.Create(&inst).Error)
	return inst
}

func (f *fixture) reload(t *testing.T, id uint) models.AssetInstance {
	var inst models.AssetInstance
	require.NoError(t, f.db.First(&inst, id).Error)
	return inst
}

func TestIssueSplitsBatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.batch(t, 5)

	held, err := f.svc.Issue(ctx, src.ID, f.emp.ID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, held.ID)
	assert.Equal(t, 1, held.Quantity)
	assert.Equal(t, models.StatusIssued, held.Status)
	require.NotNil(t, held.CurrentEmployeeID)
	assert.Equal(t, f.emp.ID, *held.CurrentEmployeeID)
	require.NotNil(t, held.SourceInstanceID)
	assert.Equal(t, src.ID, *held.SourceInstanceID)
	assert.Equal(t, "Issued from batch #1", held.Notes)
	assert.True(t, held.UnitCost.Equal(src.UnitCost))
	assert.Equal(t, f.typ.ID, held.AssetType.ID)

	assert.Equal(t, 4, f.reload(t, src.ID).Quantity)

	var total int64
	require.NoError(t, f.db.Model(&models.AssetInstance{}).Select("COALESCE(SUM(quantity),0)").Scan(&total).Error)
	assert.EqualValues(t, 5, total)

	hist, err := f.svc.History(ctx, held.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Nil(t, hist[0].ReturnDate)
}

func TestIssueSingleUnitInPlace(t *testing.T) {
	f := newFixture(t)
	src := f.batch(t, 1)

	held, err := f.svc.Issue(context.Background(), src.ID, f.emp.ID)
	require.NoError(t, err)
	assert.Equal(t, src.ID, held.ID)
	assert.Nil(t, held.SourceInstanceID)

	_, err = f.svc.Issue(context.Background(), src.ID, f.emp.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestIssueErrors(t *testing.T) {
	f := newFixture(t)
	src := f.batch(t, 2)
	ctx := context.Background()

	_, err := f.svc.Issue(ctx, src.ID, 999)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Issue(ctx, 999, f.emp.ID)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	require.NoError(t, f.db.Model(&f.emp).Update("status", models.EmployeeArchived).Error)
	_, err = f.svc.Issue(ctx, src.ID, f.emp.ID)
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
	assert.Equal(t, 2, f.reload(t, src.ID).Quantity)
}

func TestConcurrentIssueNeverOverdraws(t *testing.T) {
	f := newFixture(t)
	src := f.batch(t, 3)

	var wg sync.WaitGroup
	errs := make([]error, 6)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Issue(context.Background(), src.ID, f.emp.ID)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		}
	}
	// 3 units: two splits, then the last unit is issued in place.
	assert.Equal(t, 3, ok)
	var issued int64
	require.NoError(t, f.db.Model(&models.AssetInstance{}).Where("status = ?", models.StatusIssued).Count(&issued).Error)
	assert.EqualValues(t, 3, issued)
}

func TestProcessDeactivationIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	src := f.batch(t, 3)
	a, err := f.svc.Issue(ctx, src.ID, f.emp.ID)
	require.NoError(t, err)
	b, err := f.svc.Issue(ctx, src.ID, f.emp.ID)
	require.NoError(t, err)

	items := []DeactivationItem{
		{InstanceID: a.ID, FinalStatus: models.StatusOnStock},
		{InstanceID: b.ID, FinalStatus: models.StatusLost},
		{InstanceID: src.ID, FinalStatus: models.StatusDamaged}, // not held, skipped
	}
	res, err := f.svc.ProcessDeactivationAssets(ctx, f.emp.ID, items)
	require.NoError(t, err)
	assert.Equal(t, DeactivationResult{Processed: 2, Requested: 3}, res)

	assert.Equal(t, models.StatusOnStock, f.reload(t, a.ID).Status)
	lost := f.reload(t, b.ID)
	assert.Equal(t, models.StatusLost, lost.Status)
	assert.Nil(t, lost.CurrentEmployeeID)
	assert.Equal(t, models.StatusOnStock, f.reload(t, src.ID).Status)

	hist, err := f.svc.History(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.NotNil(t, hist[0].ReturnDate)

	res, err = f.svc.ProcessDeactivationAssets(ctx, f.emp.ID, items)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)

	_, err = f.svc.ProcessDeactivationAssets(ctx, 999, items)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestWriteOffExactness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	batch := f.batch(t, 10)
	single := f.batch(t, 1)
	held, err := f.svc.Issue(ctx, single.ID, f.emp.ID)
	require.NoError(t, err)

	res, err := f.svc.WriteOff(ctx, []WriteOffItem{
		{InstanceID: batch.ID, QuantityToWriteOff: 4, Reason: "broken legs"},
		{InstanceID: held.ID, QuantityToWriteOff: 1, Reason: "lost in move"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Processed)

	partial := f.reload(t, batch.ID)
	assert.Equal(t, 6, partial.Quantity)
	assert.Equal(t, models.StatusOnStock, partial.Status)

	full := f.reload(t, held.ID)
	assert.Equal(t, models.StatusWrittenOff, full.Status)
	assert.Equal(t, 0, full.Quantity)
	assert.Nil(t, full.CurrentEmployeeID)
	assert.Contains(t, full.Notes, "lost in move")

	hist, err := f.svc.History(ctx, held.ID)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.NotNil(t, hist[0].ReturnDate)

	var logs int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).Where("action = ?", models.AuditActionWriteOff).Count(&logs).Error)
	assert.EqualValues(t, 2, logs)
}

func TestWriteOffIsAllOrNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.batch(t, 5)
	b := f.batch(t, 2)

	_, err := f.svc.WriteOff(ctx, []WriteOffItem{
		{InstanceID: a.ID, QuantityToWriteOff: 5},
		{InstanceID: b.ID, QuantityToWriteOff: 3},
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, 5, f.reload(t, a.ID).Quantity)
	assert.Equal(t, models.StatusOnStock, f.reload(t, a.ID).Status)

	_, err = f.svc.WriteOff(ctx, []WriteOffItem{
		{InstanceID: a.ID, QuantityToWriteOff: 1},
		{InstanceID: 404, QuantityToWriteOff: 1},
	})
	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperr.KindNotFound, ae.Kind)
	assert.Equal(t, []uint{404}, ae.MissingIDs)
	assert.Equal(t, 5, f.reload(t, a.ID).Quantity)

	res, err := f.svc.WriteOff(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Processed)

	_, err = f.svc.WriteOff(ctx, []WriteOffItem{{InstanceID: b.ID, QuantityToWriteOff: 2}})
	require.NoError(t, err)
	_, err = f.svc.WriteOff(ctx, []WriteOffItem{{InstanceID: b.ID, QuantityToWriteOff: 1}})
	assert.True(t, apperr.Is(err, apperr.KindInvalidState))
}

func TestAvailableInstances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.batch(t, 2)
	b := f.batch(t, 1)
	_, err := f.svc.Issue(ctx, b.ID, f.emp.ID)
	require.NoError(t, err)

	rows, err := f.svc.AvailableInstances(ctx, f.typ.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, a.ID, rows[0].ID)
}

func TestCreateAndUpdateInstance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateInstance(ctx, CreateInstanceInput{
		AssetTypeID: f.typ.ID, InventoryNumber: "INV-9", Quantity: 1, UnitCost: decimal.RequireFromString("10.005"),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.CreateInstance(ctx, CreateInstanceInput{AssetTypeID: 999, InventoryNumber: "INV-9", Quantity: 1})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	inst, err := f.svc.CreateInstance(ctx, CreateInstanceInput{
		AssetTypeID: f.typ.ID, InventoryNumber: " INV-9 ", Quantity: 3,
		UnitCost: decimal.RequireFromString("7.30"), PurchaseDate: "2024-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-9", inst.InventoryNumber)
	assert.Equal(t, models.StatusOnStock, inst.Status)
	require.NotNil(t, inst.PurchaseDate)

	notes := "moved to room 4"
	updated, err := f.svc.UpdateInstance(ctx, inst.ID, UpdateInstanceInput{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, 3, updated.Quantity)

	_, err = f.svc.UpdateInstance(ctx, 999, UpdateInstanceInput{Notes: &notes})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
