package lifecycle

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"asset-inventory-backend/internal/apperr"
	"asset-inventory-backend/internal/models"
	"asset-inventory-backend/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOps struct {
	Operations // unimplemented methods panic

	issued    [2]uint
	writeOffs []WriteOffItem
	processed []DeactivationItem
	err       error
}

func (f *fakeOps) Issue(_ context.Context, instanceID, employeeID uint) (*models.AssetInstance, error) {
	f.issued = [2]uint{instanceID, employeeID}
	if f.err != nil {
		return nil, f.err
	}
	return &models.AssetInstance{ID: 100, Quantity: 1, Status: models.StatusIssued, CurrentEmployeeID: &employeeID}, nil
}

func (f *fakeOps) WriteOff(_ context.Context, items []WriteOffItem) (WriteOffResult, error) {
	f.writeOffs = items
	if f.err != nil {
		return WriteOffResult{}, f.err
	}
	return WriteOffResult{Processed: len(items)}, nil
}

func (f *fakeOps) ProcessDeactivationAssets(_ context.Context, _ uint, items []DeactivationItem) (DeactivationResult, error) {
	f.processed = items
	return DeactivationResult{Processed: len(items), Requested: len(items)}, f.err
}

type fakeVerifier struct {
	lines map[uint]int
	err   error
}

func (v *fakeVerifier) VerifyConfirmation(_ string, lines map[uint]int) error {
	v.lines = lines
	return v.err
}

func testApp() *fiber.App {
	return fiber.New(fiber.Config{ErrorHandler: web.ErrorHandler(logrus.New())})
}

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	_ = json.Unmarshal(raw, &out)
	return resp.StatusCode, out
}

func TestAssignHandler(t *testing.T) {
	ops := &fakeOps{}
	app := testApp()
	app.Post("/assign", AssignHandler(ops))

	status, body := postJSON(t, app, "/assign", `{"employeeId":7,"instanceId":3}`)
	assert.Equal(t, 200, status)
	assert.Equal(t, [2]uint{3, 7}, ops.issued)
	assert.Equal(t, "issued", body["status"])

	status, body = postJSON(t, app, "/assign", `{"instanceId":3}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "employeeId", body["fieldName"])
}

func TestAssignHandlerMapsServiceErrors(t *testing.T) {
	app := testApp()
	app.Post("/assign", AssignHandler(&fakeOps{err: apperr.InvalidState("instance 3 is not available (status issued)")}))

	status, body := postJSON(t, app, "/assign", `{"employeeId":7,"instanceId":3}`)
	assert.Equal(t, 400, status)
	assert.Equal(t, "invalid_state", body["code"])
}

func TestPerformWriteOffHandlerVerifiesToken(t *testing.T) {
	ops := &fakeOps{}
	verifier := &fakeVerifier{}
	app := testApp()
	app.Post("/wo", PerformWriteOffHandler(ops, verifier))

	status, body := postJSON(t, app, "/wo",
		`{"items":[{"instanceId":1,"quantityToWriteOff":2},{"instanceId":4,"quantityToWriteOff":1}],"confirmationToken":"tok"}`)
	require.Equal(t, 200, status)
	assert.EqualValues(t, 2, body["processed"])
	assert.Equal(t, map[uint]int{1: 2, 4: 1}, verifier.lines)

	verifier.err = apperr.Conflict("confirmation token does not match the write-off lines")
	ops.writeOffs = nil
	status, _ = postJSON(t, app, "/wo", `{"items":[{"instanceId":1,"quantityToWriteOff":3}],"confirmationToken":"tok"}`)
	assert.Equal(t, 409, status)
	assert.Nil(t, ops.writeOffs, "write-off must not run after a token mismatch")
}

func TestPerformWriteOffHandlerWithoutToken(t *testing.T) {
	ops := &fakeOps{}
	verifier := &fakeVerifier{err: apperr.Conflict("never")}
	app := testApp()
	app.Post("/wo", PerformWriteOffHandler(ops, verifier))

	status, body := postJSON(t, app, "/wo", `{"items":[]}`)
	assert.Equal(t, 200, status)
	assert.EqualValues(t, 0, body["processed"])
	assert.Nil(t, verifier.lines)
}

func TestPerformWriteOffHandlerMissingIDs(t *testing.T) {
	e := apperr.NotFound("asset instances not found: [8]")
	e.MissingIDs = []uint{8}
	app := testApp()
	app.Post("/wo", PerformWriteOffHandler(&fakeOps{err: e}, nil))

	status, body := postJSON(t, app, "/wo", `{"items":[{"instanceId":8,"quantityToWriteOff":1}]}`)
	assert.Equal(t, 404, status)
	assert.Equal(t, []any{float64(8)}, body["missingIds"])
}

func TestProcessAssetsHandler(t *testing.T) {
	ops := &fakeOps{}
	app := testApp()
	app.Post("/employees/:id/process-assets", ProcessAssetsHandler(ops))

	status, body := postJSON(t, app, "/employees/5/process-assets",
		`{"assets":[{"instanceId":1,"finalStatus":"damaged"}]}`)
	assert.Equal(t, 200, status)
	assert.EqualValues(t, 1, body["requested"])
	require.Len(t, ops.processed, 1)
	assert.Equal(t, models.StatusDamaged, ops.processed[0].FinalStatus)

	status, _ = postJSON(t, app, "/employees/abc/process-assets", `{"assets":[]}`)
	assert.Equal(t, 400, status)
}

func TestAvailableHandlerRequiresType(t *testing.T) {
	app := testApp()
	app.Get("/available", AvailableHandler(&fakeOps{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/available", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListInstancesHandlerRejectsUnknownStatus(t *testing.T) {
	app := testApp()
	app.Get("/instances", ListInstancesHandler(&fakeOps{}))

	resp, err := app.Test(httptest.NewRequest("GET", "/instances?status=borrowed", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
