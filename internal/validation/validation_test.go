package validation

import (
	"testing"

	"asset-inventory-backend/internal/apperr"

	"github.com/stretchr/testify/require"
)

type item struct {
	InstanceID uint `json:"instanceId" validate:"required"`
	Quantity   int  `json:"quantity" validate:"gte=1"`
}

type request struct {
	EmployeeID uint   `json:"employeeId" validate:"required"`
	Role       string `json:"role" validate:"omitempty,oneof=none member chair"`
	Items      []item `json:"items" validate:"dive"`
}

func TestStructReportsJSONFieldName(t *testing.T) {
	err := Struct(request{})
	require.Error(t, err)

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, apperr.KindValidation, ae.Kind)
	require.Equal(t, "employeeId", ae.Field)
	require.Equal(t, "employeeId is required", ae.Message)
}

func TestStructNestedField(t *testing.T) {
	err := Struct(request{EmployeeID: 1, Items: []item{{InstanceID: 3, Quantity: 1}, {InstanceID: 4}}})

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "items[1].quantity", ae.Field)
}

func TestStructOneOf(t *testing.T) {
	err := Struct(request{EmployeeID: 1, Role: "boss"})

	var ae *apperr.Error
	require.ErrorAs(t, err, &ae)
	require.Equal(t, "role", ae.Field)
	require.Contains(t, ae.Message, "none member chair")
}

func TestStructOK(t *testing.T) {
	require.NoError(t, Struct(request{EmployeeID: 1, Role: "chair", Items: []item{{InstanceID: 1, Quantity: 2}}}))
}
