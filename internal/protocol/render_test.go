package protocol

import (
	"strings"
	"testing"

	"asset-inventory-backend/internal/config"
	"asset-inventory-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProtocol() *Protocol {
	return &Protocol{
		Organization:   config.Organization{Name: "Acme Works", Code: "12345678", Address: "1 Main St"},
		DocumentNumber: "WO-20240315-2",
		Date:           "2024-03-15",
		MainReason:     "physical wear",
		Chair:          &Signatory{EmployeeID: 1, FullName: "Olena Koval", Position: "Deputy director", CommissionRole: models.CommissionChair},
		Members: []Signatory{
			{EmployeeID: 2, FullName: "Petro Bondar", Position: "Engineer", CommissionRole: models.CommissionMember},
		},
		HeadOfEnterprise: &Signatory{EmployeeID: 3, FullName: "Ivan Shevchenko", Position: "Director"},
		ChiefAccountant:  &Signatory{EmployeeID: 4, FullName: "Maria Lysenko", Position: "Chief accountant"},
		Items: []LineItem{
			{Number: 1, InstanceID: 10, InventoryNumber: "INV-10", AssetTypeName: "Chair <office>", UnitOfMeasure: "pcs", Quantity: 2, UnitCost: "10.50", ItemSum: "21.00"},
			{Number: 2, InstanceID: 11, InventoryNumber: "INV-11", AssetTypeName: "Pen", UnitOfMeasure: "pcs", Quantity: 3, UnitCost: "0.33", ItemSum: "0.99"},
		},
		TotalQuantity: 5,
		TotalSum:      "21.99",
	}
}

func TestRenderContainsLegalLayout(t *testing.T) {
	html, err := Render(sampleProtocol())
	require.NoError(t, err)

	for _, want := range []string{
		"Acme Works", "12345678", "APPROVED", "Ivan Shevchenko",
		"WO-20240315-2", "2024-03-15", "physical wear",
		"Chair: Olena Koval", "Member: Petro Bondar",
		"INV-10", "21.00", "0.99", "21.99",
		"Commission chair", "Commission member", "Chief accountant", "Maria Lysenko",
	} {
		assert.Contains(t, html, want)
	}
	assert.Contains(t, html, "Chair &lt;office&gt;", "cell text must be escaped")
	assert.NotContains(t, html, "<link", "document must be self-contained")
	assert.NotContains(t, html, "<script")
}

func TestRenderWithoutOptionalSignatories(t *testing.T) {
	p := sampleProtocol()
	p.Chair, p.ChiefAccountant, p.HeadOfEnterprise, p.Members = nil, nil, nil, nil

	html, err := Render(p)
	require.NoError(t, err)
	assert.Contains(t, html, "Head of enterprise")
	assert.NotContains(t, html, "Commission chair")
	assert.Equal(t, 1, strings.Count(html, `class="total"`))
}
