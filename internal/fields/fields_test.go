package fields

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCheckCost(t *testing.T) {
	require.NoError(t, CheckCost(decimal.RequireFromString("10.50")))
	require.NoError(t, CheckCost(decimal.RequireFromString("10.500")))
	require.NoError(t, CheckCost(decimal.Zero))
	require.ErrorIs(t, CheckCost(decimal.RequireFromString("10.005")), ErrCostPrecision)
	require.ErrorIs(t, CheckCost(decimal.RequireFromString("-1")), ErrNegativeCost)
}

func TestParseCost(t *testing.T) {
	cases := map[string]string{
		"1234.5":    "1234.5",
		"1 234,50":  "1234.5",
		"1,234.50":  "1234.5",
		" 0.33 ":    "0.33",
		"1 000": "1000",
		"12,345":    "12345",
		"1,234,567": "1234567",
		"12,5":      "12.5",
		"12,50":     "12.5",
	}
	for in, want := range cases {
		d, err := ParseCost(in)
		require.NoError(t, err, in)
		require.Equal(t, want, d.String(), in)
	}

	_, err := ParseCost("abc")
	require.Error(t, err)
	_, err = ParseCost("10.005")
	require.ErrorIs(t, err, ErrCostPrecision)
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-15", "15.03.2024", "2024/03/15", "2024-03-15T00:00:00Z"} {
		got, err := ParseDate(in)
		require.NoError(t, err, in)
		require.True(t, want.Equal(got), in)
	}
	_, err := ParseDate("yesterday")
	require.ErrorIs(t, err, ErrBadDate)
}

func TestMoneyRoundsOnlyAtOutput(t *testing.T) {
	a := decimal.RequireFromString("0.335")
	sum := a.Add(a)
	require.Equal(t, "0.67", Money(sum))
	require.Equal(t, "21.99", Money(decimal.RequireFromString("21.99")))
}
