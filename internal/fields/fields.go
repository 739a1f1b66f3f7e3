// Package fields holds the parsing rules shared by every entry point that accepts
// money amounts and dates: HTTP bodies, JSON imports and spreadsheet cells.
package fields

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, time.RFC3339, "02.01.2006", "2006/01/02", "01/02/2006"}

var (
	ErrNegativeCost  = errors.New("must not be negative")
	ErrCostPrecision = errors.New("must have at most 2 decimal places")
	ErrBadDate       = errors.New("must be a date like 2006-01-02")
)

// CheckCost enforces the currency rules: non-negative, whole cents.
func CheckCost(d decimal.Decimal) error {
	if d.IsNegative() {
		return ErrNegativeCost
	}
	if !d.Equal(d.Round(2)) {
		return ErrCostPrecision
	}
	return nil
}

// ParseCost accepts "1234.5", "1 234,50", "1,234.50" and "12,345". Without a
// dot, a comma is a thousands separator when it repeats or is followed by
// exactly three digits; costs never carry three decimals.
func ParseCost(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(" ", "", "\u00a0", "").Replace(s)
	if strings.Contains(s, ",") {
		if strings.Contains(s, ".") || thousandsComma(s) {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d, CheckCost(d)
}

func thousandsComma(s string) bool {
	if strings.Count(s, ",") > 1 {
		return true
	}
	return len(s)-strings.LastIndexByte(s, ',')-1 == 3
}

func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrBadDate
}

// Money renders an amount rounded to cents; rounding happens only here.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
