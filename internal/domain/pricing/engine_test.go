package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centavo/internal/core/apperror"
	"centavo/internal/core/types"
)

func money(s string) types.Money { return types.MustMoney(s) }

func assertMoney(t *testing.T, want string, got types.Money) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), "want %s, got %s", want, got)
}

func TestComputeTotals_ReferenceCase(t *testing.T) {
	// 2 x 10.00 + 1 x 5.00 with 10% line discount, bill discount 3,
	// 10% tax: subtotal 24.50, base 21.50, tax 2.15, grand 23.65.
	in := Input{
		Items: []LineItem{
			{Quantity: 2, UnitPrice: money("10.00")},
			{Quantity: 1, UnitPrice: money("5.00"), Discount: &Discount{Mode: DiscountPercent, Value: money("10")}},
		},
		BillDiscount: &Discount{Mode: DiscountAmount, Value: money("3")},
		TaxPercent:   money("10"),
	}

	totals, err := ComputeTotals(in, Options{IncludeItems: true})
	require.NoError(t, err)

	assertMoney(t, "24.50", totals.Subtotal)
	assertMoney(t, "3.00", totals.BillDiscountApplied)
	assertMoney(t, "21.50", totals.TaxableBase)
	assertMoney(t, "2.15", totals.TaxAmount)
	assertMoney(t, "23.65", totals.GrandTotal)

	require.Len(t, totals.LineSubtotals, 2)
	assertMoney(t, "20.00", totals.LineSubtotals[0])
	assertMoney(t, "4.50", totals.LineSubtotals[1])
}

func TestComputeTotals_GrandTotalInvariant(t *testing.T) {
	// Awkward fractions: the cross-check must hold exactly.
	in := Input{
		Items: []LineItem{
			{Quantity: 3, UnitPrice: money("3.33")},
			{Quantity: 7, UnitPrice: money("1.99"), Discount: &Discount{Mode: DiscountPercent, Value: money("12.5")}},
		},
		BillDiscount: &Discount{Mode: DiscountPercent, Value: money("7")},
		TaxPercent:   money("8.25"),
	}

	totals, err := ComputeTotals(in, Options{})
	require.NoError(t, err)

	assert.True(t, totals.GrandTotal.Equal(totals.TaxableBase.Add(totals.TaxAmount)),
		"grandTotal %s != taxableBase %s + taxAmount %s",
		totals.GrandTotal, totals.TaxableBase, totals.TaxAmount)
	assert.False(t, totals.GrandTotal.IsNegative())
	assert.False(t, totals.TaxableBase.IsNegative())
}

func TestComputeTotals_FullPercentDiscountZeroesLine(t *testing.T) {
	in := Input{
		Items: []LineItem{
			{Quantity: 4, UnitPrice: money("2.50"), Discount: &Discount{Mode: DiscountPercent, Value: money("100")}},
		},
	}

	totals, err := ComputeTotals(in, Options{IncludeItems: true})
	require.NoError(t, err)

	require.Len(t, totals.LineSubtotals, 1)
	assert.True(t, totals.LineSubtotals[0].IsZero())
	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestComputeTotals_AmountDiscountFlooredAtZero(t *testing.T) {
	in := Input{
		Items: []LineItem{
			{Quantity: 1, UnitPrice: money("5.00"), Discount: &Discount{Mode: DiscountAmount, Value: money("50.00")}},
		},
	}

	totals, err := ComputeTotals(in, Options{IncludeItems: true})
	require.NoError(t, err)
	assert.True(t, totals.LineSubtotals[0].IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
}

func TestComputeTotals_BillAmountDiscountFlooredAtZero(t *testing.T) {
	in := Input{
		Items:        []LineItem{{Quantity: 1, UnitPrice: money("10.00")}},
		BillDiscount: &Discount{Mode: DiscountAmount, Value: money("99.00")},
		TaxPercent:   money("5"),
	}

	totals, err := ComputeTotals(in, Options{})
	require.NoError(t, err)
	assert.True(t, totals.TaxableBase.IsZero())
	assert.True(t, totals.TaxAmount.IsZero())
	assert.True(t, totals.GrandTotal.IsZero())
	assertMoney(t, "10.00", totals.BillDiscountApplied)
}

func TestComputeTotals_DefaultTaxIsZero(t *testing.T) {
	in := Input{Items: []LineItem{{Quantity: 2, UnitPrice: money("7.25")}}}

	totals, err := ComputeTotals(in, Options{})
	require.NoError(t, err)
	assert.True(t, totals.TaxAmount.IsZero())
	assertMoney(t, "14.50", totals.GrandTotal)
}

func TestComputeTotals_ExcludesItemsByDefault(t *testing.T) {
	in := Input{Items: []LineItem{{Quantity: 1, UnitPrice: money("1.00")}}}

	totals, err := ComputeTotals(in, Options{})
	require.NoError(t, err)
	assert.Nil(t, totals.LineSubtotals)
}

func TestComputeTotals_Validation(t *testing.T) {
	cases := []struct {
		name string
		in   Input
	}{
		{"zero quantity", Input{Items: []LineItem{{Quantity: 0, UnitPrice: money("1")}}}},
		{"negative quantity", Input{Items: []LineItem{{Quantity: -2, UnitPrice: money("1")}}}},
		{"negative price", Input{Items: []LineItem{{Quantity: 1, UnitPrice: money("-1")}}}},
		{"negative tax", Input{Items: []LineItem{{Quantity: 1, UnitPrice: money("1")}}, TaxPercent: money("-1")}},
		{"tax above 100", Input{Items: []LineItem{{Quantity: 1, UnitPrice: money("1")}}, TaxPercent: money("101")}},
		{"negative discount value", Input{Items: []LineItem{
			{Quantity: 1, UnitPrice: money("1"), Discount: &Discount{Mode: DiscountAmount, Value: money("-5")}},
		}}},
		{"percent discount above 100", Input{Items: []LineItem{
			{Quantity: 1, UnitPrice: money("1"), Discount: &Discount{Mode: DiscountPercent, Value: money("150")}},
		}}},
		{"unknown discount mode", Input{Items: []LineItem{
			{Quantity: 1, UnitPrice: money("1"), Discount: &Discount{Mode: "bogus", Value: money("5")}},
		}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeTotals(tc.in, Options{})
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, apperror.CodeValidation), "expected VALIDATION_ERROR, got %v", err)
		})
	}
}
