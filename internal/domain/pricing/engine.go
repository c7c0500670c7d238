// Package pricing computes receipt totals from line items, discounts and tax.
// The engine is pure: no I/O, no side effects, safe for any number of
// concurrent callers.
package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"centavo/internal/core/apperror"
	"centavo/internal/core/types"
)

// DiscountMode selects how a discount value is interpreted.
type DiscountMode string

const (
	// DiscountAmount subtracts a fixed amount, floored at zero.
	DiscountAmount DiscountMode = "amount"

	// DiscountPercent multiplies by (100 - value)/100. Value must be in [0,100].
	DiscountPercent DiscountMode = "percent"
)

// Discount applies to a line's or the bill's subtotal.
type Discount struct {
	Mode  DiscountMode `json:"mode"`
	Value types.Money  `json:"value"`
}

// LineItem is a single sale or purchase line.
type LineItem struct {
	Quantity  int64       `json:"quantity"`
	UnitPrice types.Money `json:"unitPrice"`
	Discount  *Discount   `json:"discount,omitempty"`
}

// Input is everything the engine needs to price a receipt.
type Input struct {
	Items        []LineItem  `json:"items"`
	BillDiscount *Discount   `json:"billDiscount,omitempty"`
	TaxPercent   types.Money `json:"taxPercent"`
}

// Options controls the shape of the result.
type Options struct {
	// IncludeItems adds the per-line breakdown to the result.
	// Callers that only need the grand total can leave it off.
	IncludeItems bool
}

// ReceiptTotals is the verifiable monetary result of pricing a receipt.
// Invariant: GrandTotal = TaxableBase + TaxAmount exactly, and every
// field is non-negative.
type ReceiptTotals struct {
	LineSubtotals       []types.Money `json:"lineSubtotals,omitempty"`
	Subtotal            types.Money   `json:"subtotal"`
	BillDiscountApplied types.Money   `json:"billDiscountApplied"`
	TaxableBase         types.Money   `json:"taxableBase"`
	TaxAmount           types.Money   `json:"taxAmount"`
	GrandTotal          types.Money   `json:"grandTotal"`
}

var hundred = decimal.NewFromInt(100)

// ComputeTotals prices a receipt.
//
// Per line: subtotal = quantity x unitPrice, then the line discount is
// applied (amount floored at zero, or percent). The bill discount is
// applied to the sum of adjusted lines the same way, yielding the
// taxable base. Tax is taxPercent of the base. Rounding to 2 digits
// happens only when producing output fields, never between intermediate
// steps, so rounding error does not compound.
func ComputeTotals(in Input, opts Options) (*ReceiptTotals, error) {
	if err := validate(in); err != nil {
		return nil, err
	}

	var lineSubtotals []types.Money
	if opts.IncludeItems {
		lineSubtotals = make([]types.Money, 0, len(in.Items))
	}

	subtotal := decimal.Zero
	for _, item := range in.Items {
		line := item.UnitPrice.Mul(decimal.NewFromInt(item.Quantity))
		line = applyDiscount(line, item.Discount)
		subtotal = subtotal.Add(line)
		if opts.IncludeItems {
			lineSubtotals = append(lineSubtotals, types.Round2(line))
		}
	}

	base := applyDiscount(subtotal, in.BillDiscount)

	// Output fields: round here and only here. Tax is computed from the
	// rounded base so that GrandTotal = TaxableBase + TaxAmount holds
	// exactly, with no silent truncation.
	outSubtotal := types.Round2(subtotal)
	outBase := types.Round2(base)
	tax := types.Round2(outBase.Mul(in.TaxPercent).Div(hundred))

	return &ReceiptTotals{
		LineSubtotals:       lineSubtotals,
		Subtotal:            outSubtotal,
		BillDiscountApplied: outSubtotal.Sub(outBase),
		TaxableBase:         outBase,
		TaxAmount:           tax,
		GrandTotal:          outBase.Add(tax),
	}, nil
}

// applyDiscount returns the discounted amount, floored at zero.
func applyDiscount(amount types.Money, d *Discount) types.Money {
	if d == nil {
		return amount
	}
	switch d.Mode {
	case DiscountAmount:
		return types.ClampZero(amount.Sub(d.Value))
	case DiscountPercent:
		return amount.Mul(hundred.Sub(d.Value)).Div(hundred)
	default:
		return amount
	}
}

// validate rejects malformed input before any arithmetic runs.
func validate(in Input) error {
	if in.TaxPercent.IsNegative() || in.TaxPercent.GreaterThan(hundred) {
		return apperror.NewValidation("tax percent must be between 0 and 100").
			WithDetail("taxPercent", in.TaxPercent.String())
	}
	if err := validateDiscount(in.BillDiscount, "billDiscount"); err != nil {
		return err
	}
	for i, item := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Quantity < 1 {
			return apperror.NewValidation("quantity must be at least 1").
				WithDetail("field", field+".quantity")
		}
		if item.UnitPrice.IsNegative() {
			return apperror.NewValidation("unit price must not be negative").
				WithDetail("field", field+".unitPrice")
		}
		if err := validateDiscount(item.Discount, field+".discount"); err != nil {
			return err
		}
	}
	return nil
}

func validateDiscount(d *Discount, field string) error {
	if d == nil {
		return nil
	}
	switch d.Mode {
	case DiscountAmount:
		if d.Value.IsNegative() {
			return apperror.NewValidation("discount amount must not be negative").
				WithDetail("field", field)
		}
	case DiscountPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return apperror.NewValidation("discount percent must be between 0 and 100").
				WithDetail("field", field)
		}
	default:
		return apperror.NewValidation("discount mode must be amount or percent").
			WithDetail("field", field).
			WithDetail("mode", string(d.Mode))
	}
	return nil
}
