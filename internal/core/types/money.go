// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point drift. Intermediate
// calculations keep full precision; public amounts are rounded to
// 2 fractional digits with Round2 only at output boundaries.
type Money = decimal.Decimal

// MoneyScale is the number of fractional digits for public amounts.
const MoneyScale = 2

// NewMoneyFromString creates a Money value from a string.
// This is the preferred constructor for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// NewMoneyFromInt creates a Money value from whole currency units.
func NewMoneyFromInt(v int64) Money {
	return decimal.NewFromInt(v)
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

var half = decimal.New(5, -1)

// Round2 rounds to 2 fractional digits, half up: ties go toward
// positive infinity, so 5.125 rounds to 5.13 and -5.125 to -5.12.
// decimal.Round is half away from zero, which differs on negative
// ties (a negative closing variance, for example).
// All Money values crossing the API boundary pass through here.
func Round2(m Money) Money {
	return m.Shift(MoneyScale).Add(half).Floor().Shift(-MoneyScale)
}

// ClampZero floors a Money value at zero. Used when an amount discount
// would otherwise drive a subtotal negative.
func ClampZero(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}
