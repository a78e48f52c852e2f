package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// MinAmount is the smallest transferable unit.
var MinAmount = decimal.New(1, -2)

// MaxAmount is the largest value a NUMERIC(18,2) column holds.
var MaxAmount = decimal.RequireFromString("9999999999999999.99")

// AmountScale is the number of decimal places balances are kept at.
const AmountScale = 2

var (
	ErrAmountNotPositive = errors.New("amount must be greater than 0")
	ErrAmountTooSmall    = errors.New("amount must be at least 0.01")
	ErrAmountPrecision   = errors.New("amount must have at most 2 decimal places")
	ErrAmountTooLarge    = errors.New("amount exceeds the maximum")
)

// ValidateAmount checks that amount is a positive value between MinAmount
// and MaxAmount with no sub-cent fraction.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrAmountNotPositive
	}
	if amount.LessThan(MinAmount) {
		return ErrAmountTooSmall
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return ErrAmountPrecision
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}
