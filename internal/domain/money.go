package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money represents a monetary value.
// Amount is stored as BIGINT micros (10^-6) to avoid floating point errors.
type Money struct {
	Amount int64 // micros
}

// NewMoney creates a new Money instance from micros.
func NewMoney(amount int64) Money {
	return Money{Amount: amount}
}

// ToDecimal converts the int64 micros to a shopspring/decimal.Decimal.
func (m Money) ToDecimal() decimal.Decimal {
	return decimal.NewFromInt(m.Amount).Div(decimal.NewFromInt(1_000_000))
}

// FromDecimal converts a decimal.Decimal to int64 micros.
func FromDecimal(d decimal.Decimal) int64 {
	return d.Mul(decimal.NewFromInt(1_000_000)).IntPart()
}

// MicrosToFloat converts micros to whole currency units as float64.
// The risk feature vector and rule thresholds operate on currency units,
// matching the scale the classifier was trained on.
func MicrosToFloat(micros int64) float64 {
	return float64(micros) / 1_000_000
}

// FloatToMicros converts whole currency units to micros, rounding half up.
func FloatToMicros(units float64) int64 {
	return FromDecimal(decimal.NewFromFloat(units))
}

// String returns the string representation of the money.
func (m Money) String() string {
	return fmt.Sprintf("$%s", m.ToDecimal().StringFixed(2))
}

// MaskAccountNumber hides all but the last four digits of an account number.
func MaskAccountNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	return "****" + number[len(number)-4:]
}
