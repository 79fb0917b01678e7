// Package money converts between display amounts and the integer minor
// currency units used everywhere inside the backend.
//
// All ledger arithmetic happens on int64 minor units; decimal values only
// exist at the API and import boundaries.
package money

import (
	"errors"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// ErrPrecision is returned when an amount carries more precision than the
// currency's minor unit, e.g. 12.345 for a two-digit currency.
var ErrPrecision = errors.New("the amount has more decimal places than the currency allows")

// Unit returns the currency the instance is configured for via the CURRENCY
// environment variable. The default is USD.
func Unit() (currency.Unit, error) {
	code, ok := os.LookupEnv("CURRENCY")
	if !ok {
		return currency.USD, nil
	}

	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("invalid CURRENCY %q: %w", code, err)
	}

	return unit, nil
}

// Scale returns the number of minor unit digits of the configured currency,
// e.g. 2 for USD or 0 for JPY.
func Scale() (int, error) {
	unit, err := Unit()
	if err != nil {
		return 0, err
	}

	scale, _ := currency.Standard.Rounding(unit)
	return scale, nil
}

// ToMinor converts a display amount to minor units for the given scale.
func ToMinor(amount decimal.Decimal, scale int) (int64, error) {
	shifted := amount.Shift(int32(scale))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %s", ErrPrecision, amount)
	}

	return shifted.IntPart(), nil
}

// FromMinor converts minor units back to a display amount for the given scale.
func FromMinor(amount int64, scale int) decimal.Decimal {
	return decimal.New(amount, 0).Shift(int32(-scale))
}
