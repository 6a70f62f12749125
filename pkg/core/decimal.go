package core

import (
	"fmt"

	"github.com/cockroachdb/apd/v3"
)

// ParseDecimal sets dest from the exchange's string representation.
// Empty strings decode to zero, which is how the exchange reports
// absent numeric fields.
func ParseDecimal(dest *apd.Decimal, s string) error {
	if s == "" {
		*dest = apd.Decimal{}
		return nil
	}

	_, _, err := apd.BaseContext.SetString(dest, s)
	if err != nil {
		return fmt.Errorf("set decimal from string %q: %w", s, err)
	}

	return nil
}

// PowerOfTen returns 10^exp as a decimal. Used to derive the tradable
// price bounds 10^-precision .. 10^precision.
func PowerOfTen(exp int) apd.Decimal {
	var d apd.Decimal
	d.SetFinite(1, int32(exp))
	return d
}

// quantizeCtx bounds the digit count when rendering prices; Quantize
// needs a context with real precision.
var quantizeCtx = apd.BaseContext.WithPrecision(34)

// PriceToPrecision renders a price with exactly digits decimal places,
// the exchange's expected textual form for limit-order prices.
func PriceToPrecision(price *apd.Decimal, digits int) (string, error) {
	var quantized apd.Decimal
	_, err := quantizeCtx.Quantize(&quantized, price, int32(-digits))
	if err != nil {
		return "", fmt.Errorf("quantize price to %d digits: %w", digits, err)
	}
	return quantized.Text('f'), nil
}
