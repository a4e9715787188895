package cart

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
)

// Money is a non-negative amount in cents. It encodes to JSON as a decimal
// number (29.99) so persisted carts and API payloads stay human readable.
type Money int64

// maxAmount is the largest decimal amount whose cents fit in an int64.
const maxAmount = 9.2e16

// FromFloat converts a decimal price to cents, rounding half away from zero.
// The caller guarantees f is finite and within range; decoders use
// parseAmount instead.
func FromFloat(f float64) Money {
	return Money(math.Round(f * 100))
}

// parseAmount converts a decoded price to cents, rejecting values a price can
// never take.
func parseAmount(f float64) (Money, error) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, fmt.Errorf("amount %v is not a finite number", f)
	case f < 0:
		return 0, fmt.Errorf("amount %v is negative", f)
	case f > maxAmount:
		return 0, fmt.Errorf("amount %v is out of range", f)
	}
	return FromFloat(f), nil
}

// Float returns the amount as a decimal number.
func (m Money) Float() float64 {
	return float64(m) / 100
}

// Times returns the amount multiplied by n.
func (m Money) Times(n int) Money {
	return m * Money(n)
}

// Decimal formats the amount with two fraction digits and no currency symbol.
func (m Money) Decimal() string {
	sign := ""
	v := int64(m)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// String formats the amount the way the storefront displays prices: $49.99.
func (m Money) String() string {
	if m < 0 {
		return "-$" + (-m).Decimal()
	}
	return "$" + m.Decimal()
}

// MarshalJSON implements json.Marshaler.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal()), nil
}

// UnmarshalJSON implements json.Unmarshaler. It accepts JSON numbers and
// numeric strings. NaN, infinities, negative and out of range amounts are
// rejected.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = 0
		return nil
	}

	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("parse money %q: %w", data, err)
	}

	v, err := parseAmount(f)
	if err != nil {
		return fmt.Errorf("parse money %q: %w", data, err)
	}
	*m = v
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (m Money) MarshalYAML() (any, error) {
	return m.Float(), nil
}

// UnmarshalYAML implements the yaml.v3 obsolete-style unmarshaler so seed
// files can write prices as plain numbers.
func (m *Money) UnmarshalYAML(unmarshal func(any) error) error {
	var f float64
	if err := unmarshal(&f); err != nil {
		return fmt.Errorf("parse money: %w", err)
	}
	v, err := parseAmount(f)
	if err != nil {
		return fmt.Errorf("parse money: %w", err)
	}
	*m = v
	return nil
}
