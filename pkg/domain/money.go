package domain

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// anything above this is a typo, and would overflow cents anyway
var maxAmount = decimal.New(1, 15)

// Money is an amount of currency held as whole cents.
type Money struct {
	Cents int64
}

// Cents builds a Money value from a cent count.
func Cents(c int64) Money {
	return Money{Cents: c}
}

// ParseMoney reads an amount as typed by a user, eg. "12.50", "12,5" or "$3".
//
// The value is rounded half-up to two decimals. Anything that is not a number or
// that rounds to zero or less is ErrInvalidAmount.
func ParseMoney(s string) (Money, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	if d.Abs().GreaterThan(maxAmount) {
		return Money{}, fmt.Errorf("%w: %q is too large", ErrInvalidAmount, s)
	}

	m := fromDecimal(d)
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

func fromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Round(2).Shift(2).IntPart()}
}

// Validate returns ErrInvalidAmount unless the amount is positive.
func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

// Decimal returns the amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float64 is for charting only; sums are always done in cents.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// String formats with exactly two decimals, eg. "12.50" or "-3.00".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// Dollars formats for display, eg. "$12.50" or "-$3.00".
func (m Money) Dollars() string {
	if m.Cents < 0 {
		return "-$" + Money{Cents: -m.Cents}.String()
	}
	return "$" + m.String()
}

// MarshalJSON writes a plain JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted number. Older files were
// written with float arithmetic (12.300000000000001) so the value is rounded.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	if len(data) == 0 || string(data) == "null" {
		*m = Money{}
		return nil
	}

	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", data, err)
	}
	if d.Abs().GreaterThan(maxAmount) {
		return fmt.Errorf("invalid amount %q: too large", data)
	}

	*m = fromDecimal(d)
	return nil
}
