/**
 * @description
 * This file defines the Money type used for every balance and amount in the
 * ledger. Money is an exact fixed-point decimal with two fractional digits,
 * backed by shopspring/decimal so arithmetic never goes through a binary
 * float. Values are quantized (round-half-up at the 2-digit boundary) on
 * construction, so every Money that leaves this package is already at scale 2.
 *
 * @dependencies
 * - github.com/shopspring/decimal: Arbitrary-precision decimal arithmetic.
 */

package domain

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// moneyScale is the number of fractional digits every Money value carries.
const moneyScale = 2

// Money is an exact decimal amount with two fractional digits.
// The zero value is 0.00 and ready to use.
type Money struct {
	d decimal.Decimal
}

// NewMoney quantizes d to two fractional digits, rounding half up.
func NewMoney(d decimal.Decimal) Money {
	return Money{d: d.Round(moneyScale)}
}

// ParseMoney parses a decimal string such as "10.50" into a Money value.
// Inputs with more than two fractional digits are quantized round-half-up.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q", ErrInvalidAmountFormat, s)
	}
	return NewMoney(d), nil
}

// MustMoney is ParseMoney for trusted literals. It panics on malformed input.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns 0.00.
func ZeroMoney() Money {
	return Money{}
}

// Add returns m + o. The sum of two scale-2 values is exact at scale 2.
func (m Money) Add(o Money) Money {
	return Money{d: m.d.Add(o.d)}
}

// Sub returns m - o. The result may be negative; callers enforce balance
// invariants.
func (m Money) Sub(o Money) Money {
	return Money{d: m.d.Sub(o.d)}
}

// Cmp compares quantized values: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	return m.d.Cmp(o.d)
}

// Equal reports whether m and o represent the same quantized value.
func (m Money) Equal(o Money) bool {
	return m.d.Equal(o.d)
}

// IsZero reports whether m is exactly 0.00.
func (m Money) IsZero() bool {
	return m.d.IsZero()
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.d.IsPositive()
}

// IsNegative reports whether m < 0.
func (m Money) IsNegative() bool {
	return m.d.IsNegative()
}

// String renders the value with exactly two fractional digits, e.g. "0.06".
func (m Money) String() string {
	return m.d.StringFixed(moneyScale)
}

// Decimal exposes the underlying decimal for aggregation by collaborators.
func (m Money) Decimal() decimal.Decimal {
	return m.d
}

// MarshalJSON encodes Money as a decimal string, never a binary float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

// UnmarshalJSON accepts a quoted decimal string ("10.50") or a bare JSON
// number. Either form is parsed exactly and quantized.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidAmountFormat, s)
		}
		s = unquoted
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
