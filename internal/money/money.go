// Package money provides exact fixed-point currency arithmetic in millimes,
// the three-decimal sub-unit used for all revenue and cost fields.
package money

import (
	"fmt"
	"strconv"
	"strings"
)

// MillimesPerUnit is the number of minor units in one currency unit.
const MillimesPerUnit = 1000

// Amount is a currency value in millimes. It marshals to JSON as a decimal
// string with three fraction digits so repeated aggregation never drifts.
type Amount int64

// FromMillimes builds an Amount from a raw minor-unit count.
func FromMillimes(m int64) Amount {
	return Amount(m)
}

// FromUnits builds an Amount from whole currency units.
func FromUnits(u int64) Amount {
	return Amount(u * MillimesPerUnit)
}

// Parse reads a decimal string such as "100.000", "2.5" or "-10".
// At most three fraction digits are accepted.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" && fracPart == "" {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if len(fracPart) > 3 {
		return 0, fmt.Errorf("amount %q has more than 3 fraction digits", s)
	}
	for len(fracPart) < 3 {
		fracPart += "0"
	}
	var units int64
	if intPart != "" {
		var err error
		units, err = strconv.ParseInt(intPart, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	v := units*MillimesPerUnit + frac
	if neg {
		v = -v
	}
	return Amount(v), nil
}

// Millimes returns the raw minor-unit count.
func (a Amount) Millimes() int64 {
	return int64(a)
}

// Add returns a + b.
func (a Amount) Add(b Amount) Amount {
	return a + b
}

// Sub returns a - b.
func (a Amount) Sub(b Amount) Amount {
	return a - b
}

// IsNegative reports whether the amount is below zero.
func (a Amount) IsNegative() bool {
	return a < 0
}

// Percent returns pct percent of the amount, rounded half to even at the
// millime. This is the only operation in the system that can produce a
// non-terminating decimal.
func (a Amount) Percent(pct int64) Amount {
	prod := int64(a) * pct
	neg := prod < 0
	if neg {
		prod = -prod
	}
	q, r := prod/100, prod%100
	if r*2 > 100 || (r*2 == 100 && q%2 == 1) {
		q++
	}
	if neg {
		q = -q
	}
	return Amount(q)
}

// String formats the amount as a decimal with three fraction digits.
func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%03d", sign, v/MillimesPerUnit, v%MillimesPerUnit)
}

// MarshalJSON encodes the amount as a quoted decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(a.String())), nil
}

// UnmarshalJSON accepts either a quoted decimal string or a bare JSON number.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	v, err := Parse(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
