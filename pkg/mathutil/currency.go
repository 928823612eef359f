// Package mathutil provides common monetary arithmetic helpers on top of
// shopspring/decimal.
package mathutil

import (
	"strconv"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Round2 rounds a value to two decimals, i.e. to represent real currency.
func Round2(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.DecimalPlaces)
}

// RoundUnit rounds a value to the nearest whole unit, halves away from zero.
func RoundUnit(val decimal.Decimal) decimal.Decimal {
	return val.Round(0)
}

// Clamp bounds val into [lo, hi].
func Clamp(val, lo, hi decimal.Decimal) decimal.Decimal {
	return decimal.Min(decimal.Max(val, lo), hi)
}

// CalculatePercentage calculates what percentage value is of total
func CalculatePercentage(value, total decimal.Decimal) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return value.Div(total).Mul(hundred)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage decimal.Decimal) decimal.Decimal {
	return value.Mul(percentage).Div(hundred)
}

// WithinBounds reports whether d has at most MaxIntegerDigits digits before
// the decimal point and MaxFractionDigits after it. Arithmetic on values
// outside these bounds can grow without limit, so they are never calculated.
func WithinBounds(d decimal.Decimal) bool {
	exp := int64(d.Exponent())
	if exp < -constants.MaxFractionDigits || exp > constants.MaxIntegerDigits {
		return false
	}
	return int64(d.NumDigits())+exp <= constants.MaxIntegerDigits
}

// ParseDecimalOrZero parses the leading number of s, returning zero when
// nothing numeric can be read or the number is out of bounds. "12.5abc"
// yields 12.5, "", "abc" and "1e30" yield 0.
func ParseDecimalOrZero(s string) decimal.Decimal {
	prefix := numericPrefix(strings.TrimSpace(s), true)
	if prefix == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil || !WithinBounds(d) {
		return decimal.Zero
	}
	return d
}

// ParseIntOrZero parses the leading base-10 integer of s, returning zero when
// nothing numeric can be read. "6.9" yields 6.
func ParseIntOrZero(s string) int {
	prefix := numericPrefix(strings.TrimSpace(s), false)
	if prefix == "" {
		return 0
	}
	n, err := strconv.Atoi(prefix)
	if err != nil {
		return 0
	}
	return n
}

// numericPrefix returns the longest prefix of s that forms a valid signed
// number, optionally with a fractional part and exponent.
func numericPrefix(s string, allowFraction bool) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	end := i
	if allowFraction && i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			digits += frac
			i = j
			end = j
		}
	}
	if digits == 0 {
		return ""
	}
	if allowFraction && i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			end = j
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
