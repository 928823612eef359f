// Package format renders amounts the way Argentine users read them: "." as the
// thousands separator and "," before the cents.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"ARS": "$",
	"USD": "US$",
}

// Currency returns an amount with its currency symbol and es-AR separators
// (e.g., "$ 1.234,56" for ARS, "US$ 1.234,56" for USD, "-$ 10,00").
func Currency(amount decimal.Decimal, currency string) string {
	symbol, ok := symbols[strings.ToUpper(currency)]
	if !ok {
		symbol = strings.ToUpper(currency)
	}
	formatted := formatPositive(amount.Abs())
	if amount.IsNegative() {
		return "-" + symbol + " " + formatted
	}
	return symbol + " " + formatted
}

// Number returns an amount with separators but no symbol (e.g., "1.234,56").
func Number(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
	}
	return sign + formatPositive(amount.Abs())
}

func formatPositive(value decimal.Decimal) string {
	formatted := value.StringFixed(2)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte('.')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "," + decPart
}
