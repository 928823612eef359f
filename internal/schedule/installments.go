package schedule

import (
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// GenerateInstallments splits balance into n installment amounts.
//
// Every installment gets the uniform value (balance/n rounded to cents, or to
// whole units when roundToInteger is set) except the last, which takes
// whatever remains so the installments add up to balance. With
// roundToInteger the remainder is used as is and may sit far from the uniform
// value. The returned uniform value is the one before that correction.
func GenerateInstallments(balance decimal.Decimal, n int, roundToInteger bool) (amounts []decimal.Decimal, uniform decimal.Decimal) {
	if n < 1 {
		return nil, decimal.Zero
	}

	base := decimal.Zero
	if balance.IsPositive() {
		base = balance.Div(decimal.NewFromInt(int64(n)))
	}
	if roundToInteger {
		uniform = mathutil.RoundUnit(base)
	} else {
		uniform = mathutil.Round2(base)
	}

	amounts = make([]decimal.Decimal, 0, n)
	accumulated := decimal.Zero
	for i := 1; i <= n; i++ {
		current := uniform
		if i == n {
			current = balance.Sub(accumulated)
			if !roundToInteger {
				current = mathutil.Round2(current)
			}
		}
		accumulated = accumulated.Add(current)
		amounts = append(amounts, current)
	}
	return amounts, uniform
}
