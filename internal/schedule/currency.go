package schedule

import (
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// EcheqsActive reports whether a plan is an echeq-backed USD plan.
func EcheqsActive(currency Currency, useEcheqs bool) bool {
	return currency == USD && useEcheqs
}

// ConversionRate returns the rate to price items in ARS, or nil when the plan
// is not echeq-backed or no positive rate is available.
func ConversionRate(currency Currency, useEcheqs bool, rate *decimal.Decimal) *decimal.Decimal {
	if !EcheqsActive(currency, useEcheqs) || rate == nil || !rate.IsPositive() {
		return nil
	}
	r := *rate
	return &r
}

// ConvertToArs prices amount in ARS at rate, rounded to cents.
func ConvertToArs(amount, rate decimal.Decimal) decimal.Decimal {
	return mathutil.Round2(amount.Mul(rate))
}
