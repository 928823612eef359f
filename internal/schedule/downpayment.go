package schedule

import (
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var maxDownPaymentPercent = decimal.NewFromInt(constants.MaxDownPaymentPercent)

// DownPayment is the resolved up-front portion of a plan.
type DownPayment struct {
	Amount  decimal.Decimal
	Percent decimal.Decimal
}

// ResolveDownPayment computes the down payment for total under the given mode.
//
// In Percent mode the percent is clamped into [0, MaxDownPaymentPercent],
// the slider range, and reported after clamping; the amount is
// total*percent/100 rounded to cents. In Amount mode the fixed amount is rounded to
// cents, clamped into [0, total] and the percent is derived and rounded to a
// whole number.
func ResolveDownPayment(total decimal.Decimal, mode DownPaymentMode, percent, amount decimal.Decimal) DownPayment {
	if mode == Amount {
		dp := mathutil.Clamp(mathutil.Round2(amount), decimal.Zero, total)
		return DownPayment{
			Amount:  dp,
			Percent: mathutil.RoundUnit(mathutil.CalculatePercentage(dp, total)),
		}
	}

	pct := mathutil.Clamp(percent, decimal.Zero, maxDownPaymentPercent)
	return DownPayment{
		Amount:  mathutil.Round2(mathutil.ApplyPercentage(total, pct)),
		Percent: pct,
	}
}
