package schedule

import (
	"fmt"
	"time"

	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Calculator computes payment plans, logging each computation at debug level.
type Calculator struct {
	logger *zap.Logger
}

// NewCalculator creates a new calculator instance
func NewCalculator(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Calculate computes the plan for in without logging. It returns nil when the
// total is not positive or the installment count is outside
// [1, constants.MaxInstallments].
func Calculate(in Input) *Result {
	return NewCalculator(nil).Calculate(in)
}

// Calculate computes the plan for in. It returns nil when the total is not
// positive or the installment count is outside [1, constants.MaxInstallments].
func (c *Calculator) Calculate(in Input) *Result {
	if !in.TotalAmount.IsPositive() || in.InstallmentCount < 1 || in.InstallmentCount > constants.MaxInstallments {
		c.logger.Debug("no schedule for input",
			zap.String("op", "schedule.Calculate"),
			zap.String("total", in.TotalAmount.String()),
			zap.Int("installments", in.InstallmentCount),
		)
		return nil
	}

	total := in.TotalAmount
	dp := ResolveDownPayment(total, in.DownPaymentMode, in.DownPaymentPercent, in.DownPaymentAmount)
	balance := mathutil.Round2(total.Sub(dp.Amount))
	amounts, uniform := GenerateInstallments(balance, in.InstallmentCount, in.RoundToInteger)

	isEcheqs := EcheqsActive(in.Currency, in.UseEcheqs)
	rate := ConversionRate(in.Currency, in.UseEcheqs, in.ExchangeRate)

	result := &Result{
		Total:              total,
		DownPayment:        dp.Amount,
		DownPaymentPercent: dp.Percent,
		Balance:            balance,
		InstallmentCount:   in.InstallmentCount,
		InstallmentValue:   uniform,
		Items:              make([]Item, 0, in.InstallmentCount+1),
		Currency:           in.Currency,
		IsEcheqsActive:     isEcheqs,
		StartDate:          datetime.FormatDisplay(in.StartDate),
		StartDateValue:     in.StartDate,
	}
	if in.ExchangeRate != nil {
		r := *in.ExchangeRate
		result.ExchangeRate = &r
	}

	totalSum := decimal.Zero
	totalSumInArs := decimal.Zero
	add := func(item Item) {
		if rate != nil {
			ars := ConvertToArs(item.Amount, *rate)
			item.AmountInArs = &ars
			totalSumInArs = totalSumInArs.Add(ars)
		}
		totalSum = totalSum.Add(item.Amount)
		result.Items = append(result.Items, item)
	}

	if dp.Amount.IsPositive() {
		add(newItem(constants.DownPaymentLabel, 0, DownPaymentDate(in.StartDate), dp.Amount))
	}
	for i, amount := range amounts {
		n := i + 1
		add(newItem(fmt.Sprintf(constants.InstallmentLabelFormat, n), n, InstallmentDate(in.StartDate, n), amount))
	}

	result.TotalSum = totalSum
	if rate != nil {
		result.TotalSumInArs = &totalSumInArs
	}

	c.logger.Debug("computed schedule",
		zap.String("op", "schedule.Calculate"),
		zap.String("total", total.String()),
		zap.String("downPayment", dp.Amount.String()),
		zap.String("balance", balance.String()),
		zap.Int("installments", in.InstallmentCount),
		zap.String("installmentValue", uniform.String()),
		zap.Bool("echeqs", isEcheqs),
		zap.Bool("arsConversion", rate != nil),
	)

	return result
}

func newItem(label string, installment int, date time.Time, amount decimal.Decimal) Item {
	return Item{
		Label:       label,
		Installment: installment,
		Date:        date,
		DisplayDate: datetime.FormatDisplay(date),
		ISODate:     datetime.FormatISO(date),
		Amount:      amount,
	}
}
