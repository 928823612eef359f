package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/internal/form"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// PlanValidator reports advisory warnings about a payment plan form. Warnings
// never change the computed schedule; they only explain how the form was read.
type PlanValidator struct {
	State form.State
}

// ValidateAll inspects the raw form and, when present, the computed result.
func (pv *PlanValidator) ValidateAll(result *schedule.Result) []string {
	var warnings []string
	s := pv.State

	warnings = append(warnings, checkNumber("totalAmount", s.TotalAmount)...)
	warnings = append(warnings, checkNumber("installments", s.Installments)...)
	if n := mathutil.ParseIntOrZero(s.Installments); n > constants.MaxInstallments {
		warnings = append(warnings, fmt.Sprintf("installments %d exceeds the maximum of %d", n, constants.MaxInstallments))
	}

	normalized := s.Normalize()
	if normalized.DownPaymentMode == string(schedule.Amount) {
		warnings = append(warnings, checkNumber("downPaymentAmount", s.DownPaymentAmount)...)
	}

	if strings.TrimSpace(s.StartDate) != "" {
		if _, err := datetime.ParseISODate(s.StartDate); err != nil {
			warnings = append(warnings, fmt.Sprintf("startDate %q is not a YYYY-MM-DD date, using today", s.StartDate))
		}
	}

	if s.DownPaymentPct < 0 || s.DownPaymentPct > constants.MaxDownPaymentPercent {
		warnings = append(warnings, fmt.Sprintf("downPaymentPct %v is outside [0, %d], using %v",
			s.DownPaymentPct, constants.MaxDownPaymentPercent, normalized.DownPaymentPct))
	}

	if s.UseEcheqs && !strings.EqualFold(strings.TrimSpace(s.Currency), string(schedule.USD)) {
		warnings = append(warnings, "echeqs are USD instruments, currency switched to USD")
	}

	if s.UseEcheqs && form.ParseExchangeRate(s.ExchangeRate) == nil {
		warnings = append(warnings, "echeqs are active but no positive exchange rate was given, ARS amounts are pending")
	}

	if result == nil {
		warnings = append(warnings, fmt.Sprintf("no schedule: the total must be positive and there must be between 1 and %d installments",
			constants.MaxInstallments))
		return warnings
	}

	if normalized.DownPaymentMode == string(schedule.Amount) {
		raw := mathutil.ParseDecimalOrZero(s.DownPaymentAmount)
		if raw.GreaterThan(result.Total) {
			warnings = append(warnings, fmt.Sprintf("downPaymentAmount %s exceeds the total, using %s",
				raw.String(), result.DownPayment.String()))
		}
	}

	warnings = append(warnings, CheckFinalInstallmentDrift(result)...)
	return warnings
}

// CheckFinalInstallmentDrift flags a last installment that differs from the
// uniform installment by more than one whole currency unit. That happens when
// whole unit rounding pushes the earlier installments away from balance/n;
// the few cents left over by cent rounding are not reported. The amounts are
// left as computed.
func CheckFinalInstallmentDrift(result *schedule.Result) []string {
	installments := result.Installments()
	if len(installments) < 2 {
		return nil
	}
	last := installments[len(installments)-1]
	drift := last.Amount.Sub(result.InstallmentValue).Abs()
	if drift.GreaterThan(decimal.NewFromInt(1)) {
		return []string{fmt.Sprintf("%s is %s while the other installments are %s",
			last.Label, last.Amount.String(), result.InstallmentValue.String())}
	}
	return nil
}

func checkNumber(field, value string) []string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return []string{fmt.Sprintf("%s is empty, using 0", field)}
	}
	parsed, err := decimal.NewFromString(trimmed)
	if err != nil {
		return []string{fmt.Sprintf("%s %q is not a number, reading it as %s", field, value, numberOrZero(value))}
	}
	if !mathutil.WithinBounds(parsed) {
		return []string{fmt.Sprintf("%s %q is out of range, reading it as 0", field, value)}
	}
	return nil
}

func numberOrZero(value string) string {
	return mathutil.ParseDecimalOrZero(value).String()
}
