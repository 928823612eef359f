// Package form turns the raw, string-typed state of the payment plan form into
// a schedule.Input. Parsing is permissive: anything that does not read as a
// number counts as zero, an unusable exchange rate counts as absent and a
// missing start date means today.
package form

import (
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/shopspring/decimal"
)

// State mirrors the fields of the payment plan form as the user typed them.
type State struct {
	TotalAmount       string  `json:"totalAmount" yaml:"totalAmount" mapstructure:"totalAmount"`
	Currency          string  `json:"currency" yaml:"currency" mapstructure:"currency"`
	Installments      string  `json:"installments" yaml:"installments" mapstructure:"installments"`
	StartDate         string  `json:"startDate" yaml:"startDate" mapstructure:"startDate"`
	UseEcheqs         bool    `json:"useEcheqs" yaml:"useEcheqs" mapstructure:"useEcheqs"`
	ExchangeRate      string  `json:"exchangeRate" yaml:"exchangeRate" mapstructure:"exchangeRate"`
	DownPaymentMode   string  `json:"downPaymentMode" yaml:"downPaymentMode" mapstructure:"downPaymentMode"`
	DownPaymentPct    float64 `json:"downPaymentPct" yaml:"downPaymentPct" mapstructure:"downPaymentPct"`
	DownPaymentAmount string  `json:"downPaymentAmount" yaml:"downPaymentAmount" mapstructure:"downPaymentAmount"`
	RoundInstallments bool    `json:"roundInstallments" yaml:"roundInstallments" mapstructure:"roundInstallments"`
}

// Default returns the initial state of the form for the given moment.
func Default(now time.Time) State {
	return State{
		TotalAmount:     constants.DefaultTotalAmount,
		Currency:        string(schedule.ARS),
		Installments:    constants.DefaultInstallments,
		StartDate:       datetime.FormatISO(datetime.Today(now)),
		DownPaymentMode: string(schedule.Percent),
		DownPaymentPct:  constants.DefaultDownPaymentPercent,
	}
}

// Normalize applies the form's own coupling rules: choosing echeqs switches
// the currency to USD, and unknown currencies or modes fall back to ARS and
// percent.
func (s State) Normalize() State {
	s.Currency = strings.ToUpper(strings.TrimSpace(s.Currency))
	if !schedule.Currency(s.Currency).Valid() {
		s.Currency = string(schedule.ARS)
	}
	if s.UseEcheqs {
		s.Currency = string(schedule.USD)
	}

	s.DownPaymentMode = strings.ToLower(strings.TrimSpace(s.DownPaymentMode))
	if !schedule.DownPaymentMode(s.DownPaymentMode).Valid() {
		s.DownPaymentMode = string(schedule.Percent)
	}

	if s.DownPaymentPct < 0 {
		s.DownPaymentPct = 0
	}
	if s.DownPaymentPct > constants.MaxDownPaymentPercent {
		s.DownPaymentPct = constants.MaxDownPaymentPercent
	}
	return s
}

// ToInput converts the form state into a calculation input, using the current
// time for a missing start date.
func (s State) ToInput() schedule.Input {
	return s.ToInputWithFixedTime(time.Now())
}

// ToInputWithFixedTime converts the form state into a calculation input with
// injectable time for testing.
func (s State) ToInputWithFixedTime(now time.Time) schedule.Input {
	s = s.Normalize()

	return schedule.Input{
		TotalAmount:        mathutil.ParseDecimalOrZero(s.TotalAmount),
		Currency:           schedule.Currency(s.Currency),
		InstallmentCount:   mathutil.ParseIntOrZero(s.Installments),
		StartDate:          s.startDate(now),
		UseEcheqs:          s.UseEcheqs,
		ExchangeRate:       ParseExchangeRate(s.ExchangeRate),
		DownPaymentMode:    schedule.DownPaymentMode(s.DownPaymentMode),
		DownPaymentPercent: decimal.NewFromFloat(s.DownPaymentPct),
		DownPaymentAmount:  mathutil.ParseDecimalOrZero(s.DownPaymentAmount),
		RoundToInteger:     s.RoundInstallments,
	}
}

func (s State) startDate(now time.Time) time.Time {
	if strings.TrimSpace(s.StartDate) == "" {
		return datetime.Today(now)
	}
	t, err := datetime.ParseISODate(s.StartDate)
	if err != nil {
		return datetime.Today(now)
	}
	return t
}

// ParseExchangeRate reads a rate permissively; zero, negative and unparsable
// values mean no rate.
func ParseExchangeRate(value string) *decimal.Decimal {
	r := mathutil.ParseDecimalOrZero(value)
	if !r.IsPositive() {
		return nil
	}
	return &r
}
