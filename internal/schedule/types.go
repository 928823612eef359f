// Package schedule computes interest-free installment payment plans: a down
// payment followed by equal installments every 30 days, each rolled forward
// off weekends, optionally priced in ARS for echeq-backed USD plans.
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is the base currency of a plan.
type Currency string

const (
	ARS Currency = "ARS"
	USD Currency = "USD"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == ARS || c == USD
}

// DownPaymentMode selects how the down payment is expressed.
type DownPaymentMode string

const (
	// Percent expresses the down payment as a share of the total.
	Percent DownPaymentMode = "pct"
	// Amount expresses the down payment as a fixed amount.
	Amount DownPaymentMode = "amount"
)

// Valid reports whether m is a supported mode.
func (m DownPaymentMode) Valid() bool {
	return m == Percent || m == Amount
}

// Input holds the normalized parameters of one calculation.
type Input struct {
	TotalAmount        decimal.Decimal
	Currency           Currency
	InstallmentCount   int
	StartDate          time.Time
	UseEcheqs          bool
	ExchangeRate       *decimal.Decimal
	DownPaymentMode    DownPaymentMode
	DownPaymentPercent decimal.Decimal
	DownPaymentAmount  decimal.Decimal
	RoundToInteger     bool
}

// Item is one row of a schedule.
type Item struct {
	Label string `json:"label"`
	// Installment is 0 for the down payment and i for "Cuota i".
	Installment int              `json:"installment"`
	Date        time.Time        `json:"-"`
	DisplayDate string           `json:"date"`
	ISODate     string           `json:"isoDate"`
	Amount      decimal.Decimal  `json:"amount"`
	AmountInArs *decimal.Decimal `json:"amountInArs,omitempty"`
}

// IsDownPayment reports whether the item is the down payment.
func (i Item) IsDownPayment() bool {
	return i.Installment == 0
}

// Result is the immutable outcome of a calculation.
type Result struct {
	Total              decimal.Decimal  `json:"total"`
	DownPayment        decimal.Decimal  `json:"downPayment"`
	DownPaymentPercent decimal.Decimal  `json:"downPaymentPercent"`
	Balance            decimal.Decimal  `json:"balance"`
	InstallmentCount   int              `json:"installmentCount"`
	InstallmentValue   decimal.Decimal  `json:"installmentValue"`
	Items              []Item           `json:"items"`
	TotalSum           decimal.Decimal  `json:"totalSum"`
	TotalSumInArs      *decimal.Decimal `json:"totalSumInArs,omitempty"`
	Currency           Currency         `json:"currency"`
	IsEcheqsActive     bool             `json:"isEcheqsActive"`
	ExchangeRate       *decimal.Decimal `json:"exchangeRate"`
	StartDate          string           `json:"startDate"`
	StartDateValue     time.Time        `json:"-"`
}

// HasArsConversion reports whether items carry ARS amounts, i.e. echeqs are
// active and a positive exchange rate was supplied.
func (r *Result) HasArsConversion() bool {
	return r != nil && r.TotalSumInArs != nil
}

// DownPaymentItem returns the down payment row, if the plan has one.
func (r *Result) DownPaymentItem() (Item, bool) {
	if r == nil || len(r.Items) == 0 || !r.Items[0].IsDownPayment() {
		return Item{}, false
	}
	return r.Items[0], true
}

// Installments returns the installment rows without the down payment.
func (r *Result) Installments() []Item {
	if r == nil {
		return nil
	}
	if _, ok := r.DownPaymentItem(); ok {
		return r.Items[1:]
	}
	return r.Items
}
