// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/payment-plan/internal/form"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/shopspring/decimal"
)

// SampleState is the reference ARS plan: 150000 with 30% down and 6
// installments starting Monday 2024-01-15.
func SampleState() form.State {
	return form.State{
		TotalAmount:     "150000",
		Currency:        "ARS",
		Installments:    "6",
		StartDate:       "2024-01-15",
		DownPaymentMode: "pct",
		DownPaymentPct:  30,
	}
}

// SampleInput is SampleState as a calculation input.
func SampleInput() schedule.Input {
	return schedule.Input{
		TotalAmount:        decimal.NewFromInt(150000),
		Currency:           schedule.ARS,
		InstallmentCount:   6,
		StartDate:          datetime.MustParseISODate("2024-01-15"),
		DownPaymentMode:    schedule.Percent,
		DownPaymentPercent: decimal.NewFromInt(30),
	}
}

// EcheqState is a 1000 USD echeq plan with 30% down and 3 installments. An
// empty rate leaves the plan awaiting an exchange rate.
func EcheqState(rate string) form.State {
	return form.State{
		TotalAmount:     "1000",
		Currency:        "USD",
		Installments:    "3",
		StartDate:       "2024-01-15",
		UseEcheqs:       true,
		ExchangeRate:    rate,
		DownPaymentMode: "pct",
		DownPaymentPct:  30,
	}
}

// EcheqInput is EcheqState as a calculation input.
func EcheqInput(rate string) schedule.Input {
	in := schedule.Input{
		TotalAmount:        decimal.NewFromInt(1000),
		Currency:           schedule.USD,
		InstallmentCount:   3,
		StartDate:          datetime.MustParseISODate("2024-01-15"),
		UseEcheqs:          true,
		DownPaymentMode:    schedule.Percent,
		DownPaymentPercent: decimal.NewFromInt(30),
	}
	if rate != "" {
		r := decimal.RequireFromString(rate)
		in.ExchangeRate = &r
	}
	return in
}

// FindItem finds a schedule row by label.
// Returns a pointer to the item if found, nil otherwise.
func FindItem(result *schedule.Result, label string) *schedule.Item {
	if result == nil {
		return nil
	}
	for i := range result.Items {
		if result.Items[i].Label == label {
			return &result.Items[i]
		}
	}
	return nil
}
