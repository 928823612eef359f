// Package output provides utilities for formatting and displaying payment plans.
package output

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/format"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// ArsPlaceholder fills the ARS column for a row without a converted amount.
	ArsPlaceholder = "—"

	// Disclaimer closes every text summary.
	Disclaimer = "⚠️ El tipo de cambio utilizado es referencial y puede variar sin previo aviso."
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(result *schedule.Result) {
	WritePretty(os.Stdout, result)
}

// WritePretty writes the human-readable table to w.
func WritePretty(w io.Writer, result *schedule.Result) {
	if result == nil {
		fmt.Fprintln(w, "--- Sin resultado: revisá el monto total y la cantidad de cuotas ---")
		return
	}

	p := message.NewPrinter(language.Spanish)
	currency := string(result.Currency)
	showArs := result.HasArsConversion()

	_, _ = p.Fprintf(w, "--- Forma de pago: %d cuotas desde %s ---\n", result.InstallmentCount, result.StartDate)
	if showArs {
		_, _ = p.Fprintf(w, "Tipo de cambio: %s ARS/USD\n", format.Number(*result.ExchangeRate))
	} else if result.IsEcheqsActive {
		_, _ = p.Fprintf(w, "Tipo de cambio: pendiente\n")
	}
	if showArs {
		_, _ = p.Fprintf(w, "#        | Fecha      | Importe (%s)         | Importe (ARS)\n", currency)
		_, _ = p.Fprintf(w, "_        | _____      | _____________         | _____________\n")
	} else {
		_, _ = p.Fprintf(w, "#        | Fecha      | Importe\n")
		_, _ = p.Fprintf(w, "_        | _____      | _______\n")
	}
	for _, item := range result.Items {
		amount := format.Currency(item.Amount, currency)
		if showArs {
			_, _ = p.Fprintf(w, "%-8s | %s | %-21s | %s\n", item.Label, item.DisplayDate, amount, arsCell(item))
		} else {
			_, _ = p.Fprintf(w, "%-8s | %s | %s\n", item.Label, item.DisplayDate, amount)
		}
	}
	_, _ = p.Fprintf(w, "Total: %s\n", format.Currency(result.TotalSum, currency))
	if showArs {
		_, _ = p.Fprintf(w, "Total (ARS): %s\n", format.Currency(*result.TotalSumInArs, "ARS"))
	}
}

// PrettyString returns the human-readable table as a string.
func PrettyString(result *schedule.Result) string {
	var buf bytes.Buffer
	WritePretty(&buf, result)
	return buf.String()
}

// CsvFormat outputs in comma-separated value format.
func CsvFormat(result *schedule.Result) {
	fmt.Print(CsvString(result))
}

// CsvString returns the schedule in comma-separated value format. Amounts are
// plain decimals so the file stays machine readable.
func CsvString(result *schedule.Result) string {
	if result == nil {
		return ""
	}

	var builder strings.Builder
	showArs := result.HasArsConversion()

	builder.WriteString(`"label","date","amount"`)
	if showArs {
		builder.WriteString(`,"amount (ARS)"`)
	}
	builder.WriteString("\n")
	for _, item := range result.Items {
		fmt.Fprintf(&builder, `"%s","%s","%s"`, item.Label, item.ISODate, item.Amount.StringFixed(2))
		if showArs {
			fmt.Fprintf(&builder, `,"%s"`, item.AmountInArs.StringFixed(2))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// TextSummary returns the plain-text summary meant for the clipboard: the plan
// figures followed by a tab-separated detail table.
func TextSummary(result *schedule.Result) string {
	if result == nil {
		return ""
	}

	currency := string(result.Currency)
	showArs := result.HasArsConversion()

	headers := []string{"#", "Fecha", "Importe"}
	if showArs {
		headers = []string{"#", "Fecha", fmt.Sprintf("Importe (%s)", currency), "Importe (ARS)"}
	}
	lines := []string{strings.Join(headers, "\t")}
	for _, item := range result.Items {
		row := []string{item.Label, item.DisplayDate, format.Currency(item.Amount, currency)}
		if showArs {
			row = append(row, arsCell(item))
		}
		lines = append(lines, strings.Join(row, "\t"))
	}

	var builder strings.Builder
	builder.WriteString("FORMA DE PAGO\n")
	if showArs {
		fmt.Fprintf(&builder, "Tipo de cambio: %s ARS/USD\n", format.Number(*result.ExchangeRate))
	}
	fmt.Fprintf(&builder, "Fecha de inicio: %s\n", result.StartDate)
	fmt.Fprintf(&builder, "Moneda base: %s\n", currency)
	fmt.Fprintf(&builder, "Monto total: %s\n", format.Currency(result.Total, currency))
	fmt.Fprintf(&builder, "Entrega: %s (%s%%)\n", format.Currency(result.DownPayment, currency), result.DownPaymentPercent.String())
	fmt.Fprintf(&builder, "Saldo: %s\n", format.Currency(result.Balance, currency))
	fmt.Fprintf(&builder, "Cuotas: %d\n", result.InstallmentCount)
	fmt.Fprintf(&builder, "Valor por cuota: %s\n", format.Currency(result.InstallmentValue, currency))
	builder.WriteString("\nDetalle:\n")
	builder.WriteString(strings.Join(lines, "\n"))
	builder.WriteString("\n\n")
	builder.WriteString(Disclaimer)
	builder.WriteString("\n")
	return builder.String()
}

func arsCell(item schedule.Item) string {
	if item.AmountInArs == nil {
		return ArsPlaceholder
	}
	return format.Currency(*item.AmountInArs, "ARS")
}
