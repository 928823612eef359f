package output

import (
	"bytes"
	"html/template"
	"io"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/format"
	"github.com/shopspring/decimal"
)

// PanelElementID is the id of the element holding the rendered plan.
const PanelElementID = "forma-de-pago"

var panelTemplate = template.Must(template.New("panel").Funcs(template.FuncMap{
	"money": func(amount decimal.Decimal, currency schedule.Currency) string {
		return format.Currency(amount, string(currency))
	},
	"ars": func(item schedule.Item) string {
		return arsCell(item)
	},
	"number": format.Number,
	"deref": func(d *decimal.Decimal) decimal.Decimal {
		if d == nil {
			return decimal.Zero
		}
		return *d
	},
	"disclaimer": func() string {
		return Disclaimer
	},
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="utf-8">
<title>Forma de pago</title>
<style>
body { margin: 0; background: #0b0c10; color: #e6e7ea; font-family: system-ui, sans-serif; }
#{{.ID}} { padding: 24px; width: 640px; }
h1 { font-size: 20px; margin: 0 0 12px; }
dl { display: grid; grid-template-columns: max-content 1fr; gap: 4px 16px; margin: 0 0 16px; }
dt { color: #9aa0a6; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 6px 8px; border-bottom: 1px solid #1f2329; }
th { color: #2dd4bf; }
td.amount, th.amount { text-align: right; }
tfoot td { font-weight: 600; }
p.note { color: #9aa0a6; font-size: 12px; }
</style>
</head>
<body>
<div id="{{.ID}}">
{{- with .Result}}
<h1>Forma de pago</h1>
<dl>
<dt>Fecha de inicio</dt><dd>{{.StartDate}}</dd>
<dt>Moneda base</dt><dd>{{.Currency}}</dd>
<dt>Monto total</dt><dd>{{money .Total .Currency}}</dd>
<dt>Entrega</dt><dd>{{money .DownPayment .Currency}} ({{.DownPaymentPercent}}%)</dd>
<dt>Saldo</dt><dd>{{money .Balance .Currency}}</dd>
<dt>Cuotas</dt><dd>{{.InstallmentCount}} de {{money .InstallmentValue .Currency}}</dd>
{{- if .HasArsConversion}}
<dt>Tipo de cambio</dt><dd>{{number (deref .ExchangeRate)}} ARS/USD</dd>
{{- else if .IsEcheqsActive}}
<dt>Tipo de cambio</dt><dd>pendiente</dd>
{{- end}}
</dl>
<table>
<thead><tr><th>#</th><th>Fecha</th><th class="amount">Importe ({{.Currency}})</th>{{if .HasArsConversion}}<th class="amount">Importe (ARS)</th>{{end}}</tr></thead>
<tbody>
{{- $r := .}}
{{- range .Items}}
<tr><td>{{.Label}}</td><td>{{.DisplayDate}}</td><td class="amount">{{money .Amount $r.Currency}}</td>{{if $r.HasArsConversion}}<td class="amount">{{ars .}}</td>{{end}}</tr>
{{- end}}
</tbody>
<tfoot><tr><td colspan="2">Total</td><td class="amount">{{money .TotalSum .Currency}}</td>{{if .HasArsConversion}}<td class="amount">{{money (deref .TotalSumInArs) "ARS"}}</td>{{end}}</tr></tfoot>
</table>
{{- if .IsEcheqsActive}}
<p class="note">{{disclaimer}}</p>
{{- end}}
{{- else}}
<p>Sin resultado</p>
{{- end}}
</div>
</body>
</html>
`))

type panelData struct {
	ID     string
	Result *schedule.Result
}

// WriteHTMLPanel renders the plan as a standalone HTML page.
func WriteHTMLPanel(w io.Writer, result *schedule.Result) error {
	return panelTemplate.Execute(w, panelData{ID: PanelElementID, Result: result})
}

// HTMLPanel returns the plan as a standalone HTML page.
func HTMLPanel(result *schedule.Result) (string, error) {
	var buf bytes.Buffer
	if err := WriteHTMLPanel(&buf, result); err != nil {
		return "", err
	}
	return buf.String(), nil
}
