package export

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/format"
	"github.com/iwvelando/payment-plan/pkg/output"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	panelWidth = 600
	padding    = 24
	lineHeight = 20
)

// column offsets in pixels: label, date, amount, ARS amount
var columns = []int{0, 90, 190, 370}

var (
	backgroundColor = color.NRGBA{R: 0x0b, G: 0x0c, B: 0x10, A: 0xff}
	textColor       = color.NRGBA{R: 0xe6, G: 0xe7, B: 0xea, A: 0xff}
	accentColor     = color.NRGBA{R: 0x2d, G: 0xd4, B: 0xbf, A: 0xff}
	mutedColor      = color.NRGBA{R: 0x9a, G: 0xa0, B: 0xa6, A: 0xff}
)

type panelLine struct {
	cells []string
	color color.Color
}

// RasterRenderer draws the plan in-process with a fixed-width bitmap font.
type RasterRenderer struct {
	scale int
}

// NewRasterRenderer creates a renderer that upscales the drawn panel by scale.
func NewRasterRenderer(scale int) *RasterRenderer {
	if scale < 1 {
		scale = constants.DefaultExportScale
	}
	return &RasterRenderer{scale: scale}
}

// Render draws the plan and encodes it as PNG.
func (r *RasterRenderer) Render(ctx context.Context, result *schedule.Result) ([]byte, error) {
	if result == nil {
		return nil, ErrNoResult
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	lines := panelLines(result)
	width := panelWidth + 2*padding
	height := len(lines)*lineHeight + 2*padding

	img := imaging.New(width, height, backgroundColor)
	drawer := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	for i, line := range lines {
		drawer.Src = image.NewUniform(line.color)
		baseline := padding + (i+1)*lineHeight - 6
		for j, cell := range line.cells {
			if j >= len(columns) {
				break
			}
			drawer.Dot = fixed.P(padding+columns[j], baseline)
			drawer.DrawString(cell)
		}
	}

	var out image.Image = img
	if r.scale > 1 {
		out = imaging.Resize(img, width*r.scale, height*r.scale, imaging.NearestNeighbor)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, out, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}

func panelLines(result *schedule.Result) []panelLine {
	currency := string(result.Currency)
	showArs := result.HasArsConversion()
	text := func(s string) panelLine { return panelLine{cells: []string{s}, color: textColor} }

	lines := []panelLine{
		{cells: []string{"FORMA DE PAGO"}, color: accentColor},
		text("Fecha de inicio: " + result.StartDate),
		text("Moneda base: " + currency),
		text("Monto total: " + format.Currency(result.Total, currency)),
		text(fmt.Sprintf("Entrega: %s (%s%%)", format.Currency(result.DownPayment, currency), result.DownPaymentPercent.String())),
		text("Saldo: " + format.Currency(result.Balance, currency)),
		text(fmt.Sprintf("Cuotas: %d de %s", result.InstallmentCount, format.Currency(result.InstallmentValue, currency))),
	}
	if showArs {
		lines = append(lines, text(fmt.Sprintf("Tipo de cambio: %s ARS/USD", format.Number(*result.ExchangeRate))))
	} else if result.IsEcheqsActive {
		lines = append(lines, text("Tipo de cambio: pendiente"))
	}
	lines = append(lines, text(""))

	header := []string{"#", "Fecha", fmt.Sprintf("Importe (%s)", currency)}
	if showArs {
		header = append(header, "Importe (ARS)")
	}
	lines = append(lines, panelLine{cells: header, color: accentColor})

	for _, item := range result.Items {
		cells := []string{item.Label, item.DisplayDate, format.Currency(item.Amount, currency)}
		if showArs {
			cells = append(cells, format.Currency(*item.AmountInArs, "ARS"))
		}
		lines = append(lines, panelLine{cells: cells, color: textColor})
	}

	total := []string{"Total", "", format.Currency(result.TotalSum, currency)}
	if showArs {
		total = append(total, format.Currency(*result.TotalSumInArs, "ARS"))
	}
	lines = append(lines, panelLine{cells: total, color: accentColor})

	if result.IsEcheqsActive {
		disclaimer := strings.TrimSpace(strings.TrimPrefix(output.Disclaimer, "⚠️"))
		lines = append(lines, text(""), panelLine{cells: []string{disclaimer}, color: mutedColor})
	}
	return lines
}
