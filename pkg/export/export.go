// Package export rasterizes a payment plan into a PNG image.
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"go.uber.org/zap"
)

// ErrNoResult is returned when there is no schedule to render.
var ErrNoResult = errors.New("no schedule to render")

// Renderer produces PNG bytes for a plan.
type Renderer interface {
	Render(ctx context.Context, result *schedule.Result) ([]byte, error)
}

// Options selects and tunes a renderer.
type Options struct {
	Renderer   string
	Scale      int
	ChromePath string
	Timeout    time.Duration
}

// New builds the renderer named by opts.Renderer.
func New(logger *zap.Logger, opts Options) (Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch opts.Renderer {
	case "", constants.RendererRaster:
		return NewRasterRenderer(opts.Scale), nil
	case constants.RendererBrowser:
		return NewBrowserRenderer(logger, opts.ChromePath, opts.Scale, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported export renderer %q", opts.Renderer)
	}
}

// FileName returns the download name for an export taken at now, e.g.
// forma_de_pago_2024-01-15T12-00-00-000Z.png.
func FileName(now time.Time) string {
	stamp := strings.NewReplacer(":", "-", ".", "-").Replace(now.UTC().Format("2006-01-02T15:04:05.000Z"))
	return constants.ExportFilePrefix + stamp + ".png"
}
