// Package validation provides common validation utilities.
package validation

import (
	"fmt"
	"strings"

	"github.com/iwvelando/payment-plan/pkg/constants"
)

var outputFormats = []string{
	constants.OutputFormatPretty,
	constants.OutputFormatCSV,
	constants.OutputFormatText,
	constants.OutputFormatPNG,
}

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	for _, f := range outputFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("expected output format of %s, got %s",
		strings.Join(outputFormats, ", "), format)
}

// ValidateRenderer checks if the export renderer is one of the supported renderers.
func ValidateRenderer(renderer string) error {
	if renderer != constants.RendererRaster && renderer != constants.RendererBrowser {
		return fmt.Errorf("expected export renderer of %s or %s, got %s",
			constants.RendererRaster, constants.RendererBrowser, renderer)
	}
	return nil
}
