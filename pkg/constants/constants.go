// Package constants provides shared constants for the payment-plan application.
package constants

// ISODateLayout is the format expected in config files and API payloads.
const ISODateLayout = "2006-01-02"

// DisplayDateLayout is the dd/mm/yyyy format used for every rendered date.
const DisplayDateLayout = "02/01/2006"

// Schedule constants
const (
	// InstallmentCadenceDays is the number of calendar days between installments
	InstallmentCadenceDays = 30

	// DecimalPlaces is the precision for currency rounding (2 decimal places)
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100

	// MaxDownPaymentPercent is the upper bound of the down payment slider
	MaxDownPaymentPercent = 90

	// MaxInstallments is the largest installment count a plan may have
	MaxInstallments = 360

	// MaxIntegerDigits bounds the integer part of any parsed amount
	MaxIntegerDigits = 15

	// MaxFractionDigits bounds the fractional part of any parsed amount
	MaxFractionDigits = 10

	// DownPaymentLabel labels the up-front portion of the schedule
	DownPaymentLabel = "Entrega"

	// InstallmentLabelFormat labels each installment, 1-based
	InstallmentLabelFormat = "Cuota %d"
)

// Form defaults, matching the initial state of the web form.
const (
	DefaultTotalAmount        = "150000"
	DefaultInstallments       = "6"
	DefaultDownPaymentPercent = 30
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatText is the clipboard-style plain text summary
	OutputFormatText = "text"

	// OutputFormatPNG is the rasterized image export
	OutputFormatPNG = "png"
)

// Export renderer constants
const (
	// RendererRaster draws the panel in-process
	RendererRaster = "raster"

	// RendererBrowser screenshots the HTML panel with headless Chrome
	RendererBrowser = "browser"

	// DefaultExportScale matches the 2x scale of the original export
	DefaultExportScale = 2

	// ExportFilePrefix is prepended to exported PNG file names
	ExportFilePrefix = "forma_de_pago_"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// EnvPrefix prefixes environment overrides, e.g. PAYMENT_PLAN_LOGGING_LEVEL
	EnvPrefix = "PAYMENT_PLAN"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultRateKey is the Redis key holding the reference exchange rate
	DefaultRateKey = "payment-plan:exchange-rate:usd-ars"

	// DefaultServiceName identifies the service in traces
	DefaultServiceName = "payment-plan"
)
