// Package config defines the data structures related to configuration and
// includes functions for loading it from YAML, .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/iwvelando/payment-plan/internal/form"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/validation"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Configuration holds all configuration for payment-plan.
type Configuration struct {
	Plan    form.State    `mapstructure:"plan" yaml:"plan"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging,omitempty"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output,omitempty"`
	Export  ExportConfig  `mapstructure:"export" yaml:"export,omitempty"`
	Server  ServerConfig  `mapstructure:"server" yaml:"server,omitempty"`
	Rates   RatesConfig   `mapstructure:"rates" yaml:"rates,omitempty"`
	Tracing TracingConfig `mapstructure:"tracing" yaml:"tracing,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level,omitempty"`           // debug, info, warn, error
	Format     string `mapstructure:"format" yaml:"format,omitempty"`         // json, console
	OutputFile string `mapstructure:"outputFile" yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format,omitempty"` // pretty, csv, text, png
	File   string `mapstructure:"file" yaml:"file,omitempty"`     // empty writes to stdout, png defaults to a timestamped name
}

// ExportConfig selects how PNG exports are produced.
type ExportConfig struct {
	Renderer   string `mapstructure:"renderer" yaml:"renderer,omitempty"` // raster, browser
	Scale      int    `mapstructure:"scale" yaml:"scale,omitempty"`
	ChromePath string `mapstructure:"chromePath" yaml:"chromePath,omitempty"`
	Timeout    string `mapstructure:"timeout" yaml:"timeout,omitempty"` // Go duration, browser renderer only
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Address     string `mapstructure:"address" yaml:"address,omitempty"`
	MaxBodySize string `mapstructure:"maxBodySize" yaml:"maxBodySize,omitempty"` // e.g. 64K, 1M
}

// RatesConfig points at the store for the reference exchange rate. An empty
// RedisAddr keeps the rate in memory.
type RatesConfig struct {
	RedisAddr string `mapstructure:"redisAddr" yaml:"redisAddr,omitempty"`
	Key       string `mapstructure:"key" yaml:"key,omitempty"`
}

// TracingConfig configures OpenTelemetry export. An empty Endpoint discards
// spans.
type TracingConfig struct {
	Endpoint    string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	ServiceName string `mapstructure:"serviceName" yaml:"serviceName,omitempty"`
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default for AutomaticEnv to see it during Unmarshal.
	v.SetDefault("plan.totalAmount", constants.DefaultTotalAmount)
	v.SetDefault("plan.currency", string(schedule.ARS))
	v.SetDefault("plan.installments", constants.DefaultInstallments)
	v.SetDefault("plan.startDate", "")
	v.SetDefault("plan.useEcheqs", false)
	v.SetDefault("plan.exchangeRate", "")
	v.SetDefault("plan.downPaymentMode", string(schedule.Percent))
	v.SetDefault("plan.downPaymentPct", constants.DefaultDownPaymentPercent)
	v.SetDefault("plan.downPaymentAmount", "")
	v.SetDefault("plan.roundInstallments", false)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")

	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("output.file", "")

	v.SetDefault("export.renderer", constants.RendererRaster)
	v.SetDefault("export.scale", constants.DefaultExportScale)
	v.SetDefault("export.chromePath", "")
	v.SetDefault("export.timeout", "30s")

	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxBodySize", "64K")

	v.SetDefault("rates.redisAddr", "")
	v.SetDefault("rates.key", constants.DefaultRateKey)

	v.SetDefault("tracing.endpoint", "")
	v.SetDefault("tracing.serviceName", constants.DefaultServiceName)
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Environment variables prefixed with PAYMENT_PLAN_
// override file values.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}
	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()
	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}
	return decode(v)
}

// DefaultConfiguration returns the configuration used when no file is given,
// still subject to environment overrides.
func DefaultConfiguration() (*Configuration, error) {
	return decode(newViper())
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	return &configuration, nil
}

// LoadEnvFiles loads variables from .env style files into the process
// environment without overriding variables that are already set. Missing files
// are skipped.
func LoadEnvFiles(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", path, err)
		}
	}
	return nil
}

// Validate checks the settings that have a fixed set of values.
func (c *Configuration) Validate() error {
	if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
		return err
	}
	if err := validation.ValidateRenderer(c.Export.Renderer); err != nil {
		return err
	}
	if _, err := c.ExportTimeout(); err != nil {
		return err
	}
	return nil
}

// ValidateConfiguration reports advisory warnings about the plan section.
func (c *Configuration) ValidateConfiguration() []string {
	pv := &validation.PlanValidator{State: c.Plan}
	return pv.ValidateAll(schedule.Calculate(c.Plan.ToInput()))
}

// YAML renders the effective configuration.
func (c *Configuration) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return data, nil
}
