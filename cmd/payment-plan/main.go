package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/iwvelando/payment-plan/internal/config"
	"github.com/iwvelando/payment-plan/internal/rates"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/internal/server"
	"github.com/iwvelando/payment-plan/internal/tracing"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/export"
	"github.com/iwvelando/payment-plan/pkg/output"
	"github.com/iwvelando/payment-plan/pkg/validation"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var config zap.Config
	switch format {
	case "console":
		config = zap.NewDevelopmentConfig()
	case "json":
		config = zap.NewProductionConfig()
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
			}
		}

		file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", loggingConfig.OutputFile, err)
		}
		_ = file.Close()

		config.OutputPaths = []string{loggingConfig.OutputFile}
		config.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return config.Build()
}

// loadConfiguration reads the config file. A missing default config file
// falls back to built-in defaults; an explicitly named one must exist.
func loadConfiguration(path string) (*config.Configuration, error) {
	if path == constants.DefaultConfigFile {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			return config.DefaultConfiguration()
		}
	}
	return config.LoadConfiguration(path)
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv, text, png")
	outputFileFlag := flag.String("output-file", "", "write output to this file instead of stdout")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	serve := flag.Bool("serve", false, "serve the web form and HTTP API instead of printing a plan")
	serverConfigLocation := flag.String("server-config", "", "optional server configuration file overriding the server section")
	printConfig := flag.Bool("print-config", false, "print the effective configuration as YAML and exit")
	maxBodySize := flag.String("max-body-size", "", "request body limit override for -serve, e.g. 64K or 1M")
	flag.Parse()

	if err := config.LoadEnvFiles(); err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	conf, err := loadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	var serverConf *server.Config
	loggingConf := conf.Logging
	if *serve {
		if *serverConfigLocation != "" {
			serverConf, err = server.LoadConfig(*serverConfigLocation)
			if err == nil && serverConf.Logging.Level != "" {
				loggingConf = serverConf.Logging
			}
		} else {
			serverConf, err = server.NewConfig(conf.Server)
		}
		if err == nil {
			err = applyMaxBodySize(serverConf, *maxBodySize)
		}
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration\", \"error\": \"%v\"}\n", err)
			os.Exit(1)
		}
	}

	logger, err := initializeLogger(loggingConf, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if *outputFormatFlag != "" {
		conf.Output.Format = *outputFormatFlag
	}
	if *outputFileFlag != "" {
		conf.Output.File = *outputFileFlag
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}

	if *printConfig {
		data, err := conf.YAML()
		if err != nil {
			logger.Fatal("failed to render configuration", zap.String("op", "main"), zap.Error(err))
		}
		_, _ = os.Stdout.Write(data)
		return
	}

	if err := conf.Validate(); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	exportOpts, err := conf.ExportOptions()
	if err != nil {
		logger.Fatal("invalid export configuration", zap.String("op", "main"), zap.Error(err))
	}
	renderer, err := export.New(logger, exportOpts)
	if err != nil {
		logger.Fatal("failed to create export renderer", zap.String("op", "main"), zap.Error(err))
	}

	if *serve {
		if err := runServer(logger, conf, serverConf, renderer); err != nil {
			logger.Fatal("server stopped with an error", zap.String("op", "main"), zap.Error(err))
		}
		return
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	now := time.Now()
	result := schedule.NewCalculator(logger).Calculate(conf.PlanInput(now))
	if err := writeOutput(context.Background(), conf.Output, result, renderer, now); err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.String("format", conf.Output.Format),
			zap.Error(err),
		)
	}
}

// applyMaxBodySize overrides the server request body limit. An empty size
// keeps the configured one.
func applyMaxBodySize(cfg *server.Config, size string) error {
	if strings.TrimSpace(size) == "" {
		return nil
	}
	bytes, err := server.ParseSize(size)
	if err != nil {
		return fmt.Errorf("invalid max body size %q: %w", size, err)
	}
	if bytes <= 0 {
		return fmt.Errorf("max body size %q must be positive", size)
	}
	cfg.SetBodySizeBytes(bytes)
	return nil
}

// writeOutput renders result in the configured format. PNG output always goes
// to a file, named after the export timestamp when none is configured.
func writeOutput(ctx context.Context, out config.OutputConfig, result *schedule.Result, renderer export.Renderer, now time.Time) error {
	if err := validation.ValidateOutputFormat(out.Format); err != nil {
		return err
	}

	if out.Format == constants.OutputFormatPNG {
		data, err := renderer.Render(ctx, result)
		if err != nil {
			return err
		}
		path := out.File
		if path == "" {
			path = export.FileName(now)
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Println(path)
		return nil
	}

	var w io.Writer = os.Stdout
	if out.File != "" {
		file, err := os.Create(out.File)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", out.File, err)
		}
		defer file.Close()
		w = file
	}

	switch out.Format {
	case constants.OutputFormatPretty:
		output.WritePretty(w, result)
		return nil
	case constants.OutputFormatCSV:
		_, err := io.WriteString(w, output.CsvString(result))
		return err
	case constants.OutputFormatText:
		if result == nil {
			return nil
		}
		_, err := io.WriteString(w, output.TextSummary(result)+"\n")
		return err
	}
	return nil
}

func runServer(logger *zap.Logger, conf *config.Configuration, serverConf *server.Config, renderer export.Renderer) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, logger, conf.Tracing.ServiceName, version, conf.Tracing.Endpoint)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			logger.Warn("failed to flush traces", zap.String("op", "main.runServer"), zap.Error(err))
		}
	}()

	var store rates.Store = rates.NewMemoryStore()
	if conf.Rates.RedisAddr != "" {
		redisStore := rates.NewRedisStore(conf.Rates.RedisAddr, conf.Rates.Key)
		defer redisStore.Close()
		if err := redisStore.Ping(ctx); err != nil {
			logger.Warn("redis is not reachable yet, rate requests will fail until it is",
				zap.String("op", "main.runServer"),
				zap.String("addr", conf.Rates.RedisAddr),
				zap.Error(err),
			)
		}
		store = redisStore
	}

	handler := server.NewHandler(logger, server.Options{
		MaxBodySize:  serverConf.BodySizeBytes(),
		Version:      version,
		Rates:        store,
		Renderer:     renderer,
		RendererName: conf.Export.Renderer,
	})
	return server.Run(ctx, logger, serverConf, handler)
}
