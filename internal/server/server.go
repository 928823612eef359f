// Package server exposes the payment plan calculator over HTTP and serves the
// embedded web form.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/iwvelando/payment-plan/internal/form"
	"github.com/iwvelando/payment-plan/internal/metrics"
	"github.com/iwvelando/payment-plan/internal/rates"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/internal/tracing"
	"github.com/iwvelando/payment-plan/pkg/constants"
	"github.com/iwvelando/payment-plan/pkg/export"
	"github.com/iwvelando/payment-plan/pkg/mathutil"
	"github.com/iwvelando/payment-plan/pkg/output"
	"github.com/iwvelando/payment-plan/pkg/validation"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

//go:embed static/*
var staticFiles embed.FS

// Options wires the collaborators of the HTTP handler. Zero values fall back
// to an in-memory rate store, the raster renderer and time.Now.
type Options struct {
	MaxBodySize  int64
	Version      string
	Rates        rates.Store
	Renderer     export.Renderer
	RendererName string
	Now          func() time.Time
}

type handler struct {
	logger       *zap.Logger
	calculator   *schedule.Calculator
	maxBodySize  int64
	version      string
	rates        rates.Store
	renderer     export.Renderer
	rendererName string
	now          func() time.Time
}

type scheduleResponse struct {
	Result   *schedule.Result `json:"result"`
	Warnings []string         `json:"warnings"`
}

type rateRequest struct {
	Rate string `json:"rate"`
}

type rateResponse struct {
	Rate *decimal.Decimal `json:"rate"`
}

// NewHandler constructs the HTTP handler that serves the web UI and plan API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = constants.DefaultMaxBodySizeBytes
	}
	version := strings.TrimSpace(opts.Version)
	if version == "" {
		version = "dev"
	}
	if opts.Rates == nil {
		opts.Rates = rates.NewMemoryStore()
	}
	if opts.Renderer == nil {
		opts.Renderer = export.NewRasterRenderer(constants.DefaultExportScale)
		opts.RendererName = constants.RendererRaster
	}
	if opts.RendererName == "" {
		opts.RendererName = constants.RendererRaster
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	h := &handler{
		logger:       logger,
		calculator:   schedule.NewCalculator(logger),
		maxBodySize:  opts.MaxBodySize,
		version:      version,
		rates:        opts.Rates,
		renderer:     opts.Renderer,
		rendererName: opts.RendererName,
		now:          opts.Now,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.instrument)

	r.Route("/api", func(r chi.Router) {
		r.Get("/defaults", h.handleDefaults)
		r.Post("/schedule", h.handleSchedule)
		r.Post("/schedule/text", h.handleScheduleText)
		r.Post("/schedule/png", h.handleSchedulePNG)
		r.Get("/rate", h.handleGetRate)
		r.Put("/rate", h.handlePutRate)
		r.Get("/version", h.handleVersion)
	})
	r.Handle("/metrics", promhttp.Handler())

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	r.Handle("/*", http.FileServer(http.FS(sub)))

	return r
}

// instrument wraps every request in a span and records request metrics under
// the matched route pattern.
func (h *handler) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx, span := tracing.Tracer.Start(r.Context(), r.Method+" "+r.URL.Path)
		defer span.End()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		span.SetName(r.Method + " " + route)
		span.SetAttributes(
			attribute.String("http.request.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.response.status_code", status),
		)
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		metrics.Requests.WithLabelValues(route, r.Method, fmt.Sprintf("%d", status)).Inc()
		metrics.RequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (h *handler) handleDefaults(w http.ResponseWriter, r *http.Request) {
	state := form.Default(h.now())
	if rate, ok, err := h.rates.Get(r.Context()); err != nil {
		h.logger.Warn("failed to read reference exchange rate",
			zap.String("op", "server.handleDefaults"),
			zap.Error(err),
		)
	} else if ok {
		state.ExchangeRate = rate.String()
	}
	h.writeJSON(w, http.StatusOK, state)
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	state, ok := h.decodeState(w, r, op)
	if !ok {
		return
	}

	result := h.calculate(state)
	pv := &validation.PlanValidator{State: state}
	warnings := pv.ValidateAll(result)
	if warnings == nil {
		warnings = []string{}
	}

	h.logger.Info("schedule computed",
		zap.String("op", op),
		zap.Bool("hasSchedule", result != nil),
		zap.Int("warnings", len(warnings)),
	)
	h.writeJSON(w, http.StatusOK, scheduleResponse{Result: result, Warnings: warnings})
}

func (h *handler) handleScheduleText(w http.ResponseWriter, r *http.Request) {
	state, ok := h.decodeState(w, r, "server.handleScheduleText")
	if !ok {
		return
	}

	result := h.calculate(state)
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(output.TextSummary(result))); err != nil {
		h.logger.Error("failed to write text summary", zap.String("op", "server.handleScheduleText"), zap.Error(err))
	}
}

func (h *handler) handleSchedulePNG(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedulePNG"
	state, ok := h.decodeState(w, r, op)
	if !ok {
		return
	}

	result := h.calculate(state)
	if result == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	data, err := h.renderer.Render(r.Context(), result)
	metrics.ObserveExport(h.rendererName, err)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to export plan: %v", err), op)
		return
	}

	filename := export.FileName(h.now())
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("failed to write PNG export", zap.String("op", op), zap.Error(err))
		return
	}

	h.logger.Info("plan exported",
		zap.String("op", op),
		zap.String("renderer", h.rendererName),
		zap.String("filename", filename),
		zap.Int("bytes", len(data)),
	)
}

func (h *handler) handleGetRate(w http.ResponseWriter, r *http.Request) {
	rate, ok, err := h.rates.Get(r.Context())
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("failed to read exchange rate: %v", err), "server.handleGetRate")
		return
	}

	resp := rateResponse{}
	if ok {
		resp.Rate = &rate
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handlePutRate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handlePutRate"
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req rateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondDecodeError(w, err, op)
		return
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(req.Rate))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("rate %q is not a number", req.Rate), op)
		return
	}
	if !mathutil.WithinBounds(rate) {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("rate %q is out of range", req.Rate), op)
		return
	}

	if err := h.rates.Set(r.Context(), rate); err != nil {
		if errors.Is(err, rates.ErrInvalidRate) {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		h.respondErrorWithOp(w, http.StatusBadGateway, fmt.Sprintf("failed to store exchange rate: %v", err), op)
		return
	}

	h.logger.Info("reference exchange rate updated",
		zap.String("op", op),
		zap.String("rate", rate.String()),
	)
	h.writeJSON(w, http.StatusOK, rateResponse{Rate: &rate})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) calculate(state form.State) *schedule.Result {
	result := h.calculator.Calculate(state.ToInputWithFixedTime(h.now()))
	metrics.ObserveCalculation(result != nil)
	return result
}

func (h *handler) decodeState(w http.ResponseWriter, r *http.Request, op string) (form.State, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var state form.State
	if err := json.NewDecoder(r.Body).Decode(&state); err != nil {
		h.respondDecodeError(w, err, op)
		return form.State{}, false
	}
	return state, true
}

func (h *handler) respondDecodeError(w http.ResponseWriter, err error, op string) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
		return
	}
	h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

// Run serves handler on cfg.Address until ctx is cancelled, then shuts the
// listener down gracefully.
func Run(ctx context.Context, logger *zap.Logger, cfg *Config, handler http.Handler) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	srv := &http.Server{
		Addr:         cfg.Address,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("op", "server.Run"),
			zap.String("address", cfg.Address),
			zap.Int64("maxBodySize", cfg.BodySizeBytes()),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down", zap.String("op", "server.Run"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
