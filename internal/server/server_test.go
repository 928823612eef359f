package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/payment-plan/internal/form"
	"github.com/iwvelando/payment-plan/internal/rates"
	"github.com/iwvelando/payment-plan/internal/schedule"
	"github.com/iwvelando/payment-plan/pkg/datetime"
	"github.com/iwvelando/payment-plan/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, time.January, 15, 12, 30, 45, 0, time.UTC)

type decodedResponse struct {
	Result *struct {
		DownPayment   string `json:"downPayment"`
		TotalSum      string `json:"totalSum"`
		TotalSumInArs string `json:"totalSumInArs"`
		Currency      string `json:"currency"`
		Items         []struct {
			Label       string `json:"label"`
			Date        string `json:"date"`
			Amount      string `json:"amount"`
			AmountInArs string `json:"amountInArs"`
		} `json:"items"`
	} `json:"result"`
	Warnings []string `json:"warnings"`
}

type failingRenderer struct{}

func (failingRenderer) Render(ctx context.Context, result *schedule.Result) ([]byte, error) {
	return nil, errors.New("renderer unavailable")
}

type failingStore struct{}

func (failingStore) Get(ctx context.Context) (decimal.Decimal, bool, error) {
	return decimal.Zero, false, errors.New("connection refused")
}

func (failingStore) Set(ctx context.Context, rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return rates.ErrInvalidRate
	}
	return errors.New("connection refused")
}

func newTestHandler(opts Options) http.Handler {
	opts.Now = func() time.Time { return fixedNow }
	return NewHandler(zap.NewNop(), opts)
}

func postJSON(t *testing.T, handler http.Handler, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to encode payload: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestHandleScheduleSuccess(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := postJSON(t, handler, "/api/schedule", testutil.SampleState())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp decodedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result == nil {
		t.Fatal("expected a result")
	}
	if resp.Result.DownPayment != "45000" {
		t.Errorf("downPayment = %s, expected 45000", resp.Result.DownPayment)
	}
	if resp.Result.TotalSum != "150000" {
		t.Errorf("totalSum = %s, expected 150000", resp.Result.TotalSum)
	}
	if len(resp.Result.Items) != 7 {
		t.Fatalf("expected 7 items, got %d", len(resp.Result.Items))
	}
	if resp.Result.Items[0].Label != "Entrega" || resp.Result.Items[0].Date != "15/01/2024" {
		t.Errorf("unexpected first item %+v", resp.Result.Items[0])
	}
	if resp.Result.Items[1].Date != "14/02/2024" || resp.Result.Items[1].Amount != "17500" {
		t.Errorf("unexpected first installment %+v", resp.Result.Items[1])
	}
	if resp.Warnings == nil || len(resp.Warnings) != 0 {
		t.Errorf("expected an empty warnings array, got %v", resp.Warnings)
	}
}

func TestHandleScheduleEcheqs(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := postJSON(t, handler, "/api/schedule", testutil.EcheqState("1500"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp decodedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Result.Currency != "USD" {
		t.Errorf("currency = %s, expected USD", resp.Result.Currency)
	}
	if resp.Result.TotalSumInArs != "1500000" {
		t.Errorf("totalSumInArs = %s, expected 1500000", resp.Result.TotalSumInArs)
	}
	if resp.Result.Items[0].AmountInArs != "450000" {
		t.Errorf("down payment in ARS = %s, expected 450000", resp.Result.Items[0].AmountInArs)
	}
}

func TestHandleScheduleNoResult(t *testing.T) {
	handler := newTestHandler(Options{})
	state := testutil.SampleState()
	state.TotalAmount = ""

	rr := postJSON(t, handler, "/api/schedule", state)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"result":null`) {
		t.Errorf("expected a null result, got %s", rr.Body.String())
	}

	var resp decodedResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Warnings) == 0 {
		t.Error("expected warnings explaining the missing schedule")
	}
}

func TestHandleScheduleOversizedInputs(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		modify   func(*form.State)
		fragment string
	}{
		{
			name:     "Huge total",
			path:     "/api/schedule",
			modify:   func(s *form.State) { s.TotalAmount = "1e20000000" },
			fragment: "out of range",
		},
		{
			name:     "Tiny down payment",
			path:     "/api/schedule",
			modify:   func(s *form.State) { s.DownPaymentMode = "amount"; s.DownPaymentAmount = "1e-20000000" },
			fragment: "out of range",
		},
		{
			name:     "Huge installment count",
			path:     "/api/schedule",
			modify:   func(s *form.State) { s.Installments = "2000000000" },
			fragment: "exceeds the maximum",
		},
		{
			name:   "Export with too many installments",
			path:   "/api/schedule/png",
			modify: func(s *form.State) { s.Installments = "100000" },
		},
	}

	handler := newTestHandler(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := testutil.SampleState()
			tt.modify(&state)

			start := time.Now()
			rr := postJSON(t, handler, tt.path, state)
			if elapsed := time.Since(start); elapsed > 5*time.Second {
				t.Errorf("request took %v", elapsed)
			}

			if tt.fragment == "" {
				if rr.Code != http.StatusNoContent {
					t.Errorf("expected status 204, got %d", rr.Code)
				}
				return
			}
			if rr.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), tt.fragment) {
				t.Errorf("expected a warning containing %q, got %s", tt.fragment, rr.Body.String())
			}
		})
	}
}

func TestHandleScheduleBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		limit    int64
		expected int
	}{
		{"Malformed JSON", http.MethodPost, "/api/schedule", "{", 0, http.StatusBadRequest},
		{"Empty body", http.MethodPost, "/api/schedule", "", 0, http.StatusBadRequest},
		{"Numeric total", http.MethodPost, "/api/schedule", `{"totalAmount": 100}`, 0, http.StatusBadRequest},
		{"Body too large", http.MethodPost, "/api/schedule", `{"totalAmount": "` + strings.Repeat("1", 200) + `"}`, 64, http.StatusRequestEntityTooLarge},
		{"Wrong method", http.MethodGet, "/api/schedule", "", 0, http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(Options{MaxBodySize: tt.limit})
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expected {
				t.Fatalf("expected status %d, got %d: %s", tt.expected, rr.Code, rr.Body.String())
			}
			if tt.expected != http.StatusMethodNotAllowed && !strings.Contains(rr.Body.String(), `"error"`) {
				t.Errorf("expected a JSON error body, got %s", rr.Body.String())
			}
		})
	}
}

func TestHandleScheduleText(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := postJSON(t, handler, "/api/schedule/text", testutil.SampleState())
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rr.Body.String(), "FORMA DE PAGO") {
		t.Errorf("unexpected summary:\n%s", rr.Body.String())
	}

	state := testutil.SampleState()
	state.Installments = "0"
	rr = postJSON(t, handler, "/api/schedule/text", state)
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204 without a schedule, got %d", rr.Code)
	}
}

func TestHandleSchedulePNG(t *testing.T) {
	handler := newTestHandler(Options{})

	rr := postJSON(t, handler, "/api/schedule/png", testutil.EcheqState("1500"))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
	expected := `attachment; filename="forma_de_pago_2024-01-15T12-30-45-000Z.png"`
	if cd := rr.Header().Get("Content-Disposition"); cd != expected {
		t.Errorf("Content-Disposition = %q, expected %q", cd, expected)
	}
	if _, err := png.Decode(bytes.NewReader(rr.Body.Bytes())); err != nil {
		t.Errorf("response is not a PNG: %v", err)
	}

	state := testutil.SampleState()
	state.TotalAmount = "-5"
	rr = postJSON(t, handler, "/api/schedule/png", state)
	if rr.Code != http.StatusNoContent {
		t.Errorf("expected status 204 without a schedule, got %d", rr.Code)
	}
}

func TestHandleSchedulePNGRendererFailure(t *testing.T) {
	handler := newTestHandler(Options{Renderer: failingRenderer{}, RendererName: "browser"})

	rr := postJSON(t, handler, "/api/schedule/png", testutil.SampleState())
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "renderer unavailable") {
		t.Errorf("expected the renderer error in the body, got %s", rr.Body.String())
	}
}

func TestRateEndpoints(t *testing.T) {
	store := rates.NewMemoryStore()
	handler := newTestHandler(Options{Rates: store})

	req := httptest.NewRequest(http.MethodGet, "/api/rate", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != `{"rate":null}` {
		t.Fatalf("unexpected empty rate response %d %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		name     string
		body     string
		expected int
	}{
		{"Valid rate", `{"rate": "1500.5"}`, http.StatusOK},
		{"Zero rate", `{"rate": "0"}`, http.StatusBadRequest},
		{"Negative rate", `{"rate": "-3"}`, http.StatusBadRequest},
		{"Not a number", `{"rate": "mucho"}`, http.StatusBadRequest},
		{"Out of range", `{"rate": "1e20000000"}`, http.StatusBadRequest},
		{"Malformed JSON", `{"rate":`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/api/rate", strings.NewReader(tt.body))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != tt.expected {
				t.Errorf("expected status %d, got %d: %s", tt.expected, rr.Code, rr.Body.String())
			}
		})
	}

	req = httptest.NewRequest(http.MethodGet, "/api/rate", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if strings.TrimSpace(rr.Body.String()) != `{"rate":"1500.5"}` {
		t.Errorf("unexpected stored rate response %s", rr.Body.String())
	}
}

func TestRateEndpointsStoreFailure(t *testing.T) {
	handler := newTestHandler(Options{Rates: failingStore{}})

	req := httptest.NewRequest(http.MethodGet, "/api/rate", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("GET expected status 502, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/rate", strings.NewReader(`{"rate": "1500"}`))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadGateway {
		t.Errorf("PUT expected status 502, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/defaults", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("defaults should not depend on the rate store, got %d", rr.Code)
	}
}

func TestHandleDefaults(t *testing.T) {
	store := rates.NewMemoryStore()
	if err := store.Set(context.Background(), decimal.NewFromInt(1450)); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	handler := newTestHandler(Options{Rates: store})

	req := httptest.NewRequest(http.MethodGet, "/api/defaults", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var state form.State
	if err := json.Unmarshal(rr.Body.Bytes(), &state); err != nil {
		t.Fatalf("failed to decode defaults: %v", err)
	}
	if state.TotalAmount != "150000" || state.Installments != "6" || state.DownPaymentPct != 30 {
		t.Errorf("unexpected defaults %+v", state)
	}
	if expected := datetime.FormatISO(datetime.Today(fixedNow)); state.StartDate != expected {
		t.Errorf("StartDate = %q, expected %q", state.StartDate, expected)
	}
	if state.ExchangeRate != "1450" {
		t.Errorf("ExchangeRate = %q, expected the stored prefill 1450", state.ExchangeRate)
	}
	if state.UseEcheqs {
		t.Error("the stored rate must not switch echeqs on")
	}
}

func TestHandleVersion(t *testing.T) {
	tests := []struct {
		version  string
		expected string
	}{
		{"1.2.3", "1.2.3"},
		{"  ", "dev"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			handler := newTestHandler(Options{Version: tt.version})
			req := httptest.NewRequest(http.MethodGet, "/api/version", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			var resp map[string]string
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["version"] != tt.expected {
				t.Errorf("version = %q, expected %q", resp["version"], tt.expected)
			}
		})
	}
}

func TestStaticAndMetrics(t *testing.T) {
	handler := newTestHandler(Options{})

	// Generate at least one request metric first.
	postJSON(t, handler, "/api/schedule", testutil.SampleState())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Forma de pago") {
		t.Errorf("expected the web form, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200 from /metrics, got %d", rr.Code)
	}
	body := rr.Body.String()
	for _, name := range []string{"payment_plan_calculations_total", "payment_plan_http_requests_total"} {
		if !strings.Contains(body, name) {
			t.Errorf("metrics output is missing %s", name)
		}
	}
	if !strings.Contains(body, `route="/api/schedule"`) {
		t.Error("expected request metrics labelled with the route pattern")
	}
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg, err := NewConfig(configForTest())
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, zap.NewNop(), cfg, newTestHandler(Options{}))
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after cancellation")
	}
}
