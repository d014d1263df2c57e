package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/evanhs/costbasis/internal/domain"
	"github.com/evanhs/costbasis/internal/service"
)

const csvHeader = "type,timestamp,buy_quantity,buy_asset,buy_value,sell_quantity,sell_asset,sell_value,fee_quantity,fee_asset,fee_value,wallet,note\n"

func newTestRouter() http.Handler {
	importer := service.NewImporter()
	calculator := service.NewCalculator(service.CalculatorOptions{
		Ruleset:              domain.Ruleset{Jurisdiction: domain.JurisdictionUKIndividual, Method: domain.MethodSection104},
		RulesetLabel:         "UK_INDIVIDUAL",
		ZeroBasisIfUnmatched: true,
		FiatAssets:           map[string]bool{"GBP": true, "USD": true, "EUR": true},
		FiatIncome:           true,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(importer, calculator, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func postCSV(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "text/csv")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (code, message string) {
	t.Helper()
	var resp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return resp.Error, resp.Message
}

func TestHealthz(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("status field = %q, want ok", resp["status"])
	}
}

func TestGenerateReport(t *testing.T) {
	router := newTestRouter()

	body := csvHeader +
		"trade,2022-05-01T12:00:00Z,1,BTC,10000,10000,GBP,10000,,,,main,\n" +
		"trade,2023-06-01T12:00:00Z,8000,GBP,8000,0.5,BTC,8000,,,,main,\n"

	w := postCSV(t, router, "/reports?price.BTC=20000", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q, want application/json", ct)
	}

	var report service.Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	if report.Ruleset != "UK_INDIVIDUAL" {
		t.Errorf("ruleset = %q, want UK_INDIVIDUAL", report.Ruleset)
	}
	if len(report.Years) != 1 {
		t.Fatalf("expected 1 year, got %d", len(report.Years))
	}
	if len(report.Holdings) != 1 || report.Holdings[0].Value == nil {
		t.Errorf("expected a priced BTC holding, got %+v", report.Holdings)
	}
}

func TestGenerateReport_RequiresCSVContentType(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(csvHeader))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	code, _ := decodeError(t, w)
	if code != "invalid_request" {
		t.Errorf("error code = %q, want invalid_request", code)
	}
}

func TestGenerateReport_ValidationError(t *testing.T) {
	router := newTestRouter()

	body := csvHeader +
		"swap,2023-06-01T12:00:00Z,1,BTC,100,100,GBP,100,,,,,\n"

	w := postCSV(t, router, "/reports", body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	code, message := decodeError(t, w)
	if code != "validation_error" {
		t.Errorf("error code = %q, want validation_error", code)
	}
	if !strings.Contains(message, "row 2") {
		t.Errorf("message = %q, want failing row number", message)
	}
}

func TestGenerateReport_EmptyInput(t *testing.T) {
	router := newTestRouter()

	w := postCSV(t, router, "/reports", csvHeader)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	code, _ := decodeError(t, w)
	if code != "empty_input" {
		t.Errorf("error code = %q, want empty_input", code)
	}
}

func TestGenerateReport_UnpricedLegsCaveat(t *testing.T) {
	router := newTestRouter()

	body := csvHeader +
		"deposit,2023-01-01T12:00:00Z,1,BTC,,,,,,,,main,\n"

	w := postCSV(t, router, "/reports", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var report service.Report
	if err := json.NewDecoder(w.Body).Decode(&report); err != nil {
		t.Fatalf("failed to decode report: %v", err)
	}
	found := false
	for _, warning := range report.Warnings {
		if strings.Contains(warning, string(domain.WarnUnpricedValue)) {
			found = true
		}
	}
	if !found {
		t.Errorf("expected unpriced_value caveat, got %v", report.Warnings)
	}
}

func TestGenerateReport_InvalidPrice(t *testing.T) {
	router := newTestRouter()

	w := postCSV(t, router, "/reports?price.BTC=abc", csvHeader)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	code, _ := decodeError(t, w)
	if code != "invalid_request" {
		t.Errorf("error code = %q, want invalid_request", code)
	}
}
