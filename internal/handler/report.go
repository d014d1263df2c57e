// Package handler exposes the calculator over a small local HTTP API:
// upload a normalized CSV, get the JSON report back.
package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/domain"
	"github.com/evanhs/costbasis/internal/service"
)

// ReportHandler handles HTTP requests for report generation.
type ReportHandler struct {
	importer   *service.Importer
	calculator *service.Calculator
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(importer *service.Importer, calculator *service.Calculator) *ReportHandler {
	return &ReportHandler{importer: importer, calculator: calculator}
}

// Generate handles POST /reports. The body is a normalized transaction
// CSV; optional current prices for the holdings snapshot come in as
// query parameters of the form price.BTC=43000.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	prices, err := parsePrices(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	result, err := h.importer.Read(r.Body)
	if err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			WriteError(w, http.StatusBadRequest, "validation_error", verr.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	report, err := h.calculator.Calculate(result.Transactions, prices)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyInput):
			WriteError(w, http.StatusBadRequest, "empty_input", "no transactions in request body")
		case errors.Is(err, domain.ErrAuditMismatch):
			WriteError(w, http.StatusUnprocessableEntity, "audit_mismatch", err.Error())
		default:
			WriteError(w, http.StatusInternalServerError, "internal_error", err.Error())
		}
		return
	}

	if result.UnpricedLegs > 0 {
		warning := domain.Warning{
			Code:    domain.WarnUnpricedValue,
			Message: fmt.Sprintf("%d legs had no value and were treated as zero", result.UnpricedLegs),
		}
		report.Warnings = append(report.Warnings, warning.String())
	}

	WriteJSON(w, http.StatusOK, report)
}

// parsePrices extracts price.<ASSET> query parameters.
func parsePrices(r *http.Request) (map[string]decimal.Decimal, error) {
	prices := make(map[string]decimal.Decimal)
	for key, values := range r.URL.Query() {
		asset, ok := strings.CutPrefix(key, "price.")
		if !ok || len(values) == 0 {
			continue
		}
		price, err := decimal.NewFromString(values[0])
		if err != nil {
			return nil, errors.New("invalid price for " + asset)
		}
		prices[asset] = price
	}
	return prices, nil
}
