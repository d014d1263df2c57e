// Package service wires the import boundary, the matching engine, and
// report assembly into one calculation pipeline.
package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/evanhs/costbasis/internal/domain"
)

// importColumns is the normalized record layout produced by the
// per-source parser layer. Values may be absent when pricing is pending;
// the importer flags them so the report can carry the caveat.
var importColumns = []string{
	"type", "timestamp",
	"buy_quantity", "buy_asset", "buy_value",
	"sell_quantity", "sell_asset", "sell_value",
	"fee_quantity", "fee_asset", "fee_value",
	"wallet", "note",
}

// ImportResult is the outcome of reading one normalized CSV stream.
type ImportResult struct {
	Transactions []*domain.Transaction
	// UnpricedLegs counts legs that arrived without a monetary value
	// and were treated as zero.
	UnpricedLegs int
}

// Importer reads normalized transaction records. Schema problems are
// ValidationErrors carrying the failing row; the engine downstream
// assumes its input is valid.
type Importer struct{}

// NewImporter creates an Importer.
func NewImporter() *Importer {
	return &Importer{}
}

// Read parses a normalized CSV stream into transactions. The first row
// must be the header; column order is fixed.
func (im *Importer) Read(r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(importColumns)

	header, err := cr.Read()
	if err != nil {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("missing header row: %v", err)}
	}
	for i, col := range importColumns {
		if strings.TrimSpace(strings.ToLower(header[i])) != col {
			return nil, &domain.ValidationError{
				Message: fmt.Sprintf("header column %d must be %q, got %q", i+1, col, header[i]),
			}
		}
	}

	result := &ImportResult{}
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, &domain.ValidationError{Row: row, Message: err.Error()}
		}
		tx, unpriced, verr := parseRecord(record, row)
		if verr != nil {
			return nil, verr
		}
		result.Transactions = append(result.Transactions, tx)
		result.UnpricedLegs += unpriced
	}
	return result, nil
}

func parseRecord(record []string, row int) (*domain.Transaction, int, error) {
	get := func(col string) string {
		for i, c := range importColumns {
			if c == col {
				return strings.TrimSpace(record[i])
			}
		}
		return ""
	}

	typ := domain.TransactionType(strings.ToLower(get("type")))
	if !domain.ValidTransactionTypes[typ] {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("unrecognized type %q", get("type"))}
	}

	ts, err := time.Parse(time.RFC3339, get("timestamp"))
	if err != nil {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("invalid timestamp %q", get("timestamp"))}
	}

	tx := &domain.Transaction{
		Type:      typ,
		Timestamp: ts.UTC(),
		Wallet:    get("wallet"),
		Note:      get("note"),
	}

	unpriced := 0
	buy, n, err := parseLeg(row, "buy", get("buy_quantity"), get("buy_asset"), get("buy_value"))
	if err != nil {
		return nil, 0, err
	}
	unpriced += n
	sell, n, err := parseLeg(row, "sell", get("sell_quantity"), get("sell_asset"), get("sell_value"))
	if err != nil {
		return nil, 0, err
	}
	unpriced += n
	fee, n, err := parseLeg(row, "fee", get("fee_quantity"), get("fee_asset"), get("fee_value"))
	if err != nil {
		return nil, 0, err
	}
	unpriced += n
	tx.Buy, tx.Sell, tx.Fee = buy, sell, fee

	// Mandatory legs per type: acquisitions need a buy, disposals a
	// sell, trades both.
	if typ.HasAcquisition() && typ != domain.TypeTrade && tx.Buy == nil {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("type %q requires a buy leg", typ)}
	}
	if typ.HasDisposal() && typ != domain.TypeTrade && tx.Sell == nil {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("type %q requires a sell leg", typ)}
	}
	if typ == domain.TypeTrade && (tx.Buy == nil || tx.Sell == nil) {
		return nil, 0, &domain.ValidationError{Row: row, Message: "type \"trade\" requires both buy and sell legs"}
	}

	return tx, unpriced, nil
}

// parseLeg parses one leg's quantity/asset/value triple. An empty
// quantity and asset means the leg is absent. The returned count is 1
// when the leg exists but has no value yet.
func parseLeg(row int, name, qtyStr, asset, valStr string) (*domain.Leg, int, error) {
	if qtyStr == "" && asset == "" {
		return nil, 0, nil
	}
	if qtyStr == "" || asset == "" {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("%s leg requires both quantity and asset", name)}
	}
	qty, err := domain.ParseQuantity(qtyStr)
	if err != nil {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("%s leg: %v", name, err)}
	}
	value, priced, err := domain.ParseValue(valStr)
	if err != nil {
		return nil, 0, &domain.ValidationError{Row: row, Message: fmt.Sprintf("%s leg: %v", name, err)}
	}
	leg := &domain.Leg{
		Asset:    asset,
		Quantity: qty,
		Value:    value,
	}
	if !priced {
		return leg, 1, nil
	}
	return leg, 0, nil
}
