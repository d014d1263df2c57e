// Package store holds the in-memory state of a single calculation run:
// the Section 104 holdings pool, the audit wallet ledger, and the
// append-only tax event log. A run has a single owner goroutine, so the
// stores carry no locking.
package store

import (
	"github.com/shopspring/decimal"
)

// Holding is the running average-cost position for one asset: the
// quantity currently held, the total cost basis of that quantity, and
// the accumulated unexpensed fee basis. Cost and fees scale
// proportionally with quantity removed.
type Holding struct {
	Asset    string
	Quantity decimal.Decimal
	Cost     decimal.Decimal
	Fees     decimal.Decimal
}

// Add accumulates an acquisition into the holding.
func (h *Holding) Add(quantity, cost, fees decimal.Decimal) {
	h.Quantity = h.Quantity.Add(quantity)
	h.Cost = h.Cost.Add(cost)
	h.Fees = h.Fees.Add(fees)
}

// Subtract removes a disposal from the holding. The quantity may go
// negative; callers treat that as a reconciliation warning, not an
// error.
func (h *Holding) Subtract(quantity, cost, fees decimal.Decimal) {
	h.Quantity = h.Quantity.Sub(quantity)
	h.Cost = h.Cost.Sub(cost)
	h.Fees = h.Fees.Sub(fees)
}

// ProportionFor returns the cost and fee share attributable to disposing
// of the given quantity: holding value scaled by quantity over held
// quantity. A non-positive held quantity yields zero shares — there is
// no basis left to allocate.
func (h *Holding) ProportionFor(quantity decimal.Decimal) (cost, fees decimal.Decimal) {
	if h.Quantity.Sign() <= 0 {
		return decimal.Zero, decimal.Zero
	}
	if quantity.GreaterThanOrEqual(h.Quantity) {
		// Disposing of the whole position takes the whole basis, with no
		// rounding residue left behind.
		return h.Cost, h.Fees
	}
	cost = h.Cost.Mul(quantity).Div(h.Quantity)
	fees = h.Fees.Mul(quantity).Div(h.Quantity)
	return cost, fees
}

// HoldingsStore keys holdings by asset.
type HoldingsStore struct {
	holdings map[string]*Holding
}

// NewHoldingsStore creates an empty HoldingsStore.
func NewHoldingsStore() *HoldingsStore {
	return &HoldingsStore{
		holdings: make(map[string]*Holding),
	}
}

// Get returns the holding for an asset, creating an empty one if the
// asset has not been seen.
func (s *HoldingsStore) Get(asset string) *Holding {
	h, ok := s.holdings[asset]
	if !ok {
		h = &Holding{Asset: asset}
		s.holdings[asset] = h
	}
	return h
}

// Peek returns the holding for an asset without creating one.
func (s *HoldingsStore) Peek(asset string) (*Holding, bool) {
	h, ok := s.holdings[asset]
	return h, ok
}

// Assets returns the assets with a holding entry, in map order; callers
// needing determinism sort via the asset registry.
func (s *HoldingsStore) Assets() []string {
	out := make([]string, 0, len(s.holdings))
	for a := range s.holdings {
		out = append(out, a)
	}
	return out
}
