package store

import (
	"github.com/evanhs/costbasis/internal/domain"
)

// EventStore is the append-only log of tax events produced by one
// calculation run. Emission order is preserved for audit output; the
// per-year views re-bucket without reordering.
type EventStore struct {
	gains  []*domain.CapitalGainsEvent
	income []*domain.IncomeEvent
}

// NewEventStore creates an empty EventStore.
func NewEventStore() *EventStore {
	return &EventStore{}
}

// AppendGain records a capital gains event.
func (s *EventStore) AppendGain(e *domain.CapitalGainsEvent) {
	s.gains = append(s.gains, e)
}

// AppendIncome records an income event.
func (s *EventStore) AppendIncome(e *domain.IncomeEvent) {
	s.income = append(s.income, e)
}

// Gains returns all capital gains events in emission order.
func (s *EventStore) Gains() []*domain.CapitalGainsEvent {
	return s.gains
}

// Income returns all income events in emission order.
func (s *EventStore) Income() []*domain.IncomeEvent {
	return s.income
}

// GainsByYear buckets capital gains events by the tax year their
// disposal date falls in under the given ruleset.
func (s *EventStore) GainsByYear(rs domain.Ruleset) map[int][]*domain.CapitalGainsEvent {
	out := make(map[int][]*domain.CapitalGainsEvent)
	for _, e := range s.gains {
		year := rs.TaxYear(e.Date)
		out[year] = append(out[year], e)
	}
	return out
}

// IncomeByYear buckets income events by tax year.
func (s *EventStore) IncomeByYear(rs domain.Ruleset) map[int][]*domain.IncomeEvent {
	out := make(map[int][]*domain.IncomeEvent)
	for _, e := range s.income {
		year := rs.TaxYear(e.Date)
		out[year] = append(out[year], e)
	}
	return out
}
