package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Side indicates whether a leg acquires (buy) or disposes of (sell) an
// asset.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// TID identifies a leg across splits: Seq is the originating record's
// sequence number, Split the sub-index assigned when the leg is split.
// The sub-index strictly increases with each split of a given original,
// so lineage stays traceable in audit output.
type TID struct {
	Seq   int64
	Split int
}

func (t TID) String() string {
	return fmt.Sprintf("%d.%d", t.Seq, t.Split)
}

// Leg is a single monetary movement of one asset: a buy with a cost or a
// sell with proceeds, both in the reporting currency. Legs are created
// once from parsed transactions and mutated only by splitting (which
// shrinks the leg and produces a sibling) and by same-day pooling (which
// records the merged originals in Pooled). They are never deleted, only
// marked matched.
type Leg struct {
	TID       TID
	Side      Side
	Type      TransactionType
	Asset     string
	Quantity  decimal.Decimal
	Value     decimal.Decimal // cost for buys, proceeds for sells
	FeeValue  decimal.Decimal
	Wallet    string
	Timestamp time.Time
	Matched   bool
	// IsFee marks the disposal of a fee asset's quantity. Fee legs
	// bypass matching and settle silently against the holdings pool;
	// their monetary value is expensed on the transaction's main legs.
	IsFee  bool
	Pooled []*Leg

	// splits counts splits of the originating leg, shared by all of its
	// descendants so sub-indices never collide.
	splits *int
}

// NewLeg creates a leg with a fresh split counter.
func NewLeg(seq int64, side Side, typ TransactionType, asset string, quantity, value decimal.Decimal, wallet string, ts time.Time) *Leg {
	return &Leg{
		TID:       TID{Seq: seq},
		Side:      side,
		Type:      typ,
		Asset:     asset,
		Quantity:  quantity,
		Value:     value,
		Wallet:    wallet,
		Timestamp: ts,
		splits:    new(int),
	}
}

// Date returns the leg's UTC calendar date, the granularity at which the
// pooling and window rules operate.
func (l *Leg) Date() time.Time {
	y, m, d := l.Timestamp.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// UnitValue returns value per unit of quantity, or zero for a zero
// quantity leg.
func (l *Leg) UnitValue() decimal.Decimal {
	if l.Quantity.IsZero() {
		return decimal.Zero
	}
	return l.Value.Div(l.Quantity)
}

// Split shrinks the leg to the given quantity and returns a remainder leg
// carrying the rest. The remainder's value and fee are computed as
// original minus allocated, never independently, so quantity and value
// are conserved exactly across the split. The remainder receives the next
// split sub-index of the originating leg.
func (l *Leg) Split(quantity decimal.Decimal) *Leg {
	allocValue := decimal.Zero
	allocFee := decimal.Zero
	if !l.Quantity.IsZero() {
		allocValue = l.Value.Mul(quantity).Div(l.Quantity)
		allocFee = l.FeeValue.Mul(quantity).Div(l.Quantity)
	}

	*l.splits++
	remainder := &Leg{
		TID:       TID{Seq: l.TID.Seq, Split: *l.splits},
		Side:      l.Side,
		Type:      l.Type,
		Asset:     l.Asset,
		Quantity:  l.Quantity.Sub(quantity),
		Value:     l.Value.Sub(allocValue),
		FeeValue:  l.FeeValue.Sub(allocFee),
		Wallet:    l.Wallet,
		Timestamp: l.Timestamp,
		Pooled:    l.Pooled,
		splits:    l.splits,
	}

	l.Quantity = quantity
	l.Value = allocValue
	l.FeeValue = allocFee

	return remainder
}

// Absorb merges another leg of the same asset and side into this one,
// summing quantity, value, and fee. The merged buy keeps the earliest
// timestamp of the pool and the merged sell the latest, preserving day
// semantics for subsequent window checks. The original is retained in
// Pooled for audit output.
func (l *Leg) Absorb(other *Leg) {
	if len(l.Pooled) == 0 {
		// First merge: snapshot the receiving leg's original values.
		l.Pooled = append(l.Pooled, l.clone())
	}
	l.Quantity = l.Quantity.Add(other.Quantity)
	l.Value = l.Value.Add(other.Value)
	l.FeeValue = l.FeeValue.Add(other.FeeValue)
	if l.Side == SideBuy && other.Timestamp.Before(l.Timestamp) {
		l.Timestamp = other.Timestamp
	}
	if l.Side == SideSell && other.Timestamp.After(l.Timestamp) {
		l.Timestamp = other.Timestamp
	}
	l.Pooled = append(l.Pooled, other)
}

// clone returns a value copy used to snapshot a leg before pooling
// mutates it. The copy shares no mutable state with the original apart
// from the split counter, which pooled snapshots never use.
func (l *Leg) clone() *Leg {
	c := *l
	c.Pooled = nil
	return &c
}

// AcquisitionDates returns the timestamps of the original buys behind
// this leg: the pooled originals when the leg is a same-day pool, or the
// leg's own timestamp otherwise.
func (l *Leg) AcquisitionDates() []time.Time {
	if len(l.Pooled) == 0 {
		return []time.Time{l.Timestamp}
	}
	dates := make([]time.Time, 0, len(l.Pooled))
	for _, p := range l.Pooled {
		dates = append(dates, p.Timestamp)
	}
	return dates
}
