package engine

import (
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"

	"github.com/evanhs/costbasis/internal/domain"
)

// queueEntry is a single unmatched buy resting on a cost-basis queue.
// The ordering key (unit value, timestamp, sequence, split) is captured
// when the entry is created; a split remainder re-inserted with its
// parent's captured key lands back at the parent's position regardless
// of rounding in the split.
type queueEntry struct {
	unitValue decimal.Decimal
	timestamp time.Time
	seq       int64
	split     int
	leg       *domain.Leg
}

// fifoLess orders by ascending timestamp, ties broken by original
// sequence id then split index.
func fifoLess(a, b queueEntry) bool {
	if !a.timestamp.Equal(b.timestamp) {
		return a.timestamp.Before(b.timestamp)
	}
	return tidLess(a, b)
}

// lifoLess orders by descending timestamp, same tie-break.
func lifoLess(a, b queueEntry) bool {
	if !a.timestamp.Equal(b.timestamp) {
		return a.timestamp.After(b.timestamp)
	}
	return tidLess(a, b)
}

// hifoLess orders by descending cost per unit, ties broken by ascending
// timestamp then sequence id.
func hifoLess(a, b queueEntry) bool {
	if cmp := a.unitValue.Cmp(b.unitValue); cmp != 0 {
		return cmp > 0
	}
	return fifoLess(a, b)
}

// lofoLess orders by ascending cost per unit, same tie-break.
func lofoLess(a, b queueEntry) bool {
	if cmp := a.unitValue.Cmp(b.unitValue); cmp != 0 {
		return cmp < 0
	}
	return fifoLess(a, b)
}

func tidLess(a, b queueEntry) bool {
	if a.seq != b.seq {
		return a.seq < b.seq
	}
	return a.split < b.split
}

// BuyQueue holds the unmatched buys of one asset, ordered by the
// strategy's key. Consumption is always from the front; the method only
// determines the ordering.
type BuyQueue struct {
	tree *btree.BTreeG[queueEntry]
}

// NewBuyQueue creates a queue ordered for the given cost basis method.
func NewBuyQueue(method domain.Method) (*BuyQueue, error) {
	const degree = 32
	var less btree.LessFunc[queueEntry]
	switch method {
	case domain.MethodFIFO:
		less = fifoLess
	case domain.MethodLIFO:
		less = lifoLess
	case domain.MethodHIFO:
		less = hifoLess
	case domain.MethodLOFO:
		less = lofoLess
	default:
		return nil, domain.ErrUnknownRule
	}
	return &BuyQueue{tree: btree.NewG[queueEntry](degree, less)}, nil
}

// Push adds a buy leg to the queue, capturing its ordering key.
func (q *BuyQueue) Push(leg *domain.Leg) {
	q.tree.ReplaceOrInsert(queueEntry{
		unitValue: leg.UnitValue(),
		timestamp: leg.Timestamp,
		seq:       leg.TID.Seq,
		split:     leg.TID.Split,
		leg:       leg,
	})
}

// Pop removes and returns the front entry.
func (q *BuyQueue) Pop() (queueEntry, bool) {
	return q.tree.DeleteMin()
}

// pushRemainder re-inserts the remainder of a split head at the popped
// entry's original position: the inherited key is identical except for
// the remainder's fresh split index, which only orders it among its own
// siblings.
func (q *BuyQueue) pushRemainder(parent queueEntry, remainder *domain.Leg) {
	q.tree.ReplaceOrInsert(queueEntry{
		unitValue: parent.unitValue,
		timestamp: parent.timestamp,
		seq:       parent.seq,
		split:     remainder.TID.Split,
		leg:       remainder,
	})
}

// Len returns the number of buys resting on the queue.
func (q *BuyQueue) Len() int {
	return q.tree.Len()
}

// Ascend walks the queue in order, front first. The callback returns
// true to continue. Used for the holdings handoff and in tests.
func (q *BuyQueue) Ascend(fn func(*domain.Leg) bool) {
	q.tree.Ascend(func(e queueEntry) bool {
		return fn(e.leg)
	})
}

// matchQueues runs the cost-basis queue stage: transactions are replayed
// chronologically, buys resting on their asset's queue as they occur and
// each sell consuming from the front of the queue until its quantity is
// satisfied. The sell leg is split so that each consumed buy pairs with
// exactly one disposal event, tagged short- or long-term by holding
// period. Returned legs — leftover queue buys, and unmet sell remainders
// when zero-basis settlement is disabled — settle against the holdings
// pool.
func (m *Matcher) matchQueues(buys, sells []*domain.Leg) ([]*domain.Leg, error) {
	queues := make(map[string]*BuyQueue)
	queue := func(asset string) (*BuyQueue, error) {
		q, ok := queues[asset]
		if !ok {
			var err error
			q, err = NewBuyQueue(m.strategy.QueueMethod)
			if err != nil {
				return nil, err
			}
			queues[asset] = q
		}
		return q, nil
	}

	// Replay buys and sells in timestamp order so a sell only ever sees
	// buys that precede it.
	stream := make([]*domain.Leg, 0, len(buys)+len(sells))
	stream = append(stream, buys...)
	stream = append(stream, sells...)
	sortChronological(stream)

	var leftovers []*domain.Leg
	for _, leg := range stream {
		q, err := queue(leg.Asset)
		if err != nil {
			return nil, err
		}
		if leg.Side == domain.SideBuy {
			q.Push(leg)
			continue
		}
		remainder := m.consumeSell(q, leg)
		if remainder != nil {
			leftovers = append(leftovers, remainder)
		}
	}

	// Buys still resting on a queue become the holdings of their asset.
	for _, q := range queues {
		q.Ascend(func(leg *domain.Leg) bool {
			leftovers = append(leftovers, leg)
			return true
		})
	}
	return leftovers, nil
}

// consumeSell takes buys from the front of the queue until the sell is
// satisfied. If the queue empties first, the unmet remainder settles at
// zero cost basis (when configured) with a warning — incomplete
// histories are common and never fatal. Returns the remainder leg when
// zero-basis settlement is disabled, for fallback processing.
func (m *Matcher) consumeSell(q *BuyQueue, sell *domain.Leg) *domain.Leg {
	current := sell
	for {
		head, ok := q.Pop()
		if !ok {
			if !m.opts.ZeroBasisIfUnmatched {
				return current
			}
			current.Matched = true
			m.events.AppendGain(&domain.CapitalGainsEvent{
				Disposal:         domain.DisposalShortTerm,
				Asset:            current.Asset,
				Quantity:         current.Quantity,
				Cost:             decimal.Zero,
				Fees:             current.FeeValue,
				Proceeds:         current.Value,
				Date:             current.Timestamp,
				AcquisitionDates: nil, // no buy was consumed
			})
			m.warn(domain.WarnZeroBasis, current.Asset,
				fmt.Sprintf("sold %s %s with no matching buys; settled at zero cost basis",
					current.Quantity.String(), current.Asset))
			return nil
		}

		buy := head.leg
		var part *domain.Leg
		switch buy.Quantity.Cmp(current.Quantity) {
		case 1:
			// The head covers more than the sell needs: split it and
			// put the remainder back at its original position.
			q.pushRemainder(head, buy.Split(current.Quantity))
			part = current
			current = nil
		case 0:
			part = current
			current = nil
		case -1:
			next := current.Split(buy.Quantity)
			part = current
			current = next
		}

		buy.Matched = true
		part.Matched = true
		m.emitQueueEvent(buy, part)

		if current == nil {
			return nil
		}
	}
}

// emitQueueEvent records the event for one consumed buy against one
// part of a sell, classified by holding period rather than by rule.
func (m *Matcher) emitQueueEvent(buy, sell *domain.Leg) {
	disposal := domain.DisposalShortTerm
	if sell.Timestamp.Sub(buy.Timestamp) > domain.LongTermThreshold {
		disposal = domain.DisposalLongTerm
	}
	m.events.AppendGain(&domain.CapitalGainsEvent{
		Disposal:         disposal,
		Asset:            sell.Asset,
		Quantity:         sell.Quantity,
		Cost:             buy.Value,
		Fees:             buy.FeeValue.Add(sell.FeeValue),
		Proceeds:         sell.Value,
		Date:             sell.Timestamp,
		AcquisitionDates: buy.AcquisitionDates(),
	})
}
