package engine

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"github.com/evanhs/costbasis/internal/domain"
)

// Whatever the queue ordering, a sell's quantity and proceeds must be
// conserved across the events it splits into, and the lots it leaves
// behind must account for exactly the unsold quantity.
func TestProperty_QueueConservation(t *testing.T) {
	methods := []domain.Method{domain.MethodFIFO, domain.MethodLIFO, domain.MethodHIFO, domain.MethodLOFO}

	rapid.Check(t, func(t *rapid.T) {
		method := rapid.SampledFrom(methods).Draw(t, "method")
		n := rapid.IntRange(1, 6).Draw(t, "buys")

		var txs []*domain.Transaction
		totalQty := decimal.Zero
		for i := 0; i < n; i++ {
			qty := decimal.NewFromInt(rapid.Int64Range(1, 50).Draw(t, "qty"))
			value := decimal.NewFromInt(rapid.Int64Range(0, 10000).Draw(t, "value"))
			at := fmt.Sprintf("2023-01-%02dT12:00:00Z", i+1)
			txs = append(txs, buyTx(at, "BTC", qty.String(), value.String()))
			totalQty = totalQty.Add(qty)
		}

		sellQty := decimal.NewFromInt(rapid.Int64Range(1, totalQty.IntPart()).Draw(t, "sellQty"))
		sellValue := decimal.NewFromInt(rapid.Int64Range(0, 100000).Draw(t, "sellValue"))
		txs = append(txs, sellTx("2023-02-01T12:00:00Z", "BTC", sellQty.String(), sellValue.String()))

		m, holdings, events := newTestMatcher(t, usOptions(method))
		if err := m.Process(txs); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		soldQty, soldProceeds := decimal.Zero, decimal.Zero
		for _, e := range events.Gains() {
			if e.Quantity.Sign() <= 0 {
				t.Fatalf("event with non-positive quantity %s", e.Quantity)
			}
			soldQty = soldQty.Add(e.Quantity)
			soldProceeds = soldProceeds.Add(e.Proceeds)
		}
		if !soldQty.Equal(sellQty) {
			t.Fatalf("event quantities sum to %s, sell was %s", soldQty, sellQty)
		}
		if !soldProceeds.Equal(sellValue) {
			t.Fatalf("event proceeds sum to %s, sell was %s", soldProceeds, sellValue)
		}

		h, ok := holdings.Peek("BTC")
		remaining := decimal.Zero
		if ok {
			remaining = h.Quantity
		}
		if !remaining.Equal(totalQty.Sub(sellQty)) {
			t.Fatalf("remaining holdings %s, want %s", remaining, totalQty.Sub(sellQty))
		}
	})
}

// Two runs over the same batch must produce identical event sequences:
// nothing in the pipeline may depend on map iteration order or other
// incidental state.
func TestProperty_UKDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(t, "txs")

		var txs []*domain.Transaction
		bought, sold := decimal.Zero, decimal.Zero
		for i := 0; i < n; i++ {
			day := rapid.IntRange(1, 28).Draw(t, "day")
			month := rapid.IntRange(1, 12).Draw(t, "month")
			at := fmt.Sprintf("2023-%02d-%02dT12:00:00Z", month, day)
			qty := decimal.NewFromInt(rapid.Int64Range(1, 20).Draw(t, "qty"))
			value := decimal.NewFromInt(rapid.Int64Range(0, 5000).Draw(t, "value"))
			if rapid.Bool().Draw(t, "isBuy") {
				txs = append(txs, buyTx(at, "BTC", qty.String(), value.String()))
				bought = bought.Add(qty)
			} else {
				txs = append(txs, sellTx(at, "BTC", qty.String(), value.String()))
				sold = sold.Add(qty)
			}
		}

		run := func() ([]*domain.CapitalGainsEvent, decimal.Decimal) {
			m, holdings, events := newTestMatcher(t, ukOptions())
			if err := m.Process(txs); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			qty := decimal.Zero
			if h, ok := holdings.Peek("BTC"); ok {
				qty = h.Quantity
			}
			return events.Gains(), qty
		}

		first, firstHoldings := run()
		second, secondHoldings := run()

		if len(first) != len(second) {
			t.Fatalf("run 1 produced %d events, run 2 produced %d", len(first), len(second))
		}
		for i := range first {
			a, b := first[i], second[i]
			if a.Disposal != b.Disposal || !a.Quantity.Equal(b.Quantity) ||
				!a.Cost.Equal(b.Cost) || !a.Proceeds.Equal(b.Proceeds) || !a.Date.Equal(b.Date) {
				t.Fatalf("event %d differs between runs: %+v vs %+v", i, a, b)
			}
		}
		if !firstHoldings.Equal(secondHoldings) {
			t.Fatalf("holdings differ between runs: %s vs %s", firstHoldings, secondHoldings)
		}

		// Every disposed unit is accounted for exactly once.
		disposed := decimal.Zero
		for _, e := range first {
			disposed = disposed.Add(e.Quantity)
		}
		if !disposed.Equal(sold) {
			t.Fatalf("events dispose %s, sells total %s", disposed, sold)
		}
		if !firstHoldings.Equal(bought.Sub(sold)) {
			t.Fatalf("holdings %s, want bought-sold %s", firstHoldings, bought.Sub(sold))
		}
	})
}
