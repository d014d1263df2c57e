package engine

import (
	"testing"

	"github.com/evanhs/costbasis/internal/domain"
)

func TestLegList_InsertAfterMidScan(t *testing.T) {
	a := windowLeg(1, domain.SideBuy, "2023-05-01T10:00:00Z")
	b := windowLeg(2, domain.SideBuy, "2023-05-02T10:00:00Z")
	c := windowLeg(3, domain.SideBuy, "2023-05-03T10:00:00Z")
	d := windowLeg(4, domain.SideBuy, "2023-05-04T10:00:00Z")
	spliced := windowLeg(5, domain.SideBuy, "2023-05-01T12:00:00Z")

	ll := newLegList([]*domain.Leg{a, b, c, d})

	// Splice while a scan is in flight, the way a window pass splices a
	// split remainder in after the element it is standing on.
	var visited []int64
	for i := 0; i < ll.len(); i++ {
		leg := ll.at(i)
		visited = append(visited, leg.TID.Seq)
		if leg == a {
			ll.insertAfter(i, spliced)
		}
	}

	want := []int64{1, 5, 2, 3, 4}
	if len(visited) != len(want) {
		t.Fatalf("visited %v, want %v", visited, want)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("visited %v, want %v", visited, want)
		}
	}
}

func TestLegList_InsertAfterLastExtendsScan(t *testing.T) {
	a := windowLeg(1, domain.SideBuy, "2023-05-01T10:00:00Z")
	b := windowLeg(2, domain.SideBuy, "2023-05-02T10:00:00Z")
	spliced := windowLeg(3, domain.SideBuy, "2023-05-02T12:00:00Z")

	ll := newLegList([]*domain.Leg{a, b})

	var visited []int64
	for i := 0; i < ll.len(); i++ {
		leg := ll.at(i)
		visited = append(visited, leg.TID.Seq)
		if leg == b {
			ll.insertAfter(i, spliced)
		}
	}

	if len(visited) != 3 || visited[2] != 3 {
		t.Fatalf("visited %v, want the spliced leg reached as element 3", visited)
	}
	if ll.len() != 3 || ll.at(2) != spliced {
		t.Errorf("list order after splice = %d legs, want spliced leg last", ll.len())
	}
}
