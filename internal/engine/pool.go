package engine

import (
	"sort"
	"time"

	"github.com/evanhs/costbasis/internal/domain"
)

// legList is an ordered, index-stable sequence of legs. Window passes
// splice split remainders in immediately after their original; because
// all iteration is by index and insertion happens at or after the
// current position, an active scan never skips or re-visits an element.
type legList struct {
	legs []*domain.Leg
}

func newLegList(legs []*domain.Leg) *legList {
	return &legList{legs: legs}
}

func (ll *legList) len() int {
	return len(ll.legs)
}

func (ll *legList) at(i int) *domain.Leg {
	return ll.legs[i]
}

// insertAfter splices a leg in at position i+1.
func (ll *legList) insertAfter(i int, leg *domain.Leg) {
	ll.legs = append(ll.legs, nil)
	copy(ll.legs[i+2:], ll.legs[i+1:])
	ll.legs[i+1] = leg
}

// all returns the backing slice, including matched legs, for audit and
// fallback collection.
func (ll *legList) all() []*domain.Leg {
	return ll.legs
}

// poolKey groups legs for same-day pooling.
type poolKey struct {
	asset string
	date  time.Time
}

// poolSameDay merges each (asset, calendar date) group of legs into one
// synthetic leg. A merged buy keeps the earliest timestamp of its group
// and a merged sell the latest, preserving day semantics for the window
// checks that follow. The originals stay reachable through Pooled. The
// result is ordered by (asset, timestamp), ties broken by sequence id.
func poolSameDay(legs []*domain.Leg) *legList {
	var pooled []*domain.Leg
	groups := make(map[poolKey]*domain.Leg)

	for _, leg := range legs {
		key := poolKey{asset: leg.Asset, date: leg.Date()}
		if head, ok := groups[key]; ok {
			head.Absorb(leg)
			continue
		}
		groups[key] = leg
		pooled = append(pooled, leg)
	}

	sortLegs(pooled)
	return newLegList(pooled)
}

func sortLegs(legs []*domain.Leg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if legs[i].Asset != legs[j].Asset {
			return legs[i].Asset < legs[j].Asset
		}
		if !legs[i].Timestamp.Equal(legs[j].Timestamp) {
			return legs[i].Timestamp.Before(legs[j].Timestamp)
		}
		return legs[i].TID.Seq < legs[j].TID.Seq
	})
}

// sortChronological orders legs by timestamp then sequence id,
// the processing order for queue sells and fallback settlement.
func sortChronological(legs []*domain.Leg) {
	sort.SliceStable(legs, func(i, j int) bool {
		if !legs[i].Timestamp.Equal(legs[j].Timestamp) {
			return legs[i].Timestamp.Before(legs[j].Timestamp)
		}
		return legs[i].TID.Seq < legs[j].TID.Seq
	})
}
