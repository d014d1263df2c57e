package engine

import (
	"errors"
	"testing"

	"github.com/evanhs/costbasis/internal/domain"
)

func windowLeg(seq int64, side domain.Side, at string) *domain.Leg {
	return domain.NewLeg(seq, side, domain.TypeTrade, "BTC", dec("1"), dec("100"), "", ts(at))
}

func TestRule_SameDay(t *testing.T) {
	sell := windowLeg(1, domain.SideSell, "2023-05-01T23:59:00Z")

	tests := []struct {
		buyAt string
		want  bool
	}{
		{"2023-05-01T00:01:00Z", true}, // any time on the same date
		{"2023-05-02T00:01:00Z", false},
		{"2023-04-30T23:59:00Z", false},
	}
	for _, tt := range tests {
		buy := windowLeg(2, domain.SideBuy, tt.buyAt)
		got, err := RuleSameDay.Matches(buy, sell)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("same-day buy at %s = %v, want %v", tt.buyAt, got, tt.want)
		}
	}
}

func TestRule_TenDay(t *testing.T) {
	sell := windowLeg(1, domain.SideSell, "2023-05-11T12:00:00Z")

	tests := []struct {
		buyAt string
		want  bool
	}{
		{"2023-05-01T12:00:00Z", true},  // ten days before
		{"2023-05-10T12:00:00Z", true},  // one day before
		{"2023-05-11T08:00:00Z", false}, // same day is not "before"
		{"2023-04-30T12:00:00Z", false}, // eleven days before
		{"2023-05-12T12:00:00Z", false}, // after the disposal
	}
	for _, tt := range tests {
		buy := windowLeg(2, domain.SideBuy, tt.buyAt)
		got, err := RuleTenDay.Matches(buy, sell)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("ten-day buy at %s = %v, want %v", tt.buyAt, got, tt.want)
		}
	}
}

func TestRule_BedAndBreakfast(t *testing.T) {
	sell := windowLeg(1, domain.SideSell, "2023-05-01T12:00:00Z")

	tests := []struct {
		buyAt string
		want  bool
	}{
		{"2023-05-02T12:00:00Z", true},  // day after
		{"2023-05-31T12:00:00Z", true},  // D+30, last eligible day
		{"2023-06-01T12:00:00Z", false}, // D+31
		{"2023-05-01T18:00:00Z", false}, // same day belongs to the same-day rule
		{"2023-04-30T12:00:00Z", false}, // before the disposal
	}
	for _, tt := range tests {
		buy := windowLeg(2, domain.SideBuy, tt.buyAt)
		got, err := RuleBedAndBreakfast.Matches(buy, sell)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != tt.want {
			t.Errorf("bed-and-breakfast buy at %s = %v, want %v", tt.buyAt, got, tt.want)
		}
	}
}

func TestRule_UnknownToken(t *testing.T) {
	buy := windowLeg(1, domain.SideBuy, "2023-05-01T12:00:00Z")
	sell := windowLeg(2, domain.SideSell, "2023-05-01T12:00:00Z")

	_, err := Rule("thirty-one-day").Matches(buy, sell)
	if !errors.Is(err, domain.ErrUnknownRule) {
		t.Errorf("error = %v, want ErrUnknownRule", err)
	}
}

func TestStrategyFor(t *testing.T) {
	uk, err := StrategyFor(domain.Ruleset{Jurisdiction: domain.JurisdictionUKIndividual})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(uk.Passes) != 2 || uk.Passes[0] != RuleSameDay || uk.Passes[1] != RuleBedAndBreakfast {
		t.Errorf("UK individual passes = %v, want [same-day bed-and-breakfast]", uk.Passes)
	}

	company, err := StrategyFor(domain.Ruleset{Jurisdiction: domain.JurisdictionUKCompany})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(company.Passes) != 2 || company.Passes[1] != RuleTenDay {
		t.Errorf("UK company passes = %v, want [same-day ten-day]", company.Passes)
	}

	us, err := StrategyFor(domain.Ruleset{Jurisdiction: domain.JurisdictionUS, Method: domain.MethodHIFO})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(us.Passes) != 0 || us.QueueMethod != domain.MethodHIFO {
		t.Errorf("US strategy = %+v, want queue-only HIFO", us)
	}

	if _, err := StrategyFor(domain.Ruleset{Jurisdiction: "mars"}); !errors.Is(err, domain.ErrUnknownRuleset) {
		t.Errorf("error = %v, want ErrUnknownRuleset", err)
	}
}
