package domain

import (
	"errors"
	"testing"
	"time"
)

func TestParseRuleset(t *testing.T) {
	tests := []struct {
		in           string
		jurisdiction Jurisdiction
		method       Method
		yearStart    time.Month
	}{
		{"UK_INDIVIDUAL", JurisdictionUKIndividual, MethodSection104, 0},
		{"uk_individual", JurisdictionUKIndividual, MethodSection104, 0},
		{"US_FIFO", JurisdictionUS, MethodFIFO, 0},
		{"US_LIFO", JurisdictionUS, MethodLIFO, 0},
		{"US_HIFO", JurisdictionUS, MethodHIFO, 0},
		{"US_LOFO", JurisdictionUS, MethodLOFO, 0},
		{"UK_COMPANY_JAN", JurisdictionUKCompany, MethodSection104, time.January},
		{"UK_COMPANY_JUL", JurisdictionUKCompany, MethodSection104, time.July},
	}
	for _, tt := range tests {
		rs, err := ParseRuleset(tt.in)
		if err != nil {
			t.Errorf("ParseRuleset(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if rs.Jurisdiction != tt.jurisdiction {
			t.Errorf("ParseRuleset(%q).Jurisdiction = %q, want %q", tt.in, rs.Jurisdiction, tt.jurisdiction)
		}
		if rs.Method != tt.method {
			t.Errorf("ParseRuleset(%q).Method = %q, want %q", tt.in, rs.Method, tt.method)
		}
		if rs.YearStart != tt.yearStart {
			t.Errorf("ParseRuleset(%q).YearStart = %v, want %v", tt.in, rs.YearStart, tt.yearStart)
		}
	}
}

func TestParseRuleset_Invalid(t *testing.T) {
	for _, in := range []string{"", "UK", "US_AVERAGE", "UK_COMPANY_XXX", "FR_FIFO"} {
		_, err := ParseRuleset(in)
		if !errors.Is(err, ErrUnknownRuleset) {
			t.Errorf("ParseRuleset(%q) error = %v, want ErrUnknownRuleset", in, err)
		}
	}
}

func TestTaxYear_UKIndividualBoundary(t *testing.T) {
	rs := Ruleset{Jurisdiction: JurisdictionUKIndividual}

	tests := []struct {
		ts   string
		year int
	}{
		{"2023-04-05T23:59:59Z", 2023}, // last day of 2022/23
		{"2023-04-06T00:00:00Z", 2024}, // first day of 2023/24
		{"2023-12-31T12:00:00Z", 2024},
		{"2024-01-01T00:00:00Z", 2024},
	}
	for _, tt := range tests {
		if got := rs.TaxYear(ts(tt.ts)); got != tt.year {
			t.Errorf("TaxYear(%s) = %d, want %d", tt.ts, got, tt.year)
		}
	}
}

func TestTaxYear_UKCompanyCustomStart(t *testing.T) {
	rs := Ruleset{Jurisdiction: JurisdictionUKCompany, YearStart: time.July}

	if got := rs.TaxYear(ts("2023-06-30T12:00:00Z")); got != 2023 {
		t.Errorf("TaxYear(Jun 30) = %d, want 2023", got)
	}
	if got := rs.TaxYear(ts("2023-07-01T00:00:00Z")); got != 2024 {
		t.Errorf("TaxYear(Jul 1) = %d, want 2024", got)
	}

	calendar := Ruleset{Jurisdiction: JurisdictionUKCompany, YearStart: time.January}
	if got := calendar.TaxYear(ts("2023-12-31T12:00:00Z")); got != 2023 {
		t.Errorf("calendar-year company TaxYear = %d, want 2023", got)
	}
}

func TestTaxYear_USCalendar(t *testing.T) {
	rs := Ruleset{Jurisdiction: JurisdictionUS, Method: MethodFIFO}
	if got := rs.TaxYear(ts("2023-04-06T00:00:00Z")); got != 2023 {
		t.Errorf("TaxYear = %d, want 2023", got)
	}
}

func TestYearLabel(t *testing.T) {
	uk := Ruleset{Jurisdiction: JurisdictionUKIndividual}
	if got := uk.YearLabel(2024); got != "2023/24" {
		t.Errorf("UK label = %q, want %q", got, "2023/24")
	}

	us := Ruleset{Jurisdiction: JurisdictionUS}
	if got := us.YearLabel(2024); got != "2024" {
		t.Errorf("US label = %q, want %q", got, "2024")
	}

	company := Ruleset{Jurisdiction: JurisdictionUKCompany, YearStart: time.January}
	if got := company.YearLabel(2024); got != "2024" {
		t.Errorf("calendar company label = %q, want %q", got, "2024")
	}
}
