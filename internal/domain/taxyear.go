package domain

import (
	"fmt"
	"strings"
	"time"
)

// Jurisdiction selects which body of matching rules applies.
type Jurisdiction string

const (
	JurisdictionUKIndividual Jurisdiction = "uk-individual"
	JurisdictionUKCompany    Jurisdiction = "uk-company"
	JurisdictionUS           Jurisdiction = "us"
)

// Method selects the cost basis method within a jurisdiction. UK rules
// always use Section 104 pooling behind the rule windows; US rules pick
// one of the four queue orderings.
type Method string

const (
	MethodSection104 Method = "section104"
	MethodFIFO       Method = "fifo"
	MethodLIFO       Method = "lifo"
	MethodHIFO       Method = "hifo"
	MethodLOFO       Method = "lofo"
)

// Ruleset is the jurisdiction-specific rule selection threaded through
// the engine. It is immutable after construction.
type Ruleset struct {
	Jurisdiction Jurisdiction
	Method       Method
	// YearStart is the first month of a UK company's accounting year.
	// Unused for individuals (fixed 6 April boundary) and US rules
	// (calendar year).
	YearStart time.Month
}

var usMethods = map[string]Method{
	"US_FIFO": MethodFIFO,
	"US_LIFO": MethodLIFO,
	"US_HIFO": MethodHIFO,
	"US_LOFO": MethodLOFO,
}

var monthsByName = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// ParseRuleset parses a ruleset selector: UK_INDIVIDUAL,
// UK_COMPANY_<MON> (three-letter month of the accounting year start), or
// US_FIFO / US_LIFO / US_HIFO / US_LOFO.
func ParseRuleset(s string) (Ruleset, error) {
	sel := strings.ToUpper(strings.TrimSpace(s))

	if sel == "UK_INDIVIDUAL" {
		return Ruleset{Jurisdiction: JurisdictionUKIndividual, Method: MethodSection104}, nil
	}
	if m, ok := usMethods[sel]; ok {
		return Ruleset{Jurisdiction: JurisdictionUS, Method: m}, nil
	}
	if rest, ok := strings.CutPrefix(sel, "UK_COMPANY_"); ok {
		month, ok := monthsByName[rest]
		if !ok {
			return Ruleset{}, fmt.Errorf("%w: %q (bad month %q)", ErrUnknownRuleset, s, rest)
		}
		return Ruleset{Jurisdiction: JurisdictionUKCompany, Method: MethodSection104, YearStart: month}, nil
	}
	return Ruleset{}, fmt.Errorf("%w: %q", ErrUnknownRuleset, s)
}

// TaxYear returns the tax year a timestamp falls in. UK individual years
// run 6 April to 5 April and are labelled by the calendar year they end
// in; UK company years start on the configured month; US years are
// calendar years.
func (r Ruleset) TaxYear(t time.Time) int {
	t = t.UTC()
	switch r.Jurisdiction {
	case JurisdictionUKIndividual:
		if t.Month() > time.April || (t.Month() == time.April && t.Day() >= 6) {
			return t.Year() + 1
		}
		return t.Year()
	case JurisdictionUKCompany:
		if r.YearStart == time.January {
			return t.Year()
		}
		if t.Month() >= r.YearStart {
			return t.Year() + 1
		}
		return t.Year()
	default:
		return t.Year()
	}
}

// YearLabel renders a tax year for display: "2023/24" for UK years that
// span two calendar years, "2023" otherwise.
func (r Ruleset) YearLabel(year int) string {
	switch r.Jurisdiction {
	case JurisdictionUS:
		return fmt.Sprintf("%d", year)
	case JurisdictionUKCompany:
		if r.YearStart == time.January {
			return fmt.Sprintf("%d", year)
		}
	}
	return fmt.Sprintf("%d/%02d", year-1, year%100)
}

// LongTermThreshold is the holding period beyond which a US disposal is
// classified long-term.
const LongTermThreshold = 365 * 24 * time.Hour
