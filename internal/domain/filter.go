package domain

import (
	"sort"
	"strings"
)

// TextMatch selects how a free-text filter slot is matched.
type TextMatch string

const (
	// MatchContains matches a case-insensitive substring.
	MatchContains TextMatch = "contains"
	// MatchExact matches the whole value case-insensitively.
	MatchExact TextMatch = "exact"
)

// IsValid reports whether the match mode is one of the two supported modes.
func (m TextMatch) IsValid() bool {
	return m == MatchContains || m == MatchExact
}

// MonthDomain is the full domain of the month multi-select, in calendar
// order, matching the abbreviations the ingestion pipeline stores.
var MonthDomain = []string{
	"Jan", "Feb", "Mar", "Apr", "May", "Jun",
	"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
}

// TextFilter is a free-text filter slot with a match mode. A slot whose value
// is empty or whitespace-only places no constraint.
type TextFilter struct {
	Value string
	Mode  TextMatch
}

// IsEmpty reports whether the slot places no constraint.
func (f TextFilter) IsEmpty() bool {
	return strings.TrimSpace(f.Value) == ""
}

// YearRange is an inclusive publication-year range. Either bound may be nil
// (absent). Reversed bounds are legal input and are swapped at compile time.
type YearRange struct {
	From *int
	To   *int
}

// IsEmpty reports whether neither bound is present.
func (r YearRange) IsEmpty() bool {
	return r.From == nil && r.To == nil
}

// Normalized returns the range with reversed bounds swapped.
func (r YearRange) Normalized() YearRange {
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return YearRange{From: r.To, To: r.From}
	}
	return r
}

// FilterSpec is the normalized, validated set of user-chosen criteria for one
// interaction. It is an ephemeral per-session value object: state transitions
// produce new values, and an entirely zero FilterSpec matches every record.
//
// Every slot follows the same rule: empty means no constraint, and a
// multi-select equal to its full domain also means no constraint.
type FilterSpec struct {
	// Search matches against both title and abstract.
	Search TextFilter

	Types      []string
	Polarities []string
	Years      YearRange
	Months     []string
	// Source is a single exact category; empty means unconstrained.
	Source    string
	Journals  []string
	Organisms []string

	Author      TextFilter
	ProteinName TextFilter
	GeneName    TextFilter
	ProteinID   TextFilter
	PMID        TextFilter
	// UniProt matches against the comma-delimited accession list column.
	UniProt TextFilter
	// AC matches the record accession.
	AC TextFilter
}

// IsZero reports whether no slot places any constraint. Full-domain
// multi-selects count as unconstrained.
func (f FilterSpec) IsZero() bool {
	return f.Search.IsEmpty() &&
		!SelectionConstrains(f.Types, MechanismTypeDomain()) &&
		!SelectionConstrains(f.Polarities, PolarityDomain) &&
		f.Years.IsEmpty() &&
		!SelectionConstrains(f.Months, MonthDomain) &&
		strings.TrimSpace(f.Source) == "" &&
		len(f.Journals) == 0 &&
		len(f.Organisms) == 0 &&
		f.Author.IsEmpty() &&
		f.ProteinName.IsEmpty() &&
		f.GeneName.IsEmpty() &&
		f.ProteinID.IsEmpty() &&
		f.PMID.IsEmpty() &&
		f.UniProt.IsEmpty() &&
		f.AC.IsEmpty()
}

// SelectionConstrains reports whether a multi-select selection actually
// constrains the result: a selection that is empty or covers the entire
// domain compiles to no predicate clause. A nil domain means the domain is
// open-ended (journals, organisms), so any non-empty selection constrains.
func SelectionConstrains(selection, domain []string) bool {
	if len(selection) == 0 {
		return false
	}
	if domain == nil || len(selection) < len(domain) {
		return true
	}
	return !sameSet(selection, domain)
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
