package query

import (
	"fmt"
	"strings"

	"github.com/soorena/annotation-browser/internal/domain"
)

// Compile turns a filter specification into one predicate: the AND of every
// non-empty filter slot. Slots are compiled in a fixed order so the clause
// text is stable for equal specifications.
//
// Slot rules (see the per-variant compilers in clauses.go):
//   - an empty slot contributes no clause;
//   - a multi-select covering its entire domain contributes no clause;
//   - whitespace-only text input is treated as empty;
//   - reversed year bounds are swapped before compiling.
func Compile(f domain.FilterSpec) Predicate {
	b := &builder{}

	b.twoColumnText("title", "abstract", f.Search)
	b.multiSelect("autoregulatory_type", f.Types, domain.MechanismTypeDomain())
	b.multiSelect("polarity", f.Polarities, domain.PolarityDomain)
	b.yearRange("year", f.Years)
	b.multiSelect("month", f.Months, domain.MonthDomain)
	b.category("source", f.Source)
	b.multiSelect("journal", f.Journals, nil)
	b.multiSelect("os", f.Organisms, nil)
	b.text("authors", forceContains(f.Author))
	b.text("protein_name", f.ProteinName)
	b.text("gene_name", f.GeneName)
	b.text("protein_id", f.ProteinID)
	b.text("pmid", f.PMID)
	b.delimitedList("uniprot_accessions", f.UniProt)
	b.text("ac", f.AC)

	return b.predicate()
}

// forceContains pins a text slot to substring matching. The author slot has
// no exact-match mode in the UI; authors are stored as one delimited string.
func forceContains(f domain.TextFilter) domain.TextFilter {
	f.Mode = domain.MatchContains
	return f
}

// builder accumulates clauses and their bound arguments. Placeholders are
// numbered by argument position, the same scheme the repositories use when
// appending LIMIT/OFFSET parameters after the predicate.
type builder struct {
	conds []string
	args  []any
}

// bind registers one argument and returns its placeholder.
func (b *builder) bind(arg any) string {
	b.args = append(b.args, arg)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *builder) add(cond string) {
	b.conds = append(b.conds, cond)
}

func (b *builder) predicate() Predicate {
	if len(b.conds) == 0 {
		return Predicate{}
	}
	return Predicate{
		Clause: strings.Join(b.conds, " AND "),
		Args:   b.args,
	}
}
