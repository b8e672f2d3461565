package query

import (
	"strings"

	"github.com/soorena/annotation-browser/internal/domain"
)

// multiSelect compiles a set-membership slot to column IN ($n, ...). A nil
// domain marks an open-ended slot (journals, organisms); for closed domains a
// selection covering every value is equivalent to no selection and is
// omitted, which also spares the store a pointless index scan.
func (b *builder) multiSelect(column string, selection, valueDomain []string) {
	if !domain.SelectionConstrains(selection, valueDomain) {
		return
	}
	placeholders := make([]string, len(selection))
	for i, v := range selection {
		placeholders[i] = b.bind(v)
	}
	b.add(column + " IN (" + strings.Join(placeholders, ", ") + ")")
}

// text compiles a free-text slot. Contains mode is a case-insensitive
// substring match; exact mode is case-insensitive equality.
func (b *builder) text(column string, f domain.TextFilter) {
	value := strings.TrimSpace(f.Value)
	if value == "" {
		return
	}
	switch f.Mode {
	case domain.MatchExact:
		b.add("LOWER(" + column + ") = LOWER(" + b.bind(value) + ")")
	default:
		b.add(column + " ILIKE " + b.bind("%"+value+"%"))
	}
}

// twoColumnText compiles the free-text search slot against two columns,
// OR-ing the same pattern over both. The pattern is bound once per column so
// the argument list lines up with the placeholder numbering.
func (b *builder) twoColumnText(colA, colB string, f domain.TextFilter) {
	value := strings.TrimSpace(f.Value)
	if value == "" {
		return
	}
	switch f.Mode {
	case domain.MatchExact:
		pa := b.bind(value)
		pb := b.bind(value)
		b.add("(LOWER(" + colA + ") = LOWER(" + pa + ") OR LOWER(" + colB + ") = LOWER(" + pb + "))")
	default:
		pattern := "%" + value + "%"
		pa := b.bind(pattern)
		pb := b.bind(pattern)
		b.add("(" + colA + " ILIKE " + pa + " OR " + colB + " ILIKE " + pb + ")")
	}
}

// yearRange compiles an inclusive numeric range. Reversed bounds are swapped
// first; each present bound becomes an independent comparison.
func (b *builder) yearRange(column string, r domain.YearRange) {
	r = r.Normalized()
	if r.From != nil {
		b.add(column + " >= " + b.bind(*r.From))
	}
	if r.To != nil {
		b.add(column + " <= " + b.bind(*r.To))
	}
}

// category compiles a single exact category slot; the default (empty)
// category is unconstrained.
func (b *builder) category(column, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	b.add(column + " = " + b.bind(value))
}

// delimitedList compiles a match against a comma-delimited list column.
// Exact mode wraps both the column (with spaces stripped) and the value in
// delimiters, so "P12345" matches the element "P12345" in "P12345, Q99999"
// but "1234" does not. Contains mode is a plain substring match.
func (b *builder) delimitedList(column string, f domain.TextFilter) {
	value := strings.TrimSpace(f.Value)
	if value == "" {
		return
	}
	switch f.Mode {
	case domain.MatchExact:
		b.add("(',' || REPLACE(" + column + ", ' ', '') || ',') ILIKE " + b.bind("%,"+value+",%"))
	default:
		b.add(column + " ILIKE " + b.bind("%"+value+"%"))
	}
}
