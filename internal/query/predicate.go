// Package query compiles a domain.FilterSpec into a single parameterized SQL
// predicate. The compiler is pure: it never touches the store, and the same
// specification always compiles to the same predicate text and argument list.
//
// Every consumer of the filtered record set (count, page fetch, aggregate
// stats, export) receives the same compiled Predicate value, which is what
// keeps the four result surfaces consistent with one another.
package query

// Predicate is a compiled, parameterized filter expression. The zero value
// matches every record.
type Predicate struct {
	// Clause is the predicate text without the WHERE keyword, using $n
	// placeholders numbered from 1. Empty when no slot constrains.
	Clause string
	// Args are the bound parameters, ordered to match the placeholders.
	// User input is never concatenated into Clause.
	Args []any
}

// IsEmpty reports whether the predicate places no constraint.
func (p Predicate) IsEmpty() bool {
	return p.Clause == ""
}

// Where returns the predicate as a WHERE clause, or the empty string when
// the predicate is unconstrained. Safe to interpolate into query text: the
// clause is built exclusively from column names and placeholders.
func (p Predicate) Where() string {
	if p.Clause == "" {
		return ""
	}
	return "WHERE " + p.Clause
}
