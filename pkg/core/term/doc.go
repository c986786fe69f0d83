// Package term models ontology terms and turns the three term sources into
// one resolved table.
//
// # Sources
//
// A diagram combines three lists of [Term]:
//
//   - current terms, parsed from the sheet being edited with [ParseRows]
//   - dependency terms, the external context the sheet depends on
//   - derived terms, generalizations inferred from the current terms
//
// Dependency and derived terms come pre-resolved from the term lookup
// service; their parent references already carry ids.
//
// # Merging and resolution
//
// [Merge] builds a label-keyed [Table] with precedence
// current > dependencies > derived. [Resolve] then binds each parent label to
// an id. References that cannot be bound are reported as [Issue] values and
// dropped; nothing in this package fails on incomplete input, because sheets
// are routinely half-edited.
//
//	terms, issues := term.ParseRows(rows)
//	table := term.Merge(terms, snapshot.Dependencies, snapshot.Derived)
//	resolved, more := term.Resolve(table)
package term
