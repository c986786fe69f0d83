package term

import "slices"

// Table is the merged, label-keyed view of all term sources. It is built by
// [Merge] and read-only afterwards.
type Table struct {
	byLabel map[string]*MergedTerm
	byID    map[string]*MergedTerm
	order   []string
}

// Merge combines the three sources into one table keyed by label.
//
// Current terms are inserted unconditionally, so two current rows sharing a
// label resolve to the last one. Dependency terms are inserted only when their
// label is still free, then derived terms likewise, which gives the precedence
// current > dependencies > derived with first-seen-wins inside the latter two.
// A dependency or derived term whose id is already held by a merged term is
// skipped as well, whatever its label. Terms without a label are keyed by
// their id.
func Merge(current, dependencies, derived []Term) *Table {
	t := &Table{byLabel: make(map[string]*MergedTerm)}
	for _, term := range current {
		t.insert(term, SourceCurrent, true)
	}
	taken := make(map[string]bool, len(t.byLabel))
	for _, m := range t.byLabel {
		taken[m.ID] = true
	}
	for _, pass := range []struct {
		source string
		terms  []Term
	}{{SourceDependencies, dependencies}, {SourceDerived, derived}} {
		for _, term := range pass.terms {
			if term.ID != "" && taken[term.ID] {
				continue
			}
			if t.insert(term, pass.source, false) {
				taken[term.ID] = true
			}
		}
	}
	t.byID = make(map[string]*MergedTerm, len(t.order))
	for _, key := range t.order {
		m := t.byLabel[key]
		if _, taken := t.byID[m.ID]; !taken {
			t.byID[m.ID] = m
		}
	}
	return t
}

func (t *Table) insert(term Term, source string, overwrite bool) bool {
	key := term.Label
	if key == "" {
		key = term.ID
	}
	if key == "" {
		return false
	}
	_, exists := t.byLabel[key]
	if exists && !overwrite {
		return false
	}
	if !exists {
		t.order = append(t.order, key)
	}
	t.byLabel[key] = &MergedTerm{Term: term, Source: source}
	return true
}

// Lookup returns the merged term with the given label.
func (t *Table) Lookup(label string) (MergedTerm, bool) {
	m, ok := t.byLabel[label]
	if !ok {
		return MergedTerm{}, false
	}
	return *m, true
}

// ByID returns the merged term with the given (unsanitized) id. When two
// labels share an id, the one merged first wins.
func (t *Table) ByID(id string) (MergedTerm, bool) {
	m, ok := t.byID[id]
	if !ok {
		return MergedTerm{}, false
	}
	return *m, true
}

// Terms returns the merged terms in merge order.
func (t *Table) Terms() []MergedTerm {
	terms := make([]MergedTerm, 0, len(t.order))
	for _, key := range t.order {
		terms = append(terms, *t.byLabel[key])
	}
	return terms
}

// Len returns the number of merged terms.
func (t *Table) Len() int { return len(t.order) }

// RelationLabels returns every distinct relation label used by a merged term,
// in first-use order.
func (t *Table) RelationLabels() []string {
	var labels []string
	for _, key := range t.order {
		for _, r := range t.byLabel[key].Relations {
			if !slices.Contains(labels, r.RelationLabel) {
				labels = append(labels, r.RelationLabel)
			}
		}
	}
	return labels
}

// UnmappedRelations reports every relation label that known rejects, for
// example labels without an entry in the relation colour palette.
func (t *Table) UnmappedRelations(known func(string) bool) []Issue {
	var issues []Issue
	for _, label := range t.RelationLabels() {
		if !known(label) {
			issues = append(issues, Issue{Kind: IssueUnmappedRelation, Reference: label})
		}
	}
	return issues
}
