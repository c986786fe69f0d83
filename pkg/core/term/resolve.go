package term

// Resolve returns the merged terms with every parent reference bound to an id.
//
// A parent whose label is in the table takes the table's id. A parent that is
// not in the table but already carries an id (pre-resolved dependency or
// derived data pointing at an external term) is kept as is. Any other parent
// is reported as [IssueUnresolvedParent] and dropped from that term only; the
// term itself is always kept, possibly with no parents.
//
// Relations are not touched: their targets are looked up against the table
// when edges are created.
func Resolve(t *Table) ([]MergedTerm, []Issue) {
	var issues []Issue
	terms := t.Terms()
	for i := range terms {
		m := &terms[i]
		if len(m.Parents) == 0 {
			continue
		}
		parents := make([]ParentRef, 0, len(m.Parents))
		for _, p := range m.Parents {
			if target, ok := t.Lookup(p.Label); ok {
				parents = append(parents, ParentRef{Label: p.Label, ID: target.ID})
				continue
			}
			if p.ID != "" {
				parents = append(parents, p)
				continue
			}
			issues = append(issues, Issue{Kind: IssueUnresolvedParent, Term: m.Label, Reference: p.Label})
		}
		m.Parents = parents
	}
	return terms, issues
}

// ResolveRelation finds the target term of a relation reference. The target
// is looked up by label first, then by id, since sheets sometimes name the
// target by its CURIE.
func (t *Table) ResolveRelation(r RelationRef) (MergedTerm, bool) {
	if m, ok := t.Lookup(r.TargetLabel); ok {
		return m, true
	}
	return t.ByID(r.TargetLabel)
}
