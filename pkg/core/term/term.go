package term

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Term sources, in merge precedence order.
const (
	SourceCurrent      = "current"
	SourceDependencies = "dependencies"
	SourceDerived      = "derived"
)

// Term is one ontology term as read from the sheet or supplied by the term
// lookup service.
type Term struct {
	ID             string        `json:"id" yaml:"id" bson:"id"`
	Label          string        `json:"label" yaml:"label" bson:"label"`
	CurationStatus string        `json:"curation_status,omitempty" yaml:"curation_status,omitempty" bson:"curation_status,omitempty"`
	Origin         string        `json:"origin,omitempty" yaml:"origin,omitempty" bson:"origin,omitempty"`
	Parents        []ParentRef   `json:"parents,omitempty" yaml:"parents,omitempty" bson:"parents,omitempty"`
	Relations      []RelationRef `json:"relations,omitempty" yaml:"relations,omitempty" bson:"relations,omitempty"`
}

// ParentRef names a parent by label. ID is empty until resolved, except for
// dependency and derived data, which arrives pre-resolved.
type ParentRef struct {
	Label string `json:"label" yaml:"label" bson:"label"`
	ID    string `json:"id,omitempty" yaml:"id,omitempty" bson:"id,omitempty"`
}

// RelationRef is one cell entry of a REL column: the relation and the label
// of its target term.
type RelationRef struct {
	RelationLabel string `json:"relation" yaml:"relation" bson:"relation"`
	TargetLabel   string `json:"target" yaml:"target" bson:"target"`
}

// MergedTerm is a term tagged with the source that won the merge.
type MergedTerm struct {
	Term
	Source string `json:"source"`
}

// IssueKind classifies a recoverable input problem.
type IssueKind string

const (
	IssueInvalidRow         IssueKind = "invalid_row"
	IssueUnresolvedParent   IssueKind = "unresolved_parent"
	IssueUnresolvedRelation IssueKind = "unresolved_relation"
	IssueDanglingParent     IssueKind = "dangling_parent"
	IssueUnmappedRelation   IssueKind = "unmapped_relation"
)

// Issue describes a reference or row that could not be used. Issues never
// abort a build; the offending reference is dropped or kept as documented by
// the component that reports it.
type Issue struct {
	Kind      IssueKind `json:"kind"`
	Term      string    `json:"term,omitempty"`      // label of the term that holds the reference
	Reference string    `json:"reference,omitempty"` // the label or column that failed
	Row       int       `json:"row,omitempty"`       // 1-based sheet row, when known
}

func (i Issue) String() string {
	switch i.Kind {
	case IssueInvalidRow:
		return fmt.Sprintf("row %d skipped: %s", i.Row, i.Reference)
	case IssueUnresolvedParent:
		return fmt.Sprintf("parent %q of %q not found", i.Reference, i.Term)
	case IssueUnresolvedRelation:
		return fmt.Sprintf("relation target %q of %q not found", i.Reference, i.Term)
	case IssueDanglingParent:
		return fmt.Sprintf("parent %q of %q is not part of the graph", i.Reference, i.Term)
	case IssueUnmappedRelation:
		return fmt.Sprintf("relation %q has no colour mapping", i.Reference)
	}
	return fmt.Sprintf("%s: %s %s", i.Kind, i.Term, i.Reference)
}

// LogIssues writes each issue to logger at warn level.
func LogIssues(logger *log.Logger, issues []Issue) {
	for _, i := range issues {
		logger.Warn(string(i.Kind), "term", i.Term, "reference", i.Reference, "row", i.Row)
	}
}
