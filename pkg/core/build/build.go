// Package build assembles resolved terms into a [digraph.Graph].
//
// Each merged term becomes one node. Each resolved parent becomes a
// subclass_of edge from the parent to the child, and each relation becomes an
// edge typed by its relation label and coloured from a [palette.Palette].
//
// Parent edges to terms that are not in the graph are kept, since the pruner
// removes them later together with anything else that is not relevant.
// Relation edges to unknown targets are skipped, as an arrow to nothing cannot
// be drawn. Both cases are reported as [term.Issue] values and logged.
package build

import (
	"io"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/palette"
	"github.com/matzehuels/termtree/pkg/core/term"
)

const (
	// ClassPrefix prefixes the curation-status class of every node.
	ClassPrefix = "ose-curation-status-"
	// ExternalStatus is the curation status of terms that carry none.
	ExternalStatus = "External"
	// UnknownOrigin is the origin of terms that carry none.
	UnknownOrigin = "<unknown>"
)

// Options configures assembly. The zero value uses the default palette and
// discards log output.
type Options struct {
	Palette *palette.Palette
	Logger  *log.Logger
}

func (o Options) withDefaults() Options {
	if o.Palette == nil {
		p := palette.Default()
		o.Palette = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Result is an assembled graph with every issue met on the way.
type Result struct {
	Graph  *digraph.Graph
	Issues []term.Issue
}

// FromSources merges the three term lists, resolves parents and assembles
// the graph, collecting the issues of every step.
func FromSources(current, dependencies, derived []term.Term, opts Options) *Result {
	opts = opts.withDefaults()
	table := term.Merge(current, dependencies, derived)
	resolved, issues := term.Resolve(table)
	term.LogIssues(opts.Logger, issues)

	res := Assemble(table, resolved, opts)
	res.Issues = append(issues, res.Issues...)
	return res
}

// Assemble builds the graph from terms resolved against table. Nodes are
// added before any edge so dangling parents can be told apart from parents
// that merely appear later in the table.
func Assemble(table *term.Table, terms []term.MergedTerm, opts Options) *Result {
	opts = opts.withDefaults()
	g := digraph.New()
	var issues []term.Issue

	for _, m := range terms {
		g.AddNode(NewNode(m))
	}

	for _, m := range terms {
		child := digraph.SanitizeID(m.ID)
		for _, p := range m.Parents {
			parent := digraph.SanitizeID(p.ID)
			if !g.Has(parent) {
				issue := term.Issue{Kind: term.IssueDanglingParent, Term: m.Label, Reference: p.Label}
				opts.Logger.Warn("parent not in graph, keeping edge", "term", m.Label, "parent", p.Label, "id", p.ID)
				issues = append(issues, issue)
			}
			g.AddEdge(digraph.Edge{From: parent, To: child, Type: digraph.SubclassOf})
		}
	}

	for _, m := range terms {
		from := digraph.SanitizeID(m.ID)
		for _, r := range m.Relations {
			target, ok := table.ResolveRelation(r)
			if !ok {
				opts.Logger.Warn("relation target not found, skipping edge", "term", m.Label, "relation", r.RelationLabel, "target", r.TargetLabel)
				issues = append(issues, term.Issue{Kind: term.IssueUnresolvedRelation, Term: m.Label, Reference: r.TargetLabel})
				continue
			}
			g.AddEdge(digraph.Edge{
				From:  from,
				To:    digraph.SanitizeID(target.ID),
				Type:  r.RelationLabel,
				Label: r.RelationLabel,
				Color: opts.Palette.Color(r.RelationLabel),
			})
		}
	}

	unmapped := table.UnmappedRelations(opts.Palette.Has)
	for _, i := range unmapped {
		opts.Logger.Warn("unmapped relation column", "relation", i.Reference, "color", opts.Palette.Fallback())
	}
	issues = append(issues, unmapped...)

	opts.Logger.Debug("assembled graph", "nodes", g.NodeCount(), "edges", g.EdgeCount(), "issues", len(issues))
	return &Result{Graph: g, Issues: issues}
}

// NewNode converts a merged term into an unranked node.
func NewNode(m term.MergedTerm) digraph.Node {
	origin := m.Origin
	if origin == "" {
		origin = UnknownOrigin
	}
	status := m.CurationStatus
	if strings.TrimSpace(status) == "" {
		status = ExternalStatus
	}
	return digraph.Node{
		ID:          digraph.SanitizeID(m.ID),
		Label:       m.Label,
		Class:       ClassPrefix + Slug(status),
		Source:      m.Source,
		Origin:      origin,
		VisualDepth: digraph.DepthUnset,
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lower-cases s and collapses every run of other characters into a
// single underscore, e.g. "Ready for Release" becomes "ready_for_release".
func Slug(s string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "_"), "_")
}
