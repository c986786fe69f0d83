// Package pipeline runs the termtree diagram pipeline end to end.
//
// The CLI and the HTTP API both go through this package so that a sheet
// renders the same way everywhere.
//
// # Stages
//
//  1. Fetch: parse the sheet rows and collect dependency and derived terms
//     from the inline input and the configured [source.TermSource]
//  2. Build: merge, resolve and assemble the graph, prune it to the parts
//     relevant to the sheet and assign visual depths
//  3. Layout: place the forest (tree) or export DOT (nodelink)
//  4. Render: produce SVG, PNG, PDF, DOT or JSON artifacts
//
// Fetched term data is cached per source and label set; diagrams are never
// cached or stored.
//
// # Usage
//
//	runner := pipeline.NewRunner(src, c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Input{Rows: rows}, pipeline.Options{
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := res.Artifacts["svg"]
//
// Stages can also be run on their own:
//
//	built, err := runner.Build(ctx, in, opts)
//	l, err := runner.Layout(ctx, built.Graph, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/palette"
	"github.com/matzehuels/termtree/pkg/core/prune"
	"github.com/matzehuels/termtree/pkg/core/render/tree/layout"
	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/graph"
)

// DefaultVizType is the default visualization type.
const DefaultVizType = graph.VizTypeTree

// Output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// DefaultScale is the PNG scale factor.
const DefaultScale = 2.0

// Input is the data of one diagram: the sheet rows plus dependency and
// derived terms supplied inline. Inline terms win over fetched ones.
type Input struct {
	Rows         []term.Row  `json:"rows" validate:"required,min=1"`
	Dependencies []term.Term `json:"dependencies,omitempty"`
	Derived      []term.Term `json:"derived,omitempty"`
}

// Options configures a pipeline run. It is the "options" object of API
// requests.
type Options struct {
	// Build options
	NoPrune bool `json:"no_prune,omitempty"`
	Refresh bool `json:"refresh,omitempty"`

	// Layout options
	VizType string            `json:"viz_type,omitempty"`
	Layout  layout.Options    `json:"layout,omitempty"`
	Colors  map[string]string `json:"colors,omitempty" validate:"omitempty,dive,hexcolor"`

	// Render options
	Formats        []string `json:"formats,omitempty"`
	Title          string   `json:"title,omitempty" validate:"max=512"`
	RelationLabels bool     `json:"relation_labels,omitempty"`
	Interactive    bool     `json:"interactive,omitempty"`
	EmbedFont      bool     `json:"embed_font,omitempty"`
	Detailed       bool     `json:"detailed,omitempty"`
	Scale          float64  `json:"scale,omitempty" validate:"gte=0,lte=8"`

	// Runtime options (not serialized)
	Logger   *log.Logger      `json:"-" validate:"-"`
	Palette  *palette.Palette `json:"-" validate:"-"`
	Measurer layout.Measurer  `json:"-" validate:"-"`

	validated bool
}

// Result holds everything a run produced.
type Result struct {
	Graph     *digraph.Graph
	Issues    []term.Issue
	Pruned    prune.Result
	Depths    map[string]digraph.Depth
	Layout    graph.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains run statistics.
type Stats struct {
	Rows       int           `json:"rows"`
	Terms      int           `json:"terms"`
	NodeCount  int           `json:"nodes"`
	EdgeCount  int           `json:"edges"`
	Trees      int           `json:"trees,omitempty"`
	FetchTime  time.Duration `json:"fetch_ns"`
	BuildTime  time.Duration `json:"build_ns"`
	LayoutTime time.Duration `json:"layout_ns,omitempty"`
	RenderTime time.Duration `json:"render_ns,omitempty"`
}

// CacheInfo reports whether fetched term data came from the cache.
type CacheInfo struct {
	SnapshotHit bool
}

// ValidateAndSetDefaults checks the options and fills defaults. Calling it
// again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.VizType == "" {
		o.VizType = DefaultVizType
	}
	if err := errors.ValidateVizType(o.VizType); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	for _, f := range o.Formats {
		if err := errors.ValidateFormat(f); err != nil {
			return err
		}
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Layout.Logger == nil {
		o.Layout.Logger = o.Logger
	}
	o.Layout = o.Layout.WithDefaults()
	if o.Palette == nil {
		p := palette.Default().With(o.Colors)
		o.Palette = &p
	}
	o.validated = true
	return nil
}

// IsTree reports whether the run produces a tree layout.
func (o *Options) IsTree() bool { return o.VizType == "" || o.VizType == graph.VizTypeTree }

// IsNodelink reports whether the run produces a Graphviz diagram.
func (o *Options) IsNodelink() bool { return o.VizType == graph.VizTypeNodelink }
