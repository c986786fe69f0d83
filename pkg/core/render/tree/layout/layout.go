package layout

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/core/digraph"
)

// Default values for [Options]. All distances are in user units (pixels in SVG).
const (
	DefaultFontSize      = 12.0
	DefaultLineHeight    = 16.0
	DefaultMaxLineWidth  = 160.0
	DefaultPadding       = 10.0
	DefaultMinWidth      = 80.0
	DefaultMinHeight     = 30.0
	DefaultSiblingGap    = 20.0
	DefaultNonSiblingGap = 40.0
	DefaultLevelGap      = 60.0
	DefaultTreeGap       = 80.0
	DefaultMarginX       = 20.0
	DefaultMarginY       = 20.0

	// MaxRelationBow caps the perpendicular offset of relation curves.
	MaxRelationBow = 30.0
	// RelationBowRatio is the offset of a relation curve relative to its length.
	RelationBowRatio = 0.2
)

// Measurer reports the rendered width of text at a font size. The drawing
// layer provides it; see the measure package for implementations.
type Measurer interface {
	MeasureText(text string, fontSize float64) float64
}

// MeasureFunc adapts a function to [Measurer].
type MeasureFunc func(text string, fontSize float64) float64

// MeasureText calls f.
func (f MeasureFunc) MeasureText(text string, fontSize float64) float64 { return f(text, fontSize) }

// fontCharWidth approximates a glyph's advance relative to the font size. It
// is only used when no Measurer is supplied.
const fontCharWidth = 0.55

var approximate = MeasureFunc(func(text string, fontSize float64) float64 {
	return float64(len([]rune(text))) * fontSize * fontCharWidth
})

// Options controls node sizing and spacing. Zero fields take the Default*
// values.
type Options struct {
	FontSize      float64 `json:"font_size,omitempty" toml:"font_size" validate:"gte=0"`
	LineHeight    float64 `json:"line_height,omitempty" toml:"line_height" validate:"gte=0"`
	MaxLineWidth  float64 `json:"max_line_width,omitempty" toml:"max_line_width" validate:"gte=0"`
	Padding       float64 `json:"padding,omitempty" toml:"padding" validate:"gte=0"`
	MinWidth      float64 `json:"min_width,omitempty" toml:"min_width" validate:"gte=0"`
	MinHeight     float64 `json:"min_height,omitempty" toml:"min_height" validate:"gte=0"`
	SiblingGap    float64 `json:"sibling_gap,omitempty" toml:"sibling_gap" validate:"gte=0"`
	NonSiblingGap float64 `json:"non_sibling_gap,omitempty" toml:"non_sibling_gap" validate:"gte=0"`
	LevelGap      float64 `json:"level_gap,omitempty" toml:"level_gap" validate:"gte=0"`
	TreeGap       float64 `json:"tree_gap,omitempty" toml:"tree_gap" validate:"gte=0"`
	MarginX       float64 `json:"margin_x,omitempty" toml:"margin_x" validate:"gte=0"`
	MarginY       float64 `json:"margin_y,omitempty" toml:"margin_y" validate:"gte=0"`

	Logger *log.Logger `json:"-" toml:"-" validate:"-"`
}

// WithDefaults returns o with every zero field set to its default.
func (o Options) WithDefaults() Options {
	def := func(v *float64, d float64) {
		if *v == 0 {
			*v = d
		}
	}
	def(&o.FontSize, DefaultFontSize)
	def(&o.LineHeight, DefaultLineHeight)
	def(&o.MaxLineWidth, DefaultMaxLineWidth)
	def(&o.Padding, DefaultPadding)
	def(&o.MinWidth, DefaultMinWidth)
	def(&o.MinHeight, DefaultMinHeight)
	def(&o.SiblingGap, DefaultSiblingGap)
	def(&o.NonSiblingGap, DefaultNonSiblingGap)
	def(&o.LevelGap, DefaultLevelGap)
	def(&o.TreeGap, DefaultTreeGap)
	def(&o.MarginX, DefaultMarginX)
	def(&o.MarginY, DefaultMarginY)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return o
}

// Point is a position in layout space, y growing downward.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NodeBox is the placed box of one node. X and Y are its top-left corner.
type NodeBox struct {
	ID     string        `json:"id"`
	Label  string        `json:"label"`
	Class  string        `json:"class,omitempty"`
	Source string        `json:"source,omitempty"`
	X      float64       `json:"x"`
	Y      float64       `json:"y"`
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Lines  []string      `json:"lines"`
	Depth  digraph.Depth `json:"visual_depth"`
	Tree   int           `json:"tree"`
	Level  int           `json:"level"` // row index, see [Rows]
}

// Center returns the centre of the box.
func (b NodeBox) Center() Point { return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2} }

// Right returns the x coordinate of the right edge.
func (b NodeBox) Right() float64 { return b.X + b.Width }

// Bottom returns the y coordinate of the bottom edge.
func (b NodeBox) Bottom() float64 { return b.Y + b.Height }

// Tree is the bounding box of one tree of the forest.
type Tree struct {
	Root   string  `json:"root"`
	Nodes  int     `json:"nodes"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Layout is the geometry of one diagram. It is handed to a drawing sink and
// discarded.
type Layout struct {
	Width   float64            `json:"width"`
	Height  float64            `json:"height"`
	Order   []string           `json:"order"`
	Nodes   map[string]NodeBox `json:"nodes"`
	Trees   []Tree             `json:"trees"`
	Curves  []Curve            `json:"curves"`
	Markers []Marker           `json:"markers"`
	Skipped int                `json:"skipped_edges,omitempty"`
}

// Boxes returns the node boxes in layout order.
func (l Layout) Boxes() []NodeBox {
	boxes := make([]NodeBox, 0, len(l.Order))
	for _, id := range l.Order {
		boxes = append(boxes, l.Nodes[id])
	}
	return boxes
}

// Build sizes, positions and connects every node of g. The graph is expected
// to be pruned and ranked. A nil measurer falls back to a character-count
// estimate.
func Build(g *digraph.Graph, m Measurer, opts Options) Layout {
	start := time.Now()
	opts = opts.WithDefaults()
	if m == nil {
		m = approximate
	}

	sizes := make(map[string]Size, g.NodeCount())
	for _, n := range g.Nodes() {
		sizes[n.ID] = SizeNode(n.Label, m, opts)
	}

	h := g.FilterEdges(digraph.Edge.IsHierarchy)
	forest := Decompose(h)
	l := place(g, forest, sizes, opts)
	l.Curves, l.Markers, l.Skipped = connect(g, l.Nodes, opts.Logger)

	opts.Logger.Debug("computed tree layout",
		"nodes", len(l.Nodes),
		"trees", len(l.Trees),
		"curves", len(l.Curves),
		"skipped", l.Skipped,
		"duration", time.Since(start))
	return l
}

// Rows assigns every node of the forest a row index. Finite visual depths are
// shifted so the smallest one becomes row 0; a node without a finite depth
// is placed one row below its tree parent, or on row 0 when it is a root.
func Rows(g *digraph.Graph, forest []SpanningTree) map[string]int {
	base, finite := math.MaxInt, false
	for _, t := range forest {
		for _, id := range t.Order {
			if n, ok := g.Node(id); ok && n.VisualDepth.Finite() {
				base, finite = min(base, int(n.VisualDepth)), true
			}
		}
	}
	if !finite {
		base = 0
	}

	rows := make(map[string]int, g.NodeCount())
	for _, t := range forest {
		parent := make(map[string]string, len(t.Order))
		for p, kids := range t.Children {
			for _, k := range kids {
				parent[k] = p
			}
		}
		for _, id := range t.Order { // breadth first: parents before children
			n, _ := g.Node(id)
			switch p, ok := parent[id]; {
			case n.VisualDepth.Finite():
				rows[id] = int(n.VisualDepth) - base
			case ok:
				rows[id] = rows[p] + 1
			default:
				rows[id] = 0
			}
		}
	}
	return rows
}

func place(g *digraph.Graph, forest []SpanningTree, sizes map[string]Size, opts Options) Layout {
	l := Layout{Nodes: make(map[string]NodeBox, g.NodeCount())}
	rows := Rows(g, forest)

	var rowHeights []float64
	for id, r := range rows {
		for len(rowHeights) <= r {
			rowHeights = append(rowHeights, 0)
		}
		rowHeights[r] = max(rowHeights[r], sizes[id].Height)
	}
	rowTops := make([]float64, len(rowHeights))
	y := opts.MarginY
	for i, h := range rowHeights {
		rowTops[i] = y
		if h > 0 {
			y += h + opts.LevelGap
		}
	}
	bottom := opts.MarginY
	if len(rowHeights) > 0 {
		bottom = y - opts.LevelGap
	}

	cursor := opts.MarginX
	for ti, t := range forest {
		centers := tidy(t, sizes, rows, opts)
		minLeft, maxRight := math.Inf(1), math.Inf(-1)
		for _, id := range t.Order {
			w := sizes[id].Width
			minLeft = min(minLeft, centers[id]-w/2)
			maxRight = max(maxRight, centers[id]+w/2)
		}
		offset := cursor - minLeft
		tree := Tree{Root: t.Root, Nodes: len(t.Order), Left: cursor, Right: cursor + maxRight - minLeft, Top: math.Inf(1)}
		for _, id := range t.Order {
			n, _ := g.Node(id)
			s := sizes[id]
			r := rows[id]
			box := NodeBox{
				ID:     id,
				Label:  n.Label,
				Class:  n.Class,
				Source: n.Source,
				X:      centers[id] + offset - s.Width/2,
				Y:      rowTops[r],
				Width:  s.Width,
				Height: s.Height,
				Lines:  s.Lines,
				Depth:  n.VisualDepth,
				Tree:   ti,
				Level:  r,
			}
			tree.Top = min(tree.Top, box.Y)
			tree.Bottom = max(tree.Bottom, box.Bottom())
			l.Nodes[id] = box
			l.Order = append(l.Order, id)
		}
		l.Trees = append(l.Trees, tree)
		cursor = tree.Right + opts.TreeGap
	}

	l.Width = opts.MarginX * 2
	if len(forest) > 0 {
		l.Width = cursor - opts.TreeGap + opts.MarginX
	}
	l.Height = bottom + opts.MarginY
	return l
}
