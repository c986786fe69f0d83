package layout

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/termtree/pkg/core/digraph"
)

// CurveKind tells hierarchy links from relation arcs.
type CurveKind string

const (
	CurveHierarchy CurveKind = "hierarchy"
	CurveRelation  CurveKind = "relation"
)

// Curve is the drawable geometry of one edge.
//
// Hierarchy curves are cubic: Start, C1, C2, End. Relation curves are
// quadratic and use C1 as their single control point; C2 equals C1.
type Curve struct {
	From    string    `json:"source"`
	To      string    `json:"target"`
	Kind    CurveKind `json:"kind"`
	Type    string    `json:"type"`
	Start   Point     `json:"start"`
	C1      Point     `json:"c1"`
	C2      Point     `json:"c2"`
	End     Point     `json:"end"`
	Color   string    `json:"color,omitempty"`
	Marker  string    `json:"marker,omitempty"`
	Label   string    `json:"label,omitempty"`
	LabelAt Point     `json:"label_at"`
}

// Path returns the curve as SVG path data.
func (c Curve) Path() string {
	if c.Kind == CurveRelation {
		return fmt.Sprintf("M%.2f,%.2f Q%.2f,%.2f %.2f,%.2f",
			c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.End.X, c.End.Y)
	}
	return fmt.Sprintf("M%.2f,%.2f C%.2f,%.2f %.2f,%.2f %.2f,%.2f",
		c.Start.X, c.Start.Y, c.C1.X, c.C1.Y, c.C2.X, c.C2.Y, c.End.X, c.End.Y)
}

// Marker is one arrowhead definition, shared by every relation curve of the
// same colour.
type Marker struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9]+`)

// MarkerID returns the marker id used for a colour.
func MarkerID(color string) string {
	return "arrow-" + strings.Trim(nonIdent.ReplaceAllString(color, "-"), "-")
}

// connect computes a curve for every edge whose endpoints were placed. Edges
// with a missing endpoint, or with coincident endpoints, are skipped and
// counted.
func connect(g *digraph.Graph, boxes map[string]NodeBox, logger *log.Logger) ([]Curve, []Marker, int) {
	var (
		curves  []Curve
		markers []Marker
		skipped int
	)
	seen := make(map[string]bool)
	for _, e := range g.Edges() {
		src, okS := boxes[e.From]
		dst, okD := boxes[e.To]
		if !okS || !okD {
			logger.Debug("skipping edge without placed endpoints", "source", e.From, "target", e.To, "type", e.Type)
			skipped++
			continue
		}
		var (
			c  Curve
			ok bool
		)
		if e.IsHierarchy() {
			c, ok = HierarchyCurve(src, dst)
		} else {
			c, ok = RelationCurve(src, dst)
		}
		if !ok {
			logger.Debug("skipping degenerate edge", "source", e.From, "target", e.To, "type", e.Type)
			skipped++
			continue
		}
		c.From, c.To, c.Type = e.From, e.To, e.Type
		if !e.IsHierarchy() {
			c.Label = e.Label
			c.Color = e.Color
			c.Marker = MarkerID(e.Color)
			if !seen[c.Marker] {
				seen[c.Marker] = true
				markers = append(markers, Marker{ID: c.Marker, Color: e.Color})
			}
		}
		curves = append(curves, c)
	}
	return curves, markers, skipped
}

// HierarchyCurve links the centre of parent to the top centre of child with a
// vertical cubic curve: both control points sit halfway down, above their end.
func HierarchyCurve(parent, child NodeBox) (Curve, bool) {
	start := parent.Center()
	end := child.Center()
	end.Y -= child.Height / 2
	if start == end {
		return Curve{}, false
	}
	midY := (start.Y + end.Y) / 2
	return Curve{
		Kind:    CurveHierarchy,
		Start:   start,
		C1:      Point{X: start.X, Y: midY},
		C2:      Point{X: end.X, Y: midY},
		End:     end,
		LabelAt: Point{X: (start.X + end.X) / 2, Y: midY},
	}, true
}

// RelationCurve bows a quadratic curve between the centres of two boxes. The
// control point is the midpoint moved along the left-hand normal of the
// source to target direction by min(MaxRelationBow, RelationBowRatio*d), so
// opposite relations between one pair never overlap. The end is pulled back
// along its approach direction onto the border of the target box.
func RelationCurve(src, dst NodeBox) (Curve, bool) {
	s, t := src.Center(), dst.Center()
	dx, dy := t.X-s.X, t.Y-s.Y
	dist := math.Hypot(dx, dy)
	if dist == 0 {
		return Curve{}, false
	}
	bow := min(MaxRelationBow, RelationBowRatio*dist)
	ctrl := Point{
		X: (s.X+t.X)/2 - dy/dist*bow,
		Y: (s.Y+t.Y)/2 + dx/dist*bow,
	}

	ax, ay := t.X-ctrl.X, t.Y-ctrl.Y
	alen := math.Hypot(ax, ay)
	if alen == 0 {
		ax, ay, alen = dx, dy, dist
	}
	cos, sin := ax/alen, ay/alen
	trim := borderDistance(dst.Width/2, dst.Height/2, cos, sin)
	end := Point{X: t.X - cos*trim, Y: t.Y - sin*trim}

	return Curve{
		Kind:  CurveRelation,
		Start: s,
		C1:    ctrl,
		C2:    ctrl,
		End:   end,
		LabelAt: Point{
			X: 0.25*s.X + 0.5*ctrl.X + 0.25*end.X,
			Y: 0.25*s.Y + 0.5*ctrl.Y + 0.25*end.Y,
		},
	}, true
}

// borderDistance is the distance from the centre of a box with half extents
// hw, hh to its border in direction (cos, sin).
func borderDistance(hw, hh, cos, sin float64) float64 {
	tx, ty := math.Inf(1), math.Inf(1)
	if cos != 0 {
		tx = hw / math.Abs(cos)
	}
	if sin != 0 {
		ty = hh / math.Abs(sin)
	}
	return min(tx, ty)
}
