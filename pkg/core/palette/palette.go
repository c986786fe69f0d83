// Package palette maps relation labels to the colours used for relation
// edges and their arrowheads.
//
// A [Palette] is immutable once built. Components receive one explicitly so
// callers and tests can substitute their own colours:
//
//	p := palette.New(map[string]string{"part of": "#1f77b4"}, "#999999")
//	p.Color("part of")   // "#1f77b4"
//	p.Color("touches")   // "#999999"
package palette

import (
	"maps"
	"slices"
)

// DefaultFallback is the colour of relations without an entry.
const DefaultFallback = "#7f7f7f"

var defaultColors = map[string]string{
	"part of":         "#1f77b4",
	"has part":        "#ff7f0e",
	"develops from":   "#2ca02c",
	"located in":      "#d62728",
	"participates in": "#9467bd",
	"has participant": "#8c564b",
	"regulates":       "#e377c2",
	"capable of":      "#17becf",
	"derives from":    "#bcbd22",
}

// Palette is an immutable relation label to colour table.
type Palette struct {
	colors   map[string]string
	fallback string
}

// New copies colors into a palette. An empty fallback selects
// [DefaultFallback].
func New(colors map[string]string, fallback string) Palette {
	if fallback == "" {
		fallback = DefaultFallback
	}
	return Palette{colors: maps.Clone(colors), fallback: fallback}
}

// Default returns the built-in palette.
func Default() Palette { return New(defaultColors, DefaultFallback) }

// With returns a copy of p with extra entries layered on top.
func (p Palette) With(extra map[string]string) Palette {
	merged := maps.Clone(p.colors)
	if merged == nil {
		merged = make(map[string]string, len(extra))
	}
	maps.Copy(merged, extra)
	return Palette{colors: merged, fallback: p.fallback}
}

// Color returns the colour for a relation label, or the fallback.
func (p Palette) Color(label string) string {
	if c, ok := p.colors[label]; ok {
		return c
	}
	if p.fallback == "" {
		return DefaultFallback
	}
	return p.fallback
}

// Has reports whether label has its own entry.
func (p Palette) Has(label string) bool {
	_, ok := p.colors[label]
	return ok
}

// Fallback returns the colour used for unmapped labels.
func (p Palette) Fallback() string {
	if p.fallback == "" {
		return DefaultFallback
	}
	return p.fallback
}

// Labels returns the mapped relation labels in sorted order.
func (p Palette) Labels() []string { return slices.Sorted(maps.Keys(p.colors)) }
