package layout

import "strings"

// Size is the measured box of a node.
type Size struct {
	Width  float64
	Height float64
	Lines  []string
}

// SizeNode wraps label at opts.MaxLineWidth and derives the box:
// width max(MinWidth, widest line + 2*Padding) and height
// max(MinHeight, lines*LineHeight + Padding).
func SizeNode(label string, m Measurer, opts Options) Size {
	lines := Wrap(label, opts.MaxLineWidth, opts.FontSize, m)
	widest := 0.0
	for _, line := range lines {
		widest = max(widest, m.MeasureText(line, opts.FontSize))
	}
	return Size{
		Width:  max(opts.MinWidth, widest+2*opts.Padding),
		Height: max(opts.MinHeight, float64(len(lines))*opts.LineHeight+opts.Padding),
		Lines:  lines,
	}
}

// Wrap breaks text into lines no wider than maxWidth, greedily adding words
// while they fit. A single word wider than maxWidth gets a line of its own
// and is not split.
func Wrap(text string, maxWidth, fontSize float64, m Measurer) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		candidate := line + " " + w
		if m.MeasureText(candidate, fontSize) <= maxWidth {
			line = candidate
			continue
		}
		lines = append(lines, line)
		line = w
	}
	return append(lines, line)
}
