package layout

// contour holds the horizontal extent of a subtree per row, relative to the
// centre of the subtree's root.
type contour struct {
	left, right map[int]float64
}

func newContour(row int, half float64) contour {
	return contour{left: map[int]float64{row: -half}, right: map[int]float64{row: half}}
}

// tidy positions one spanning tree and returns the x centre of every node,
// with the root at 0. Children are centred under their parent; adjacent
// siblings keep SiblingGap between their boxes on the row of the later
// sibling and NonSiblingGap on every other row. A child group that shares
// its parent's row is pushed right of the parent.
func tidy(t SpanningTree, sizes map[string]Size, rows map[string]int, opts Options) map[string]float64 {
	rel := make(map[string]float64, len(t.Order))
	shape(t.Root, t, sizes, rows, opts, rel)

	centers := map[string]float64{t.Root: 0}
	for _, id := range t.Order { // breadth first: parents before children
		for _, c := range t.Children[id] {
			centers[c] = centers[id] + rel[c]
		}
	}
	return centers
}

// shape lays out the subtree under id, storing each child's offset from its
// parent in rel, and returns the subtree contour.
func shape(id string, t SpanningTree, sizes map[string]Size, rows map[string]int, opts Options, rel map[string]float64) contour {
	half := sizes[id].Width / 2
	own := newContour(rows[id], half)

	kids := t.Children[id]
	if len(kids) == 0 {
		return own
	}

	var acc contour
	offsets := make([]float64, len(kids))
	for i, k := range kids {
		c := shape(k, t, sizes, rows, opts, rel)
		if i == 0 {
			acc = c
			continue
		}
		shift := offsets[i-1]
		for r, left := range c.left {
			right, ok := acc.right[r]
			if !ok {
				continue
			}
			gap := opts.NonSiblingGap
			if r == rows[k] {
				gap = opts.SiblingGap
			}
			shift = max(shift, right-left+gap)
		}
		offsets[i] = shift
		acc = merge(acc, c, shift)
	}

	mid := (offsets[0] + offsets[len(offsets)-1]) / 2
	if left, ok := acc.left[rows[id]]; ok {
		if push := half + opts.SiblingGap - (left - mid); push > 0 {
			mid -= push
		}
	}
	for i, k := range kids {
		rel[k] = offsets[i] - mid
	}
	return merge(own, acc, -mid)
}

// merge combines contour a with contour b shifted right by shift.
func merge(a, b contour, shift float64) contour {
	out := contour{left: make(map[int]float64, len(a.left)), right: make(map[int]float64, len(a.right))}
	for r := range a.left {
		out.left[r], out.right[r] = a.left[r], a.right[r]
	}
	for r := range b.left {
		l, rt := b.left[r]+shift, b.right[r]+shift
		if _, ok := out.left[r]; ok {
			l, rt = min(out.left[r], l), max(out.right[r], rt)
		}
		out.left[r], out.right[r] = l, rt
	}
	return out
}
