package pipeline

import (
	"bytes"
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/termtree/pkg/cache"
	"github.com/matzehuels/termtree/pkg/core/digraph"
	"github.com/matzehuels/termtree/pkg/core/render/tree/measure"
	"github.com/matzehuels/termtree/pkg/core/term"
	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/observability"
	"github.com/matzehuels/termtree/pkg/source"
)

var sheet = []term.Row{
	{"ID": "ID", "Label": "LABEL", "Parent": "SC %"},
	{"ID": "A:1", "Label": "Alpha", "Parent": "cell"},
	{"ID": "A:2", "Label": "Beta", "Parent": "Alpha", "REL 'part of'": "Alpha"},
}

var snapshot = source.Snapshot{
	Dependencies: []term.Term{
		{ID: "CL:0000000", Label: "cell", Origin: "CL"},
		{ID: "BFO:0000001", Label: "entity", Origin: "BFO"},
	},
	Derived: []term.Term{
		{ID: "CL:0000540", Label: "neuron", Parents: []term.ParentRef{{Label: "Beta", ID: "A:2"}}},
	},
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	snap  source.Snapshot
	err   error
}

func (s *countingSource) Name() string { return "counting" }

func (s *countingSource) Key() string { return "counting" }

func (s *countingSource) Fetch(context.Context, []string) (source.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.snap, s.err
}

func newRunner(src source.TermSource, c cache.Cache) *Runner {
	return NewRunner(src, c, nil, nil)
}

func TestBuild(t *testing.T) {
	r := newRunner(source.StaticSource{Snapshot: snapshot}, nil)

	res, err := r.Build(context.Background(), Input{Rows: sheet}, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := map[string]digraph.Depth{
		"CL_0000000": 0,
		"A_1":        1,
		"A_2":        2,
		"CL_0000540": 2,
	}
	if got := res.Graph.NodeCount(); got != len(want) {
		t.Errorf("NodeCount() = %d, want %d", got, len(want))
	}
	for id, d := range want {
		n, ok := res.Graph.Node(id)
		if !ok {
			t.Errorf("node %s missing", id)
			continue
		}
		if n.VisualDepth != d {
			t.Errorf("%s depth = %d, want %d", id, n.VisualDepth, d)
		}
	}
	if res.Graph.Has("BFO_0000001") {
		t.Error("unrelated dependency survived pruning")
	}
	if len(res.Pruned.RemovedNodes) != 1 {
		t.Errorf("RemovedNodes = %v, want one", res.Pruned.RemovedNodes)
	}
	if res.Stats.Rows != 3 || res.Stats.Terms != 5 {
		t.Errorf("Stats = %+v", res.Stats)
	}
}

func TestBuildNoPrune(t *testing.T) {
	r := newRunner(source.StaticSource{Snapshot: snapshot}, nil)

	res, err := r.Build(context.Background(), Input{Rows: sheet}, Options{NoPrune: true})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if !res.Graph.Has("BFO_0000001") {
		t.Error("NoPrune still removed a node")
	}
	n, _ := res.Graph.Node("BFO_0000001")
	if n.VisualDepth != -1 {
		t.Errorf("isolated dependency depth = %d, want -1", n.VisualDepth)
	}
}

func TestBuildInlineTermsWin(t *testing.T) {
	r := newRunner(source.StaticSource{Snapshot: snapshot}, nil)
	in := Input{
		Rows:         sheet,
		Dependencies: []term.Term{{ID: "CL:0000000", Label: "cell", Origin: "inline"}},
	}

	res, err := r.Build(context.Background(), in, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	n, _ := res.Graph.Node("CL_0000000")
	if n.Origin != "inline" {
		t.Errorf("cell origin = %q, want inline", n.Origin)
	}
}

func TestBuildErrors(t *testing.T) {
	tests := []struct {
		name string
		src  source.TermSource
		rows []term.Row
		code errors.Code
	}{
		{"no rows", nil, nil, errors.ErrCodeInvalidSheet},
		{"template only", nil, sheet[:1], errors.ErrCodeInvalidSheet},
		{"source down", &countingSource{err: stderrors.New("boom")}, sheet, errors.ErrCodeSourceUnavailable},
		{"source timeout", &countingSource{err: errors.New(errors.ErrCodeTimeout, "slow")}, sheet, errors.ErrCodeTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newRunner(tt.src, nil).Build(context.Background(), Input{Rows: tt.rows}, Options{})
			if !errors.Is(err, tt.code) {
				t.Errorf("Build() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestFetchCachesSnapshot(t *testing.T) {
	src := &countingSource{snap: snapshot}
	r := newRunner(src, cache.NewMemoryCache())
	ctx := context.Background()

	first, err := r.Build(ctx, Input{Rows: sheet}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.Build(ctx, Input{Rows: sheet}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want 1", src.calls)
	}
	if first.CacheInfo.SnapshotHit || !second.CacheInfo.SnapshotHit {
		t.Errorf("SnapshotHit = %v, %v, want false, true", first.CacheInfo.SnapshotHit, second.CacheInfo.SnapshotHit)
	}
	if second.Graph.NodeCount() != first.Graph.NodeCount() {
		t.Errorf("cached build has %d nodes, want %d", second.Graph.NodeCount(), first.Graph.NodeCount())
	}

	if _, err := r.Build(ctx, Input{Rows: sheet}, Options{Refresh: true}); err != nil {
		t.Fatal(err)
	}
	if src.calls != 2 {
		t.Errorf("source calls after refresh = %d, want 2", src.calls)
	}
}

func TestFetchCacheKeyedBySource(t *testing.T) {
	c := cache.NewMemoryCache()
	ctx := context.Background()
	withNeuron := source.StaticSource{Snapshot: snapshot}
	withoutNeuron := source.StaticSource{Snapshot: source.Snapshot{Dependencies: snapshot.Dependencies}}

	first, err := newRunner(withNeuron, c).Build(ctx, Input{Rows: sheet}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := newRunner(withoutNeuron, c).Build(ctx, Input{Rows: sheet}, Options{})
	if err != nil {
		t.Fatal(err)
	}

	if second.CacheInfo.SnapshotHit {
		t.Error("second source was served the first source's snapshot")
	}
	if !first.Graph.Has("CL_0000540") {
		t.Error("first build is missing the derived term")
	}
	if second.Graph.Has("CL_0000540") {
		t.Error("second build shows a derived term its source never returned")
	}
}

func TestExecuteTree(t *testing.T) {
	r := newRunner(source.StaticSource{Snapshot: snapshot}, nil)

	res, err := r.Execute(context.Background(), Input{Rows: sheet}, Options{
		Formats:  []string{FormatSVG, FormatJSON, FormatDOT},
		Measurer: measure.Approx{},
		Title:    "Alpha & friends",
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !res.Layout.IsTree() || len(res.Layout.Boxes) != 4 {
		t.Errorf("layout = %s with %d boxes, want tree with 4", res.Layout.VizType, len(res.Layout.Boxes))
	}
	if res.Stats.Trees != 1 {
		t.Errorf("Trees = %d, want 1", res.Stats.Trees)
	}
	svg := res.Artifacts[FormatSVG]
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("Alpha &amp; friends")) {
		t.Errorf("svg artifact missing root or title:\n%s", svg)
	}
	if !strings.Contains(string(res.Artifacts[FormatDOT]), "rank=same") {
		t.Errorf("dot artifact has no ranks:\n%s", res.Artifacts[FormatDOT])
	}

	l, err := graph.UnmarshalLayout(res.Artifacts[FormatJSON])
	if err != nil {
		t.Fatalf("UnmarshalLayout() error = %v", err)
	}
	again, err := r.Render(context.Background(), l, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatalf("Render() from JSON error = %v", err)
	}
	if !bytes.Equal(again[FormatSVG], renderSVG(t, r, res.Layout)) {
		t.Error("rendering the decoded layout differs from rendering the original")
	}
}

func renderSVG(t *testing.T, r *Runner, l graph.Layout) []byte {
	t.Helper()
	out, err := r.Render(context.Background(), l, Options{Formats: []string{FormatSVG}})
	if err != nil {
		t.Fatal(err)
	}
	return out[FormatSVG]
}

func TestExecuteNodelinkDOT(t *testing.T) {
	r := newRunner(source.StaticSource{Snapshot: snapshot}, nil)

	res, err := r.Execute(context.Background(), Input{Rows: sheet}, Options{
		VizType: graph.VizTypeNodelink,
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !res.Layout.IsNodelink() || res.Layout.DOT == "" {
		t.Fatalf("layout = %+v, want nodelink with DOT", res.Layout)
	}
	if got := string(res.Artifacts[FormatDOT]); got != res.Layout.DOT {
		t.Errorf("dot artifact differs from layout DOT")
	}
}

func TestValidateAndSetDefaults(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"defaults", Options{}, ""},
		{"nodelink", Options{VizType: "nodelink", Formats: []string{"dot", "svg"}}, ""},
		{"bad viz", Options{VizType: "tower"}, errors.ErrCodeInvalidVizType},
		{"bad format", Options{Formats: []string{"svg", "gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("ValidateAndSetDefaults() error = %v", err)
				}
				if len(tt.opts.Formats) == 0 || tt.opts.Logger == nil || tt.opts.Palette == nil {
					t.Errorf("defaults not applied: %+v", tt.opts)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestOptionsColors(t *testing.T) {
	opts := Options{Colors: map[string]string{"part of": "#010203"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if got := opts.Palette.Color("part of"); got != "#010203" {
		t.Errorf("Palette.Color(part of) = %q, want #010203", got)
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	mu     sync.Mutex
	stages []string
	issues map[string]int
}

func (h *recordingHooks) OnStageComplete(_ context.Context, stage string, _ int, _ time.Duration, _ error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stages = append(h.stages, stage)
}

func (h *recordingHooks) OnIssues(_ context.Context, kind string, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.issues[kind] += count
}

func TestExecuteReportsStages(t *testing.T) {
	hooks := &recordingHooks{issues: map[string]int{}}
	observability.SetPipelineHooks(hooks)
	t.Cleanup(observability.Reset)

	rows := append(sheet[1:], term.Row{"ID": "A:3", "Label": "Gamma", "Parent": "missing"})
	_, err := newRunner(source.StaticSource{Snapshot: snapshot}, nil).Execute(context.Background(),
		Input{Rows: rows}, Options{Formats: []string{FormatJSON}, Measurer: measure.Approx{}})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"fetch", "build", "prune", "rank", "layout", "render"}
	if strings.Join(hooks.stages, ",") != strings.Join(want, ",") {
		t.Errorf("stages = %v, want %v", hooks.stages, want)
	}
	if hooks.issues[string(term.IssueUnresolvedParent)] != 1 {
		t.Errorf("issues = %v, want one unresolved_parent", hooks.issues)
	}
}
