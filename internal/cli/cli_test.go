package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/termtree/pkg/errors"
	"github.com/matzehuels/termtree/pkg/graph"
)

const sheetCSV = `ID,Label,Parent,REL 'part of'
ID,LABEL,SC %,
A:1,Alpha,cell,
A:2,Beta,Alpha,Alpha
`

const depsYAML = `
- id: CL:0000000
  label: cell
  origin: CL
- id: BFO:0000001
  label: entity
  origin: BFO
`

const derivedYAML = `
- id: CL:0000540
  label: neuron
  parents:
    - label: Beta
      id: A:2
`

// workspace writes the fixture files into a fresh directory and isolates
// the config and cache locations.
func workspace(t *testing.T) (dir string, sourceArgs []string) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("HOME", dir)
	write := func(name, content string) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}
	write("sheet.csv", sheetCSV)
	return dir, []string{
		"--deps", write("deps.yaml", depsYAML),
		"--derived", write("derived.yaml", derivedYAML),
		"--no-cache",
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.SetOutput(&out)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&out)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"SVG, json ,,dot", []string{"svg", "json", "dot"}},
	}
	for _, tt := range tests {
		got := parseFormats(tt.in)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "sheet.csv", "sheet"},
		{"", "out/sheet.layout.json", "out/sheet"},
		{"", "g.graph.json", "g"},
		{"diagram.svg", "sheet.csv", "diagram"},
		{"noext", "sheet.csv", "noext"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestBuildCommand(t *testing.T) {
	dir, src := workspace(t)
	out, err := execute(t, append([]string{"build", filepath.Join(dir, "sheet.csv")}, src...)...)
	if err != nil {
		t.Fatalf("build: %v\n%s", err, out)
	}
	g, err := graph.ReadGraphFile(filepath.Join(dir, "sheet.graph.json"))
	if err != nil {
		t.Fatalf("read graph: %v", err)
	}
	if g.Has("BFO_0000001") {
		t.Error("unrelated dependency was not pruned")
	}
	for _, id := range []string{"CL_0000000", "A_1", "A_2", "CL_0000540"} {
		if !g.Has(id) {
			t.Errorf("node %s missing", id)
		}
	}
	if !strings.Contains(out, "sheet.graph.json") {
		t.Errorf("output does not name the graph file:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	dir, src := workspace(t)
	args := append([]string{"render", filepath.Join(dir, "sheet.csv"), "-f", "svg,json,dot"}, src...)
	if out, err := execute(t, args...); err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}

	svg, err := os.ReadFile(filepath.Join(dir, "sheet.svg"))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte("neuron")) {
		t.Errorf("unexpected svg:\n%s", svg)
	}
	if _, err := graph.ReadLayoutFile(filepath.Join(dir, "sheet.layout.json")); err != nil {
		t.Errorf("layout json: %v", err)
	}
	dot, err := os.ReadFile(filepath.Join(dir, "sheet.dot"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(dot), "digraph G {") {
		t.Errorf("dot = %q", dot)
	}
}

func TestRenderFromLayout(t *testing.T) {
	dir, src := workspace(t)
	if out, err := execute(t, append([]string{"layout", filepath.Join(dir, "sheet.csv")}, src...)...); err != nil {
		t.Fatalf("layout: %v\n%s", err, out)
	}
	layoutPath := filepath.Join(dir, "sheet.layout.json")
	target := filepath.Join(dir, "from-layout.svg")
	if out, err := execute(t, "render", "--from-layout", layoutPath, "-o", target); err != nil {
		t.Fatalf("render: %v\n%s", err, out)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("Beta")) {
		t.Error("rendered layout lacks term labels")
	}
}

func TestRenderRejectsFormat(t *testing.T) {
	dir, src := workspace(t)
	_, err := execute(t, append([]string{"render", filepath.Join(dir, "sheet.csv"), "-f", "gif"}, src...)...)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidFormat)
	}
}

func TestMissingSheet(t *testing.T) {
	dir, _ := workspace(t)
	_, err := execute(t, "build", filepath.Join(dir, "absent.csv"), "--no-cache")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestInspect(t *testing.T) {
	dir, src := workspace(t)
	sheet := filepath.Join(dir, "sheet.csv")

	out, err := execute(t, append([]string{"inspect", sheet, "--list"}, src...)...)
	if err != nil {
		t.Fatalf("inspect --list: %v", err)
	}
	if !strings.Contains(out, "CL_0000000") || !strings.Contains(out, "4 terms") {
		t.Errorf("tree list:\n%s", out)
	}

	if out, err := execute(t, append([]string{"inspect", sheet, "--tree", "cell", "-f", "dot"}, src...)...); err != nil {
		t.Fatalf("inspect --tree: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(dir, "sheet.CL_0000000.dot")); err != nil {
		t.Errorf("tree output: %v", err)
	}

	_, err = execute(t, append([]string{"inspect", sheet, "--tree", "nope"}, src...)...)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want %s", err, errors.ErrCodeNotFound)
	}
}

func TestCacheCommands(t *testing.T) {
	dir, _ := workspace(t)
	cacheDir := filepath.Join(dir, "termcache")
	t.Setenv("TERMTREE_CACHE_DIR", cacheDir)

	out, err := execute(t, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if strings.TrimSpace(out) != cacheDir {
		t.Errorf("cache path = %q, want %q", out, cacheDir)
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(cacheDir, "entry.json")
	if err := os.WriteFile(stale, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if out, err := execute(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v\n%s", err, out)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Errorf("entry survived clear: %v", err)
	}
}
