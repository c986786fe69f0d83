package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var items = []treeItem{
	{Root: "CL_0000000", Label: "cell", Nodes: 4, Depth: 2},
	{Root: "UBERON_0000061", Label: "anatomical structure", Nodes: 2, Depth: 1},
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m TreeListModel, keys ...string) (TreeListModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(TreeListModel)
	}
	return m, cmd
}

func TestTreeListNavigation(t *testing.T) {
	tests := []struct {
		name   string
		keys   []string
		cursor int
	}{
		{"start", nil, 0},
		{"down", []string{"down"}, 1},
		{"clamped bottom", []string{"down", "j", "down"}, 1},
		{"clamped top", []string{"up", "k"}, 0},
		{"down up", []string{"j", "k"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := press(NewTreeListModel(items), tt.keys...)
			if m.Cursor != tt.cursor {
				t.Errorf("Cursor = %d, want %d", m.Cursor, tt.cursor)
			}
		})
	}
}

func TestTreeListSelect(t *testing.T) {
	m, cmd := press(NewTreeListModel(items), "down", "enter")
	if m.Selected == nil || m.Selected.Root != "UBERON_0000061" {
		t.Fatalf("Selected = %+v", m.Selected)
	}
	if cmd == nil {
		t.Error("enter did not quit")
	}

	m, cmd = press(NewTreeListModel(items), "q")
	if m.Selected != nil || cmd == nil {
		t.Errorf("q: Selected = %+v, quit = %v", m.Selected, cmd != nil)
	}
}

func TestTreeListView(t *testing.T) {
	view := NewTreeListModel(items).View()
	for _, want := range []string{"Select Tree", "cell", "anatomical structure", "[1/2]"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
}

func TestFindTree(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"CL_0000000", "CL_0000000"},
		{"CL:0000000", "CL_0000000"},
		{"Anatomical Structure", "UBERON_0000061"},
		{"missing", ""},
	}
	for _, tt := range tests {
		got := findTree(items, tt.key)
		switch {
		case tt.want == "" && got != nil:
			t.Errorf("findTree(%q) = %s, want nil", tt.key, got.Root)
		case tt.want != "" && (got == nil || got.Root != tt.want):
			t.Errorf("findTree(%q) = %v, want %s", tt.key, got, tt.want)
		}
	}
}
