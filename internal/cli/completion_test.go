package cli

import (
	"slices"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		toComplete string
		want       []string
	}{
		{"", []string{"svg", "png", "pdf", "json", "dot"}},
		{"svg,", []string{"svg,png", "svg,pdf", "svg,json", "svg,dot"}},
		{"svg,png,d", []string{"svg,png,pdf", "svg,png,json", "svg,png,dot"}},
	}
	for _, tt := range tests {
		got, directive := completeFormats(nil, nil, tt.toComplete)
		if !slices.Equal(got, tt.want) {
			t.Errorf("completeFormats(%q) = %v, want %v", tt.toComplete, got, tt.want)
		}
		if directive&cobra.ShellCompDirectiveNoSpace == 0 {
			t.Errorf("completeFormats(%q) allows a trailing space", tt.toComplete)
		}
	}
}

func TestCompleteSheetArgument(t *testing.T) {
	workspace(t)

	out, err := execute(t, cobra.ShellCompRequestCmd, "build", "")
	if err != nil {
		t.Fatal(err)
	}
	for _, ext := range sheetExtensions {
		if !strings.Contains(out, ext+"\n") {
			t.Errorf("sheet completion missing %q:\n%s", ext, out)
		}
	}

	out, err = execute(t, cobra.ShellCompRequestCmd, "render", "--type", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "tree\n") || !strings.Contains(out, "nodelink\n") {
		t.Errorf("--type completion:\n%s", out)
	}
}

func TestCompletionScript(t *testing.T) {
	workspace(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		out, err := execute(t, "completion", shell)
		if err != nil {
			t.Fatalf("completion %s: %v", shell, err)
		}
		if !strings.Contains(out, appName) {
			t.Errorf("completion %s script does not mention %s", shell, appName)
		}
	}
	if _, err := execute(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell accepted")
	}
}
