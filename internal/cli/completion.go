package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/termtree/pkg/graph"
	"github.com/matzehuels/termtree/pkg/pipeline"
	"github.com/matzehuels/termtree/pkg/source"
)

var (
	sheetExtensions = []string{source.FormatCSV, source.FormatTSV, source.FormatJSON}
	termExtensions  = []string{"json", "yaml", "yml"}
	outputFormats   = []string{pipeline.FormatSVG, pipeline.FormatPNG, pipeline.FormatPDF, pipeline.FormatJSON, pipeline.FormatDOT}
	vizTypes        = []string{graph.VizTypeTree, graph.VizTypeNodelink}
)

// completionCommand prints a shell completion script. Besides subcommands
// and flags, the scripts complete sheet arguments to .csv, .tsv and .json
// files, term file flags to JSON and YAML files, and --format and --type to
// their known values.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for ` + appName + `.

  bash:        source <(` + appName + ` completion bash)
  zsh:         ` + appName + ` completion zsh > "${fpath[1]}/_` + appName + `"
  fish:        ` + appName + ` completion fish | source
  powershell:  ` + appName + ` completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(c.out, true)
			case "zsh":
				return root.GenZshCompletion(c.out)
			case "fish":
				return root.GenFishCompletion(c.out, true)
			default:
				return root.GenPowerShellCompletionWithDesc(c.out)
			}
		},
	}
}

// registerCompletions attaches argument and flag completion to every command
// that reads a sheet.
func registerCompletions(root *cobra.Command) {
	for _, cmd := range root.Commands() {
		if cmd.Flags().Lookup("deps") == nil {
			continue
		}
		cmd.ValidArgsFunction = completeSheet
		for _, name := range []string{"deps", "derived", "snapshot"} {
			_ = cmd.RegisterFlagCompletionFunc(name, cobra.FixedCompletions(termExtensions, cobra.ShellCompDirectiveFilterFileExt))
		}
		if cmd.Flags().Lookup("format") != nil {
			_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
		}
		if cmd.Flags().Lookup("type") != nil {
			_ = cmd.RegisterFlagCompletionFunc("type", cobra.FixedCompletions(vizTypes, cobra.ShellCompDirectiveNoFileComp))
		}
	}
}

func completeSheet(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return sheetExtensions, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated format list,
// leaving out formats already listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var prefix string
	var chosen []string
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		chosen = parseFormats(prefix)
	}
	var out []string
	for _, f := range outputFormats {
		if !slices.Contains(chosen, f) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
