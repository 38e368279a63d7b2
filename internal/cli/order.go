package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/document"
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/pipeline"
)

// OrderOptions holds flags for the order command.
type OrderOptions struct {
	*RootOptions
	Apply  bool
	Output string
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &OrderOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "order <build>",
		Short: "Derive per-track ordinals",
		Long: `Derive the execution order of every track of a build.

With --apply the build document is written back with derived ordinals and
track keys filled in, in the encoding it was read in. Applying twice
changes nothing.

Example:
  linebuild order ./builds/grilled-cheese.yaml
  linebuild order --apply -o ./builds/grilled-cheese.yaml ./builds/grilled-cheese.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOrder(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Apply, "apply", false, "emit the build with derived ordinals")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the applied build to a file instead of stdout")

	return cmd
}

func runOrder(opts *OrderOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadBuild(path, formatter)
	if err != nil {
		return err
	}

	if opts.Apply {
		normalized := pipeline.Normalize(loaded.Build)
		data, err := document.EncodeBuild(&normalized, loaded.Format)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		if opts.Output == "" {
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(opts.Output, data, 0o644); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("failed to write %s: %v", opts.Output, err), nil)
		}
		formatter.VerboseLog("Wrote ordered build to %s", opts.Output)
		return nil
	}

	g, _ := graph.Build(loaded.Build.WorkUnits)
	ordering := graph.Order(g)

	if formatter.Format == "json" {
		return formatter.Success(ordering)
	}

	tracks := make([]string, 0, len(ordering.Tracks))
	for track := range ordering.Tracks {
		tracks = append(tracks, track)
	}
	sort.Strings(tracks)
	for _, track := range tracks {
		fmt.Fprintf(formatter.Writer, "track %s\n", track)
		for i, id := range ordering.Tracks[track] {
			fmt.Fprintf(formatter.Writer, "  %d %s\n", i, id)
		}
	}
	if len(ordering.Unresolved) > 0 {
		fmt.Fprintf(formatter.Writer, "unresolved (cycle): %s\n", strings.Join(ordering.Unresolved, ", "))
	}
	return nil
}
