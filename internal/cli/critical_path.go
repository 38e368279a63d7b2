package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/duration"
	"github.com/roach88/linebuild/internal/graph"
	"github.com/roach88/linebuild/internal/timing"
)

// CriticalPathResult is the output of the critical-path command.
type CriticalPathResult struct {
	BuildID      string                       `json:"build_id"`
	CriticalPath timing.Path                  `json:"critical_path"`
	Durations    map[string]duration.Estimate `json:"durations"`
	Stats        timing.Stats                 `json:"stats"`
}

// NewCriticalPathCommand creates the critical-path command.
func NewCriticalPathCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "critical-path <build>",
		Short: "Find the longest duration-weighted chain",
		Long: `Resolve a duration for every work unit and report the longest
dependency chain across all tracks, with build-wide time aggregates.

Units without an explicit time fall back to the profile's equipment
presets, techniques, assembly-type durations and family defaults.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCriticalPath(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCriticalPath(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	loaded, err := loadBuild(path, formatter)
	if err != nil {
		return err
	}
	profile, err := loadProfile(opts, formatter)
	if err != nil {
		return err
	}

	b := loaded.Build
	g, _ := graph.Build(b.WorkUnits)
	estimates := duration.NewResolver(profile.Durations).ResolveAll(b.WorkUnits, duration.Context{ItemType: b.ItemType, BuildID: b.ID, BuildName: b.Name})
	result := CriticalPathResult{
		BuildID:      b.ID,
		CriticalPath: timing.CriticalPath(g, estimates),
		Durations:    estimates,
		Stats:        timing.Summarize(g, estimates),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "critical path %ds\n", result.CriticalPath.TotalSeconds)
	for _, id := range result.CriticalPath.Nodes {
		est := estimates[id]
		fmt.Fprintf(w, "  %-20s %5ds  %s/%s\n", id, est.Seconds, est.Source, est.Confidence)
	}
	fmt.Fprintf(w, "units %d, entry points %d (%.1f%%), components %d\n",
		result.Stats.Units, result.Stats.EntryPoints, result.Stats.EntryPointPercent, result.Stats.Components)
	fmt.Fprintf(w, "total %ds, active %ds\n", result.Stats.TotalSeconds, result.Stats.ActiveSeconds)
	return nil
}
