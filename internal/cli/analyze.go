package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Database string
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze <build>",
		Short: "Derive every view of a build",
		Long: `Derive ordering, durations, critical path, transfers, continuity,
complexity and the validation report of a build in one document.

Analysis succeeds on invalid builds; the exit code is 1 when the
validation report has hard errors.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the validation report in this SQLite database")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadBuild(path, formatter)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	analysis, err := analyzer.Analyze(loaded.Build, loaded.Issues...)
	if err != nil {
		return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	if opts.Database != "" {
		if err := saveReport(cmd, opts.Database, analysis.Validation, formatter); err != nil {
			return err
		}
	}

	if formatter.Format == "json" {
		return outputReportJSON(formatter, analysis, analysis.Validation)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "build %s (item %s, version %d)\n", analysis.BuildID, analysis.ItemID, analysis.Version)
	fmt.Fprintf(w, "fingerprint %s\n", analysis.Fingerprint)
	fmt.Fprintf(w, "%d unit(s) on %d track(s)\n", analysis.Stats.Units, len(analysis.Ordering.Tracks))
	fmt.Fprintf(w, "critical path %ds: %s\n", analysis.CriticalPath.TotalSeconds,
		strings.Join(analysis.CriticalPath.Nodes, " -> "))
	fmt.Fprintf(w, "%d transfer(s), %ds\n", len(analysis.Transfers), analysis.Continuity.TransferSeconds)
	fmt.Fprintf(w, "complexity %.1f\n", analysis.Complexity.Overall)
	writeReport(w, analysis.Validation)
	return reportExit(analysis.Validation)
}
