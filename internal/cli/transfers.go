package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/continuity"
	"github.com/roach88/linebuild/internal/document"
	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/pipeline"
)

// TransfersOptions holds flags for the transfers command.
type TransfersOptions struct {
	*RootOptions
	Splice bool
}

// TransfersResult is the output of the transfers command.
type TransfersResult struct {
	BuildID   string                  `json:"build_id"`
	Transfers []model.DerivedTransfer `json:"transfers"`
	Stats     continuity.Stats        `json:"stats"`
	Issues    []model.ValidationIssue `json:"issues"`
}

// NewTransfersCommand creates the transfers command.
func NewTransfersCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TransfersOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "transfers <build>",
		Short: "Derive station-to-station transfers",
		Long: `Follow every assembly from the unit that produces it to each unit
that consumes it and report the moves between locations.

With --splice the build document is written to stdout with each derived
transfer made an explicit transfer unit between producer and consumer.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransfers(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Splice, "splice", false, "emit the build with transfers as explicit units")

	return cmd
}

func runTransfers(opts *TransfersOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadBuild(path, formatter)
	if err != nil {
		return err
	}
	profile, err := loadProfile(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	if opts.Splice {
		spliced := pipeline.New(profile).Splice(loaded.Build)
		data, err := document.EncodeBuild(&spliced, loaded.Format)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	res := continuity.NewChecker(profile.Transfers, profile.Pods).Check(loaded.Build.WorkUnits, loaded.Build.Assemblies)
	result := TransfersResult{
		BuildID:   loaded.Build.ID,
		Transfers: res.Transfers,
		Stats:     res.Stats,
		Issues:    res.Issues,
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	for _, t := range result.Transfers {
		fmt.Fprintf(w, "%s: %s -> %s  %s %ds (weight %.1f)\n",
			t.AssemblyID, t.ProducerID, t.ConsumerID, t.Kind, t.DurationSeconds, t.Weight)
	}
	fmt.Fprintf(w, "%d transfer(s), %ds, weight %.1f; %d of %d pair(s) continuous\n",
		len(result.Transfers), result.Stats.TransferSeconds, result.Stats.TransferWeight,
		result.Stats.Continuous, result.Stats.Pairs)
	writeIssues(w, result.Issues)
	return nil
}
