package cli

import (
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/store"
)

// ScoreOptions holds flags for the score command.
type ScoreOptions struct {
	*RootOptions
	Database string
}

// ScoreResult is the output of the score command.
type ScoreResult struct {
	BuildID string                `json:"build_id"`
	Cached  bool                  `json:"cached"`
	Score   model.ComplexityScore `json:"score"`
}

// NewScoreCommand creates the score command.
func NewScoreCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScoreOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "score <build>",
		Short: "Score build complexity",
		Long: `Score the complexity of a build from 0 to 100 with a per-factor
breakdown and a rationale naming the main contributors.

With --db, scores are cached by build fingerprint: a build whose work
units and assemblies are unchanged is not scored again.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "cache scores in this SQLite database")

	return cmd
}

func runScore(opts *ScoreOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	ctx := cmd.Context()

	loaded, err := loadBuild(path, formatter)
	if err != nil {
		return err
	}
	b := loaded.Build
	analyzer, err := newAnalyzer(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	var st *store.Store
	if opts.Database != "" {
		st, err = store.Open(opts.Database)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("failed to open database: %v", err), nil)
		}
		defer st.Close()
	}

	result := ScoreResult{BuildID: b.ID}
	if st != nil {
		fp, err := model.Fingerprint(b.WorkUnits, b.Assemblies)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		cached, err := st.GetScore(ctx, fp)
		switch {
		case err == nil:
			result.Cached = true
			result.Score = cached
			formatter.VerboseLog("Score cache hit for %s", fp)
		case !errors.Is(err, store.ErrNotFound):
			return commandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("failed to read score: %v", err), nil)
		}
	}

	if !result.Cached {
		analysis, err := analyzer.Analyze(b)
		if err != nil {
			return commandError(formatter, ErrCodeGeneric, err.Error(), nil)
		}
		result.Score = analysis.Complexity
		if st != nil {
			if err := st.PutScore(ctx, result.Score); err != nil {
				return commandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("failed to save score: %v", err), nil)
			}
		}
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s complexity %.1f\n", result.BuildID, result.Score.Overall)
	names := make([]string, 0, len(result.Score.Factors))
	for name := range result.Score.Factors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-22s %5.1f\n", name, result.Score.Factors[name])
	}
	fmt.Fprintln(w, result.Score.Rationale)
	return nil
}
