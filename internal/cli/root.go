package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/config"
	"github.com/roach88/linebuild/internal/ctxlog"
	"github.com/roach88/linebuild/internal/pipeline"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Profile string // site profile path; empty uses the built-in tables
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the linebuild CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "linebuild",
		Short: "linebuild - kitchen line build analysis",
		Long: `Analyze kitchen line builds: the dependency graph of work units that
prepares one menu item. Derives per-track ordering, critical path, station
transfers and complexity, validates builds, and migrates legacy recipes.`,
		SilenceUsage:  true,
		SilenceErrors: true, // main prints errors that no formatter reported
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			// Logs go to stderr so JSON output stays parseable.
			level := slog.LevelInfo
			if opts.Verbose {
				level = slog.LevelDebug
			}
			handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
			cmd.SetContext(ctxlog.WithLogger(cmd.Context(), slog.New(handler)))
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Profile, "profile", "", "site profile (yaml, json or toml)")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewOrderCommand(opts))
	cmd.AddCommand(NewCriticalPathCommand(opts))
	cmd.AddCommand(NewTransfersCommand(opts))
	cmd.AddCommand(NewScoreCommand(opts))
	cmd.AddCommand(NewAnalyzeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// newFormatter builds the output formatter for a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// loadProfile reads the site profile named by --profile.
func loadProfile(opts *RootOptions, formatter *OutputFormatter) (config.Profile, error) {
	p, err := config.Load(opts.Profile)
	if err != nil {
		return config.Profile{}, commandError(formatter, ErrCodeProfile, err.Error(), nil)
	}
	if opts.Profile != "" {
		formatter.VerboseLog("Loaded profile %s", opts.Profile)
	}
	return p, nil
}

// newAnalyzer loads the profile and builds an analyzer for it.
func newAnalyzer(opts *RootOptions, formatter *OutputFormatter) (*pipeline.Analyzer, error) {
	p, err := loadProfile(opts, formatter)
	if err != nil {
		return nil, err
	}
	return pipeline.New(p), nil
}
