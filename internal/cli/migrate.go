package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/ctxlog"
	"github.com/roach88/linebuild/internal/metrics"
	"github.com/roach88/linebuild/internal/migrate"
	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/store"
)

// MigrateOptions holds flags for the migrate command.
type MigrateOptions struct {
	*RootOptions
	Database    string
	Tier        string
	Concurrency int
	MetricsFile string
}

// legacyExtensions are the file types picked up from a directory argument.
var legacyExtensions = []string{".yaml", ".yml", ".json"}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MigrateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "migrate <legacy-file-or-dir>...",
		Short: "Convert legacy recipes into work units",
		Long: `Convert legacy recipe documents into work units, validate each item
and route it to success, needs review, or failed.

Directory arguments contribute their .yaml, .yml and .json files in name
order. Items are processed concurrently; results keep input order. An
unreadable file fails only its own item.

The exit code is 1 when any item needs review or failed.

Example:
  linebuild migrate ./legacy
  linebuild migrate --db ./linebuild.db --tier medium --metrics-file ./migrate.prom ./legacy/*.yaml`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the job and its results in this SQLite database")
	cmd.Flags().StringVar(&opts.Tier, "tier", "", "minimum extraction confidence that passes without review (high|medium|low)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 0, "items migrated at once (default from profile)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file when done")

	return cmd
}

func runMigrate(opts *MigrateOptions, paths []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	profile, err := loadProfile(opts.RootOptions, formatter)
	if err != nil {
		return err
	}
	tier := profile.Migration.Tier
	if opts.Tier != "" {
		t, ok := model.ParseTier(opts.Tier)
		if !ok {
			return commandError(formatter, ErrCodeGeneric, fmt.Sprintf("invalid tier %q: must be high, medium or low", opts.Tier), nil)
		}
		tier = t
	}

	docs, err := collectDocuments(paths, formatter)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Migrating %d legacy document(s) at tier %s", len(docs), tier)

	reg := prometheus.NewRegistry()
	runner := migrate.NewRunner(profile.Aliases, tier)
	runner.Concurrency = profile.Migration.Concurrency
	if opts.Concurrency > 0 {
		runner.Concurrency = opts.Concurrency
	}
	runner.Metrics = metrics.New(reg)

	// Setup signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := ctxlog.FromContext(ctx)
	runner.Progress = func(current, total int) {
		logger.Debug("migration progress", "current", current, "total", total)
	}

	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return commandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("failed to open database: %v", err), nil)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		runner.Sink = st
	}

	job, runErr := runner.Run(ctx, docs)

	if opts.MetricsFile != "" {
		if err := prometheus.WriteToTextfile(opts.MetricsFile, reg); err != nil {
			return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("failed to write metrics: %v", err), nil)
		}
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return commandError(formatter, ErrCodeStoreFailed, runErr.Error(), nil)
	}

	if formatter.Format == "json" {
		if err := formatter.encode(CLIResponse{Status: "ok", Data: job, JobID: job.ID}); err != nil {
			return err
		}
	} else {
		writeJob(formatter, job)
	}

	if runErr != nil {
		return WrapExitError(ExitCommandError, "migration interrupted", runErr)
	}
	if job.Counts.Review > 0 || job.Counts.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d item(s) need review, %d failed", job.Counts.Review, job.Counts.Failed))
	}
	return nil
}

// collectDocuments reads every legacy file named by paths. A file that
// cannot be read becomes a document carrying the error; a path that does
// not exist at all is a command error.
func collectDocuments(paths []string, formatter *OutputFormatter) ([]migrate.Document, error) {
	var docs []migrate.Document
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, commandError(formatter, ErrCodeNotFound, fmt.Sprintf("path not found: %s", path), nil)
			}
			return nil, commandError(formatter, ErrCodeReadFailed, fmt.Sprintf("failed to stat %s: %v", path, err), nil)
		}
		if !info.IsDir() {
			docs = append(docs, readDocument(path))
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, commandError(formatter, ErrCodeReadFailed, fmt.Sprintf("failed to read directory %s: %v", path, err), nil)
		}
		for _, e := range entries {
			if e.IsDir() || !isLegacyFile(e.Name()) {
				continue
			}
			docs = append(docs, readDocument(filepath.Join(path, e.Name())))
		}
	}
	if len(docs) == 0 {
		return nil, commandError(formatter, ErrCodeNotFound, "no legacy documents found", nil)
	}
	return docs, nil
}

func readDocument(path string) migrate.Document {
	data, err := os.ReadFile(path)
	return migrate.Document{Name: filepath.Base(path), Data: data, Err: err}
}

func isLegacyFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range legacyExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// writeJob prints a migration job in text form.
func writeJob(formatter *OutputFormatter, job model.MigrationJob) {
	w := formatter.Writer
	for _, res := range job.Results {
		mark := "✓"
		if res.Status != model.MigrationSuccess {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s %s: %s (%d unit(s))\n", mark, res.LegacyID, res.Status, len(res.WorkUnits))
		if res.Error != "" {
			fmt.Fprintf(w, "    %s\n", res.Error)
			continue
		}
		if res.Status != model.MigrationSuccess || formatter.Verbose {
			writeIssues(w, res.Issues)
		}
	}
	fmt.Fprintf(w, "job %s %s: %d legacy, %d converted, %d need review, %d failed\n",
		job.ID, job.Status, job.Counts.Legacy, job.Counts.Converted, job.Counts.Review, job.Counts.Failed)
}
