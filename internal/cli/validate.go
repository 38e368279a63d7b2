package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/linebuild/internal/model"
	"github.com/roach88/linebuild/internal/store"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Database string
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <build>",
		Short: "Validate a build document",
		Long: `Validate a build document and print its validation report.

Checks the document schema, the dependency graph (dangling references,
cycles, duplicate ids), assembly continuity, and per-unit fields. Warnings
never make a build invalid.

Example:
  linebuild validate ./builds/grilled-cheese.yaml
  linebuild validate --db ./linebuild.db --format json ./builds/blt.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "record the report in this SQLite database")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	loaded, err := loadBuild(path, formatter)
	if err != nil {
		return err
	}
	analyzer, err := newAnalyzer(opts.RootOptions, formatter)
	if err != nil {
		return err
	}

	report := analyzer.Validator().Validate(loaded.Build, loaded.Issues...)

	if opts.Database != "" {
		if err := saveReport(cmd, opts.Database, report, formatter); err != nil {
			return err
		}
	}

	if formatter.Format == "json" {
		return outputReportJSON(formatter, report, report)
	}
	writeReport(formatter.Writer, report)
	return reportExit(report)
}

// outputReportJSON writes data as the response payload. An invalid report
// turns the response into an error naming the first hard error.
func outputReportJSON(formatter *OutputFormatter, data interface{}, report model.ValidationReport) error {
	if report.Valid {
		return formatter.Success(data)
	}
	first := report.HardErrors[0]
	if err := formatter.encode(CLIResponse{
		Status: "error",
		Data:   data,
		Error:  &CLIError{Code: first.Code, Message: first.Message},
	}); err != nil {
		return err
	}
	return reportExit(report)
}

// reportExit maps a validation report to the command result.
func reportExit(report model.ValidationReport) error {
	if report.Valid {
		return nil
	}
	// Validation failures = exit code 1
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(report.HardErrors)))
}

func saveReport(cmd *cobra.Command, path string, report model.ValidationReport, formatter *OutputFormatter) error {
	st, err := store.Open(path)
	if err != nil {
		return commandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("failed to open database: %v", err), nil)
	}
	defer st.Close()

	if err := st.SaveReport(cmd.Context(), report); err != nil {
		return commandError(formatter, ErrCodeStoreFailed, fmt.Sprintf("failed to save report: %v", err), nil)
	}
	formatter.VerboseLog("Saved report for %s to %s", report.BuildID, path)
	return nil
}

// writeReport prints a validation report in text form.
func writeReport(w io.Writer, r model.ValidationReport) {
	if r.Valid {
		fmt.Fprintf(w, "✓ Build %s valid\n", r.BuildID)
	} else {
		fmt.Fprintf(w, "✗ Build %s invalid: %d error(s)\n", r.BuildID, len(r.HardErrors))
	}
	writeIssues(w, r.HardErrors)
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "%d warning(s)\n", len(r.Warnings))
		writeIssues(w, r.Warnings)
	}
}

func writeIssues(w io.Writer, issues []model.ValidationIssue) {
	for _, iss := range issues {
		where := iss.Field
		if iss.UnitID != "" {
			where = iss.UnitID + " " + where
		}
		fmt.Fprintf(w, "  %s [%s] %s: %s\n", iss.Code, iss.Severity, where, iss.Message)
	}
}
