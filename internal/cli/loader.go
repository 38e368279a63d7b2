package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/linebuild/internal/document"
	"github.com/roach88/linebuild/internal/model"
)

// LoadedBuild is a decoded build document and what decoding found.
type LoadedBuild struct {
	Build  model.Build
	Issues []model.ValidationIssue // schema findings from decoding
	Format document.Format
}

// loadBuild reads and decodes one build document. Failures are reported
// through the formatter and returned as command errors.
func loadBuild(path string, formatter *OutputFormatter) (*LoadedBuild, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, commandError(formatter, ErrCodeNotFound, fmt.Sprintf("build not found: %s", path), nil)
		}
		return nil, commandError(formatter, ErrCodeReadFailed, fmt.Sprintf("failed to read %s: %v", path, err), nil)
	}

	b, issues, err := document.DecodeBuild(data)
	if err != nil {
		var details interface{}
		if len(issues) > 0 {
			details = issues
		}
		return nil, commandError(formatter, ErrCodeMalformed, fmt.Sprintf("%s: %v", path, err), details)
	}
	formatter.VerboseLog("Loaded build %s (%d work units, %d schema issue(s))", b.ID, len(b.WorkUnits), len(issues))

	return &LoadedBuild{Build: *b, Issues: issues, Format: document.DetectFormat(data)}, nil
}

// commandError outputs a command-level error and returns it with exit code 2.
func commandError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	return NewExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message))
}
