// Package document reads and writes build documents.
//
// Decoding is gated by an embedded CUE schema. Shape violations become E124
// findings that are collected, not raised; only bytes that cannot be parsed
// at all are an error.
package document

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/roach88/linebuild/internal/model"
)

//go:embed build.cue
var buildSchema string

// ErrMalformed marks a document that could not be parsed.
var ErrMalformed = errors.New("malformed build document")

// Format is a document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// DetectFormat guesses the encoding from the first non-space byte.
func DetectFormat(data []byte) Format {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return FormatJSON
	}
	return FormatYAML
}

// DecodeBuild parses a YAML or JSON build document and checks it against
// the build schema. Schema findings are returned as issues alongside the
// build. The error wraps ErrMalformed when the bytes cannot be parsed; the
// build is nil then, but any schema issues found are still returned.
func DecodeBuild(data []byte) (*model.Build, []model.ValidationIssue, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, fmt.Errorf("%w: empty document", ErrMalformed)
	}

	issues, err := checkSchema(data)
	if err != nil {
		return nil, nil, err
	}

	var b model.Build
	if DetectFormat(data) == FormatJSON {
		err = json.Unmarshal(data, &b)
	} else {
		err = yaml.Unmarshal(data, &b)
	}
	if err != nil {
		return nil, issues, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	for i := range issues {
		issues[i].UnitID = unitAt(&b, issues[i].Field)
	}
	model.SortIssues(issues)
	return &b, issues, nil
}

// EncodeBuild writes a build in the given format.
func EncodeBuild(b *model.Build, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return EncodeJSON(b)
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(b); err != nil {
			return nil, fmt.Errorf("encode build: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode build: %w", err)
		}
		return buf.Bytes(), nil
	}
	return nil, fmt.Errorf("unknown format %q", f)
}

// EncodeJSON writes any document as indented JSON with a trailing newline.
// HTML characters are not escaped.
func EncodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// checkSchema unifies the document with #Build and returns one E124 issue
// per offending path. A cue.Context is not safe for concurrent use, so each
// call gets its own.
func checkSchema(data []byte) ([]model.ValidationIssue, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(buildSchema, cue.Filename("build.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile build schema: %w", err)
	}

	file, err := cueyaml.Extract("build", data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	doc := ctx.BuildFile(file)
	if err := doc.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if doc.IncompleteKind() != cue.StructKind {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrMalformed)
	}

	unified := schema.LookupPath(cue.ParsePath("#Build")).Unify(doc)
	verr := unified.Validate(cue.Concrete(true))
	if verr == nil {
		return []model.ValidationIssue{}, nil
	}

	issues := []model.ValidationIssue{}
	seen := make(map[string]bool)
	for _, e := range cueerrors.Errors(verr) {
		field := strings.Join(e.Path(), ".")
		if seen[field] {
			continue
		}
		seen[field] = true
		format, args := e.Msg()
		issues = append(issues, model.ValidationIssue{
			Kind:     model.KindSchema,
			Severity: model.SeverityError,
			Code:     model.CodeSchemaMismatch,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
		})
	}
	return issues, nil
}

// unitAt returns the id of the work unit a schema path points into.
func unitAt(b *model.Build, field string) string {
	parts := strings.SplitN(field, ".", 3)
	if len(parts) < 2 || parts[0] != "work_units" {
		return ""
	}
	i, err := strconv.Atoi(parts[1])
	if err != nil || i < 0 || i >= len(b.WorkUnits) {
		return ""
	}
	return b.WorkUnits[i].ID
}
