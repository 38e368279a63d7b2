package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/linebuild/internal/model"
)

// timeLayout keeps sub-second precision so stored timestamps sort and
// round-trip exactly.
const timeLayout = time.RFC3339Nano

// marshalText converts a document to canonical JSON TEXT for storage.
func marshalText(what string, v any) (string, error) {
	data, err := model.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal %s: %w", what, err)
	}
	return string(data), nil
}

// unmarshalText parses canonical JSON TEXT written by marshalText.
func unmarshalText(what, data string, v any) error {
	if err := json.Unmarshal([]byte(data), v); err != nil {
		return fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
