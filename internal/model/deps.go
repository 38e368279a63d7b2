package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DepRef is a dependency reference: either a BareDep or a ConditionalDep.
// Both variants are traversed identically for graph purposes; the guard on a
// ConditionalDep is retained as metadata only.
type DepRef interface {
	// DepID returns the referenced unit id regardless of variant.
	DepID() string
	isDepRef()
}

// BareDep references a unit unconditionally.
type BareDep string

// DepID returns the referenced unit id.
func (d BareDep) DepID() string { return string(d) }

func (BareDep) isDepRef() {}

// ConditionalDep references a unit together with a guard predicate.
type ConditionalDep struct {
	ID   string `json:"id" yaml:"id"`
	When string `json:"when" yaml:"when"`
}

// DepID returns the referenced unit id.
func (d ConditionalDep) DepID() string { return d.ID }

func (ConditionalDep) isDepRef() {}

// DepList is the ordered dependency list of a work unit. On the wire each
// entry is either a string (bare) or an object {id, when} (conditional).
type DepList []DepRef

// IDs returns the referenced unit ids in declaration order.
func (l DepList) IDs() []string {
	ids := make([]string, len(l))
	for i, d := range l {
		ids[i] = d.DepID()
	}
	return ids
}

// Conditional returns the conditional entries only.
func (l DepList) Conditional() []ConditionalDep {
	var out []ConditionalDep
	for _, d := range l {
		if c, ok := d.(ConditionalDep); ok {
			out = append(out, c)
		}
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (l DepList) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *DepList) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*l = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("depends_on: %w", err)
	}
	out := make(DepList, 0, len(raw))
	for i, entry := range raw {
		entry = bytes.TrimSpace(entry)
		switch {
		case len(entry) > 0 && entry[0] == '"':
			var id string
			if err := json.Unmarshal(entry, &id); err != nil {
				return fmt.Errorf("depends_on[%d]: %w", i, err)
			}
			out = append(out, BareDep(id))
		case len(entry) > 0 && entry[0] == '{':
			var c ConditionalDep
			if err := json.Unmarshal(entry, &c); err != nil {
				return fmt.Errorf("depends_on[%d]: %w", i, err)
			}
			out = append(out, c)
		default:
			return fmt.Errorf("depends_on[%d]: expected string or object, got %s", i, entry)
		}
	}
	*l = out
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (l DepList) MarshalYAML() (interface{}, error) {
	return l.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (l *DepList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*l = nil
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("depends_on: line %d: expected a sequence", node.Line)
	}
	out := make(DepList, 0, len(node.Content))
	for i, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			out = append(out, BareDep(item.Value))
		case yaml.MappingNode:
			var c ConditionalDep
			if err := item.Decode(&c); err != nil {
				return fmt.Errorf("depends_on[%d]: %w", i, err)
			}
			out = append(out, c)
		default:
			return fmt.Errorf("depends_on[%d]: line %d: expected string or mapping", i, item.Line)
		}
	}
	*l = out
	return nil
}

func (l DepList) wire() []any {
	out := make([]any, len(l))
	for i, d := range l {
		switch v := d.(type) {
		case BareDep:
			out[i] = string(v)
		case ConditionalDep:
			out[i] = v
		}
	}
	return out
}
