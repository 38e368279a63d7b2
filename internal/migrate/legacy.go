package migrate

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/roach88/linebuild/internal/model"
)

// ErrNoItems is returned when a document holds no legacy item.
var ErrNoItems = errors.New("document contains no legacy items")

// LegacyItem is one item as exported by the legacy system.
type LegacyItem struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	ItemType string       `json:"item_type,omitempty" yaml:"item_type,omitempty"`
	Steps    []LegacyStep `json:"steps" yaml:"steps"`
}

// LegacyStep is one free-text step of a legacy item. Every field is kept as
// authored; Convert normalizes and the Validator judges.
type LegacyStep struct {
	ID         string        `json:"id" yaml:"id"`
	Order      int           `json:"order,omitempty" yaml:"order,omitempty"`
	Action     string        `json:"action" yaml:"action"`
	Technique  string        `json:"technique,omitempty" yaml:"technique,omitempty"`
	Target     string        `json:"target" yaml:"target"`
	Assembly   string        `json:"assembly,omitempty" yaml:"assembly,omitempty"`
	Phase      string        `json:"phase,omitempty" yaml:"phase,omitempty"`
	Equipment  string        `json:"equipment,omitempty" yaml:"equipment,omitempty"`
	Preset     string        `json:"preset,omitempty" yaml:"preset,omitempty"`
	Station    string        `json:"station,omitempty" yaml:"station,omitempty"`
	Track      string        `json:"track,omitempty" yaml:"track,omitempty"`
	Time       *LegacyTime   `json:"time,omitempty" yaml:"time,omitempty"`
	DependsOn  model.DepList `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	Confidence string        `json:"confidence,omitempty" yaml:"confidence,omitempty"`
}

// LegacyTime is a duration with a free-text unit and type.
type LegacyTime struct {
	Value float64 `json:"value" yaml:"value"`
	Unit  string  `json:"unit,omitempty" yaml:"unit,omitempty"`
	Type  string  `json:"type,omitempty" yaml:"type,omitempty"`
}

// ParseItems decodes a legacy document. The document may be a single item,
// a list of items, or a mapping with an "items" list; JSON documents are
// accepted as well.
func ParseItems(data []byte) ([]LegacyItem, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse legacy document: %w", err)
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, ErrNoItems
	}
	node := root.Content[0]

	var items []LegacyItem
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&items); err != nil {
			return nil, fmt.Errorf("decode legacy items: %w", err)
		}
	case yaml.MappingNode:
		if list := mappingValue(node, "items"); list != nil {
			if err := list.Decode(&items); err != nil {
				return nil, fmt.Errorf("decode legacy items: %w", err)
			}
			break
		}
		var item LegacyItem
		if err := node.Decode(&item); err != nil {
			return nil, fmt.Errorf("decode legacy item: %w", err)
		}
		items = []LegacyItem{item}
	default:
		return nil, fmt.Errorf("decode legacy document: unexpected %s at line %d", kindName(node.Kind), node.Line)
	}

	if len(items) == 0 {
		return nil, ErrNoItems
	}
	return items, nil
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	}
	return "node"
}
