// Package config decodes experiment lists and the server configuration.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/baditaflorin/go_ab_runner/internal/core/domain"
)

// Entry is one position of the configured list. Err is set when the entry
// could not be decoded; Experiment is then the zero value.
type Entry struct {
	Index      int
	Experiment domain.ExperimentDefinition
	Err        error
}

// Rejected reports whether the entry failed to decode.
func (e Entry) Rejected() bool {
	return e.Err != nil
}

// ExperimentList is a decoded experiment configuration in list order.
type ExperimentList struct {
	Entries []Entry
}

// Experiments returns the decoded definitions in list order.
func (l ExperimentList) Experiments() []domain.ExperimentDefinition {
	out := make([]domain.ExperimentDefinition, 0, len(l.Entries))
	for _, e := range l.Entries {
		if !e.Rejected() {
			out = append(out, e.Experiment)
		}
	}
	return out
}

// Rejected returns the entries that failed to decode.
func (l ExperimentList) Rejected() []Entry {
	var out []Entry
	for _, e := range l.Entries {
		if e.Rejected() {
			out = append(out, e)
		}
	}
	return out
}

// Parse decodes a JSON or YAML experiment list. Absent input, null, or
// anything other than a list yields domain.ErrConfigurationMissing.
//
// A JSON array is decoded with encoding/json: JSON escapes such as `\/`
// are not valid inside YAML double-quoted scalars.
func Parse(data []byte) (ExperimentList, error) {
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '[' {
		if list, ok := parseJSON(trimmed); ok {
			return list, nil
		}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return ExperimentList{}, fmt.Errorf("%w: %v", domain.ErrConfigurationMissing, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return ExperimentList{}, fmt.Errorf("%w: empty document", domain.ErrConfigurationMissing)
	}
	return ParseNode(doc.Content[0])
}

// parseJSON decodes a JSON array entry by entry. ok is false when the input
// is not a JSON array at all, so YAML flow sequences still get a chance.
func parseJSON(data []byte) (ExperimentList, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return ExperimentList{}, false
	}

	list := ExperimentList{Entries: make([]Entry, 0, len(raw))}
	for i, item := range raw {
		entry := Entry{Index: i}
		item = bytes.TrimLeft(item, " \t\r\n")
		switch {
		case len(item) == 0 || item[0] != '{':
			entry.Err = fmt.Errorf("%w: entry %d is not an object", domain.ErrInvalidExperiment, i)
		default:
			if err := json.Unmarshal(item, &entry.Experiment); err != nil {
				entry.Experiment = domain.ExperimentDefinition{}
				entry.Err = fmt.Errorf("%w: entry %d: %v", domain.ErrInvalidExperiment, i, err)
			}
		}
		list.Entries = append(list.Entries, entry)
	}
	return list, true
}

// ParseNode decodes an experiment list from an already parsed node.
// Entries that fail to decode are rejected individually.
func ParseNode(node *yaml.Node) (ExperimentList, error) {
	if node == nil || node.Kind != yaml.SequenceNode {
		return ExperimentList{}, fmt.Errorf("%w: not a list", domain.ErrConfigurationMissing)
	}

	list := ExperimentList{Entries: make([]Entry, 0, len(node.Content))}
	for i, item := range node.Content {
		entry := Entry{Index: i}
		if item.Kind != yaml.MappingNode {
			entry.Err = fmt.Errorf("%w: entry %d is not an object", domain.ErrInvalidExperiment, i)
		} else if err := item.Decode(&entry.Experiment); err != nil {
			entry.Experiment = domain.ExperimentDefinition{}
			entry.Err = fmt.Errorf("%w: entry %d: %v", domain.ErrInvalidExperiment, i, err)
		}
		list.Entries = append(list.Entries, entry)
	}
	return list, nil
}

// LoadFile reads and decodes an experiment list file.
func LoadFile(path string) (ExperimentList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ExperimentList{}, fmt.Errorf("failed to read experiment config: %w", err)
	}
	return Parse(data)
}
