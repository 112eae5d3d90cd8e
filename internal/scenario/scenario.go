// Package scenario loads and saves Observer scenario files.
package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

// Scenario is the persisted session setup. Every key is optional on load.
type Scenario struct {
	Name       string            `json:"scenario_name" yaml:"scenario_name"`
	TimeLimit  string            `json:"time_limit" yaml:"time_limit"`
	Sorting    params.Sorting    `json:"sorting" yaml:"sorting"`
	Packaging  params.Packaging  `json:"packaging" yaml:"packaging"`
	Inspection params.Inspection `json:"inspection" yaml:"inspection"`
	Sounds     params.Sounds     `json:"sounds" yaml:"sounds"`
}

// Default returns the built-in scenario.
func Default() Scenario {
	return Scenario{
		Name:       "Default",
		TimeLimit:  "05:00",
		Sorting:    params.DefaultSorting(),
		Packaging:  params.DefaultPackaging(),
		Inspection: params.DefaultInspection(),
		Sounds:     params.DefaultSounds(),
	}
}

// Normalize clamps every field to an accepted value.
func (s Scenario) Normalize() Scenario {
	s.Name = strings.TrimSpace(s.Name)
	s.TimeLimit = params.NormalizeTimeLimit(s.TimeLimit)
	s.Sorting = s.Sorting.Normalize()
	s.Packaging = s.Packaging.Normalize()
	s.Inspection = s.Inspection.Normalize()
	return s
}

// Active lists the enabled tasks in canonical order.
func (s Scenario) Active() []model.Task {
	var out []model.Task
	if s.Sorting.Enabled {
		out = append(out, model.TaskSorting)
	}
	if s.Packaging.Enabled {
		out = append(out, model.TaskPackaging)
	}
	if s.Inspection.Enabled {
		out = append(out, model.TaskInspection)
	}
	return out
}

// SetEnabled switches a task on or off.
func (s *Scenario) SetEnabled(t model.Task, on bool) {
	switch t {
	case model.TaskSorting:
		s.Sorting.Enabled = on
	case model.TaskPackaging:
		s.Packaging.Enabled = on
	case model.TaskInspection:
		s.Inspection.Enabled = on
	}
}

// StartParams builds the start command payload.
func (s Scenario) StartParams() params.Start {
	return params.Start{
		Sorting:    s.Sorting,
		Packaging:  s.Packaging,
		Inspection: s.Inspection,
		Active:     s.Active(),
		Sounds:     s.Sounds,
	}.Normalize()
}

// Format is a scenario file encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the encoding from the file extension. JSON is the default.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses data over the defaults and normalizes the result.
func Decode(data []byte, f Format) (Scenario, error) {
	s := Default()
	if len(bytes.TrimSpace(data)) > 0 {
		var err error
		switch f {
		case FormatYAML:
			err = yaml.Unmarshal(data, &s)
		default:
			err = json.Unmarshal(data, &s)
		}
		if err != nil {
			return Scenario{}, fmt.Errorf("decode scenario: %w", err)
		}
	}
	return s.Normalize(), nil
}

// Encode renders s in the given format.
func Encode(s Scenario, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		data, err := yaml.Marshal(s)
		if err != nil {
			return nil, fmt.Errorf("encode scenario: %w", err)
		}
		return data, nil
	default:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode scenario: %w", err)
		}
		return append(data, '\n'), nil
	}
}

// Load reads a scenario file.
func Load(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	return Decode(data, FormatFor(path))
}

// Save writes a scenario atomically.
func Save(path string, s Scenario) error {
	data, err := Encode(s.Normalize(), FormatFor(path))
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create scenario dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".scenario-*")
	if err != nil {
		return fmt.Errorf("create temp scenario: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write scenario: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close scenario: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace scenario: %w", err)
	}
	return nil
}
