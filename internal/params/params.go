// Package params defines per-task parameter bundles and their normalization.
package params

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/wsim/internal/model"
)

// Pace is the categorical spawn-rate setting.
type Pace string

const (
	PaceSlow   Pace = "slow"
	PaceMedium Pace = "medium"
	PaceFast   Pace = "fast"
)

// Paces lists the accepted pace values.
var Paces = []Pace{PaceSlow, PaceMedium, PaceFast}

// Range returns the items/second range the pace draws from.
func (p Pace) Range() (lo, hi float64) {
	switch p {
	case PaceSlow:
		return 0.1, 0.3
	case PaceFast:
		return 0.7, 1.0
	default:
		return 0.3, 0.7
	}
}

// Normalize maps unknown paces to medium.
func (p Pace) Normalize() Pace {
	switch Pace(strings.ToLower(strings.TrimSpace(string(p)))) {
	case PaceSlow:
		return PaceSlow
	case PaceFast:
		return PaceFast
	default:
		return PaceMedium
	}
}

// BinCounts lists the accepted sorting bin counts.
var BinCounts = []int{2, 4, 6}

// Palette returns the sorting colors for a bin count.
func Palette(binCount int) []model.Color {
	switch binCount {
	case 2:
		return []model.Color{model.Green, model.Purple}
	case 6:
		return []model.Color{model.Red, model.Blue, model.Green, model.Purple, model.Orange, model.Teal}
	default:
		return []model.Color{model.Blue, model.Green, model.Purple, model.Orange}
	}
}

// InspectionPalette is the pass/reject color pair.
var InspectionPalette = []model.Color{model.Green, model.Red}

// CapacityDist selects how packaging container capacities are drawn.
type CapacityDist string

const (
	CapacityFixed6    CapacityDist = "6"
	CapacityUniform56 CapacityDist = "5-6"
	CapacityUniform46 CapacityDist = "4-6"
)

// CapacityDists lists the accepted distributions.
var CapacityDists = []CapacityDist{CapacityFixed6, CapacityUniform56, CapacityUniform46}

// Choices returns the capacities drawn uniformly for the distribution.
func (d CapacityDist) Choices() []int {
	switch d {
	case CapacityUniform56:
		return []int{5, 6}
	case CapacityUniform46:
		return []int{4, 5, 6}
	default:
		return []int{6}
	}
}

// Normalize maps unknown distributions to fixed 6.
func (d CapacityDist) Normalize() CapacityDist {
	for _, c := range CapacityDists {
		if d == c {
			return d
		}
	}
	return CapacityFixed6
}

// ErrorRate is a probability in [0,1]. It decodes from any form accepted by
// NormalizeErrorRate.
type ErrorRate float64

// UnmarshalJSON implements json.Unmarshaler.
func (r *ErrorRate) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = ErrorRate(NormalizeErrorRate(raw))
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *ErrorRate) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*r = ErrorRate(NormalizeErrorRate(raw))
	return nil
}

// Sorting configures the sorting task.
type Sorting struct {
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	Pace      Pace      `json:"pace" yaml:"pace"`
	BinCount  int       `json:"bin_count" yaml:"bin_count"`
	ErrorRate ErrorRate `json:"error_rate" yaml:"error_rate"`
}

// Packaging configures the packaging task.
type Packaging struct {
	Enabled   bool         `json:"enabled" yaml:"enabled"`
	Pace      Pace         `json:"pace" yaml:"pace"`
	ErrorRate ErrorRate    `json:"error_rate" yaml:"error_rate"`
	Capacity  CapacityDist `json:"capacity" yaml:"capacity"`
}

// Inspection configures the inspection task.
type Inspection struct {
	Enabled   bool      `json:"enabled" yaml:"enabled"`
	Pace      Pace      `json:"pace" yaml:"pace"`
	ErrorRate ErrorRate `json:"error_rate" yaml:"error_rate"`
}

// Sounds holds the per-cue enable flags.
type Sounds struct {
	Conveyor       bool `json:"conveyor" yaml:"conveyor"`
	RoboticArm     bool `json:"robotic_arm" yaml:"robotic_arm"`
	CorrectChime   bool `json:"correct_chime" yaml:"correct_chime"`
	IncorrectChime bool `json:"incorrect_chime" yaml:"incorrect_chime"`
	Alarm          bool `json:"alarm" yaml:"alarm"`
}

// Start is the parameter bundle carried by the start command.
type Start struct {
	Sorting    Sorting      `json:"sorting"`
	Packaging  Packaging    `json:"packaging"`
	Inspection Inspection   `json:"inspection"`
	Active     []model.Task `json:"active"`
	Sounds     Sounds       `json:"sounds"`

	// Session identifies the Observer session. A start repeated for the
	// running session resumes it instead of restarting.
	Session string `json:"session,omitempty"`
	Paused  bool   `json:"paused,omitempty"`
}

// DefaultSorting returns the sorting defaults.
func DefaultSorting() Sorting {
	return Sorting{Enabled: true, Pace: PaceMedium, BinCount: 4}
}

// DefaultPackaging returns the packaging defaults.
func DefaultPackaging() Packaging {
	return Packaging{Enabled: true, Pace: PaceMedium, Capacity: CapacityFixed6}
}

// DefaultInspection returns the inspection defaults.
func DefaultInspection() Inspection {
	return Inspection{Enabled: true, Pace: PaceMedium}
}

// DefaultSounds enables every cue.
func DefaultSounds() Sounds {
	return Sounds{Conveyor: true, RoboticArm: true, CorrectChime: true, IncorrectChime: true, Alarm: true}
}

// Normalize clamps every field to an accepted value.
func (s Sorting) Normalize() Sorting {
	s.Pace = s.Pace.Normalize()
	s.BinCount = normalizeBinCount(s.BinCount)
	s.ErrorRate = ErrorRate(NormalizeErrorRate(float64(s.ErrorRate)))
	return s
}

// Normalize clamps every field to an accepted value.
func (p Packaging) Normalize() Packaging {
	p.Pace = p.Pace.Normalize()
	p.Capacity = p.Capacity.Normalize()
	p.ErrorRate = ErrorRate(NormalizeErrorRate(float64(p.ErrorRate)))
	return p
}

// Normalize clamps every field to an accepted value.
func (i Inspection) Normalize() Inspection {
	i.Pace = i.Pace.Normalize()
	i.ErrorRate = ErrorRate(NormalizeErrorRate(float64(i.ErrorRate)))
	return i
}

// Normalize normalizes every task bundle and drops unknown or duplicate
// active entries.
func (s Start) Normalize() Start {
	s.Sorting = s.Sorting.Normalize()
	s.Packaging = s.Packaging.Normalize()
	s.Inspection = s.Inspection.Normalize()
	s.Active = NormalizeActive(s.Active)
	return s
}

// IsActive reports whether a task is part of the active set.
func (s Start) IsActive(t model.Task) bool {
	for _, a := range s.Active {
		if a == t {
			return true
		}
	}
	return false
}

// NormalizeActive keeps known tasks in canonical order without duplicates.
func NormalizeActive(active []model.Task) []model.Task {
	seen := make(map[model.Task]bool, len(active))
	for _, t := range active {
		if parsed, ok := model.ParseTask(string(t)); ok {
			seen[parsed] = true
		}
	}
	out := make([]model.Task, 0, len(seen))
	for _, t := range model.AllTasks {
		if seen[t] {
			out = append(out, t)
		}
	}
	return out
}

// Describe renders a one-line summary of a task bundle.
func (s Start) Describe(t model.Task) string {
	switch t {
	case model.TaskSorting:
		return fmt.Sprintf("pace=%s bins=%d error=%.0f%%", s.Sorting.Pace, s.Sorting.BinCount, float64(s.Sorting.ErrorRate)*100)
	case model.TaskPackaging:
		return fmt.Sprintf("pace=%s capacity=%s error=%.0f%%", s.Packaging.Pace, s.Packaging.Capacity, float64(s.Packaging.ErrorRate)*100)
	case model.TaskInspection:
		return fmt.Sprintf("pace=%s error=%.0f%%", s.Inspection.Pace, float64(s.Inspection.ErrorRate)*100)
	default:
		return ""
	}
}

func normalizeBinCount(n int) int {
	for _, c := range BinCounts {
		if n == c {
			return n
		}
	}
	return 4
}
