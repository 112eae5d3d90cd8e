package observerui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/scenario"
	"github.com/verte-zerg/wsim/internal/termui"
)

const errorRateStep = 0.05

type textField int

const (
	noText textField = iota
	nameText
	limitText
)

// field is one row of the parameter form. Text rows are edited through the
// text input; the others step through their accepted values.
type field struct {
	group  string
	label  string
	text   textField
	value  func(s scenario.Scenario) string
	adjust func(s *scenario.Scenario, delta int)
}

func formFields() []field {
	fields := []field{
		{group: "Scenario", label: "Name", text: nameText, value: func(s scenario.Scenario) string { return s.Name }},
		{group: "Scenario", label: "Time limit", text: limitText, value: func(s scenario.Scenario) string {
			if s.TimeLimit == "" {
				return "no limit"
			}
			return s.TimeLimit
		}},
	}
	fields = append(fields, taskFields(model.TaskSorting)...)
	fields = append(fields, taskFields(model.TaskPackaging)...)
	fields = append(fields, taskFields(model.TaskInspection)...)
	fields = append(fields, soundFields()...)
	return fields
}

func taskFields(t model.Task) []field {
	group := t.Title()
	enabled := field{
		group: group,
		label: "Enabled",
		value: func(s scenario.Scenario) string { return onOff(taskEnabled(s, t)) },
		adjust: func(s *scenario.Scenario, _ int) {
			s.SetEnabled(t, !taskEnabled(*s, t))
		},
	}
	pace := field{
		group: group,
		label: "Pace",
		value: func(s scenario.Scenario) string { return string(*pacePtr(&s, t)) },
		adjust: func(s *scenario.Scenario, delta int) {
			p := pacePtr(s, t)
			*p = params.Paces[cycle(indexOf(params.Paces, *p), delta, len(params.Paces))]
		},
	}
	rate := field{
		group: group,
		label: "Error rate",
		value: func(s scenario.Scenario) string {
			return fmt.Sprintf("%.0f%%", float64(*ratePtr(&s, t))*100)
		},
		adjust: func(s *scenario.Scenario, delta int) {
			r := ratePtr(s, t)
			next := math.Round((float64(*r)+float64(delta)*errorRateStep)*100) / 100
			*r = params.ErrorRate(math.Min(1, math.Max(0, next)))
		},
	}
	out := []field{enabled, pace}
	switch t {
	case model.TaskSorting:
		out = append(out, field{
			group: group,
			label: "Bins",
			value: func(s scenario.Scenario) string { return fmt.Sprintf("%d", s.Sorting.BinCount) },
			adjust: func(s *scenario.Scenario, delta int) {
				s.Sorting.BinCount = params.BinCounts[cycle(indexOf(params.BinCounts, s.Sorting.BinCount), delta, len(params.BinCounts))]
			},
		})
	case model.TaskPackaging:
		out = append(out, field{
			group: group,
			label: "Capacity",
			value: func(s scenario.Scenario) string { return string(s.Packaging.Capacity) },
			adjust: func(s *scenario.Scenario, delta int) {
				s.Packaging.Capacity = params.CapacityDists[cycle(indexOf(params.CapacityDists, s.Packaging.Capacity), delta, len(params.CapacityDists))]
			},
		})
	}
	return append(out, rate)
}

func soundFields() []field {
	type flag struct {
		label string
		ptr   func(s *params.Sounds) *bool
	}
	flags := []flag{
		{"Conveyor", func(s *params.Sounds) *bool { return &s.Conveyor }},
		{"Robotic arm", func(s *params.Sounds) *bool { return &s.RoboticArm }},
		{"Correct chime", func(s *params.Sounds) *bool { return &s.CorrectChime }},
		{"Incorrect chime", func(s *params.Sounds) *bool { return &s.IncorrectChime }},
		{"Alarm", func(s *params.Sounds) *bool { return &s.Alarm }},
	}
	out := make([]field, 0, len(flags))
	for _, f := range flags {
		out = append(out, field{
			group: "Sounds",
			label: f.label,
			value: func(s scenario.Scenario) string { return onOff(*f.ptr(&s.Sounds)) },
			adjust: func(s *scenario.Scenario, _ int) {
				p := f.ptr(&s.Sounds)
				*p = !*p
			},
		})
	}
	return out
}

func taskEnabled(s scenario.Scenario, t model.Task) bool {
	switch t {
	case model.TaskSorting:
		return s.Sorting.Enabled
	case model.TaskPackaging:
		return s.Packaging.Enabled
	default:
		return s.Inspection.Enabled
	}
}

func pacePtr(s *scenario.Scenario, t model.Task) *params.Pace {
	switch t {
	case model.TaskSorting:
		return &s.Sorting.Pace
	case model.TaskPackaging:
		return &s.Packaging.Pace
	default:
		return &s.Inspection.Pace
	}
}

func ratePtr(s *scenario.Scenario, t model.Task) *params.ErrorRate {
	switch t {
	case model.TaskSorting:
		return &s.Sorting.ErrorRate
	case model.TaskPackaging:
		return &s.Packaging.ErrorRate
	default:
		return &s.Inspection.ErrorRate
	}
}

func indexOf[T comparable](values []T, v T) int {
	for i, x := range values {
		if x == v {
			return i
		}
	}
	return 0
}

func cycle(i, delta, n int) int {
	return ((i+delta)%n + n) % n
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func newTextInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 40
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

// renderForm lists the fields grouped by section, marking the cursor row.
func renderForm(fields []field, s scenario.Scenario, selected int, locked bool) string {
	var lines []string
	group := ""
	for i, f := range fields {
		if f.group != group {
			if group != "" {
				lines = append(lines, "")
			}
			group = f.group
			lines = append(lines, termui.CardTitleStyle.Render(group))
		}
		marker := "  "
		label := fmt.Sprintf("%-16s", f.label)
		value := f.value(s)
		if i == selected {
			marker = "› "
			label = termui.SelectedStyle.Render(label)
		}
		if locked {
			value = termui.MutedStyle.Render(value)
		} else {
			value = termui.ValueStyle.Render(value)
		}
		lines = append(lines, marker+label+value)
	}
	return strings.Join(lines, "\n")
}
