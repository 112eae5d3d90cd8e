// Package sound maps simulation events to audio cues.
package sound

import (
	"os"
	"path/filepath"

	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/sim"
)

// Cue names one of the resource sounds.
type Cue string

const (
	Conveyor       Cue = "conveyor"
	RoboticArm     Cue = "robotic_arm"
	CorrectChime   Cue = "correct_chime"
	IncorrectChime Cue = "incorrect_chime"
	Alarm          Cue = "alarm"
)

// Cues lists every cue.
var Cues = []Cue{Conveyor, RoboticArm, CorrectChime, IncorrectChime, Alarm}

// File returns the resource file name for the cue.
func (c Cue) File() string {
	switch c {
	case Conveyor:
		return "conveyor_belt_single.wav"
	case RoboticArm:
		return "robot_arm_single.wav"
	case CorrectChime:
		return "correct_chime_single.wav"
	case IncorrectChime:
		return "incorrect_chime_single.wav"
	case Alarm:
		return "alarm_single.wav"
	default:
		return ""
	}
}

// Enabled reports whether the cue is switched on.
func (c Cue) Enabled(s params.Sounds) bool {
	switch c {
	case Conveyor:
		return s.Conveyor
	case RoboticArm:
		return s.RoboticArm
	case CorrectChime:
		return s.CorrectChime
	case IncorrectChime:
		return s.IncorrectChime
	case Alarm:
		return s.Alarm
	default:
		return false
	}
}

// ForEvent picks the cue for an event.
func ForEvent(ev sim.Event) (Cue, bool) {
	switch ev.Kind {
	case sim.EventSpawned:
		return Conveyor, true
	case sim.EventGripped:
		return RoboticArm, true
	case sim.EventCommitted:
		if ev.Error {
			return IncorrectChime, true
		}
		return CorrectChime, true
	case sim.EventCorrected:
		return CorrectChime, true
	case sim.EventMissed:
		return Alarm, true
	default:
		return "", false
	}
}

// Board resolves cues against a sounds directory and the enable flags.
type Board struct {
	dir      string
	settings params.Sounds
}

// NewBoard returns a board reading from dir.
func NewBoard(dir string, settings params.Sounds) *Board {
	return &Board{dir: dir, settings: settings}
}

// SetSettings replaces the enable flags.
func (b *Board) SetSettings(s params.Sounds) {
	b.settings = s
}

// Path returns the file for a cue when it is enabled.
func (b *Board) Path(c Cue) (string, bool) {
	if !c.Enabled(b.settings) || c.File() == "" {
		return "", false
	}
	return filepath.Join(b.dir, c.File()), true
}

// Select returns the enabled cues for a batch of events, each at most once
// and in event order.
func (b *Board) Select(events []sim.Event) []Cue {
	var out []Cue
	seen := map[Cue]bool{}
	for _, ev := range events {
		c, ok := ForEvent(ev)
		if !ok || seen[c] || !c.Enabled(b.settings) {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Missing lists cues whose resource file is absent.
func (b *Board) Missing() []Cue {
	var out []Cue
	for _, c := range Cues {
		if _, err := os.Stat(filepath.Join(b.dir, c.File())); err != nil {
			out = append(out, c)
		}
	}
	return out
}
