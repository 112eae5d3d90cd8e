// Package user holds the User station's non-UI logic: it applies Observer
// commands to the task engine and reports snapshots back.
package user

import (
	"log/slog"
	"time"

	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/sim"
	"github.com/verte-zerg/wsim/internal/sound"
)

// Sender delivers messages to the Observer.
type Sender interface {
	Send(link.Message)
}

// Station applies commands to the engine. It is driven from the UI loop and
// is not safe for concurrent use.
type Station struct {
	engine *sim.Engine
	sender Sender
	sounds *sound.Board

	session string
	notice  string
}

// NewStation wires the engine's snapshots to sender.
func NewStation(engine *sim.Engine, sender Sender, sounds *sound.Board) *Station {
	s := &Station{engine: engine, sender: sender, sounds: sounds, notice: "Waiting for the Observer."}
	engine.OnSnapshot(func(snap model.Snapshot) {
		if s.sender != nil {
			s.sender.Send(link.Metrics(snap))
		}
	})
	return s
}

// Engine returns the task engine.
func (s *Station) Engine() *sim.Engine { return s.engine }

// Sounds returns the cue board.
func (s *Station) Sounds() *sound.Board { return s.sounds }

// Notice returns the latest status line.
func (s *Station) Notice() string { return s.notice }

// Handle applies one Observer command.
func (s *Station) Handle(m link.Message) {
	switch m.Command {
	case link.CmdUpdateActive:
		s.engine.SetActive(m.Active)
		if !s.engine.Running() {
			s.notice = "Ready."
		}
	case link.CmdStart:
		if m.Params == nil {
			slog.Warn("user: start without params")
			return
		}
		s.start(*m.Params)
	case link.CmdStop:
		if s.engine.Running() {
			s.engine.Stop()
			s.notice = "Stopped."
		}
	case link.CmdComplete:
		if s.engine.Running() {
			s.engine.Stop()
			s.notice = "Complete."
		}
	case link.CmdPause:
		if s.engine.TogglePause() {
			s.setPausedNotice()
		}
	default:
		slog.Warn("user: unexpected command", "command", m.Command)
	}
}

// start begins a session, or resumes it when the Observer repeats the start
// of the session already running here after a reconnect.
func (s *Station) start(p params.Start) {
	s.sounds.SetSettings(p.Sounds)
	if p.Session != "" && p.Session == s.session && s.engine.Running() {
		if s.engine.Paused() != p.Paused {
			s.engine.TogglePause()
		}
		s.setPausedNotice()
		slog.Info("user: session resumed", "session", p.Session, "paused", p.Paused)
		return
	}
	s.session = p.Session
	s.engine.Start(p)
	if p.Paused {
		s.engine.TogglePause()
	}
	s.setPausedNotice()
	slog.Info("user: session started", "session", p.Session, "active", len(s.engine.Params().Active))
}

func (s *Station) setPausedNotice() {
	if s.engine.Paused() {
		s.notice = "Paused."
	} else {
		s.notice = ""
	}
}

// Tick advances the engine and returns the cues to play.
func (s *Station) Tick(dt time.Duration) []sound.Cue {
	return s.sounds.Select(s.engine.Tick(dt))
}

// Click forwards a correction click. It returns the cue to play, if any.
func (s *Station) Click(task model.Task, target int) []sound.Cue {
	ev, ok := s.engine.Click(task, target)
	if !ok {
		return nil
	}
	return s.sounds.Select([]sim.Event{ev})
}
