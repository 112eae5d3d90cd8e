package observer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/verte-zerg/wsim/internal/link"
	"github.com/verte-zerg/wsim/internal/metrics"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
	"github.com/verte-zerg/wsim/internal/session"
)

// Sender delivers commands to the User station.
type Sender interface {
	Send(link.Message)
}

// History stores finished sessions.
type History interface {
	InsertSession(ctx context.Context, rec model.SessionRecord, tasks []model.TaskMetrics) error
}

// Station wires the control surface to the session controller, the metrics
// board and the link. Methods other than the control getters must be called
// from the UI loop.
type Station struct {
	control *Control
	session *session.Controller
	board   *metrics.Board
	sender  Sender
	history History

	active []model.Task

	// Guarded by mu; Greeting reads them from the link goroutine.
	mu      sync.Mutex
	live    *params.Start
	ended   *link.Message
	notice  string
	lastErr error
}

// NewStation subscribes to control events and returns the station. history
// may be nil.
func NewStation(control *Control, sess *session.Controller, sender Sender, history History) *Station {
	s := &Station{
		control: control,
		session: sess,
		board:   metrics.NewBoard(sess.Log()),
		sender:  sender,
		history: history,
		active:  control.ActiveTasks(),
	}
	control.SetClock(sess.Timestamp)
	control.Subscribe(s.handle)
	return s
}

// Greeting is what a newly connected User receives: the active list, then
// the live session's start (carrying its pause state) or the command that
// ended the last session.
func (s *Station) Greeting() []link.Message {
	out := []link.Message{link.UpdateActive(s.control.ActiveTasks())}
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case s.live != nil:
		out = append(out, link.Start(*s.live))
	case s.ended != nil:
		out = append(out, *s.ended)
	}
	return out
}

// Control returns the control surface.
func (s *Station) Control() *Control { return s.control }

// Session returns the session controller.
func (s *Station) Session() *session.Controller { return s.session }

// Board returns the metrics board.
func (s *Station) Board() *metrics.Board { return s.board }

// Notice returns the latest status line.
func (s *Station) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// Err returns the last error raised by a lifecycle transition.
func (s *Station) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Station) setNotice(msg string, err error) {
	s.mu.Lock()
	s.notice = msg
	s.lastErr = err
	s.mu.Unlock()
}

func (s *Station) handle(ev Event) {
	switch ev.Kind {
	case TasksChanged:
		s.active = ev.Active
		s.send(link.UpdateActive(ev.Active))
	case StartPressed:
		s.start()
	case CompletePressed:
		s.finish(s.session.Complete(), link.Complete())
	case StopPressed:
		s.finish(s.session.Stop(), link.Stop())
	case PausePressed:
		tr, err := s.session.TogglePause()
		if err != nil {
			return
		}
		s.mu.Lock()
		if s.live != nil {
			s.live.Paused = tr.Kind == session.KindPaused
		}
		s.mu.Unlock()
		s.send(link.Pause())
		if tr.Kind == session.KindPaused {
			s.setNotice("Paused.", nil)
		} else {
			s.setNotice("", nil)
		}
	}
}

func (s *Station) start() {
	sc := s.control.Scenario()
	if _, err := s.session.Start(sc.TimeLimit); err != nil {
		s.setNotice("", err)
		return
	}
	s.board.Reset()
	p := s.control.StartParams()
	p.Session = s.session.ID()
	s.mu.Lock()
	s.live = &p
	s.ended = nil
	s.mu.Unlock()
	s.send(link.Start(p))
	s.setNotice("Running.", nil)
	slog.Info("observer: session started", "id", s.session.ID(), "scenario", sc.Name, "active", fmt.Sprint(s.active))
}

// Tick advances the session clock by one second. It reports whether the
// session completed on this tick.
func (s *Station) Tick() bool {
	tr := s.session.Tick()
	if !tr.Terminal() {
		return false
	}
	s.finish(tr, link.Complete())
	return true
}

func (s *Station) finish(tr session.Transition, msg link.Message) {
	if !tr.Terminal() {
		return
	}
	s.mu.Lock()
	s.live = nil
	s.ended = &msg
	s.mu.Unlock()
	s.send(msg)

	outcome := model.OutcomeStopped
	notice := "Stopped."
	if tr.Kind == session.KindCompleted {
		outcome = model.OutcomeComplete
		notice = "Complete."
	}
	if tr.LogErr != nil {
		slog.Warn("observer: event log flush failed", "error", tr.LogErr)
	} else if tr.LogPath != "" {
		notice += " Log saved to " + tr.LogPath
	}
	s.setNotice(notice, tr.LogErr)
	s.record(outcome, tr.LogPath)
}

func (s *Station) record(outcome model.Outcome, logPath string) {
	if s.history == nil {
		return
	}
	rec := model.SessionRecord{
		ID:           s.session.ID(),
		ScenarioName: s.control.Scenario().Name,
		StartedAt:    s.session.StartedAt(),
		EndedAt:      s.session.EndedAt(),
		Outcome:      outcome,
		DurationMs:   s.session.Elapsed().Milliseconds(),
		LogPath:      logPath,
	}
	split := metrics.Split(s.board.Latest())
	var tasks []model.TaskMetrics
	for _, t := range model.AllTasks {
		if m, ok := split[t]; ok {
			tasks = append(tasks, m)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.history.InsertSession(ctx, rec, tasks); err != nil {
		slog.Error("observer: store session", "id", rec.ID, "error", err)
	}
}

// HandleMessage applies a message received from the User. Only metrics are
// expected; they are dropped outside a live session.
func (s *Station) HandleMessage(m link.Message) {
	if m.Command != link.CmdMetrics {
		slog.Warn("observer: unexpected command", "command", m.Command)
		return
	}
	if !s.session.Live() {
		return
	}
	s.board.Apply(m.Data, s.session.Elapsed(), s.session.Timestamp())
}

// Running reports whether a session is live.
func (s *Station) Running() bool {
	return s.session.Live()
}

func (s *Station) send(m link.Message) {
	if s.sender == nil {
		return
	}
	s.sender.Send(m)
}
