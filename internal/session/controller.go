// Package session owns the Observer's session lifecycle and countdown.
package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/wsim/internal/eventlog"
	"github.com/verte-zerg/wsim/internal/params"
)

// State is the lifecycle state of a session.
type State int

const (
	Idle State = iota
	Running
	Paused
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Stopped:
		return "stopped"
	default:
		return "idle"
	}
}

var (
	// ErrAlreadyRunning is returned by Start while a session is live.
	ErrAlreadyRunning = errors.New("session already running")
	// ErrNotRunning is returned by Pause outside a live session.
	ErrNotRunning = errors.New("session not running")
)

// Kind identifies a lifecycle transition.
type Kind int

const (
	KindNone Kind = iota
	KindStarted
	KindPaused
	KindResumed
	KindStopped
	KindCompleted
)

// Transition reports the outcome of a lifecycle call. Terminal transitions
// carry the result of the log flush.
type Transition struct {
	Kind    Kind
	LogPath string
	LogErr  error
}

// Terminal reports whether the transition ended the session.
func (t Transition) Terminal() bool {
	return t.Kind == KindStopped || t.Kind == KindCompleted
}

// Controller tracks one session at a time. It is driven from the UI loop and
// is not safe for concurrent use; only its log buffer is shared.
type Controller struct {
	state     State
	id        string
	elapsed   time.Duration
	limit     time.Duration
	hasLimit  bool
	startedAt time.Time
	endedAt   time.Time
	flashing  bool

	logDir string
	log    *eventlog.Buffer
	now    func() time.Time
}

// NewController returns an idle controller flushing logs under logDir.
func NewController(logDir string) *Controller {
	return &Controller{
		logDir: logDir,
		log:    eventlog.New(),
		now:    time.Now,
	}
}

// SetClock replaces the wall clock used for timestamps and file names.
func (c *Controller) SetClock(now func() time.Time) {
	c.now = now
}

// Log returns the event-log handle shared with the metrics pipeline.
func (c *Controller) Log() *eventlog.Buffer {
	return c.log
}

// Start begins a new session. timeLimit is "mm:ss"; empty means unlimited.
func (c *Controller) Start(timeLimit string) (Transition, error) {
	if c.state == Running || c.state == Paused {
		return Transition{}, ErrAlreadyRunning
	}
	c.limit, c.hasLimit = params.ParseTimeLimit(timeLimit)
	c.state = Running
	c.id = uuid.NewString()
	c.elapsed = 0
	c.flashing = false
	c.startedAt = c.now()
	c.endedAt = time.Time{}
	// Rows left from an aborted flush belong to the previous session.
	c.log.Drain()
	return Transition{Kind: KindStarted}, nil
}

// TogglePause pauses a running session or resumes a paused one.
func (c *Controller) TogglePause() (Transition, error) {
	switch c.state {
	case Running:
		c.state = Paused
		return Transition{Kind: KindPaused}, nil
	case Paused:
		c.state = Running
		return Transition{Kind: KindResumed}, nil
	default:
		return Transition{}, ErrNotRunning
	}
}

// Tick advances the clock by one second. When the limit is reached the
// session completes.
func (c *Controller) Tick() Transition {
	if c.state != Running {
		return Transition{}
	}
	c.elapsed += time.Second
	if c.hasLimit && c.elapsed >= c.limit {
		return c.finish(KindCompleted)
	}
	return Transition{}
}

// Stop ends the session without completing it. Repeated terminal calls are
// no-ops.
func (c *Controller) Stop() Transition {
	return c.finish(KindStopped)
}

// Complete ends the session as completed.
func (c *Controller) Complete() Transition {
	return c.finish(KindCompleted)
}

func (c *Controller) finish(kind Kind) Transition {
	if c.state != Running && c.state != Paused {
		return Transition{}
	}
	c.state = Stopped
	c.endedAt = c.now()
	c.flashing = kind == KindCompleted
	path, err := c.log.Flush(c.logDir, c.endedAt)
	return Transition{Kind: kind, LogPath: path, LogErr: err}
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	return c.state
}

// Live reports whether a session is running or paused.
func (c *Controller) Live() bool {
	return c.state == Running || c.state == Paused
}

// ID returns the current or last session id.
func (c *Controller) ID() string {
	return c.id
}

// Elapsed returns the session clock.
func (c *Controller) Elapsed() time.Duration {
	return c.elapsed
}

// Timestamp renders the session clock as "mm:ss".
func (c *Controller) Timestamp() string {
	return params.FormatClock(c.elapsed)
}

// Remaining returns the countdown and whether a limit is set.
func (c *Controller) Remaining() (time.Duration, bool) {
	if !c.hasLimit {
		return 0, false
	}
	left := c.limit - c.elapsed
	if left < 0 {
		left = 0
	}
	return left, true
}

// Flashing reports whether the timer display should flash after completion.
func (c *Controller) Flashing() bool {
	return c.flashing
}

// StartedAt returns the wall time the session began.
func (c *Controller) StartedAt() time.Time {
	return c.startedAt
}

// EndedAt returns the wall time the session ended.
func (c *Controller) EndedAt() time.Time {
	return c.endedAt
}
