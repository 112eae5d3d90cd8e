package sim

import (
	"time"

	"github.com/verte-zerg/wsim/internal/generator"
	"github.com/verte-zerg/wsim/internal/metrics"
	"github.com/verte-zerg/wsim/internal/model"
	"github.com/verte-zerg/wsim/internal/params"
)

// Driver runs one task: spawning, belt, arm, containers and accounting.
// Drivers are advanced from a single goroutine.
type Driver interface {
	Task() model.Task
	Start()
	Stop()
	SetPaused(paused bool)
	Tick(dt time.Duration) []Event
	Click(target int) (Event, bool)
	Tally() metrics.Tally
	Scene() Scene
}

// Scene is a render-ready copy of a driver's state.
type Scene struct {
	Task       model.Task
	Running    bool
	Paused     bool
	Items      []Item
	BeltPhase  float64
	ArmState   ArmState
	ArmPose    Pose
	Holding    bool
	HeldColor  model.Color
	Containers []Container
	Active     int
	Tally      metrics.Tally
}

// line is the part every task shares: spawn countdown, belt and arm.
type line struct {
	task       model.Task
	gen        *generator.Generator
	pace       params.Pace
	errorRate  float64
	palette    []model.Color
	conveyor   *Conveyor
	arm        *Arm
	tally      metrics.Tally
	untilSpawn time.Duration
	running    bool
	paused     bool
}

func newLine(task model.Task, gen *generator.Generator, pace params.Pace, errorRate float64, palette []model.Color) *line {
	return &line{
		task:      task,
		gen:       gen,
		pace:      pace.Normalize(),
		errorRate: params.NormalizeErrorRate(errorRate),
		palette:   palette,
		conveyor:  newConveyor(task),
		arm:       newArm(),
	}
}

func (l *line) Task() model.Task {
	return l.task
}

// Start spawns the first item on the next tick.
func (l *line) Start() {
	l.running = true
	l.paused = false
	l.untilSpawn = 0
	l.arm.Resume()
}

// Stop ends spawning and lets the arm park after its current segment.
func (l *line) Stop() {
	l.running = false
	l.arm.Halt()
}

func (l *line) SetPaused(paused bool) {
	l.paused = paused
}

func (l *line) Tally() metrics.Tally {
	return l.tally
}

func (l *line) clickable() bool {
	return l.running && !l.paused
}

// advance runs one tick of the shared line. canGrip gates the grip on the
// task's container state; place performs the commit.
func (l *line) advance(dt time.Duration, canGrip func() bool, place func(*Item) []Event) []Event {
	if l.paused {
		return nil
	}
	var events []Event
	if l.running {
		l.untilSpawn -= dt
		for l.untilSpawn <= 0 {
			item := l.conveyor.Spawn(l.gen.Color(l.palette))
			events = append(events, Event{Task: l.task, Kind: EventSpawned, Color: item.Color, Target: -1})
			l.untilSpawn += l.gen.SpawnInterval(l.pace)
		}
		for _, item := range l.conveyor.Advance(dt) {
			events = append(events, Event{Task: l.task, Kind: EventMissed, Color: item.Color, Target: -1})
		}
		if l.arm.Ready() && canGrip() {
			if i := l.conveyor.InGripWindow(); i >= 0 {
				item := l.conveyor.Take(i)
				l.arm.Grip(item)
				events = append(events, Event{Task: l.task, Kind: EventGripped, Color: item.Color, Target: -1})
			}
		}
	}
	if item := l.arm.Advance(dt); item != nil {
		events = append(events, place(item)...)
	}
	return events
}

func (l *line) scene(containers []*Container, active int) Scene {
	s := Scene{
		Task:      l.task,
		Running:   l.running,
		Paused:    l.paused,
		Items:     l.conveyor.Items(),
		BeltPhase: l.conveyor.Phase(),
		ArmState:  l.arm.State(),
		ArmPose:   l.arm.Pose(),
		Active:    active,
		Tally:     l.tally,
	}
	if held := l.arm.Held(); held != nil {
		s.Holding = true
		s.HeldColor = held.Color
	}
	s.Containers = make([]Container, len(containers))
	for i, c := range containers {
		s.Containers[i] = *c
	}
	return s
}

// router sends each item to the bin matching its color. Robot errors pick a
// different bin. Sorting and inspection are both routers.
type router struct {
	*line
	bins []*Container
}

// NewSorting returns the sorting driver.
func NewSorting(p params.Sorting, gen *generator.Generator) Driver {
	p = p.Normalize()
	return newRouter(model.TaskSorting, gen, p.Pace, float64(p.ErrorRate), params.Palette(p.BinCount))
}

// NewInspection returns the inspection driver: green passes, red rejects.
func NewInspection(p params.Inspection, gen *generator.Generator) Driver {
	p = p.Normalize()
	return newRouter(model.TaskInspection, gen, p.Pace, float64(p.ErrorRate), params.InspectionPalette)
}

func newRouter(task model.Task, gen *generator.Generator, pace params.Pace, errorRate float64, palette []model.Color) *router {
	r := &router{line: newLine(task, gen, pace, errorRate, palette)}
	for _, c := range palette {
		r.bins = append(r.bins, newBin(c))
	}
	return r
}

func (r *router) Tick(dt time.Duration) []Event {
	return r.advance(dt, func() bool { return true }, r.place)
}

func (r *router) place(item *Item) []Event {
	isError := r.gen.Bernoulli(r.errorRate)
	dest := item.Color
	if isError {
		dest = r.gen.OtherColor(r.palette, item.Color)
	}
	idx := r.binIndex(dest)
	bin := r.bins[idx]
	bin.Count++
	if isError {
		bin.PendingErrors++
		bin.Error = true
		if r.task == model.TaskInspection && item.Color == model.Red && dest == model.Green {
			r.tally.DefectsMissed++
		}
	}
	r.tally.RecordCommit(isError)
	return []Event{{Task: r.task, Kind: EventCommitted, Color: item.Color, Error: isError, Target: idx, Count: bin.Count}}
}

func (r *router) binIndex(c model.Color) int {
	for i, bin := range r.bins {
		if bin.Color == c {
			return i
		}
	}
	return 0
}

// Click corrects one robot error in the target bin.
func (r *router) Click(target int) (Event, bool) {
	if !r.clickable() || target < 0 || target >= len(r.bins) {
		return Event{}, false
	}
	bin := r.bins[target]
	if bin.PendingErrors == 0 || !r.tally.RecordCorrection() {
		return Event{}, false
	}
	bin.PendingErrors--
	bin.Error = bin.PendingErrors > 0
	return Event{Task: r.task, Kind: EventCorrected, Color: bin.Color, Target: target, Count: bin.Count}, true
}

func (r *router) Scene() Scene {
	return r.scene(r.bins, -1)
}
