package sim

import "time"

// ArmState is a state of the pick-and-place cycle.
type ArmState int

const (
	ArmIdle ArmState = iota
	ArmToPrep
	ArmDescend
	ArmHold
	ArmLift
	ArmPresent
	ArmReturn
	ArmIdlePause
)

func (s ArmState) String() string {
	switch s {
	case ArmToPrep:
		return "to_prep"
	case ArmDescend:
		return "descend"
	case ArmHold:
		return "hold"
	case ArmLift:
		return "lift"
	case ArmPresent:
		return "present"
	case ArmReturn:
		return "return"
	case ArmIdlePause:
		return "idle_pause"
	default:
		return "idle"
	}
}

// Pose is the arm's joint configuration in degrees.
type Pose struct {
	Shoulder float64
	Elbow    float64
}

var (
	poseRest    = Pose{Shoulder: -30, Elbow: 60}
	posePrep    = Pose{Shoulder: -10, Elbow: 40}
	poseDown    = Pose{Shoulder: 15, Elbow: 20}
	poseUp      = Pose{Shoulder: -20, Elbow: 50}
	posePresent = Pose{Shoulder: 45, Elbow: 30}
)

type segment struct {
	next     ArmState
	duration time.Duration
	from, to Pose
}

var segments = map[ArmState]segment{
	ArmToPrep:    {next: ArmDescend, duration: 150 * time.Millisecond, from: poseRest, to: posePrep},
	ArmDescend:   {next: ArmHold, duration: 120 * time.Millisecond, from: posePrep, to: poseDown},
	ArmHold:      {next: ArmLift, duration: 80 * time.Millisecond, from: poseDown, to: poseDown},
	ArmLift:      {next: ArmPresent, duration: 120 * time.Millisecond, from: poseDown, to: poseUp},
	ArmPresent:   {next: ArmReturn, duration: 200 * time.Millisecond, from: poseUp, to: posePresent},
	ArmReturn:    {next: ArmIdlePause, duration: 150 * time.Millisecond, from: posePresent, to: poseRest},
	ArmIdlePause: {next: ArmIdle, duration: 40 * time.Millisecond, from: poseRest, to: poseRest},
}

// Arm is the pick-and-place state machine. Every transition is time driven;
// the pose is linearly interpolated inside each segment.
type Arm struct {
	state     ArmState
	elapsed   time.Duration
	pose      Pose
	held      *Item
	sinceGrip time.Duration
	halting   bool
}

func newArm() *Arm {
	return &Arm{pose: poseRest, sinceGrip: GripCooldown}
}

// Ready reports whether the arm may grip: idle, not halting and past the
// cooldown since the previous grip.
func (a *Arm) Ready() bool {
	return a.state == ArmIdle && !a.halting && a.sinceGrip >= GripCooldown
}

// Grip starts a cycle holding item.
func (a *Arm) Grip(item *Item) {
	a.state = ArmToPrep
	a.elapsed = 0
	a.held = item
	a.sinceGrip = 0
}

// Halt lets the current segment finish and then parks the arm without
// committing.
func (a *Arm) Halt() {
	a.halting = true
}

// Resume clears a pending halt.
func (a *Arm) Resume() {
	a.halting = false
}

// Advance moves the arm forward by dt. It returns the held item when the
// arm enters the present state, which is the commit point.
func (a *Arm) Advance(dt time.Duration) *Item {
	a.sinceGrip += dt
	if a.state == ArmIdle {
		return nil
	}
	a.elapsed += dt
	var committed *Item
	for {
		seg := segments[a.state]
		if a.elapsed < seg.duration {
			a.pose = lerpPose(seg.from, seg.to, float64(a.elapsed)/float64(seg.duration))
			return committed
		}
		a.elapsed -= seg.duration
		if a.halting {
			a.park()
			return committed
		}
		a.state = seg.next
		switch a.state {
		case ArmPresent:
			committed = a.held
		case ArmReturn:
			a.held = nil
		case ArmIdle:
			a.park()
			return committed
		}
	}
}

func (a *Arm) park() {
	a.state = ArmIdle
	a.elapsed = 0
	a.pose = poseRest
	a.held = nil
}

// State returns the current FSM state.
func (a *Arm) State() ArmState {
	return a.state
}

// Pose returns the interpolated joint angles.
func (a *Arm) Pose() Pose {
	return a.pose
}

// Held returns the item in the gripper, if any.
func (a *Arm) Held() *Item {
	return a.held
}

// CycleDuration is the time from grip to idle.
func CycleDuration() time.Duration {
	var total time.Duration
	for _, seg := range segments {
		total += seg.duration
	}
	return total
}

func lerpPose(from, to Pose, t float64) Pose {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return Pose{
		Shoulder: from.Shoulder + (to.Shoulder-from.Shoulder)*t,
		Elbow:    from.Elbow + (to.Elbow-from.Elbow)*t,
	}
}
