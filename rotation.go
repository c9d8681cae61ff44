package spinview

import (
	"time"
)

type RotationState int

const (
	AutoRotating RotationState = iota
	Interacting
	ResumeScheduled
	Transitioning
)

func (s RotationState) String() string {
	switch s {
	case AutoRotating:
		return "auto-rotating"
	case Interacting:
		return "interacting"
	case ResumeScheduled:
		return "resume-scheduled"
	case Transitioning:
		return "transitioning"
	}
	return "unknown"
}

// RotationStateMachine governs auto-rotation against user interaction and
// advances the model angle each tick.
//
// The one-shot resume timer is a deadline field evaluated in Advance; an
// interaction start always clears it before anything else, so at most one
// resume is ever pending and cancel-then-reschedule can never leave two
// alive. speedMultiplier is nonzero only while AutoRotating or
// Transitioning.
type RotationStateMachine struct {
	baseSpeed          float64
	pauseOnInteraction bool
	resumeDelay        time.Duration
	smoothTransition   bool
	transitionDuration time.Duration

	state           RotationState
	speedMultiplier float64
	angle           float64

	resumePending   bool
	resumeAt        time.Time
	transitionStart time.Time

	log Logger
}

func NewRotationStateMachine(opts Options, log Logger) *RotationStateMachine {
	if log == nil {
		log = NewNopLogger()
	}
	return &RotationStateMachine{
		baseSpeed:          opts.AutoRotateSpeed,
		pauseOnInteraction: opts.PauseOnInteraction,
		resumeDelay:        opts.ResumeDelay,
		smoothTransition:   opts.SmoothTransition,
		transitionDuration: opts.TransitionDuration,
		state:              AutoRotating,
		speedMultiplier:    1,
		log:                log,
	}
}

func (m *RotationStateMachine) State() RotationState { return m.state }

func (m *RotationStateMachine) SpeedMultiplier() float64 { return m.speedMultiplier }

// Angle is the model rotation around Y, kept in [0, 2π).
func (m *RotationStateMachine) Angle() float64 { return m.angle }

// HandleInteractionStart enters Interacting from any state. The pending
// resume deadline is cancelled first, so a start arriving after an earlier
// end's timer was scheduled still prevents that resume.
func (m *RotationStateMachine) HandleInteractionStart(now time.Time) {
	if !m.pauseOnInteraction {
		return
	}
	m.resumePending = false
	if m.state != Interacting {
		m.log.Debugf("rotation: %s -> %s", m.state, Interacting)
	}
	m.state = Interacting
	m.speedMultiplier = 0
}

// HandleInteractionEnd schedules the resume deadline. Ends outside
// Interacting (e.g. duplicate release events) are ignored.
func (m *RotationStateMachine) HandleInteractionEnd(now time.Time) {
	if m.state != Interacting {
		return
	}
	m.state = ResumeScheduled
	m.resumePending = true
	m.resumeAt = now.Add(m.resumeDelay)
	m.log.Debugf("rotation: %s -> %s", Interacting, ResumeScheduled)
}

// Advance runs one tick: fires an elapsed resume deadline, updates the
// eased transition, and rotates the model. It returns the angle increment
// applied this tick, which is baseSpeed * speedMultiplier * dt and zero
// outside AutoRotating/Transitioning.
func (m *RotationStateMachine) Advance(now time.Time, dt float64) float64 {
	if m.state == ResumeScheduled && m.resumePending && !now.Before(m.resumeAt) {
		m.resumePending = false
		if m.smoothTransition && m.transitionDuration > 0 {
			m.state = Transitioning
			m.speedMultiplier = 0
			m.transitionStart = now
			m.log.Debugf("rotation: %s -> %s", ResumeScheduled, Transitioning)
		} else {
			m.state = AutoRotating
			m.speedMultiplier = 1
			m.log.Debugf("rotation: %s -> %s", ResumeScheduled, AutoRotating)
		}
	}

	if m.state == Transitioning {
		progress := now.Sub(m.transitionStart).Seconds() / m.transitionDuration.Seconds()
		if progress >= 1 {
			m.state = AutoRotating
			m.speedMultiplier = 1
			m.log.Debugf("rotation: %s -> %s", Transitioning, AutoRotating)
		} else {
			m.speedMultiplier = easeOutQuad(progress)
		}
	}

	if m.state != AutoRotating && m.state != Transitioning {
		return 0
	}
	if dt < 0 {
		dt = 0
	}
	step := m.baseSpeed * m.speedMultiplier * dt
	m.angle = wrapAngle(m.angle + step)
	return step
}

// easeOutQuad is t*(2-t): fast start, gentle settle.
func easeOutQuad(t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}
	return t * (2 - t)
}
