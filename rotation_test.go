package spinview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRotation_AdvanceIncrement(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoRotateSpeed = 2.0
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	step := m.Advance(fc.t, 0.25)
	assert.InDelta(t, 0.5, step, 1e-12, "increment must be baseSpeed*multiplier*dt")
	assert.InDelta(t, 0.5, m.Angle(), 1e-12)

	// Negative deltas never rotate backwards.
	assert.Equal(t, 0.0, m.Advance(fc.t, -1))
}

func TestRotation_MultiplierStaysInUnitRange(t *testing.T) {
	opts := DefaultOptions()
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	check := func() {
		if m.SpeedMultiplier() < 0 || m.SpeedMultiplier() > 1 {
			t.Fatalf("speedMultiplier out of range: %v in state %v", m.SpeedMultiplier(), m.State())
		}
	}

	check()
	m.HandleInteractionStart(fc.t)
	check()
	fc.advance(50 * time.Millisecond)
	m.HandleInteractionEnd(fc.t)
	check()
	for i := 0; i < 300; i++ {
		fc.advance(16 * time.Millisecond)
		m.Advance(fc.t, 0.016)
		check()
	}
	assert.Equal(t, AutoRotating, m.State())
	assert.Equal(t, 1.0, m.SpeedMultiplier())
}

func TestRotation_MultiplierZeroOutsideRotatingStates(t *testing.T) {
	opts := DefaultOptions()
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	m.HandleInteractionStart(fc.t)
	assert.Equal(t, Interacting, m.State())
	assert.Equal(t, 0.0, m.SpeedMultiplier())
	assert.Equal(t, 0.0, m.Advance(fc.t, 0.016), "no rotation while interacting")

	m.HandleInteractionEnd(fc.t)
	assert.Equal(t, ResumeScheduled, m.State())
	assert.Equal(t, 0.0, m.SpeedMultiplier())
	assert.Equal(t, 0.0, m.Advance(fc.t, 0.016), "no rotation while resume is pending")
}

func TestRotation_StartCancelsPendingResume(t *testing.T) {
	opts := DefaultOptions()
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	m.HandleInteractionStart(fc.t)
	m.HandleInteractionEnd(fc.t)
	require.Equal(t, ResumeScheduled, m.State())

	// New press before the deadline cancels the scheduled resume.
	fc.advance(200 * time.Millisecond)
	m.HandleInteractionStart(fc.t)
	require.Equal(t, Interacting, m.State())

	// Even far past the old deadline, no resume transition happens.
	fc.advance(10 * time.Second)
	m.Advance(fc.t, 0.016)
	assert.Equal(t, Interacting, m.State())
	assert.Equal(t, 0.0, m.SpeedMultiplier())
}

func TestRotation_DuplicateEndIgnored(t *testing.T) {
	opts := DefaultOptions()
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	m.HandleInteractionStart(fc.t)
	m.HandleInteractionEnd(fc.t)
	deadlineState := m.State()

	fc.advance(100 * time.Millisecond)
	m.HandleInteractionEnd(fc.t)
	assert.Equal(t, deadlineState, m.State(), "a second end must not reschedule the resume")
}

func TestRotation_SmoothTransitionDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.SmoothTransition = false
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	m.HandleInteractionStart(fc.t)
	m.HandleInteractionEnd(fc.t)
	fc.advance(opts.ResumeDelay)
	m.Advance(fc.t, 0.016)

	assert.Equal(t, AutoRotating, m.State(), "resume must snap straight to auto-rotation")
	assert.Equal(t, 1.0, m.SpeedMultiplier())
}

func TestRotation_PauseOnInteractionDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.PauseOnInteraction = false
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	m.HandleInteractionStart(fc.t)
	assert.Equal(t, AutoRotating, m.State())
	assert.Equal(t, 1.0, m.SpeedMultiplier())
}

// Scenario: press at t=0, release at t=0.1s, resume delay 700ms and a
// 1200ms eased transition. The machine must be Interacting until the
// release, ResumeScheduled until t=0.8s, Transitioning with a t*(2-t)
// multiplier until t=2.0s, then AutoRotating at full speed.
func TestRotation_ResumeTimeline(t *testing.T) {
	opts := DefaultOptions()
	opts.ResumeDelay = 700 * time.Millisecond
	opts.SmoothTransition = true
	opts.TransitionDuration = 1200 * time.Millisecond
	m := NewRotationStateMachine(opts, nil)
	fc := newFakeClock()

	m.HandleInteractionStart(fc.t)
	require.Equal(t, Interacting, m.State())

	fc.advance(100 * time.Millisecond) // t=0.1
	m.HandleInteractionEnd(fc.t)
	require.Equal(t, ResumeScheduled, m.State())

	fc.advance(600 * time.Millisecond) // t=0.7, still before the deadline
	m.Advance(fc.t, 0.1)
	require.Equal(t, ResumeScheduled, m.State())

	fc.advance(100 * time.Millisecond) // t=0.8, deadline fires
	m.Advance(fc.t, 0.1)
	require.Equal(t, Transitioning, m.State())
	assert.Equal(t, 0.0, m.SpeedMultiplier())

	fc.advance(600 * time.Millisecond) // t=1.4, halfway through the ramp
	m.Advance(fc.t, 0.1)
	require.Equal(t, Transitioning, m.State())
	assert.InDelta(t, 0.75, m.SpeedMultiplier(), 1e-9, "multiplier must follow t*(2-t)")

	fc.advance(600 * time.Millisecond) // t=2.0, ramp complete
	m.Advance(fc.t, 0.1)
	require.Equal(t, AutoRotating, m.State())
	assert.Equal(t, 1.0, m.SpeedMultiplier())
}

func TestEaseOutQuad(t *testing.T) {
	assert.Equal(t, 0.0, easeOutQuad(-1))
	assert.Equal(t, 0.0, easeOutQuad(0))
	assert.InDelta(t, 0.36, easeOutQuad(0.2), 1e-12)
	assert.InDelta(t, 0.75, easeOutQuad(0.5), 1e-12)
	assert.Equal(t, 1.0, easeOutQuad(1))
	assert.Equal(t, 1.0, easeOutQuad(2))
}
