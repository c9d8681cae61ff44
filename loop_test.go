package spinview

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loopRig wires a render loop to a fake clock, a manual frame queue and a
// recording draw function.
type loopRig struct {
	clock    *fakeClock
	frame    *FrameClock
	frames   *frameQueue
	rotation *RotationStateMachine
	motion   *MotionUniformSync
	uniforms *ShaderUniformSet
	events   *emitter
	loop     *RenderLoop

	draws   int
	drawErr error
}

func newLoopRig(opts Options) *loopRig {
	r := &loopRig{
		clock:  newFakeClock(),
		frames: &frameQueue{},
		events: &emitter{},
	}
	r.frame = NewFrameClock(r.clock.now)
	r.rotation = NewRotationStateMachine(opts, nil)
	r.motion = NewMotionUniformSync(opts)
	r.uniforms = NewShaderUniformSet(opts.SliceStart, opts.SliceArc)
	r.loop = NewRenderLoop(r.frames, r.frame, r.rotation, r.motion, r.uniforms,
		func() error {
			r.draws++
			return r.drawErr
		},
		r.events, nil)
	return r
}

// step advances fake time and runs the pending frame callback, if any.
func (r *loopRig) step(d time.Duration) bool {
	r.clock.advance(d)
	return r.frames.step()
}

func TestRenderLoop_TickDrawsAndReschedules(t *testing.T) {
	r := newLoopRig(DefaultOptions())
	r.loop.Start()

	require.True(t, r.step(16*time.Millisecond))
	assert.Equal(t, 1, r.draws)
	assert.NotNil(t, r.frames.next, "tick must reschedule exactly one callback")

	require.True(t, r.step(16*time.Millisecond))
	assert.Equal(t, 2, r.draws)
}

func TestRenderLoop_StartIsIdempotent(t *testing.T) {
	r := newLoopRig(DefaultOptions())
	r.loop.Start()
	r.loop.Start()

	r.step(16 * time.Millisecond)
	// A doubled Start must not leave a second callback behind.
	assert.Equal(t, 1, r.draws)
	r.frames.next = nil
	assert.False(t, r.frames.step())
	assert.Equal(t, 1, r.draws)
}

func TestRenderLoop_StopPreventsFurtherTicks(t *testing.T) {
	r := newLoopRig(DefaultOptions())
	r.loop.Start()
	r.loop.Stop()

	assert.False(t, r.step(16*time.Millisecond), "no tick may run after Stop returns")
	assert.Equal(t, 0, r.draws)
	assert.False(t, r.loop.Running())
}

func TestRenderLoop_DrawFailureStopsAndEmitsOnce(t *testing.T) {
	r := newLoopRig(DefaultOptions())
	var emitted []any
	r.events.on(EventError, func(payload any) { emitted = append(emitted, payload) })

	r.drawErr = errors.New("surface lost")
	r.loop.Start()
	r.step(16 * time.Millisecond)

	require.Len(t, emitted, 1)
	assert.ErrorContains(t, emitted[0].(error), "surface lost")
	assert.False(t, r.loop.Running())
	assert.False(t, r.step(16*time.Millisecond), "no retry after a failed draw")
	assert.Equal(t, 1, r.draws)
}

func TestRenderLoop_RestartAfterStopBoundsDelta(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoRotateSpeed = 1.0
	r := newLoopRig(opts)

	r.loop.Start()
	r.step(16 * time.Millisecond)
	r.loop.Stop()

	// A long pause while stopped must not leak into the next delta.
	r.clock.advance(2 * time.Hour)
	r.loop.Start()

	before := r.rotation.Angle()
	r.step(10 * time.Millisecond)
	delta := r.rotation.Angle() - before
	assert.InDelta(t, 0.010, delta, 1e-9, "post-resume rotation must reflect only the 10ms tick")
}

func TestFrameQueue_CancelOnlyDropsOwnRequest(t *testing.T) {
	q := &frameQueue{}
	first := q.RequestFrame(func() {})

	ran := false
	q.RequestFrame(func() { ran = true })

	// Cancelling the superseded request must not drop the newer one.
	first.Cancel()
	require.True(t, q.step())
	assert.True(t, ran)
}
