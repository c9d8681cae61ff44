package spinview

// FrameRequest is a cancellable handle to one scheduled frame callback.
type FrameRequest interface {
	Cancel()
}

// FrameRequester schedules a callback for the next display refresh. The
// render loop keeps exactly one request outstanding while running.
type FrameRequester interface {
	RequestFrame(fn func()) FrameRequest
}

// RenderLoop is the cooperative per-frame scheduler: each tick it reads
// the clock, advances the rotation state machine, updates the motion
// uniform, issues one draw, and reschedules itself. A failed draw stops
// the loop and surfaces the error once; there is no automatic retry.
type RenderLoop struct {
	frames   FrameRequester
	clock    *FrameClock
	rotation *RotationStateMachine
	motion   *MotionUniformSync
	uniforms *ShaderUniformSet
	draw     func() error
	events   *emitter
	log      Logger

	running bool
	pending FrameRequest
}

func NewRenderLoop(
	frames FrameRequester,
	clock *FrameClock,
	rotation *RotationStateMachine,
	motion *MotionUniformSync,
	uniforms *ShaderUniformSet,
	draw func() error,
	events *emitter,
	log Logger,
) *RenderLoop {
	if log == nil {
		log = NewNopLogger()
	}
	if draw == nil {
		draw = func() error { return nil }
	}
	return &RenderLoop{
		frames:   frames,
		clock:    clock,
		rotation: rotation,
		motion:   motion,
		uniforms: uniforms,
		draw:     draw,
		events:   events,
		log:      log,
	}
}

func (l *RenderLoop) Running() bool { return l.running }

// Start begins scheduling ticks. Idempotent while running. The clock is
// re-baselined so the first delta after a pause stays small no matter how
// long the loop was stopped.
func (l *RenderLoop) Start() {
	if l.running {
		return
	}
	l.running = true
	l.clock.Reset()
	l.schedule()
}

// Stop cancels the pending frame request. No tick executes after it
// returns.
func (l *RenderLoop) Stop() {
	l.running = false
	if l.pending != nil {
		l.pending.Cancel()
		l.pending = nil
	}
}

func (l *RenderLoop) schedule() {
	l.pending = l.frames.RequestFrame(l.tick)
}

func (l *RenderLoop) tick() {
	l.pending = nil
	if !l.running {
		// A callback that outlived Stop through a scheduler race. Drop it.
		return
	}

	now := l.clock.Now()
	dt := l.clock.Tick()
	delta := l.rotation.Advance(now, dt)
	l.motion.Update(delta, dt, l.uniforms)

	if err := l.draw(); err != nil {
		l.running = false
		l.log.Errorf("draw failed, stopping render loop: %v", err)
		if l.events != nil {
			l.events.emit(EventError, err)
		}
		return
	}

	if l.running {
		l.schedule()
	}
}
