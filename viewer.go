package spinview

import (
	"sync"
	"time"
)

// FrameState is the per-draw snapshot handed to the render surface.
// Model stays nil until the loader reports ready, in which case the
// surface draws an empty scene.
type FrameState struct {
	Angle    float64
	Uniforms ShaderUniformSet
	Model    *Model
}

// RenderSurface is the drawable target. Draw returns an error on an
// unusable surface (lost device, closed window); the render loop treats
// that as fatal and stops.
type RenderSurface interface {
	Resize(width, height int)
	Draw(frame FrameState) error
	Release()
}

// Viewer is the controller holding all widget state: clock, rotation
// state machine, motion uniform sync, visibility gate and render loop.
// External signals (interaction, visibility, model events) may arrive
// from any goroutine; they are queued and consumed on the driver thread,
// which is the only mutator of the state above.
type Viewer struct {
	opts Options
	log  Logger

	clock    *FrameClock
	rotation *RotationStateMachine
	motion   *MotionUniformSync
	uniforms *ShaderUniformSet
	loop     *RenderLoop
	gate     *VisibilityGate

	frames  *frameQueue
	queue   *signalQueue
	events  emitter
	surface RenderSurface
	now     func() time.Time
	pump    func()

	model       *Model
	modelFailed bool

	pressActive map[SignalSource]bool

	closed    chan struct{}
	closeOnce sync.Once
}

type ViewerBuilder struct {
	opts    Options
	log     Logger
	surface RenderSurface
	now     func() time.Time
	pump    func()
}

func NewViewerBuilder() *ViewerBuilder {
	return &ViewerBuilder{opts: DefaultOptions()}
}

func (b *ViewerBuilder) WithOptions(opts Options) *ViewerBuilder {
	b.opts = opts
	return b
}

func (b *ViewerBuilder) WithLogger(log Logger) *ViewerBuilder {
	b.log = log
	return b
}

func (b *ViewerBuilder) WithSurface(surface RenderSurface) *ViewerBuilder {
	b.surface = surface
	return b
}

// WithTimeSource injects the clock; tests pass a fake for deterministic
// timing.
func (b *ViewerBuilder) WithTimeSource(now func() time.Time) *ViewerBuilder {
	b.now = now
	return b
}

// WithEventPump installs a callback run once per driver iteration, before
// the frame tick. The demo binary passes glfw.PollEvents here.
func (b *ViewerBuilder) WithEventPump(pump func()) *ViewerBuilder {
	b.pump = pump
	return b
}

func (b *ViewerBuilder) Build() *Viewer {
	opts := b.opts.Clamped()
	log := b.log
	if log == nil {
		log = NewNopLogger()
	}

	v := &Viewer{
		opts:        opts,
		log:         log,
		surface:     b.surface,
		now:         b.now,
		pump:        b.pump,
		frames:      &frameQueue{},
		queue:       newSignalQueue(),
		pressActive: make(map[SignalSource]bool),
		closed:      make(chan struct{}),
	}
	if v.now == nil {
		v.now = time.Now
	}

	v.clock = NewFrameClock(v.now)
	v.rotation = NewRotationStateMachine(opts, log)
	v.motion = NewMotionUniformSync(opts)
	v.uniforms = NewShaderUniformSet(opts.SliceStart, opts.SliceArc)
	v.loop = NewRenderLoop(v.frames, v.clock, v.rotation, v.motion, v.uniforms, v.drawFrame, &v.events, log)
	v.gate = NewVisibilityGate(opts, v.loop, v.clock, &v.events, log)
	return v
}

func (v *Viewer) Options() Options { return v.opts }

// On registers an event handler. Register before Run; handlers run on the
// driver thread.
func (v *Viewer) On(event Event, handler EventHandler) {
	v.events.on(event, handler)
}

// Interact feeds one interaction signal from an input source.
func (v *Viewer) Interact(sig InteractionSignal) {
	v.queue.push(signal{kind: signalInteraction, interaction: sig})
}

// SetVisible feeds one sample from the visibility source.
func (v *Viewer) SetVisible(visible bool) {
	v.queue.push(signal{kind: signalVisibility, visible: visible})
}

// ModelReady delivers a loaded model; emits the ready event on the driver
// thread.
func (v *Viewer) ModelReady(m *Model) {
	v.queue.push(signal{kind: signalModelReady, model: m})
}

// ModelFailed reports a loader failure; the error event fires and the
// render loop keeps its current lifecycle, drawing an empty scene.
func (v *Viewer) ModelFailed(err error) {
	v.queue.push(signal{kind: signalModelError, err: err})
}

// Resize forwards a container size change to the surface. Call it from
// the driver thread (the resize callback of the window the surface draws
// into).
func (v *Viewer) Resize(width, height int) {
	if v.surface != nil && width > 0 && height > 0 {
		v.surface.Resize(width, height)
	}
}

// Close stops the driver loop. Safe to call from any goroutine, and more
// than once.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() { close(v.closed) })
	select {
	case v.queue.wake <- struct{}{}:
	default:
	}
}

const defaultFrameInterval = time.Second / 60

// Run drives the viewer in real time until Close: it pumps window events,
// drains queued signals, fires elapsed deadlines and executes at most one
// scheduled frame per interval. The widget starts visible; an external
// visibility source overrides that with SetVisible.
func (v *Viewer) Run() {
	v.SetVisible(true)
	ticker := time.NewTicker(defaultFrameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-v.closed:
			v.loop.Stop()
			return
		case <-v.queue.wake:
			v.step(v.now())
		case <-ticker.C:
			if v.pump != nil {
				v.pump()
			}
			v.step(v.now())
		}
	}
}

// step is one driver iteration: drain signals, evaluate the visibility
// deadline, then run the pending frame callback if the loop scheduled
// one.
func (v *Viewer) step(now time.Time) {
	for _, s := range v.queue.drain() {
		v.dispatch(s, now)
	}
	v.gate.Advance(now)
	v.frames.step()
}

func (v *Viewer) dispatch(s signal, now time.Time) {
	switch s.kind {
	case signalInteraction:
		v.dispatchInteraction(s.interaction, now)
	case signalVisibility:
		v.gate.OnIntersection(s.visible, now)
	case signalModelReady:
		v.model = s.model
		v.modelFailed = false
		v.log.Infof("model ready: %s", s.model.Root.Name)
		v.events.emit(EventReady, s.model)
	case signalModelError:
		v.modelFailed = true
		v.log.Errorf("model load failed: %v", s.err)
		v.events.emit(EventError, s.err)
	}
}

func (v *Viewer) dispatchInteraction(sig InteractionSignal, now time.Time) {
	switch sig.Kind {
	case SignalStart:
		// Start events not backed by a live press are framework noise.
		if !sig.Pressed {
			v.log.Debugf("dropping spurious %s start", sig.Source)
			return
		}
		v.pressActive[sig.Source] = true
		v.rotation.HandleInteractionStart(now)
	case SignalEnd:
		if !v.pressActive[sig.Source] {
			return
		}
		v.pressActive[sig.Source] = false
		// Another source may still be holding a press.
		for _, active := range v.pressActive {
			if active {
				return
			}
		}
		v.rotation.HandleInteractionEnd(now)
	}
}

func (v *Viewer) drawFrame() error {
	if v.surface == nil {
		return nil
	}
	return v.surface.Draw(FrameState{
		Angle:    v.rotation.Angle(),
		Uniforms: *v.uniforms,
		Model:    v.model,
	})
}

// frameQueue is the FrameRequester backing the driver loop: at most one
// callback is held, and step runs it. Cancel only clears the request it
// was issued for, so a cancel racing a newer request never drops the new
// frame.
type frameQueue struct {
	next func()
	seq  uint64
}

type frameRequest struct {
	q   *frameQueue
	seq uint64
}

func (q *frameQueue) RequestFrame(fn func()) FrameRequest {
	q.seq++
	q.next = fn
	return &frameRequest{q: q, seq: q.seq}
}

func (q *frameQueue) step() bool {
	if q.next == nil {
		return false
	}
	fn := q.next
	q.next = nil
	fn()
	return true
}

func (r *frameRequest) Cancel() {
	if r.q.seq == r.seq {
		r.q.next = nil
	}
}
