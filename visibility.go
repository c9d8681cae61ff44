package spinview

import (
	"time"
)

type VisibilityState int

const (
	VisibilityHidden VisibilityState = iota
	VisibilityVisible
	VisibilityPendingHidden
)

func (s VisibilityState) String() string {
	switch s {
	case VisibilityVisible:
		return "visible"
	case VisibilityPendingHidden:
		return "pending-hidden"
	}
	return "hidden"
}

// VisibilityGate owns the render loop's lifecycle from an external
// intersection signal. Going hidden arms a debounce deadline instead of
// pausing immediately; a hidden interval shorter than the delay never
// stops the loop. The deadline is held as data and evaluated in Advance
// on the driver thread, so cancellation can never race a firing timer.
type VisibilityGate struct {
	pauseDelay time.Duration

	state    VisibilityState
	deadline time.Time

	loop   *RenderLoop
	clock  *FrameClock
	events *emitter
	log    Logger
}

// NewVisibilityGate starts in the hidden state; the first visible signal
// starts the loop.
func NewVisibilityGate(opts Options, loop *RenderLoop, clock *FrameClock, events *emitter, log Logger) *VisibilityGate {
	if log == nil {
		log = NewNopLogger()
	}
	return &VisibilityGate{
		pauseDelay: opts.PauseDelay,
		state:      VisibilityHidden,
		loop:       loop,
		clock:      clock,
		events:     events,
		log:        log,
	}
}

func (g *VisibilityGate) State() VisibilityState { return g.state }

// OnIntersection consumes one boolean sample from the visibility source.
func (g *VisibilityGate) OnIntersection(visible bool, now time.Time) {
	if visible {
		switch g.state {
		case VisibilityPendingHidden:
			// Back in view before the deadline: no pause ever happened,
			// so nothing to resume.
			g.state = VisibilityVisible
		case VisibilityHidden:
			g.state = VisibilityVisible
			g.clock.Reset()
			g.loop.Start()
			g.log.Debugf("visibility: rendering resumed")
			if g.events != nil {
				g.events.emit(EventRenderingResumed, nil)
			}
		}
		return
	}

	if g.state != VisibilityVisible {
		// Already hidden or already counting down; keep the original
		// deadline.
		return
	}
	g.state = VisibilityPendingHidden
	g.deadline = now.Add(g.pauseDelay)
}

// Advance fires an elapsed pending-hidden deadline. Called every driver
// iteration, whether or not the loop is running.
func (g *VisibilityGate) Advance(now time.Time) {
	if g.state != VisibilityPendingHidden || now.Before(g.deadline) {
		return
	}
	g.state = VisibilityHidden
	g.loop.Stop()
	g.log.Debugf("visibility: rendering paused")
	if g.events != nil {
		g.events.emit(EventRenderingPaused, nil)
	}
}
