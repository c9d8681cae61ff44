package spinview

type Event string

const (
	// EventReady fires once the model root is attached to the scene.
	EventReady Event = "ready"
	// EventError carries an error payload: a failed model load or a lost
	// render surface. Failures are always reported through this event,
	// never thrown into caller code.
	EventError Event = "error"
	// EventRenderingResumed fires when the visibility gate restarts the
	// render loop.
	EventRenderingResumed Event = "rendering-resumed"
	// EventRenderingPaused fires when an out-of-view condition outlasts
	// the pause delay and the render loop stops.
	EventRenderingPaused Event = "rendering-paused"
)

type EventHandler func(payload any)

// emitter is a minimal callback registry. Handlers run synchronously on
// the driver thread, in registration order.
type emitter struct {
	handlers map[Event][]EventHandler
}

func (e *emitter) on(event Event, handler EventHandler) {
	if handler == nil {
		return
	}
	if e.handlers == nil {
		e.handlers = make(map[Event][]EventHandler)
	}
	e.handlers[event] = append(e.handlers[event], handler)
}

func (e *emitter) emit(event Event, payload any) {
	for _, handler := range e.handlers[event] {
		handler(payload)
	}
}
