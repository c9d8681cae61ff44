package spinview

import (
	"sync"
)

type SignalSource int

const (
	SourcePointer SignalSource = iota
	SourceTouch
)

func (s SignalSource) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "pointer"
}

type SignalKind int

const (
	SignalStart SignalKind = iota
	SignalEnd
)

// InteractionSignal is a transient press event from an external input
// source. Pressed reports whether a real press/touch is active at the time
// the event fired; start signals without one are dropped, which filters the
// spurious start events some input frameworks emit on hover or focus.
type InteractionSignal struct {
	Kind    SignalKind
	Source  SignalSource
	Pressed bool
}

type signalKind int

const (
	signalInteraction signalKind = iota
	signalVisibility
	signalModelReady
	signalModelError
)

type signal struct {
	kind        signalKind
	interaction InteractionSignal
	visible     bool
	model       *Model
	err         error
}

// signalQueue funnels events from arbitrary goroutines to the driver
// thread. Producers append under the lock and poke wake; the driver drains
// the whole queue at tick start. Only the driver mutates viewer state.
type signalQueue struct {
	mu      sync.Mutex
	pending []signal
	wake    chan struct{}
}

func newSignalQueue() *signalQueue {
	return &signalQueue{wake: make(chan struct{}, 1)}
}

func (q *signalQueue) push(s signal) {
	q.mu.Lock()
	q.pending = append(q.pending, s)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *signalQueue) drain() []signal {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = nil
	return out
}
