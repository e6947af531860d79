package playback

import (
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/satriahrh/isyarat/domain/entities"
)

// GestureEvent reports the start and end of a gesture animation
type GestureEvent struct {
	Playing bool                       `json:"playing"`
	Gesture entities.GestureDescriptor `json:"gesture"`
}

// Animator plays one gesture at a time for the gesture's duration.
// Requests made while a gesture is playing are rejected, not queued.
type Animator struct {
	mu       sync.Mutex
	clock    clock.Clock
	current  *entities.GestureDescriptor
	timer    *clock.Timer
	done     chan struct{}
	gen      uint64
	onChange func(GestureEvent)
}

// NewAnimator creates an idle animator. onChange may be nil; it is called
// with the animator's lock held and must not call back into the animator.
func NewAnimator(clk clock.Clock, onChange func(GestureEvent)) *Animator {
	if clk == nil {
		clk = clock.New()
	}
	return &Animator{clock: clk, onChange: onChange}
}

// Play starts animating g and returns a channel closed when the gesture
// finishes or is cancelled. It fails with entities.ErrBusy while another
// gesture is playing.
func (a *Animator) Play(g entities.GestureDescriptor) (<-chan struct{}, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		return nil, entities.ErrBusy
	}

	g = g.Clone()
	a.current = &g
	a.done = make(chan struct{})
	a.gen++
	gen := a.gen
	a.timer = a.clock.AfterFunc(DurationFromMs(g.DurationMs), func() { a.finish(gen) })

	if a.onChange != nil {
		a.onChange(GestureEvent{Playing: true, Gesture: g})
	}
	return a.done, nil
}

// Cancel stops the current gesture early. It does nothing when idle.
func (a *Animator) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return
	}
	if a.timer != nil {
		a.timer.Stop()
	}
	a.clearLocked()
}

// Busy reports whether a gesture is playing
func (a *Animator) Busy() bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.current != nil
}

// State returns StateBusy or StateIdle
func (a *Animator) State() State {
	if a.Busy() {
		return StateBusy
	}
	return StateIdle
}

// Current returns the gesture being played
func (a *Animator) Current() (entities.GestureDescriptor, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current == nil {
		return entities.GestureDescriptor{}, false
	}
	return a.current.Clone(), true
}

func (a *Animator) finish(gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if gen != a.gen || a.current == nil {
		return
	}
	a.clearLocked()
}

func (a *Animator) clearLocked() {
	g := *a.current
	a.current = nil
	a.timer = nil
	a.gen++
	close(a.done)
	a.done = nil

	if a.onChange != nil {
		a.onChange(GestureEvent{Playing: false, Gesture: g})
	}
}
