// Package playback drives frame sequences and one-shot gestures over time.
// All timers come from a clock.Clock so tests can advance time by hand.
package playback

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/satriahrh/isyarat/domain/entities"
)

// MinInterval is the shortest delay any playback timer is armed with
const MinInterval = 50 * time.Millisecond

// State is the playback state machine position
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateBusy    State = "busy"
)

// Tick is emitted every time the player advances
type Tick struct {
	Index int            `json:"index"`
	Frame entities.Frame `json:"frame"`
}

// Snapshot is a copy of the player state
type Snapshot struct {
	Frames     []entities.Frame `json:"frames"`
	Index      int              `json:"index"`
	IntervalMs int              `json:"interval_ms"`
	Running    bool             `json:"running"`
}

// Player cycles through a frame sequence at a fixed interval. At most one
// timer is armed at any time; starting again replaces the previous one.
//
// Interval changes never rescale the tick already in flight. They apply
// from the next scheduled tick onwards.
type Player struct {
	mu       sync.Mutex
	clock    clock.Clock
	frames   []entities.Frame
	index    int
	interval time.Duration
	state    State
	timer    *clock.Timer
	gen      uint64
	onTick   func(Tick)
}

// NewPlayer creates an idle player. onTick may be nil; it is called with
// the player's lock held and must not call back into the player.
func NewPlayer(clk clock.Clock, interval time.Duration, onTick func(Tick)) *Player {
	if clk == nil {
		clk = clock.New()
	}
	return &Player{
		clock:    clk,
		interval: clampDuration(interval),
		state:    StateIdle,
		onTick:   onTick,
	}
}

// Load stops playback and replaces the frames, resetting the index to 0
func (p *Player) Load(frames []entities.Frame) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.frames = append([]entities.Frame(nil), frames...)
	p.index = 0
}

// Start begins cycling. It is a no-op returning false when there are no
// frames to play.
func (p *Player) Start() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.frames) == 0 {
		return false
	}

	p.stopLocked()
	p.state = StateRunning
	p.armLocked()
	return true
}

// Stop cancels the active timer. Calling Stop on an idle player does nothing.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
}

// Reset stops playback and rewinds to the first frame
func (p *Player) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()
	p.index = 0
}

// SetInterval changes the tick interval and returns the value actually used
func (p *Player) SetInterval(d time.Duration) time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.interval = clampDuration(d)
	return p.interval
}

// Interval returns the current tick interval
func (p *Player) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.interval
}

// Index returns the current frame index
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.index
}

// State returns StateRunning or StateIdle
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Running reports whether a timer is active
func (p *Player) Running() bool {
	return p.State() == StateRunning
}

// Current returns the frame at the current index
func (p *Player) Current() (entities.Frame, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.frames) == 0 {
		return entities.Frame{}, false
	}
	return p.frames[p.index], true
}

// Snapshot returns a copy of the player state
func (p *Player) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Snapshot{
		Frames:     append([]entities.Frame(nil), p.frames...),
		Index:      p.index,
		IntervalMs: int(p.interval / time.Millisecond),
		Running:    p.state == StateRunning,
	}
}

func (p *Player) stopLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	// Bumping the generation invalidates a callback that already fired but
	// has not acquired the lock yet.
	p.gen++
	p.state = StateIdle
}

func (p *Player) armLocked() {
	p.gen++
	gen := p.gen
	p.timer = p.clock.AfterFunc(p.interval, func() { p.tick(gen) })
}

func (p *Player) tick(gen uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateRunning || gen != p.gen || len(p.frames) == 0 {
		return
	}

	p.index = (p.index + 1) % len(p.frames)
	p.armLocked()

	if p.onTick != nil {
		p.onTick(Tick{Index: p.index, Frame: p.frames[p.index]})
	}
}

func clampDuration(d time.Duration) time.Duration {
	if d < MinInterval {
		return MinInterval
	}
	return d
}

// DurationFromMs converts milliseconds to a clamped duration
func DurationFromMs(ms int) time.Duration {
	return clampDuration(time.Duration(ms) * time.Millisecond)
}
