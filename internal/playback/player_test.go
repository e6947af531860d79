package playback

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/isyarat/domain/entities"
)

func fourFrames() []entities.Frame {
	return []entities.Frame{
		entities.WordFrame("HELLO"),
		entities.LetterFrame("A"),
		entities.LetterFrame("B"),
		entities.SpacerFrame(),
	}
}

func TestPlayer_TicksWrapAround(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())

	require.True(t, p.Start())
	for n := 1; n <= 10; n++ {
		mock.Add(100 * time.Millisecond)
		assert.Equal(t, n%4, p.Index(), "after %d ticks", n)
	}
}

func TestPlayer_AddManyIntervalsAtOnce(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())
	p.Start()

	mock.Add(700 * time.Millisecond)
	assert.Equal(t, 7%4, p.Index())
}

func TestPlayer_TicksAreSequential(t *testing.T) {
	mock := clock.NewMock()
	var seen []int
	p := NewPlayer(mock, 100*time.Millisecond, func(tick Tick) {
		seen = append(seen, tick.Index)
	})
	frames := fourFrames()
	p.Load(frames)
	p.Start()

	mock.Add(600 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 3, 0, 1, 2}, seen)
}

func TestPlayer_StartWithoutFramesIsNoop(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)

	assert.False(t, p.Start())
	assert.Equal(t, StateIdle, p.State())

	mock.Add(time.Second)
	assert.Equal(t, 0, p.Index())
}

func TestPlayer_StopIsIdempotent(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())

	p.Stop()
	p.Start()
	mock.Add(100 * time.Millisecond)
	p.Stop()
	p.Stop()

	assert.False(t, p.Running())
	mock.Add(time.Second)
	assert.Equal(t, 1, p.Index(), "no tick may fire after Stop")
}

func TestPlayer_RestartResetsCadence(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())
	p.Start()

	mock.Add(60 * time.Millisecond)
	p.Stop()
	p.Start()

	mock.Add(60 * time.Millisecond)
	assert.Equal(t, 0, p.Index(), "restart must not advance the index")

	mock.Add(40 * time.Millisecond)
	assert.Equal(t, 1, p.Index())
}

func TestPlayer_DoubleStartKeepsSingleTimer(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())

	p.Start()
	p.Start()
	p.Start()

	mock.Add(100 * time.Millisecond)
	assert.Equal(t, 1, p.Index())
}

func TestPlayer_IntervalChangeAppliesFromNextTick(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())
	p.Start()

	mock.Add(50 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, p.SetInterval(300*time.Millisecond))

	// The tick already in flight keeps its original deadline
	mock.Add(50 * time.Millisecond)
	assert.Equal(t, 1, p.Index())

	mock.Add(250 * time.Millisecond)
	assert.Equal(t, 1, p.Index())

	mock.Add(50 * time.Millisecond)
	assert.Equal(t, 2, p.Index())
}

func TestPlayer_LoadStopsAndRewinds(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())
	p.Start()
	mock.Add(200 * time.Millisecond)
	require.Equal(t, 2, p.Index())

	p.Load([]entities.Frame{entities.WordFrame("YES"), entities.WordFrame("NO")})
	assert.Equal(t, 0, p.Index())
	assert.False(t, p.Running())

	mock.Add(time.Second)
	assert.Equal(t, 0, p.Index())

	current, ok := p.Current()
	require.True(t, ok)
	assert.Equal(t, "YES", current.Label)
}

func TestPlayer_Reset(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 100*time.Millisecond, nil)
	p.Load(fourFrames())
	p.Start()
	mock.Add(300 * time.Millisecond)

	p.Reset()
	assert.Equal(t, 0, p.Index())
	assert.False(t, p.Running())
}

func TestPlayer_ClampsInterval(t *testing.T) {
	p := NewPlayer(clock.NewMock(), 0, nil)
	assert.Equal(t, MinInterval, p.Interval())

	assert.Equal(t, MinInterval, p.SetInterval(-5*time.Second))
	assert.Equal(t, MinInterval, DurationFromMs(0))
	assert.Equal(t, 700*time.Millisecond, DurationFromMs(700))
}

func TestPlayer_Snapshot(t *testing.T) {
	mock := clock.NewMock()
	p := NewPlayer(mock, 250*time.Millisecond, nil)
	p.Load(fourFrames())
	p.Start()
	mock.Add(250 * time.Millisecond)

	snap := p.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, 250, snap.IntervalMs)
	assert.True(t, snap.Running)
	assert.Len(t, snap.Frames, 4)

	// The snapshot is a copy
	snap.Frames[0].Label = "CHANGED"
	current := p.Snapshot().Frames[0]
	assert.Equal(t, "HELLO", current.Label)
}
