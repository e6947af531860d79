package playback

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satriahrh/isyarat/domain/entities"
)

func gesture(name string, ms int) entities.GestureDescriptor {
	return entities.GestureDescriptor{
		Name:          name,
		PoseKeyframes: []entities.Point3D{{X: 0.5, Y: 0.5, Z: 0.1}},
		DurationMs:    ms,
	}
}

func isClosed(ch <-chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

func TestAnimator_PlaysForDuration(t *testing.T) {
	mock := clock.NewMock()
	a := NewAnimator(mock, nil)

	done, err := a.Play(gesture("Yes", 1200))
	require.NoError(t, err)
	assert.True(t, a.Busy())
	assert.Equal(t, StateBusy, a.State())

	current, ok := a.Current()
	require.True(t, ok)
	assert.Equal(t, "Yes", current.Name)

	mock.Add(1199 * time.Millisecond)
	assert.True(t, a.Busy())
	assert.False(t, isClosed(done))

	mock.Add(time.Millisecond)
	assert.False(t, a.Busy())
	assert.True(t, isClosed(done))

	_, ok = a.Current()
	assert.False(t, ok)
}

func TestAnimator_RejectsWhileBusy(t *testing.T) {
	mock := clock.NewMock()
	a := NewAnimator(mock, nil)

	_, err := a.Play(gesture("Hello", 2000))
	require.NoError(t, err)

	_, err = a.Play(gesture("No", 1000))
	assert.ErrorIs(t, err, entities.ErrBusy)

	current, _ := a.Current()
	assert.Equal(t, "Hello", current.Name, "rejected request must not replace the current gesture")

	mock.Add(2 * time.Second)
	_, err = a.Play(gesture("No", 1000))
	assert.NoError(t, err)
}

func TestAnimator_Events(t *testing.T) {
	mock := clock.NewMock()
	var events []GestureEvent
	a := NewAnimator(mock, func(e GestureEvent) { events = append(events, e) })

	_, err := a.Play(gesture("Love", 2500))
	require.NoError(t, err)
	mock.Add(2500 * time.Millisecond)

	require.Len(t, events, 2)
	assert.True(t, events[0].Playing)
	assert.False(t, events[1].Playing)
	assert.Equal(t, "Love", events[1].Gesture.Name)
}

func TestAnimator_Cancel(t *testing.T) {
	mock := clock.NewMock()
	a := NewAnimator(mock, nil)

	a.Cancel()

	done, err := a.Play(gesture("Help", 2000))
	require.NoError(t, err)
	a.Cancel()

	assert.False(t, a.Busy())
	assert.True(t, isClosed(done))

	// The cancelled timer must not end a later gesture early
	next, err := a.Play(gesture("Good", 1500))
	require.NoError(t, err)
	mock.Add(1000 * time.Millisecond)
	assert.True(t, a.Busy())
	assert.False(t, isClosed(next))
	mock.Add(500 * time.Millisecond)
	assert.False(t, a.Busy())
}

func TestAnimator_ClampsDuration(t *testing.T) {
	mock := clock.NewMock()
	a := NewAnimator(mock, nil)

	done, err := a.Play(gesture("Broken", 0))
	require.NoError(t, err)

	mock.Add(MinInterval)
	assert.True(t, isClosed(done))
}
