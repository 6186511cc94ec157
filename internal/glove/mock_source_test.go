package glove

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/relabs-tech/bend_glove/internal/gesture"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func TestMockSourceCyclesGestures(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	src := newMockSource(clock.now, false)

	want := []gesture.Gesture{
		gesture.Unknown, gesture.Thumb, gesture.Index, gesture.Middle,
		gesture.Ring, gesture.Pinky, gesture.Fist,
	}
	for i, g := range want {
		clock.t = src.start.Add(time.Duration(i)*mockPhase + mockPhase/2)
		s, err := src.Next()
		require.NoError(t, err)

		r := gesture.Classify(s.FingerVector(), gesture.Reading{})
		assert.Equal(t, g, r.Gesture, "phase %d", i)
		assert.GreaterOrEqual(t, s.Roll, 0.0)
		assert.LessOrEqual(t, s.Roll, 1.0)
		assert.Nil(t, s.Forward)
	}
}

func TestMockSourceVectors(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	src := newMockSource(clock.now, true)
	clock.t = clock.t.Add(3700 * time.Millisecond)

	s, err := src.Next()
	require.NoError(t, err)
	require.NotNil(t, s.Forward)
	require.NotNil(t, s.Up)

	f := r3.Vec{X: s.Forward.X, Y: s.Forward.Y, Z: s.Forward.Z}
	u := r3.Vec{X: s.Up.X, Y: s.Up.Y, Z: s.Up.Z}
	assert.InDelta(t, 1, r3.Norm(f), 1e-9)
	assert.InDelta(t, 1, r3.Norm(u), 1e-9)
	assert.InDelta(t, 0, r3.Dot(f, u), 1e-9)
	assert.False(t, math.IsNaN(s.Roll))
}
