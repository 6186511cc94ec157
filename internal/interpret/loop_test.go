package interpret

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/glove"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

func sample(fingers [5]float64, forward, up glove.Vec3) glove.Sample {
	return glove.Sample{Fingers: fingers, Forward: &forward, Up: &up}
}

var (
	fwd  = glove.Vec3{Z: 1}
	up   = glove.Vec3{Y: 1}
	left = glove.Vec3{X: -0.5, Y: 0.8660254037844386}
)

func TestLoopGestureChanges(t *testing.T) {
	l := NewLoop(Options{})

	f := l.Tick(sample([5]float64{}, fwd, up))
	assert.Equal(t, uint64(1), f.Tick)
	assert.Equal(t, gesture.Unknown, f.Reading.Gesture)
	assert.Equal(t, gesture.Change{Changed: true, LoopIdle: true}, f.Change)
	require.NotNil(t, f.Animation)
	assert.Equal(t, "unknown", f.Animation.Clip)
	assert.True(t, f.Animation.Loop)

	f = l.Tick(sample([5]float64{0.7, 0, 0, 0, 0}, fwd, up))
	assert.Equal(t, gesture.Reading{Gesture: gesture.Thumb, Intensity: 0.7}, f.Reading)
	require.NotNil(t, f.Animation)
	assert.Equal(t, "thumb", f.Animation.Clip)
	assert.False(t, f.Animation.Loop)

	f = l.Tick(sample([5]float64{}, fwd, up))
	assert.Equal(t, gesture.Reading{Gesture: gesture.Thumb, Intensity: 0.7}, f.Reading)
	assert.False(t, f.Change.Changed)
	assert.Nil(t, f.Animation)

	f = l.Tick(sample([5]float64{0.2, 0.3, 0.4, 0.5, 0.6}, fwd, up))
	assert.Equal(t, gesture.Reading{Gesture: gesture.Fist, Intensity: 0.2}, f.Reading)
	require.NotNil(t, f.Animation)
	assert.Equal(t, 0.7, f.Animation.PreviousIntensity)
	assert.Equal(t, uint64(4), f.Tick)
}

func TestLoopMissingClipIsReported(t *testing.T) {
	clips := gesture.DefaultClips()
	delete(clips, gesture.Index)
	l := NewLoop(Options{Clips: clips})

	l.Tick(sample([5]float64{}, fwd, up))
	f := l.Tick(sample([5]float64{0, 0.5, 0, 0, 0}, fwd, up))
	assert.Equal(t, gesture.Index, f.Reading.Gesture)
	assert.Nil(t, f.Animation)
	assert.Contains(t, f.ClipError, "error loading animation index")

	f = l.Tick(sample([5]float64{0, 0, 0.5, 0, 0}, fwd, up))
	require.NotNil(t, f.Animation)
	assert.Empty(t, f.ClipError)
}

func TestLoopExplicitReference(t *testing.T) {
	l := NewLoop(Options{RollMode: orientation.RollModeCapture})
	s := sample([5]float64{}, glove.Vec3{X: 1}, left)

	require.NoError(t, l.SetReference(s))
	assert.NotZero(t, l.Calibration().ReferenceRoll)

	f := l.Tick(s)
	assert.InDelta(t, 0, f.Orientation.RelativeRoll, 1e-7)
	assert.Empty(t, f.Warning)
}

func TestLoopReferenceGesture(t *testing.T) {
	l := NewLoop(Options{ReferenceGesture: gesture.Fist})
	right := glove.Vec3{X: 1}

	f := l.Tick(sample([5]float64{0.5, 0, 0, 0, 0}, right, up))
	assert.False(t, f.Reference)
	assert.InDelta(t, 90, f.Orientation.Pose.Yaw, 1e-7)

	f = l.Tick(sample([5]float64{0.5, 0.5, 0.5, 0.5, 0.5}, right, up))
	assert.True(t, f.Reference)
	assert.InDelta(t, 0, f.Orientation.Pose.Yaw, 1e-6)

	// holding the fist does not re-trigger
	f = l.Tick(sample([5]float64{0.5, 0.5, 0.5, 0.5, 0.5}, fwd, up))
	assert.False(t, f.Reference)
	assert.InDelta(t, -90, f.Orientation.Pose.Yaw, 1e-6)
}

func TestLoopDegenerateWarning(t *testing.T) {
	l := NewLoop(Options{})
	f := l.Tick(sample([5]float64{}, glove.Vec3{Y: 1}, glove.Vec3{Z: -1}))
	assert.True(t, f.Orientation.Degenerate)
	assert.Contains(t, f.Warning, orientation.ErrDegenerateOrientation.Error())
	assert.True(t, f.Orientation.Rotation.IsFinite())

	assert.True(t, IsDegenerate(f.Err))

	err := l.SetReference(sample([5]float64{}, glove.Vec3{Y: 1}, glove.Vec3{Z: -1}))
	assert.True(t, IsDegenerate(err))

	ok := l.Tick(sample([5]float64{}, fwd, up))
	assert.NoError(t, ok.Err)
	assert.False(t, IsDegenerate(ok.Err))
}

func TestLoopCustomRules(t *testing.T) {
	pinch := gesture.Rules{{
		Name:      "pinch",
		Gesture:   gesture.Index,
		Match:     func(f gesture.FingerVector) bool { return f[gesture.FingerThumb] > 0.5 && f[gesture.FingerIndex] > 0.5 },
		Intensity: func(f gesture.FingerVector) float64 { return f[gesture.FingerIndex] },
	}}
	l := NewLoop(Options{Rules: pinch})

	f := l.Tick(sample([5]float64{0.9, 0, 0, 0, 0}, fwd, up))
	assert.Equal(t, gesture.Reading{}, f.Reading, "thumb alone matches no custom rule")
	assert.Equal(t, gesture.Fist, f.Previous)

	f = l.Tick(sample([5]float64{0.9, 0.8, 0.7, 0.6, 0.5}, fwd, up))
	assert.Equal(t, gesture.Reading{Gesture: gesture.Index, Intensity: 0.8}, f.Reading)
	assert.Equal(t, gesture.Unknown, f.Previous)
	require.NotNil(t, f.Animation)
	assert.Equal(t, "index", f.Animation.Clip)
}

func TestLoopWristOnlySamples(t *testing.T) {
	l := NewLoop(Options{})
	f := l.Tick(glove.Sample{Roll: 0.25})
	assert.Empty(t, f.Warning)
	assert.True(t, f.Orientation.Rotation.IsFinite())
	assert.Equal(t, l.Reading(), f.Reading)
}
