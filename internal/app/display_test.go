package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/interpret"
	"github.com/relabs-tech/bend_glove/internal/orientation"
)

func TestPanelLines(t *testing.T) {
	assert.Equal(t, []string{"Bend glove", "Waiting..."}, panelLines(displaySnapshot{}))

	disconnected := displaySnapshot{haveStatus: true, haveFrame: true}
	assert.Equal(t, []string{"Bend glove", "No sensor", "connected"}, panelLines(disconnected))

	s := displaySnapshot{
		haveFrame:  true,
		haveStatus: true,
		status:     Status{Connected: true},
		frame: interpret.Frame{
			Reading: gesture.Reading{Gesture: gesture.Fist, Intensity: 0.25},
			Orientation: orientation.Orientation{
				RelativeRoll: -12.5,
				Pose:         orientation.Pose{Yaw: 30},
			},
		},
	}
	assert.Equal(t, []string{"G: fist", "I:  0.25", "R:  -12.5", "Y:   30.0"}, panelLines(s))

	s.frame.Orientation.Degenerate = true
	assert.Equal(t, "arm vertical", panelLines(s)[3])
	s.frame.ClipError = "error loading animation fist: no animation clip"
	assert.Equal(t, "clip missing", panelLines(s)[3])
}

func TestDisplayDataDecodesFrames(t *testing.T) {
	d := &DisplayData{}
	d.onFrame([]byte(`{"tick":3,"reading":{"gesture":"ring","intensity":0.9},"orientation":{"rotation":{"w":1,"x":0,"y":0,"z":0},"relative_roll":4}}`))
	d.onFrame([]byte(`garbage`))
	d.onStatus([]byte(`{"connected":true}`))

	snap := d.snapshot()
	require.True(t, snap.haveFrame)
	require.True(t, snap.haveStatus)
	assert.Equal(t, uint64(3), snap.frame.Tick)
	assert.Equal(t, gesture.Ring, snap.frame.Reading.Gesture)
	assert.Equal(t, 4.0, snap.frame.Orientation.RelativeRoll)
}

func TestRenderPanelDrawsText(t *testing.T) {
	blank := renderPanel(nil)
	for _, b := range blank.Pix {
		require.Zero(t, b)
	}

	img := renderPanel([]string{"G: fist"})
	assert.Equal(t, panelWidth, img.Bounds().Dx())
	assert.Equal(t, panelHeight, img.Bounds().Dy())
	lit := 0
	for _, b := range img.Pix {
		if b != 0 {
			lit++
		}
	}
	assert.Positive(t, lit)
}
