package app

import (
	"fmt"

	"github.com/relabs-tech/bend_glove/internal/gesture"
	"github.com/relabs-tech/bend_glove/internal/interpret"
)

func formatFrame(f interpret.Frame) string {
	o := f.Orientation
	line := fmt.Sprintf(
		"[FRAME] #%-6d %-7s I=%5.2f  ROLL=%7.2f REL=%7.2f  PITCH=%6.2f YAW=%6.2f",
		f.Tick, f.Reading.Gesture, f.Reading.Intensity,
		o.Roll, o.RelativeRoll, o.Pose.Pitch, o.Pose.Yaw,
	)
	if f.Change.Changed {
		line += fmt.Sprintf("  (from %s)", f.Previous)
	}
	if f.Reference {
		line += "  [REF]"
	}
	if f.Warning != "" {
		line += "  ! " + f.Warning
	}
	return line
}

func formatAnimation(c gesture.AnimationCommand) string {
	mode := "once"
	if c.Loop {
		mode = "loop"
	}
	return fmt.Sprintf("[ANIM ] %-7s clip=%s %s  intensity %.2f -> %.2f",
		c.Gesture, c.Clip, mode, c.PreviousIntensity, c.Intensity)
}

func formatStatus(s Status) string {
	state := "connected"
	if !s.Connected {
		state = "disconnected"
	}
	if s.Message == "" {
		return fmt.Sprintf("[STAT ] %s", state)
	}
	return fmt.Sprintf("[STAT ] %s: %s", state, s.Message)
}
