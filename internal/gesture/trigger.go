package gesture

// Change describes how the current gesture relates to the previous one.
// LoopIdle is only set when Changed.
type Change struct {
	Changed  bool `json:"changed"`
	LoopIdle bool `json:"loop_idle"`
}

// Detect compares the current gesture with the previous distinct one.
func Detect(current, previous Gesture) Change {
	if current == previous {
		return Change{}
	}
	return Change{
		Changed:  true,
		LoopIdle: current == Unknown || current == Rest,
	}
}

// Tracker remembers the previous distinct gesture across ticks.
type Tracker struct {
	last Gesture
}

// NewTracker starts from Fist, so the first Unknown or Rest reading already
// switches the player to its idle loop.
func NewTracker() *Tracker {
	return &Tracker{last: Fist}
}

// Observe records g and reports whether it differs from the last one.
func (t *Tracker) Observe(g Gesture) Change {
	c := Detect(g, t.last)
	t.last = g
	return c
}

// Last returns the most recently observed gesture.
func (t *Tracker) Last() Gesture {
	return t.last
}
