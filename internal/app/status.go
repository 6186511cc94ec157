package app

import "time"

// msgNotConnected is shown while no fresh glove sample is available.
const msgNotConnected = "No bend sensor currently connected."

// Status is the interpreter's connection and error report.
type Status struct {
	Connected bool      `json:"connected"`
	Message   string    `json:"message,omitempty"`
	Time      time.Time `json:"time"`
}

// ReferenceRequest is published on the reference topic to reset the
// reference pose. The interpreter only looks at its arrival.
type ReferenceRequest struct {
	Source string    `json:"source"`
	Time   time.Time `json:"time"`
}
