package domain

import "time"

// PollMode is how a poll request is driven.
type PollMode string

const (
	PollModeSingleShot PollMode = "single-shot"
	PollModeInterval   PollMode = "interval"
)

// PollStatus is a point-in-time view of a running poll.
type PollStatus struct {
	RunID       string    `json:"runId"`
	Target      string    `json:"target"`
	Endpoint    string    `json:"endpoint"`
	URL         string    `json:"url"`
	Mode        PollMode  `json:"mode"`
	Ticks       uint64    `json:"ticks"`
	Failures    uint64    `json:"failures"`
	Records     uint64    `json:"records"`
	InFlight    int       `json:"inFlight"`
	LastError   string    `json:"lastError,omitempty"`
	LastSuccess time.Time `json:"lastSuccess,omitempty"`
	StartedAt   time.Time `json:"startedAt"`
}
