package domain

import (
	"sort"
	"time"
)

// Record is one item of an API response: the whole object for singleton responses or one
// element of a response array.
type Record map[string]any

// Keys returns the record's field names in sorted order.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for key := range r {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Batch carries the records fetched by one poll, in response order.
type Batch struct {
	RunID     string
	Endpoint  string
	Tick      uint64
	Records   []Record
	FetchedAt time.Time
}

// StreamMessage is the payload broadcast to live record subscribers.
type StreamMessage struct {
	RunID     string    `json:"runId"`
	Endpoint  string    `json:"endpoint"`
	Tick      uint64    `json:"tick"`
	Records   []Record  `json:"records"`
	Timestamp time.Time `json:"timestamp"`
}

// NewStreamMessage converts a persisted batch into its broadcast form.
func NewStreamMessage(batch Batch) *StreamMessage {
	return &StreamMessage{
		RunID:     batch.RunID,
		Endpoint:  batch.Endpoint,
		Tick:      batch.Tick,
		Records:   batch.Records,
		Timestamp: batch.FetchedAt.UTC(),
	}
}
