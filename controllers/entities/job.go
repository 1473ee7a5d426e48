package entities

import "time"

// Job acknowledges an accepted event. It says nothing about whether the
// event has been matched yet.
type Job struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}
