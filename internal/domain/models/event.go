package models

import "time"

// EventKind identifies what changed.
type EventKind string

const (
	EventSnapshot EventKind = "snapshot"
	EventSentinel EventKind = "sentinel"
	EventBets     EventKind = "bets"
	EventStats    EventKind = "stats"
)

// Event is published after a store applied new state. It carries no payload
// beyond identifiers; subscribers re-read the store.
type Event struct {
	Kind       EventKind `json:"kind"`
	Generation uint64    `json:"generation,omitempty"`
	Window     int       `json:"window,omitempty"`
	Sentinel   string    `json:"sentinel,omitempty"`
	At         time.Time `json:"at"`
}
