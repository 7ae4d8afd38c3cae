package models

import "time"

// WatchdogStatus describes the update watchdog for the dashboard.
type WatchdogStatus struct {
	Running      bool          `json:"running"`
	Interval     time.Duration `json:"interval_ns"`
	LastSentinel string        `json:"last_sentinel,omitempty"`
	LastCheck    time.Time     `json:"last_check,omitempty"`
	LastOutcome  string        `json:"last_outcome,omitempty"`
	Changes      uint64        `json:"changes"`
	Failures     uint64        `json:"failures"`
}
