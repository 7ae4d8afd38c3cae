package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"BingoPulse/pkg/util"
)

// Timestamp accepts RFC3339 and the zone-less ISO timestamps the backend emits.
// JSON null and "" decode to the zero value; the zero value encodes as null.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	parsed, ok := util.ParseTime(s)
	if !ok {
		return fmt.Errorf("timestamp %q: unrecognized layout", s)
	}
	t.Time = parsed
	return nil
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// DrawRecord is one historical draw. Numbers are zero-padded two digit strings.
type DrawRecord struct {
	Term          string    `json:"draw_term"`
	DrawnAt       Timestamp `json:"draw_datetime"`
	Numbers       []string  `json:"numbers_sorted"`
	SuperNumber   string    `json:"super_number"`
	HighLowResult string    `json:"high_low_result,omitempty"`
	OddEvenResult string    `json:"odd_even_result,omitempty"`
}

// NextDraw is the next draw a new bet will target.
type NextDraw struct {
	Term               string `json:"next_draw_term"`
	EstimatedTime      string `json:"estimated_time"`
	EstimatedTimeShort string `json:"estimated_time_short"`
}
