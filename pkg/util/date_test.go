package util

import (
    "strconv"
    "testing"
    "time"
)

func TestParseTimeRFC3339(t *testing.T) {
    s := "2024-10-10T10:10:10Z"
    got, ok := ParseTime(s)
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.UTC().Format(time.RFC3339) != s {
        t.Fatalf("unexpected time %v", got)
    }
}

func TestParseTimeNaive(t *testing.T) {
    cases := []string{
        "2024-01-01T10:05:00",
        "2024-01-01T10:05:00.123456",
        "2024-01-01 10:05:00",
    }
    for _, s := range cases {
        got, ok := ParseTime(s)
        if !ok {
            t.Fatalf("expected ok for %q", s)
        }
        if got.Year() != 2024 || got.Hour() != 10 || got.Minute() != 5 {
            t.Fatalf("unexpected time %v for %q", got, s)
        }
    }
}

func TestParseTimeUnix(t *testing.T) {
    ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
    got, ok := ParseTime(strconv.FormatInt(ts, 10))
    if !ok {
        t.Fatalf("expected ok")
    }
    if got.Unix() != ts {
        t.Fatalf("unexpected unix %v", got.Unix())
    }
}

func TestParseTimeRejectsGarbage(t *testing.T) {
    for _, in := range []string{"", "not-a-time", "2024-13-40"} {
        if _, ok := ParseTime(in); ok {
            t.Fatalf("expected %q to be rejected", in)
        }
    }
}

func TestParseIntList(t *testing.T) {
    got, ok := ParseIntList("10, 20,,30")
    if !ok {
        t.Fatalf("expected ok")
    }
    if len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
        t.Fatalf("unexpected list %v", got)
    }
    if _, ok := ParseIntList("10,x"); ok {
        t.Fatalf("expected failure on malformed item")
    }
}
