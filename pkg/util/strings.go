package util

import (
    "strconv"
    "strings"
)

// ParseIntList parses a comma separated list like "10,20,30".
// Blank items are skipped; the first malformed item aborts with ok=false.
func ParseIntList(s string) ([]int, bool) {
    if strings.TrimSpace(s) == "" {
        return nil, true
    }
    parts := strings.Split(s, ",")
    out := make([]int, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p == "" {
            continue
        }
        v, err := strconv.Atoi(p)
        if err != nil {
            return nil, false
        }
        out = append(out, v)
    }
    return out, true
}
