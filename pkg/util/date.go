package util

import (
    "strconv"
    "time"
)

// unixMilliCutoff separates second and millisecond epoch values. Anything
// above it would be a date past the year 33658 when read as seconds.
const unixMilliCutoff = 1e12

// ParseTime accepts RFC3339 (with or without fractional seconds) and unix
// epochs in seconds or milliseconds. Epochs must be positive.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    ts, err := strconv.ParseInt(s, 10, 64)
    if err != nil || ts <= 0 {
        return time.Time{}, false
    }
    if ts > unixMilliCutoff {
        return time.UnixMilli(ts), true
    }
    return time.Unix(ts, 0), true
}
