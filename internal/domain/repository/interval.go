package repository

// Interval is a Bybit kline granularity code.
type Interval string

const (
	Interval1m  Interval = "1"
	Interval3m  Interval = "3"
	Interval5m  Interval = "5"
	Interval15m Interval = "15"
	Interval30m Interval = "30"
	Interval1h  Interval = "60"
	Interval2h  Interval = "120"
	Interval4h  Interval = "240"
	Interval6h  Interval = "360"
	Interval12h Interval = "720"
	Interval1d  Interval = "D"
	Interval1w  Interval = "W"
	Interval1M  Interval = "M"
)

// IsValidInterval returns true if iv is accepted by the exchange.
func IsValidInterval(iv Interval) bool {
	switch iv {
	case Interval1m, Interval3m, Interval5m, Interval15m, Interval30m,
		Interval1h, Interval2h, Interval4h, Interval6h, Interval12h,
		Interval1d, Interval1w, Interval1M:
		return true
	default:
		return false
	}
}

// DefaultInterval returns the one-minute interval.
func DefaultInterval() Interval { return Interval1m }

// NormalizeInterval converts a raw string to a valid interval (or default).
// Common aliases like "1m" and "1h" are accepted.
func NormalizeInterval(s string) Interval {
	if s == "" {
		return DefaultInterval()
	}
	if alias, ok := intervalAliases[s]; ok {
		return alias
	}
	iv := Interval(s)
	if IsValidInterval(iv) {
		return iv
	}
	return DefaultInterval()
}

var intervalAliases = map[string]Interval{
	"1m":  Interval1m,
	"3m":  Interval3m,
	"5m":  Interval5m,
	"15m": Interval15m,
	"30m": Interval30m,
	"1h":  Interval1h,
	"2h":  Interval2h,
	"4h":  Interval4h,
	"6h":  Interval6h,
	"12h": Interval12h,
	"1d":  Interval1d,
	"1w":  Interval1w,
}
