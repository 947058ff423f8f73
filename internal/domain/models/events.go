package models

import "time"

// EventKind tags the payload carried by an Event.
type EventKind string

const (
	EventFrame EventKind = "frame"
	EventLog   EventKind = "log"
	EventStats EventKind = "stats"
)

// LogCategory is the presenter-facing log level.
type LogCategory string

const (
	LogInfo       LogCategory = "info"
	LogBuy        LogCategory = "buy"
	LogSell       LogCategory = "sell"
	LogError      LogCategory = "error"
	LogWarning    LogCategory = "warning"
	LogPrediction LogCategory = "prediction"
)

// LogEntry is one line for the presentation log.
type LogEntry struct {
	Time     time.Time   `json:"time"`
	Message  string      `json:"message"`
	Category LogCategory `json:"category"`
}

// Frame is everything a presenter needs to redraw after a cycle.
type Frame struct {
	Series          CandleSeries `json:"series"`
	Symbol          string       `json:"symbol"`
	ChartType       ChartType    `json:"chart_type"`
	ShowPredictions bool         `json:"show_predictions"`
	FuturePrices    []float64    `json:"future_prices,omitempty"`
	Signal          *SignalType  `json:"signal,omitempty"`
	ReferencePrice  *float64     `json:"reference_price,omitempty"`
	Indicators      *Indicators  `json:"indicators,omitempty"`
	Confidence      float64      `json:"confidence"`
}

// Event is the unit handed from background work to presenters.
type Event struct {
	Kind  EventKind `json:"type"`
	Frame *Frame    `json:"frame,omitempty"`
	Log   *LogEntry `json:"log,omitempty"`
	Stats *Stats    `json:"stats,omitempty"`
}

// NewLogEvent builds a log event stamped with the current time.
func NewLogEvent(category LogCategory, msg string) Event {
	return Event{Kind: EventLog, Log: &LogEntry{Time: time.Now(), Message: msg, Category: category}}
}

// NewStatsEvent wraps stats in an event.
func NewStatsEvent(s Stats) Event {
	return Event{Kind: EventStats, Stats: &s}
}

// NewFrameEvent wraps a frame in an event.
func NewFrameEvent(f *Frame) Event {
	return Event{Kind: EventFrame, Frame: f}
}
