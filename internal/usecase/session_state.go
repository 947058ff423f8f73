package usecase

import (
	"sync"
	"time"

	"ScalpSignal/internal/domain/models"
)

// SessionState is the mutable session shared by the poller, the latency
// probe and readers such as the control API. All access goes through mu.
type SessionState struct {
	mu             sync.RWMutex
	running        bool
	symbol         string
	symbols        []string
	endpoint       models.Endpoint
	latency        time.Duration
	latencyQuality string
	pollCounter    int
	cycles         int64
	settings       models.Settings
	startedAt      time.Time
}

func NewSessionState(symbol string, symbols []string, endpoint models.Endpoint, settings models.Settings) *SessionState {
	s := &SessionState{
		symbol:   symbol,
		symbols:  append([]string(nil), symbols...),
		endpoint: endpoint,
		settings: settings,
	}
	s.addSymbolLocked(symbol)
	return s
}

// View returns a copy safe to hand to other goroutines.
func (s *SessionState) View() models.SessionView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.SessionView{
		Running:        s.running,
		Symbol:         s.symbol,
		Endpoint:       s.endpoint,
		LatencyMs:      s.latency.Milliseconds(),
		LatencyQuality: s.latencyQuality,
		PollCounter:    s.pollCounter,
		Cycles:         s.cycles,
		Settings:       s.settings,
		StartedAt:      s.startedAt,
	}
}

func (s *SessionState) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// setRunning flips the running flag and reports whether it changed.
func (s *SessionState) setRunning(v bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running == v {
		return false
	}
	s.running = v
	if v {
		s.startedAt = time.Now()
		s.pollCounter = 0
	}
	return true
}

func (s *SessionState) Symbol() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.symbol
}

// SetSymbol makes sym the polled symbol, adding it to the list when new.
func (s *SessionState) SetSymbol(sym string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.symbol = sym
	s.addSymbolLocked(sym)
}

func (s *SessionState) addSymbolLocked(sym string) {
	for _, v := range s.symbols {
		if v == sym {
			return
		}
	}
	s.symbols = append(s.symbols, sym)
}

func (s *SessionState) Symbols() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.symbols...)
}

func (s *SessionState) Endpoint() models.Endpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.endpoint
}

// SetEndpoint switches the endpoint and clears the latency of the old one.
func (s *SessionState) SetEndpoint(ep models.Endpoint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.endpoint = ep
	s.latency = 0
	s.latencyQuality = ""
}

// SetLatency records a probe result; a non-nil err marks the connection as failed.
func (s *SessionState) SetLatency(d time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.latency = 0
		s.latencyQuality = models.LatencyError
		return
	}
	s.latency = d
	s.latencyQuality = models.LatencyQuality(d)
}

func (s *SessionState) Settings() models.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings applies fn under the lock and returns the new settings.
func (s *SessionState) UpdateSettings(fn func(models.Settings) models.Settings) models.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = fn(s.settings)
	return s.settings
}

// tick advances the poll counter and reports whether a latency probe is due.
// The counter resets when it reaches every.
func (s *SessionState) tick(every int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pollCounter++
	if every > 0 && s.pollCounter >= every {
		s.pollCounter = 0
		return true
	}
	return false
}

func (s *SessionState) incCycles() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cycles++
	return s.cycles
}
