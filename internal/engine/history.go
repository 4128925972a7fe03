package engine

import (
	"sync"
	"time"
)

// TickReason records why a refresh ran.
type TickReason string

const (
	ReasonStartup  TickReason = "startup"
	ReasonPeriodic TickReason = "periodic"
	ReasonRequest  TickReason = "request"
	ReasonEvent    TickReason = "event"

	tickHistoryLimit = 128
)

// TickRecord summarizes one refresh for the control plane.
type TickRecord struct {
	Timestamp   time.Time     `json:"timestamp"`
	Reason      TickReason    `json:"reason"`
	Duration    time.Duration `json:"duration"`
	Windows     int           `json:"windows"`
	Entries     int           `json:"entries"`
	FetchError  string        `json:"fetchError,omitempty"`
	ConfigError string        `json:"configError,omitempty"`
}

type tickLog struct {
	mu      sync.Mutex
	entries []TickRecord
	limit   int
}

func newTickLog(limit int) *tickLog {
	if limit <= 0 {
		limit = tickHistoryLimit
	}
	return &tickLog{limit: limit}
}

func (l *tickLog) record(entry TickRecord) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.limit > 0 && len(l.entries) == l.limit {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:l.limit-1]
	}
	l.entries = append(l.entries, entry)
}

func (l *tickLog) snapshot() []TickRecord {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return nil
	}
	return append([]TickRecord(nil), l.entries...)
}
