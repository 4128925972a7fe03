package metrics

import (
	"sort"
	"sync"
	"time"
)

// Result labels recorded for dispatched commands.
const (
	ResultFocused  = "focused"
	ResultClosed   = "closed"
	ResultLaunched = "launched"
	ResultFailed   = "failed"
)

// Collector aggregates in-process counters for refreshes and dispatches.
// A nil *Collector is valid and records nothing.
type Collector struct {
	mu          sync.RWMutex
	started     time.Time
	ticks       uint64
	fetchErrors uint64
	lastTick    time.Time
	classes     map[string]*ClassMetrics
	launcher    uint64
}

// ClassMetrics captures per-application dispatch counters.
type ClassMetrics struct {
	Class      string    `json:"class"`
	Focused    uint64    `json:"focused"`
	Closed     uint64    `json:"closed"`
	Launched   uint64    `json:"launched"`
	Fallbacks  uint64    `json:"fallbacks"`
	Failures   uint64    `json:"failures"`
	LastAction time.Time `json:"lastAction,omitempty"`
}

// Totals aggregates counters across all classes in a snapshot.
type Totals struct {
	Focused   uint64 `json:"focused"`
	Closed    uint64 `json:"closed"`
	Launched  uint64 `json:"launched"`
	Fallbacks uint64 `json:"fallbacks"`
	Failures  uint64 `json:"failures"`
}

// Snapshot is the serializable view of the current counters.
type Snapshot struct {
	Started      time.Time      `json:"started"`
	Ticks        uint64         `json:"ticks"`
	FetchErrors  uint64         `json:"fetchErrors"`
	LastTick     time.Time      `json:"lastTick,omitempty"`
	LauncherRuns uint64         `json:"launcherRuns"`
	Totals       Totals         `json:"totals"`
	Classes      []ClassMetrics `json:"classes,omitempty"`
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{started: time.Now(), classes: make(map[string]*ClassMetrics)}
}

// RecordTick counts one refresh.
func (c *Collector) RecordTick() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	c.lastTick = time.Now()
}

// RecordFetchError counts a failed window query.
func (c *Collector) RecordFetchError() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetchErrors++
}

// RecordLauncher counts a launcher command run.
func (c *Collector) RecordLauncher() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.launcher++
}

// RecordDispatch counts the result of a focus or close request. fallback is
// true when the primary action was replaced by a launch.
func (c *Collector) RecordDispatch(class, result string, fallback bool) {
	c.updateClass(class, func(m *ClassMetrics, now time.Time) {
		switch result {
		case ResultFocused:
			m.Focused++
		case ResultClosed:
			m.Closed++
		case ResultLaunched:
			m.Launched++
		default:
			m.Failures++
		}
		if fallback {
			m.Fallbacks++
		}
		m.LastAction = now
	})
}

func (c *Collector) updateClass(class string, mutate func(*ClassMetrics, time.Time)) {
	if c == nil || mutate == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.classes == nil {
		c.classes = make(map[string]*ClassMetrics)
	}
	m, exists := c.classes[class]
	if !exists {
		m = &ClassMetrics{Class: class}
		c.classes[class] = m
	}
	mutate(m, now)
}

// Snapshot returns the current counters for serialization or display.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap := Snapshot{
		Started:      c.started,
		Ticks:        c.ticks,
		FetchErrors:  c.fetchErrors,
		LastTick:     c.lastTick,
		LauncherRuns: c.launcher,
	}
	if len(c.classes) == 0 {
		return snap
	}
	snap.Classes = make([]ClassMetrics, 0, len(c.classes))
	for _, m := range c.classes {
		clone := *m
		snap.Classes = append(snap.Classes, clone)
		snap.Totals.Focused += clone.Focused
		snap.Totals.Closed += clone.Closed
		snap.Totals.Launched += clone.Launched
		snap.Totals.Fallbacks += clone.Fallbacks
		snap.Totals.Failures += clone.Failures
	}
	sort.Slice(snap.Classes, func(i, j int) bool {
		return snap.Classes[i].Class < snap.Classes[j].Class
	})
	return snap
}
