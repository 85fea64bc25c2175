package monitor

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Outcome classifies one finished analysis
type Outcome int

const (
	OutcomePositive Outcome = iota
	OutcomeNegative
	OutcomeFailed
)

// Counter is a thread-safe counter
type Counter struct {
	value atomic.Int64
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return c.value.Load()
}

// Timer is a thread-safe recorder of operation durations
type Timer struct {
	mu    sync.Mutex
	count int64
	total time.Duration
	min   time.Duration
	max   time.Duration
}

// Record records a duration measurement
func (t *Timer) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count == 0 || d < t.min {
		t.min = d
	}
	if d > t.max {
		t.max = d
	}
	t.count++
	t.total += d
}

// Stats returns the count with the min, max and average durations
func (t *Timer) Stats() (count int64, minTime, maxTime, avgTime time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count == 0 {
		return 0, 0, 0, 0
	}
	return t.count, t.min, t.max, t.total / time.Duration(t.count)
}

// Session tracks the analyses performed during one run of the program
type Session struct {
	started time.Time
	now     func() time.Time

	positive Counter
	negative Counter
	failed   Counter
	exports  Counter
	latency  Timer
}

// NewSession starts a session now
func NewSession() *Session {
	return NewSessionWithClock(time.Now)
}

// NewSessionWithClock starts a session using now as its time source
func NewSessionWithClock(now func() time.Time) *Session {
	return &Session{started: now(), now: now}
}

// RecordAnalysis counts a finished analysis and how long the service took.
// Failures count but do not contribute latency.
func (s *Session) RecordAnalysis(outcome Outcome, took time.Duration) {
	switch outcome {
	case OutcomePositive:
		s.positive.Inc()
	case OutcomeNegative:
		s.negative.Inc()
	default:
		s.failed.Inc()
		return
	}
	s.latency.Record(took)
}

// RecordExport counts a saved report
func (s *Session) RecordExport() {
	s.exports.Inc()
}

// Summary is a point-in-time view of a session
type Summary struct {
	Started    time.Time     `json:"started"`
	Uptime     time.Duration `json:"uptime"`
	Analyses   int64         `json:"analyses"`
	Positive   int64         `json:"positive"`
	Negative   int64         `json:"negative"`
	Failed     int64         `json:"failed"`
	Exports    int64         `json:"exports"`
	MinLatency time.Duration `json:"min_latency"`
	MaxLatency time.Duration `json:"max_latency"`
	AvgLatency time.Duration `json:"avg_latency"`
}

// Summary returns the current totals
func (s *Session) Summary() Summary {
	sum := Summary{
		Started:  s.started,
		Uptime:   s.now().Sub(s.started),
		Positive: s.positive.Get(),
		Negative: s.negative.Get(),
		Failed:   s.failed.Get(),
		Exports:  s.exports.Get(),
	}
	sum.Analyses = sum.Positive + sum.Negative + sum.Failed
	_, sum.MinLatency, sum.MaxLatency, sum.AvgLatency = s.latency.Stats()
	return sum
}

// String renders a one-line summary such as
// "3 scans: 1 pneumonia, 1 normal, 1 failed, avg 420ms"
func (sum Summary) String() string {
	if sum.Analyses == 0 {
		return "no scans yet"
	}
	noun := "scans"
	if sum.Analyses == 1 {
		noun = "scan"
	}
	line := fmt.Sprintf("%d %s: %d pneumonia, %d normal, %d failed",
		sum.Analyses, noun, sum.Positive, sum.Negative, sum.Failed)
	if avg := sum.AvgLatency.Round(time.Millisecond); avg > 0 {
		line += ", avg " + avg.String()
	}
	return line
}
