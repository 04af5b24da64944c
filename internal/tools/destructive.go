package tools

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DestructiveConfig configures rate limiting and batch-warning detection
// for dangerous/write tool calls. Grounded on the teacher's
// destructive_tracker.go, retargeted from a fixed admin-tool list onto
// this registry's Risk classification (dangerous and write tools).
type DestructiveConfig struct {
	Enabled            bool
	RateLimitPerMinute int
	BatchThreshold     int
	CooldownSeconds    int
}

// DefaultDestructiveConfig returns the teacher's defaults.
func DefaultDestructiveConfig() DestructiveConfig {
	return DestructiveConfig{
		Enabled:            true,
		RateLimitPerMinute: 20,
		BatchThreshold:     5,
		CooldownSeconds:    0,
	}
}

// DestructiveCheck is the result of evaluating whether a risky call
// should proceed.
type DestructiveCheck struct {
	Allowed           bool
	Reason            string
	BatchWarning      string
	CooldownRemaining time.Duration
}

// DestructiveTracker tracks dangerous/write tool calls for rate limiting
// and consecutive-batch warnings.
type DestructiveTracker struct {
	cfg    DestructiveConfig
	logger *slog.Logger

	mu                   sync.Mutex
	callTimes            map[string][]time.Time
	lastTool             string
	consecutiveCount     int
	lastDestructiveCall  time.Time
}

// NewDestructiveTracker builds a tracker, applying defaults for any
// zero-valued field.
func NewDestructiveTracker(cfg DestructiveConfig, logger *slog.Logger) *DestructiveTracker {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.RateLimitPerMinute <= 0 {
		cfg.RateLimitPerMinute = 20
	}
	if cfg.BatchThreshold <= 0 {
		cfg.BatchThreshold = 5
	}
	return &DestructiveTracker{
		cfg:       cfg,
		logger:    logger.With("component", "destructive_tracker"),
		callTimes: make(map[string][]time.Time),
	}
}

// Tracked reports whether name is subject to rate limiting at all —
// only dangerous and write risk tools are tracked.
func (d *DestructiveTracker) Tracked(name string) bool {
	r := riskOf(name)
	return r == RiskDangerous || r == RiskWrite
}

// Check evaluates a call before dispatch. Call RecordCall after a
// successful dispatch to update the tracker's history.
func (d *DestructiveTracker) Check(name string) DestructiveCheck {
	if !d.cfg.Enabled || !d.Tracked(name) {
		return DestructiveCheck{Allowed: true}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()

	if d.cfg.CooldownSeconds > 0 && !d.lastDestructiveCall.IsZero() {
		cooldown := time.Duration(d.cfg.CooldownSeconds) * time.Second
		if elapsed := now.Sub(d.lastDestructiveCall); elapsed < cooldown {
			return DestructiveCheck{
				Allowed:           false,
				Reason:            fmt.Sprintf("cooldown active: %s remaining", (cooldown - elapsed).Round(time.Second)),
				CooldownRemaining: cooldown - elapsed,
			}
		}
	}

	recent := d.recentCalls(name, now)
	if len(recent) >= d.cfg.RateLimitPerMinute {
		return DestructiveCheck{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d calls to %s in the last minute (max %d)", len(recent), name, d.cfg.RateLimitPerMinute),
		}
	}

	result := DestructiveCheck{Allowed: true}
	if name == d.lastTool {
		d.consecutiveCount++
	} else {
		d.lastTool = name
		d.consecutiveCount = 1
	}
	if d.consecutiveCount >= d.cfg.BatchThreshold {
		result.BatchWarning = fmt.Sprintf(
			"[WARNING: %s called %d times consecutively — confirm with the user before continuing]",
			name, d.consecutiveCount)
	}
	return result
}

// RecordCall records a dispatched call for future rate-limit windows.
func (d *DestructiveTracker) RecordCall(name string) {
	if !d.Tracked(name) {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	d.callTimes[name] = append(d.recentCallsLocked(name, now), now)
	d.lastDestructiveCall = now
	d.logger.Debug("tracked call recorded", "tool", name, "consecutive", d.consecutiveCount)
}

func (d *DestructiveTracker) recentCalls(name string, now time.Time) []time.Time {
	return d.recentCallsLocked(name, now)
}

func (d *DestructiveTracker) recentCallsLocked(name string, now time.Time) []time.Time {
	cutoff := now.Add(-time.Minute)
	var recent []time.Time
	for _, t := range d.callTimes[name] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	return recent
}

// Reset clears all tracked state.
func (d *DestructiveTracker) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callTimes = make(map[string][]time.Time)
	d.lastTool = ""
	d.consecutiveCount = 0
	d.lastDestructiveCall = time.Time{}
}
