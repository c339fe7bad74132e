// Package budget implements shared request-budget tracking and gating for
// calls against the remote commerce platform. It monitors the
// X-RateLimit-Remaining and X-RateLimit-Reset response headers so that
// concurrent sync workers never exhaust the platform's request allowance.
package budget

import (
	"time"
)

// Redis keys for budget state storage.
const (
	RedisKeyRequestsRemaining = "ordersync:budget:requests_remaining"
	RedisKeyResetTimestamp    = "ordersync:budget:reset_timestamp"
	RedisKeyLastUpdate        = "ordersync:budget:last_update"
)

// Thresholds for budget decisions.
const (
	// ThresholdCritical blocks all requests when the remaining budget falls
	// below this value. The platform rejects everything past zero, so the
	// run stops before burning the last requests.
	ThresholdCritical = 5

	// ThresholdWarning applies soft throttling when the remaining budget
	// falls below this value.
	ThresholdWarning = 20

	// ThresholdHealthy indicates normal operation. At or above this value
	// no restrictions apply.
	ThresholdHealthy = 50
)

// State represents the current remote platform request budget.
// This state is shared across all sync workers via Redis.
type State struct {
	// RequestsRemaining is the number of requests left in the current
	// budget window, extracted from the X-RateLimit-Remaining header.
	RequestsRemaining int `json:"requests_remaining"`

	// ResetAt is the timestamp when the budget window resets, calculated
	// from the X-RateLimit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is the timestamp when this state was last updated.
	// Used to detect stale state.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy indicates whether the budget is in a healthy state.
	// True when RequestsRemaining >= ThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked because the
// remaining budget is critical.
func (s *State) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < ThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down because the
// remaining budget is in the warning band.
func (s *State) NeedsThrottling() bool {
	return s.RequestsRemaining < ThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the budget window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on current RequestsRemaining.
func (s *State) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= ThresholdHealthy
}
