// Package quota tracks per-user generation budgets over fixed time
// windows. The server consumes one unit per study-set generation request.
package quota

import (
	"context"
	"errors"
	"time"
)

// ErrExceeded is returned by Increment when the user has no budget left
// in the current window.
var ErrExceeded = errors.New("quota exceeded")

// Status describes a user's budget in the current window.
type Status struct {
	Used      int       `json:"used"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
}

// Store tracks fixed-window usage counters keyed by user id.
type Store interface {
	// Check reports current usage without consuming budget.
	Check(ctx context.Context, userID string) (Status, error)
	// Increment consumes one unit of budget. It returns ErrExceeded
	// (with the current status) when the window limit is reached.
	Increment(ctx context.Context, userID string) (Status, error)
	// Reset clears the user's counter for the current window.
	Reset(ctx context.Context, userID string) error
}

// Config holds quota limits shared by all store implementations.
type Config struct {
	Limit  int           // Requests allowed per window
	Window time.Duration // Window length (fixed windows aligned to epoch)
}

func (c Config) withDefaults() Config {
	if c.Limit <= 0 {
		c.Limit = 20
	}
	if c.Window <= 0 {
		c.Window = 24 * time.Hour
	}
	return c
}

// windowStart returns the start of the fixed window containing now.
func (c Config) windowStart(now time.Time) time.Time {
	return now.Truncate(c.Window)
}

func (c Config) status(used int, now time.Time) Status {
	remaining := c.Limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Status{
		Used:      used,
		Limit:     c.Limit,
		Remaining: remaining,
		ResetAt:   c.windowStart(now).Add(c.Window),
	}
}
