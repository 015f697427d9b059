// Package guardrails bounds pipeline runs in time
package guardrails

import (
	"context"
	"time"
)

// Timeouts are per run budgets. Zero means no limit beyond the parent's
type Timeouts struct {
	// Run caps one transcript from snapshot read to reconciliation
	Run time.Duration

	// LLM caps Stage 1, which holds the only model call
	LLM time.Duration

	// Snapshot caps the active task read
	Snapshot time.Duration
}

// WithRun bounds a whole run
func WithRun(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Run)
}

// ForLLM bounds Stage 1
func ForLLM(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.LLM)
}

// ForSnapshot bounds the snapshot read
func ForSnapshot(parent context.Context, t Timeouts) (context.Context, context.CancelFunc) {
	return withChildTimeout(parent, t.Snapshot)
}

// Remaining is the time left before ctx's deadline, zero when none or past
func Remaining(ctx context.Context) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d > 0 {
			return d
		}
	}
	return 0
}

// withChildTimeout never extends the parent deadline
func withChildTimeout(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(parent)
	}
	if rem := Remaining(parent); rem > 0 && rem < d {
		return context.WithTimeout(parent, rem)
	}
	return context.WithTimeout(parent, d)
}
