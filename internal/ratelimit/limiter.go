// Package ratelimit provides a token-bucket limiter for outgoing
// exchange requests.
package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

// Limiter enforces a request budget over a period.
type Limiter struct {
	limiter  *rate.Limiter
	requests int
	period   time.Duration

	total   atomic.Int64
	allowed atomic.Int64
	denied  atomic.Int64
}

// New creates a Limiter allowing the specified number of requests per
// period, with a burst of one full period's budget.
func New(requests int, period time.Duration) *Limiter {
	rps := float64(requests) / period.Seconds()
	return &Limiter{
		limiter:  rate.NewLimiter(rate.Limit(rps), requests),
		requests: requests,
		period:   period,
	}
}

// Wait blocks until a request is allowed or the context is cancelled.
func (l *Limiter) Wait(ctx context.Context) error {
	l.total.Add(1)
	if err := l.limiter.Wait(ctx); err != nil {
		l.denied.Add(1)
		return err
	}
	l.allowed.Add(1)
	return nil
}

// Allow reports whether a request is permitted right now.
func (l *Limiter) Allow() bool {
	l.total.Add(1)
	if l.limiter.Allow() {
		l.allowed.Add(1)
		return true
	}
	l.denied.Add(1)
	return false
}

// SetLimit updates the budget to the specified requests per period.
func (l *Limiter) SetLimit(requests int, period time.Duration) {
	l.requests = requests
	l.period = period
	rps := float64(requests) / period.Seconds()
	l.limiter.SetLimit(rate.Limit(rps))
	l.limiter.SetBurst(requests)
}

// Stats is a point-in-time capture of limiter counters.
type Stats struct {
	Total   int64
	Allowed int64
	Denied  int64
}

// Stats returns a snapshot of the limiter counters.
func (l *Limiter) Stats() Stats {
	return Stats{
		Total:   l.total.Load(),
		Allowed: l.allowed.Load(),
		Denied:  l.denied.Load(),
	}
}
