// Package ratelimit provides the wait-for-slot limiter extractors use to
// self-throttle outbound provider requests.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter combines a sliding-window request budget with a minimum
// inter-request delay. Extractors call Wait before every outbound request;
// it blocks until a slot is free or the context is done.
type Limiter struct {
	mu         sync.Mutex
	timestamps []time.Time
	limit      int
	window     time.Duration
	minDelay   time.Duration
	last       time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New builds a limiter allowing perMinute requests per sliding minute and at
// least minDelay between consecutive requests. A perMinute of 0 disables the
// window and only the delay applies.
func New(perMinute int, minDelay time.Duration) *Limiter {
	return &Limiter{
		limit:    perMinute,
		window:   time.Minute,
		minDelay: minDelay,
		now:      time.Now,
		sleep:    sleepCtx,
	}
}

// Wait blocks until the next request is allowed. Returns the context error
// if the caller is cancelled while waiting.
func (l *Limiter) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		wait := l.nextDelayLocked(now)
		if wait <= 0 {
			l.timestamps = append(l.timestamps, now)
			l.last = now
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		if err := l.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// nextDelayLocked computes how long until a slot frees up. Caller holds mu.
func (l *Limiter) nextDelayLocked(now time.Time) time.Duration {
	var wait time.Duration

	if !l.last.IsZero() {
		if d := l.minDelay - now.Sub(l.last); d > wait {
			wait = d
		}
	}

	if l.limit > 0 {
		cutoff := now.Add(-l.window)
		kept := l.timestamps[:0]
		for _, ts := range l.timestamps {
			if ts.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		l.timestamps = kept

		if len(l.timestamps) >= l.limit {
			if d := l.timestamps[0].Add(l.window).Sub(now); d > wait {
				wait = d
			}
		}
	}

	return wait
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
