package server

import (
	"sync"
	"time"
)

// RateLimiter implements sliding window rate limiting keyed by client
// identity (the remote IP). Each client's timestamps are pruned against the
// window on every check, so bursts at window boundaries cannot double the
// allowance.
type RateLimiter struct {
	maxRequests    int
	windowDuration time.Duration

	mutex   sync.Mutex
	clients map[string][]time.Time
}

// NewRateLimiter creates a rate limiter allowing maxRequests per window.
func NewRateLimiter(maxRequests int, windowDuration time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests:    maxRequests,
		windowDuration: windowDuration,
		clients:        make(map[string][]time.Time),
	}
}

// Allow checks whether a request from the given client fits the window. An
// allowed request is recorded; a rejected one is not.
func (rl *RateLimiter) Allow(client string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := time.Now()
	timestamps := rl.pruneLocked(client, now)

	if len(timestamps) >= rl.maxRequests {
		return false
	}

	rl.clients[client] = append(timestamps, now)
	return true
}

// Count returns the requests currently inside the client's window.
func (rl *RateLimiter) Count(client string) int {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()
	return len(rl.pruneLocked(client, time.Now()))
}

// pruneLocked drops timestamps older than the window. Callers hold the
// mutex.
func (rl *RateLimiter) pruneLocked(client string, now time.Time) []time.Time {
	cutoff := now.Add(-rl.windowDuration)
	timestamps := rl.clients[client]

	keep := 0
	for keep < len(timestamps) && !timestamps[keep].After(cutoff) {
		keep++
	}
	if keep > 0 {
		timestamps = append([]time.Time(nil), timestamps[keep:]...)
		if len(timestamps) == 0 {
			delete(rl.clients, client)
		} else {
			rl.clients[client] = timestamps
		}
	}
	return timestamps
}
