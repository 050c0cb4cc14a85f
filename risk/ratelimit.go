package risk

import "time"

// RateLimiter is a sliding-window counter over order submission times.
// The window is in-memory only: after a restart the window starts
// empty, which is slightly more permissive but acceptable because
// restarts are rare and operator-initiated.
//
// The limit is exclusive: with max=3, the third recorded order fills
// the window and the next Allow reports false until a timestamp ages
// out.
type RateLimiter struct {
	window time.Duration
	max    int
	stamps []time.Time
}

func NewRateLimiter(max int, window time.Duration) *RateLimiter {
	return &RateLimiter{window: window, max: max}
}

func (r *RateLimiter) evict(now time.Time) {
	cutoff := now.Add(-r.window)
	i := 0
	for i < len(r.stamps) && !r.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		r.stamps = append(r.stamps[:0], r.stamps[i:]...)
	}
}

// Allow reports whether another order fits in the current window.
func (r *RateLimiter) Allow(now time.Time) bool {
	r.evict(now)
	return len(r.stamps) < r.max
}

// Record appends an order timestamp. Call exactly once per order
// actually submitted, never per signal checked.
func (r *RateLimiter) Record(now time.Time) {
	r.evict(now)
	r.stamps = append(r.stamps, now)
}

// Count returns the number of orders inside the window.
func (r *RateLimiter) Count(now time.Time) int {
	r.evict(now)
	return len(r.stamps)
}
