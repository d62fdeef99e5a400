package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"FinSight/internal/domain/models"
)

// UsageLimiter meters calls against a remote API with daily and monthly
// caps plus a minimum spacing between requests. The clock is injectable
// for tests.
type UsageLimiter struct {
	mu sync.Mutex

	dailyLimit   int
	monthlyLimit int
	minInterval  time.Duration

	requestsToday int
	requestsMonth int
	currentDay    string
	currentMonth  string
	lastRequest   time.Time

	now func() time.Time
}

// NewUsageLimiter creates a limiter with the given caps.
func NewUsageLimiter(dailyLimit, monthlyLimit int, minInterval time.Duration) *UsageLimiter {
	l := &UsageLimiter{
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		minInterval:  minInterval,
		now:          time.Now,
	}
	t := l.now()
	l.currentDay = t.Format("2006-01-02")
	l.currentMonth = t.Format("2006-01")
	return l
}

// WithClock overrides the limiter's clock.
func (l *UsageLimiter) WithClock(now func() time.Time) *UsageLimiter {
	l.now = now
	return l
}

// Acquire checks the caps and returns how long the caller must wait to
// honor the minimum request spacing. A non-nil error means a cap is
// exhausted and no request may be made.
func (l *UsageLimiter) Acquire() (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	l.rollover(t)

	if l.requestsToday >= l.dailyLimit {
		return 0, fmt.Errorf("daily limit reached (%d requests)", l.dailyLimit)
	}
	if l.requestsMonth >= l.monthlyLimit {
		return 0, fmt.Errorf("monthly limit reached (%d requests)", l.monthlyLimit)
	}

	if !l.lastRequest.IsZero() {
		if since := t.Sub(l.lastRequest); since < l.minInterval {
			return l.minInterval - since, nil
		}
	}
	return 0, nil
}

// Commit records a successful request. Failed requests are deliberately
// not counted against the caps.
func (l *UsageLimiter) Commit() {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	l.rollover(t)
	l.requestsToday++
	l.requestsMonth++
	l.lastRequest = t
}

// Stats snapshots consumption against the caps.
func (l *UsageLimiter) Stats() models.UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollover(l.now())

	pct := 0.0
	if l.dailyLimit > 0 {
		pct = float64(l.requestsToday) / float64(l.dailyLimit) * 100
	}
	return models.UsageStats{
		RequestsToday:  l.requestsToday,
		RequestsMonth:  l.requestsMonth,
		DailyLimit:     l.dailyLimit,
		MonthlyLimit:   l.monthlyLimit,
		DailyRemaining: l.dailyLimit - l.requestsToday,
		MonthRemaining: l.monthlyLimit - l.requestsMonth,
		DailyUsedPct:   pct,
	}
}

// Reset clears all counters.
func (l *UsageLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.now()
	l.requestsToday = 0
	l.requestsMonth = 0
	l.currentDay = t.Format("2006-01-02")
	l.currentMonth = t.Format("2006-01")
	l.lastRequest = time.Time{}
}

// rollover resets counters when the day or month changes. Caller holds mu.
func (l *UsageLimiter) rollover(t time.Time) {
	day := t.Format("2006-01-02")
	month := t.Format("2006-01")
	if day != l.currentDay {
		l.requestsToday = 0
		l.currentDay = day
	}
	if month != l.currentMonth {
		l.requestsMonth = 0
		l.currentMonth = month
	}
}
