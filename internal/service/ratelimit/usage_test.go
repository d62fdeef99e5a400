package ratelimit

import (
	"strings"
	"testing"
	"time"
)

func TestUsageLimiterDailyCap(t *testing.T) {
	l := NewUsageLimiter(2, 10, 0)

	for i := 0; i < 2; i++ {
		if _, err := l.Acquire(); err != nil {
			t.Fatalf("acquire %d: %v", i, err)
		}
		l.Commit()
	}

	_, err := l.Acquire()
	if err == nil {
		t.Fatalf("expected daily cap error")
	}
	if !strings.Contains(err.Error(), "daily limit") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUsageLimiterMonthlyCap(t *testing.T) {
	l := NewUsageLimiter(10, 1, 0)
	if _, err := l.Acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	l.Commit()

	_, err := l.Acquire()
	if err == nil || !strings.Contains(err.Error(), "monthly limit") {
		t.Fatalf("expected monthly cap error, got: %v", err)
	}
}

func TestUsageLimiterSpacing(t *testing.T) {
	clock := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	l := NewUsageLimiter(10, 10, time.Second).WithClock(func() time.Time { return clock })

	if wait, err := l.Acquire(); err != nil || wait != 0 {
		t.Fatalf("first acquire should be free, wait=%v err=%v", wait, err)
	}
	l.Commit()

	clock = clock.Add(300 * time.Millisecond)
	wait, err := l.Acquire()
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if wait != 700*time.Millisecond {
		t.Fatalf("expected 700ms wait, got %v", wait)
	}

	clock = clock.Add(time.Second)
	if wait, _ := l.Acquire(); wait != 0 {
		t.Fatalf("expected no wait after interval, got %v", wait)
	}
}

func TestUsageLimiterDayRollover(t *testing.T) {
	clock := time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC)
	l := NewUsageLimiter(1, 10, 0).WithClock(func() time.Time { return clock })

	if _, err := l.Acquire(); err != nil {
		t.Fatalf("acquire: %v", err)
	}
	l.Commit()
	if _, err := l.Acquire(); err == nil {
		t.Fatalf("expected cap hit")
	}

	clock = clock.Add(2 * time.Minute) // crosses midnight
	if _, err := l.Acquire(); err != nil {
		t.Fatalf("expected day rollover to reset the counter: %v", err)
	}
	st := l.Stats()
	if st.RequestsToday != 0 {
		t.Fatalf("daily counter should reset, got %d", st.RequestsToday)
	}
	if st.RequestsMonth != 1 {
		t.Fatalf("monthly counter should survive the day rollover, got %d", st.RequestsMonth)
	}
}

func TestUsageLimiterMonthRollover(t *testing.T) {
	clock := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	l := NewUsageLimiter(10, 1, 0).WithClock(func() time.Time { return clock })
	l.Commit()

	clock = time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC)
	st := l.Stats()
	if st.RequestsMonth != 0 {
		t.Fatalf("monthly counter should reset, got %d", st.RequestsMonth)
	}
}

func TestUsageLimiterStats(t *testing.T) {
	l := NewUsageLimiter(4, 100, 0)
	l.Commit()

	st := l.Stats()
	if st.RequestsToday != 1 || st.DailyRemaining != 3 {
		t.Fatalf("unexpected stats: %+v", st)
	}
	if st.DailyUsedPct != 25 {
		t.Fatalf("expected 25%% used, got %v", st.DailyUsedPct)
	}
}

func TestUsageLimiterReset(t *testing.T) {
	l := NewUsageLimiter(1, 1, 0)
	l.Commit()
	l.Reset()
	if _, err := l.Acquire(); err != nil {
		t.Fatalf("expected reset to clear caps: %v", err)
	}
}
