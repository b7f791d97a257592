package mkmtrees

import (
	"testing"
	"time"
)

func fakeClock(l *LoginLimiter) *time.Time {
	t := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return t }
	return &t
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter := NewLoginLimiter(2, time.Minute)
	ip := "203.0.113.10"

	if !limiter.Check(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	limiter.Record(ip)
	if !limiter.Check(ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterCheckDoesNotCount(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	ip := "203.0.113.11"

	for i := 0; i < 5; i++ {
		if !limiter.Check(ip) {
			t.Fatalf("check %d: expected allowed without recorded failures", i+1)
		}
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	clock := fakeClock(limiter)
	ip := "203.0.113.20"

	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected attempt inside window to be blocked")
	}

	*clock = clock.Add(61 * time.Second)
	if !limiter.Check(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginLimiterSlidingWindow(t *testing.T) {
	limiter := NewLoginLimiter(2, time.Minute)
	clock := fakeClock(limiter)
	ip := "203.0.113.21"

	limiter.Record(ip)
	*clock = clock.Add(40 * time.Second)
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected block with two failures in window")
	}

	// The first failure expires; the second is still inside the window.
	*clock = clock.Add(30 * time.Second)
	if !limiter.Check(ip) {
		t.Fatalf("expected allowed once the oldest failure expired")
	}
	limiter.Record(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected block again after another failure")
	}
}

func TestLoginLimiterResetOnSuccess(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)
	ip := "203.0.113.25"

	limiter.Record(ip)
	limiter.Reset(ip)
	if !limiter.Check(ip) {
		t.Fatalf("expected reset to clear failures")
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter := NewLoginLimiter(1, time.Minute)

	limiter.Record("203.0.113.30")
	if !limiter.Check("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Check("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}
