package blogfront

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(max int, window time.Duration) (*LoginLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := NewLoginLimiter(max, window)
	l.now = clock.now
	return l, clock
}

func TestLoginLimiterBlocksAfterMax(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	ip := "203.0.113.10"

	if !limiter.Check(ip) {
		t.Fatalf("expected first attempt to be allowed")
	}
	limiter.Fail(ip)
	if !limiter.Check(ip) {
		t.Fatalf("expected second attempt to be allowed")
	}
	limiter.Fail(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected third attempt to be blocked")
	}
}

func TestLoginLimiterResetsAfterWindow(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)
	ip := "203.0.113.20"

	limiter.Fail(ip)
	if limiter.Check(ip) {
		t.Fatalf("expected attempt to be blocked")
	}
	if got := limiter.RetryAfter(ip); got != time.Minute {
		t.Fatalf("RetryAfter = %v, want 1m", got)
	}

	clock.advance(61 * time.Second)
	if !limiter.Check(ip) {
		t.Fatalf("expected attempt after window to be allowed")
	}
	if got := limiter.RetryAfter(ip); got != 0 {
		t.Fatalf("RetryAfter = %v, want 0", got)
	}
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)

	limiter.Fail("203.0.113.30")
	if !limiter.Check("203.0.113.31") {
		t.Fatalf("expected second ip to be allowed independently")
	}
	if limiter.Check("203.0.113.30") {
		t.Fatalf("expected first ip to be blocked after max")
	}
}

func TestLoginLimiterSuccessClears(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)
	limiter.Fail("203.0.113.40")
	limiter.Succeed("203.0.113.40")
	if !limiter.Check("203.0.113.40") {
		t.Fatalf("expected success to clear failures")
	}
}

func TestLoginLimiterSweep(t *testing.T) {
	limiter, clock := newTestLimiter(3, time.Minute)
	limiter.Fail("a")
	limiter.Fail("b")
	clock.advance(2 * time.Minute)
	limiter.Sweep()
	if n := len(limiter.failures); n != 0 {
		t.Fatalf("expected sweep to drop expired keys, %d left", n)
	}
}
