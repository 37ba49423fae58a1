package validation

import (
	"testing"
	"time"
)

func TestRateLimitRejectsWithinWindow(t *testing.T) {
	v := NewRateLimitValidator(time.Second)
	now := time.Now()

	if res := v.Validate(Context{Peer: "p1", Timestamp: now}); !res.Valid {
		t.Fatalf("expected first message to pass, got %+v", res)
	}

	res := v.Validate(Context{Peer: "p1", Timestamp: now.Add(100 * time.Millisecond)})
	if res.Valid {
		t.Fatal("expected a second message inside the window to be rejected")
	}
	if res.Code != CodeResourceExhausted {
		t.Fatalf("expected CodeResourceExhausted, got %v", res.Code)
	}
}

func TestRateLimitAllowsAfterWindow(t *testing.T) {
	v := NewRateLimitValidator(50 * time.Millisecond)
	now := time.Now()

	v.Validate(Context{Peer: "p1", Timestamp: now})
	res := v.Validate(Context{Peer: "p1", Timestamp: now.Add(60 * time.Millisecond)})
	if !res.Valid {
		t.Fatalf("expected message past the window to pass, got %+v", res)
	}
}

func TestRateLimitFailureDoesNotResetWindow(t *testing.T) {
	v := NewRateLimitValidator(time.Second)
	now := time.Now()

	v.Validate(Context{Peer: "p1", Timestamp: now})
	v.Validate(Context{Peer: "p1", Timestamp: now.Add(100 * time.Millisecond)}) // rejected, must not move the window
	res := v.Validate(Context{Peer: "p1", Timestamp: now.Add(200 * time.Millisecond)})

	if res.Valid {
		t.Fatal("a rejected attempt must not reset the rate-limit window")
	}
}

func TestRateLimitIsPerPeer(t *testing.T) {
	v := NewRateLimitValidator(time.Second)
	now := time.Now()

	v.Validate(Context{Peer: "p1", Timestamp: now})
	res := v.Validate(Context{Peer: "p2", Timestamp: now})
	if !res.Valid {
		t.Fatalf("expected an unrelated peer to be unaffected, got %+v", res)
	}
}
