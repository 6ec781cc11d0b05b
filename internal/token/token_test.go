package token

import (
	"testing"
	"time"
)

func TestReserveAvoidsCollisions(t *testing.T) {
	a := NewArena(0)
	defer a.Close()

	seen := make(map[uint32]struct{})
	for i := 0; i < 1000; i++ {
		tok := a.Reserve()
		if _, dup := seen[tok]; dup {
			t.Fatalf("duplicate token %d reserved", tok)
		}
		seen[tok] = struct{}{}
		if !a.InUse(tok) {
			t.Fatalf("token %d should be in use after Reserve", tok)
		}
	}
}

func TestReleaseFreesToken(t *testing.T) {
	a := NewArena(0)
	defer a.Close()

	tok := a.Reserve()
	a.Release(tok)

	if a.InUse(tok) {
		t.Fatalf("token %d still in use after Release", tok)
	}
}

func TestExpiryReapsStaleReservations(t *testing.T) {
	a := NewArena(20 * time.Millisecond)
	defer a.Close()

	tok := a.Reserve()
	time.Sleep(100 * time.Millisecond)

	if a.InUse(tok) {
		t.Fatalf("token %d should have expired", tok)
	}
}
