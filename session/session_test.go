package session

import (
	"testing"

	"github.com/e7canasta/gst-plugin-zenoh/transport"
	"github.com/e7canasta/gst-plugin-zenoh/transport/loopback"
)

func TestAcquireSharesSessionForSameGroup(t *testing.T) {
	r := NewRegistry()

	h1, err := r.Acquire("g", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire h1: %v", err)
	}
	h2, err := r.Acquire("g", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire h2: %v", err)
	}

	if h1.Session != h2.Session {
		t.Errorf("h1.Session != h2.Session, want same session for same group")
	}
	if got := r.Count("g"); got != 2 {
		t.Errorf("Count(g) = %d, want 2", got)
	}

	h1.Release()
	if got := r.Count("g"); got != 1 {
		t.Errorf("Count(g) after one release = %d, want 1", got)
	}

	h2.Release()
	if got := r.Count("g"); got != 0 {
		t.Errorf("Count(g) after both released = %d, want 0", got)
	}
}

func TestAcquireEmptyGroupNeverShares(t *testing.T) {
	r := NewRegistry()

	h1, err := r.Acquire("", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire h1: %v", err)
	}
	h2, err := r.Acquire("", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire h2: %v", err)
	}

	if h1.Session == h2.Session {
		t.Errorf("empty-group acquires returned the same session, want independent sessions")
	}

	h1.Release()
	h2.Release()
}

func TestReleaseIsIdempotent(t *testing.T) {
	r := NewRegistry()
	h, err := r.Acquire("g", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}

	h.Release()
	h.Release() // must not panic or double-decrement a sibling's refcount

	if got := r.Count("g"); got != 0 {
		t.Errorf("Count(g) after idempotent release = %d, want 0", got)
	}
}

func TestThreeSharersRefcountMatchesScenarioS5(t *testing.T) {
	r := NewRegistry()

	pub1, err := r.Acquire("g", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire pub1: %v", err)
	}
	pub2, err := r.Acquire("g", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire pub2: %v", err)
	}
	sub, err := r.Acquire("g", transport.Config{}, loopback.Open)
	if err != nil {
		t.Fatalf("Acquire sub: %v", err)
	}

	if got := r.Count("g"); got != 3 {
		t.Fatalf("Count(g) = %d, want 3", got)
	}

	sub.Release()
	if got := r.Count("g"); got != 2 {
		t.Errorf("Count(g) after sub release = %d, want 2", got)
	}

	pub1.Release()
	pub2.Release()
	if got := r.Count("g"); got != 0 {
		t.Errorf("Count(g) after all released = %d, want 0", got)
	}
}
