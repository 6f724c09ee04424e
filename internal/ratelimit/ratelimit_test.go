package ratelimit

import (
	"net"
	"testing"
	"time"
)

func addr(port int) *net.UDPAddr {
	return &net.UDPAddr{IP: net.ParseIP("10.0.0.1"), Port: port}
}

func TestAllowWithinBurst(t *testing.T) {
	p := NewPerAddress(1, 5)
	for i := 0; i < 5; i++ {
		if !p.Allow(addr(1000)) {
			t.Fatalf("Allow() call %d rejected within burst of 5", i)
		}
	}
}

func TestRejectsBeyondBurst(t *testing.T) {
	p := NewPerAddress(1, 2)
	p.Allow(addr(1000))
	p.Allow(addr(1000))
	if p.Allow(addr(1000)) {
		t.Fatal("Allow() accepted a third call beyond a burst of 2 with low rps")
	}
}

func TestSeparateAddressesHaveIndependentBuckets(t *testing.T) {
	p := NewPerAddress(1, 1)
	p.Allow(addr(1000)) // exhausts addr 1000's single token

	other := &net.UDPAddr{IP: net.ParseIP("10.0.0.2"), Port: 1000}
	if !p.Allow(other) {
		t.Fatal("a different source address should have its own bucket")
	}
}

func TestEvictIdleDropsStaleBuckets(t *testing.T) {
	p := NewPerAddress(10, 10)
	p.Allow(addr(1000))
	if p.Tracked() != 1 {
		t.Fatalf("Tracked() = %d; want 1 before eviction", p.Tracked())
	}

	p.mu.Lock()
	for _, b := range p.limiters {
		b.lastSeen = time.Now().Add(-2 * idleTTL)
	}
	p.evictIdle(time.Now())
	p.mu.Unlock()

	if p.Tracked() != 0 {
		t.Fatalf("Tracked() = %d; want 0 after evicting a bucket idle beyond idleTTL", p.Tracked())
	}
}

func TestTrackedCountsDistinctAddresses(t *testing.T) {
	p := NewPerAddress(10, 10)
	p.Allow(addr(1000))
	p.Allow(addr(2000)) // same IP, different port: same bucket key (IP only)
	if p.Tracked() != 1 {
		t.Fatalf("Tracked() = %d; want 1 (bucket keyed by IP, not port)", p.Tracked())
	}
}
