// Package ratelimit guards the listener from a flooding source address,
// independent of the spec's packet-loss simulator. Grounded on the
// teacher's RateLimiter concept (server.go's rateLimiter.CheckLimit gate
// applied per inbound message), re-expressed with golang.org/x/time/rate
// instead of a hand-rolled counter map — x/time/rate already solves
// exactly this problem, and golang.org/x/time is a direct teacher
// dependency (ws/go.mod), not an introduced one.
package ratelimit

import (
	"net"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// idleTTL is how long a source address's bucket survives without a new
// datagram before it is eligible for eviction.
const idleTTL = 10 * time.Minute

// sweepInterval is how many Allow calls pass between eviction sweeps. A
// sweep is O(len(limiters)), so it runs occasionally rather than on every
// call.
const sweepInterval = 1024

// bucket pairs a limiter with the last time it was used, so a sweep can
// tell an idle address from an active one.
type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// PerAddress tracks one token bucket per source address, evicting idle
// buckets lazily on access (every sweepInterval calls) so memory doesn't
// grow unbounded under a churn of distinct attacker addresses.
type PerAddress struct {
	mu       sync.Mutex
	limiters map[string]*bucket
	rps      rate.Limit
	burst    int
	calls    int
}

// NewPerAddress builds a limiter keyed by source address, each address
// getting its own rps-rate, burst-sized token bucket.
func NewPerAddress(rps int, burst int) *PerAddress {
	return &PerAddress{
		limiters: make(map[string]*bucket),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether a datagram from addr should be admitted. It is
// safe to call from the listener goroutine only (no concurrent callers
// in this server's design), but uses a mutex anyway since rate.Limiter
// construction is not itself safe to race on first-use.
func (p *PerAddress) Allow(addr *net.UDPAddr) bool {
	key := addr.IP.String()
	now := time.Now()

	p.mu.Lock()
	b, ok := p.limiters[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(p.rps, p.burst)}
		p.limiters[key] = b
	}
	b.lastSeen = now

	p.calls++
	if p.calls >= sweepInterval {
		p.calls = 0
		p.evictIdle(now)
	}
	limiter := b.limiter
	p.mu.Unlock()

	return limiter.Allow()
}

// evictIdle drops every bucket not seen within idleTTL. Caller must hold
// p.mu.
func (p *PerAddress) evictIdle(now time.Time) {
	for key, b := range p.limiters {
		if now.Sub(b.lastSeen) > idleTTL {
			delete(p.limiters, key)
		}
	}
}

// Tracked reports how many distinct addresses currently have a bucket,
// for observability.
func (p *PerAddress) Tracked() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.limiters)
}
