// Package subscriptions implements the time-bounded callback registry,
// grounded on original_source/server-c/src/server/callback.h
// (CallbackData::IsActive) and server.cc's HandleMonitor scan-and-lazily-
// prune loop.
//
// The registry is owned exclusively by the listener goroutine, so it is
// not internally synchronized — the same single-writer discipline as
// internal/semantics.
package subscriptions

import (
	"net"
	"time"
)

// Subscription is one standing request to receive unsolicited callback
// datagrams, active for exactly [Start, Start+Duration).
type Subscription struct {
	Addr     *net.UDPAddr
	Start    time.Time
	Duration time.Duration
}

// IsActive reports whether the subscription covers instant now, mirroring
// CallbackData::IsActive's `now < start_ + dur_`.
func (s *Subscription) IsActive(now time.Time) bool {
	return now.Before(s.Start.Add(s.Duration))
}

// Registry holds at most one subscription per client address. The original
// stores subscriptions in a flat vector and scans it linearly by address;
// since spec.md guarantees at most one active entry per (addr, port), a
// map keyed by the address string is the same behavior with O(1) lookup
// instead of a linear scan — an idiomatic Go substitution for the data
// structure, not a semantic change.
type Registry struct {
	byAddr map[string]*Subscription
}

// New constructs an empty registry.
func New() *Registry {
	return &Registry{byAddr: make(map[string]*Subscription)}
}

// Monitor implements the `monitor` handler's subscription bookkeeping.
// It returns the outcome the caller needs to build a Response:
//   - alreadyActive: an unexpired subscription from addr already exists;
//     no mutation happened, reply should be `fail` "monitor window already
//     exists".
//   - removedExpired: a stale entry from addr was found and removed (the
//     lazy-prune case); the caller should notify the observer hook for it.
//   - created: the new Subscription that was just registered.
func (r *Registry) Monitor(addr *net.UDPAddr, duration time.Duration, now time.Time) (alreadyActive bool, removedExpired *Subscription, created *Subscription) {
	key := addr.String()
	if existing, ok := r.byAddr[key]; ok {
		if existing.IsActive(now) {
			return true, nil, nil
		}
		delete(r.byAddr, key)
		removedExpired = existing
	}

	sub := &Subscription{Addr: addr, Start: now, Duration: duration}
	r.byAddr[key] = sub
	return false, removedExpired, sub
}

// Active returns every currently-active subscription, for fan-out.
// Inactive entries encountered here are intentionally left in place —
// spec.md §4.6 requires fan-out to skip but not prune them; pruning only
// happens lazily inside Monitor.
func (r *Registry) Active(now time.Time) []*Subscription {
	out := make([]*Subscription, 0, len(r.byAddr))
	for _, sub := range r.byAddr {
		if sub.IsActive(now) {
			out = append(out, sub)
		}
	}
	return out
}

// Len reports the total number of tracked entries (active and expired),
// for metrics/observability.
func (r *Registry) Len() int {
	return len(r.byAddr)
}
