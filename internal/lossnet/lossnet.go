// Package lossnet implements the packet-loss simulator: a probabilistic
// admission gate applied independently to inbound and outbound datagrams,
// grounded on original_source/server-c/src/server/server.h's
// rd_/gen_/GenRandomValue and server.cc's drop checks in StartListening.
package lossnet

import (
	"math/rand"
	"sync/atomic"
)

// lowerBoundMax is the closed range's upper edge. The original's
// intv_end_ is fixed at 100 at construction and never written — preserved
// here as a named constant rather than a field, since spec.md's Open
// Question resolution documents it as present-but-inert.
const lowerBoundMax = 100

// Gate is one independent loss simulator. A server owns two (inbound and
// outbound) so that, as in the original, a single draw cannot correlate
// the two decisions.
type Gate struct {
	rng       *rand.Rand
	threshold int32 // atomic; inclusive lower bound of the keep-range [threshold, 100]
}

// NewGate constructs a Gate seeded independently of any other Gate, with
// an initial threshold (spec.md's intv_start_, default 0 meaning nothing
// is dropped).
func NewGate(seed int64, threshold int) *Gate {
	g := &Gate{rng: rand.New(rand.NewSource(seed))}
	g.SetThreshold(threshold)
	return g
}

// SetThreshold updates the lower bound atomically; callers on the admin
// path may call this concurrently with Admit running on the listener
// goroutine.
func (g *Gate) SetThreshold(t int) {
	if t < 0 {
		t = 0
	}
	if t > lowerBoundMax {
		t = lowerBoundMax
	}
	atomic.StoreInt32(&g.threshold, int32(t))
}

// Threshold returns the current lower bound.
func (g *Gate) Threshold() int {
	return int(atomic.LoadInt32(&g.threshold))
}

// Admit draws a uniform value in [1, 100] and reports whether the
// datagram should be admitted (kept). It mirrors server.cc's check:
// `recv_seed < intv_start_ || recv_seed > intv_end_` drops; here dropping
// means recv_seed < threshold, since the upper bound is fixed at 100 and
// therefore never itself the deciding edge.
//
// The threshold is sampled once per call via an atomic load, matching
// spec.md §5's "sample once per inbound datagram" requirement when Admit
// is called exactly once per datagram.
func (g *Gate) Admit() bool {
	threshold := g.Threshold()
	draw := g.rng.Intn(lowerBoundMax) + 1 // uniform in [1, 100]
	return draw >= threshold && draw <= lowerBoundMax
}
