// Package semantics implements the at_least_once / at_most_once / maybe
// invocation-semantics state machine, grounded on
// original_source/server-c/src/server/server.cc's Filter method.
//
// A Filter is owned exclusively by the single listener goroutine (spec.md
// §5: "no intra-core parallelism") and is therefore not internally
// synchronized; only the active Mode is swapped from another goroutine,
// so that field alone is atomic.
package semantics

import (
	"sync/atomic"

	"github.com/oddbank/rpcbankd/internal/observability"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
)

// Filter holds the response history at_most_once needs to replay
// duplicate requests verbatim.
type Filter struct {
	mode    int32 // atomic rpcwire.Mode
	history map[int32]*rpcwire.Response
}

// New constructs a Filter starting in the given mode.
func New(mode rpcwire.Mode) *Filter {
	f := &Filter{history: make(map[int32]*rpcwire.Response)}
	f.SetMode(mode)
	return f
}

// SetMode changes the active semantics. Per spec.md §4.5, changing mode
// does not clear history — a later at_most_once hit can still replay a
// response cached while a different mode was active.
func (f *Filter) SetMode(mode rpcwire.Mode) {
	atomic.StoreInt32(&f.mode, int32(mode))
}

// Mode returns the currently active semantics, sampled once per call so
// a single inbound datagram sees one consistent mode even if a
// concurrent SetMode lands mid-dispatch.
func (f *Filter) Mode() rpcwire.Mode {
	return rpcwire.Mode(atomic.LoadInt32(&f.mode))
}

// Dispatch is the handler invocation the Filter gates.
type Dispatch func(req *rpcwire.Request) *rpcwire.Response

// Apply runs req through the currently active semantics and returns the
// response to send, if any. It mirrors server.cc's Filter switch:
//   - at_least_once: always dispatch, never record.
//   - at_most_once: replay the cached response verbatim on a repeated id;
//     otherwise dispatch and cache both request id and response.
//   - maybe: no dispatch, no reply.
func (f *Filter) Apply(req *rpcwire.Request, dispatch Dispatch) (resp *rpcwire.Response, shouldReply bool) {
	switch f.Mode() {
	case rpcwire.ModeAtLeastOnce:
		return dispatch(req), true

	case rpcwire.ModeAtMostOnce:
		if cached, ok := f.history[req.ID]; ok {
			observability.SemanticsCacheHitsTotal.Inc()
			return cached, true
		}
		observability.SemanticsCacheMissesTotal.Inc()
		resp := dispatch(req)
		f.history[req.ID] = resp
		return resp, true

	case rpcwire.ModeMaybe:
		return nil, false

	default:
		// Unreached in practice: SetMode does not validate its argument,
		// but its callers only pass the three known values. Treat an
		// unknown mode the same as maybe rather than panicking the listener.
		return nil, false
	}
}
