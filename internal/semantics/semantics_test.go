package semantics

import (
	"testing"

	"github.com/oddbank/rpcbankd/internal/rpcwire"
)

func makeReq(id int32) *rpcwire.Request {
	return rpcwire.NewRequest(id, rpcwire.OpDeposit, nil)
}

func TestAtLeastOnceAlwaysDispatches(t *testing.T) {
	f := New(rpcwire.ModeAtLeastOnce)
	balance := int64(0)
	dispatch := func(r *rpcwire.Request) *rpcwire.Response {
		balance += 10
		return rpcwire.NewResponse(r.ID, rpcwire.StatusSuccess, "ok")
	}

	req := makeReq(42)
	f.Apply(req, dispatch)
	f.Apply(req, dispatch)

	if balance != 20 {
		t.Fatalf("balance after two at_least_once dispatches of the same id = %d; want 20", balance)
	}
}

func TestAtMostOnceReplaysVerbatim(t *testing.T) {
	f := New(rpcwire.ModeAtMostOnce)
	calls := 0
	dispatch := func(r *rpcwire.Request) *rpcwire.Response {
		calls++
		return rpcwire.NewResponse(r.ID, rpcwire.StatusSuccess, "applied once")
	}

	req := makeReq(7)
	first, ok1 := f.Apply(req, dispatch)
	second, ok2 := f.Apply(req, dispatch)
	third, ok3 := f.Apply(req, dispatch)

	if !ok1 || !ok2 || !ok3 {
		t.Fatal("at_most_once should always produce a reply")
	}
	if calls != 1 {
		t.Fatalf("dispatch called %d times; want 1", calls)
	}
	if first.Text != second.Text || second.Text != third.Text {
		t.Fatalf("replayed responses differ: %q, %q, %q", first.Text, second.Text, third.Text)
	}
}

func TestMaybeModeNeverReplies(t *testing.T) {
	f := New(rpcwire.ModeMaybe)
	called := false
	dispatch := func(r *rpcwire.Request) *rpcwire.Response {
		called = true
		return rpcwire.NewResponse(r.ID, rpcwire.StatusSuccess, "ok")
	}

	resp, shouldReply := f.Apply(makeReq(1), dispatch)
	if shouldReply || resp != nil {
		t.Fatalf("Apply() in maybe mode = (%v, %v); want (nil, false)", resp, shouldReply)
	}
	if called {
		t.Fatal("dispatch invoked in maybe mode")
	}
}

func TestModeChangeDoesNotClearHistory(t *testing.T) {
	f := New(rpcwire.ModeAtMostOnce)
	calls := 0
	dispatch := func(r *rpcwire.Request) *rpcwire.Response {
		calls++
		return rpcwire.NewResponse(r.ID, rpcwire.StatusSuccess, "cached")
	}

	req := makeReq(5)
	f.Apply(req, dispatch)

	f.SetMode(rpcwire.ModeAtLeastOnce)
	f.SetMode(rpcwire.ModeAtMostOnce)

	f.Apply(req, dispatch)
	if calls != 1 {
		t.Fatalf("dispatch called %d times after mode round-trip; want 1 (history preserved)", calls)
	}
}
