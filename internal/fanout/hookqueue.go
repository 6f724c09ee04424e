package fanout

import (
	"net"

	"github.com/oddbank/rpcbankd/internal/bank"
	"github.com/oddbank/rpcbankd/internal/domain"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
	"github.com/oddbank/rpcbankd/internal/subscriptions"
)

// HookQueue adapts a synchronous bank.Hooks implementation into one that
// is safe to call from the listener goroutine, by posting every
// notification onto a Pool instead of running it inline — spec.md §5's
// "post to a UI queue, not execute synchronously" requirement for the
// observer/controller boundary.
type HookQueue struct {
	pool *Pool
	next bank.Hooks
}

// NewHookQueue wraps next so every call is queued onto pool instead of
// running on the caller's goroutine.
func NewHookQueue(pool *Pool, next bank.Hooks) *HookQueue {
	return &HookQueue{pool: pool, next: next}
}

func (h *HookQueue) OnRequestReceived(addr *net.UDPAddr, req *rpcwire.Request) {
	h.pool.Submit(func() { h.next.OnRequestReceived(addr, req) })
}

func (h *HookQueue) OnResponsePosted(addr *net.UDPAddr, resp *rpcwire.Response) {
	h.pool.Submit(func() { h.next.OnResponsePosted(addr, resp) })
}

func (h *HookQueue) OnConsole(text string) {
	h.pool.Submit(func() { h.next.OnConsole(text) })
}

func (h *HookQueue) OnAccountCreated(acc *domain.Account) {
	h.pool.Submit(func() { h.next.OnAccountCreated(acc) })
}

func (h *HookQueue) OnAccountDeleted(acc *domain.Account) {
	h.pool.Submit(func() { h.next.OnAccountDeleted(acc) })
}

func (h *HookQueue) OnDeposit(acc *domain.Account) {
	h.pool.Submit(func() { h.next.OnDeposit(acc) })
}

func (h *HookQueue) OnWithdraw(acc *domain.Account) {
	h.pool.Submit(func() { h.next.OnWithdraw(acc) })
}

func (h *HookQueue) OnExchange(acc *domain.Account) {
	h.pool.Submit(func() { h.next.OnExchange(acc) })
}

func (h *HookQueue) OnTransfer(receiver, sender *domain.Account) {
	h.pool.Submit(func() { h.next.OnTransfer(receiver, sender) })
}

func (h *HookQueue) OnCallbackCreated(sub *subscriptions.Subscription) {
	h.pool.Submit(func() { h.next.OnCallbackCreated(sub) })
}

func (h *HookQueue) OnCallbackDeleted(sub *subscriptions.Subscription) {
	h.pool.Submit(func() { h.next.OnCallbackDeleted(sub) })
}
