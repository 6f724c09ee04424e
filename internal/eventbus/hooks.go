package eventbus

import (
	"net"

	"github.com/oddbank/rpcbankd/internal/bank"
	"github.com/oddbank/rpcbankd/internal/domain"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
	"github.com/oddbank/rpcbankd/internal/subscriptions"
)

// notification is the JSON envelope published to NATS for every
// bank.Hooks event, consumed by internal/adminbridge to stream to
// operator-console connections.
type notification struct {
	Kind string `json:"kind"`
	Data any    `json:"data"`
}

// BusHooks adapts a Bus into a bank.Hooks implementation, publishing one
// JSON notification per event. Embed bank.NopHooks semantics are
// unnecessary here since every method is implemented.
type BusHooks struct {
	bus *Bus
}

// NewBusHooks wraps bus. If bus is nil (no NATS configured), every method
// is a safe no-op.
func NewBusHooks(bus *Bus) *BusHooks {
	return &BusHooks{bus: bus}
}

func (h *BusHooks) publish(kind string, data any) {
	if h.bus == nil {
		return
	}
	h.bus.Publish(notification{Kind: kind, Data: data})
}

func (h *BusHooks) OnRequestReceived(addr *net.UDPAddr, req *rpcwire.Request) {
	h.publish("request_received", map[string]any{"addr": addr.String(), "op_code": req.OpCode.String()})
}

func (h *BusHooks) OnResponsePosted(addr *net.UDPAddr, resp *rpcwire.Response) {
	h.publish("response_posted", map[string]any{"addr": addr.String(), "status_code": resp.StatusCode.String()})
}

func (h *BusHooks) OnConsole(text string) {
	h.publish("console", map[string]any{"text": text})
}

func (h *BusHooks) OnAccountCreated(acc *domain.Account) {
	h.publish("account_created", map[string]any{"id": acc.ID, "username": acc.Username})
}

func (h *BusHooks) OnAccountDeleted(acc *domain.Account) {
	h.publish("account_deleted", map[string]any{"id": acc.ID, "username": acc.Username})
}

func (h *BusHooks) OnDeposit(acc *domain.Account) {
	h.publish("deposit", map[string]any{"id": acc.ID})
}

func (h *BusHooks) OnWithdraw(acc *domain.Account) {
	h.publish("withdraw", map[string]any{"id": acc.ID})
}

func (h *BusHooks) OnExchange(acc *domain.Account) {
	h.publish("exchange", map[string]any{"id": acc.ID})
}

func (h *BusHooks) OnTransfer(receiver, sender *domain.Account) {
	h.publish("transfer", map[string]any{"receiver_id": receiver.ID, "sender_id": sender.ID})
}

func (h *BusHooks) OnCallbackCreated(sub *subscriptions.Subscription) {
	h.publish("callback_created", map[string]any{"addr": sub.Addr.String()})
}

func (h *BusHooks) OnCallbackDeleted(sub *subscriptions.Subscription) {
	h.publish("callback_deleted", map[string]any{"addr": sub.Addr.String()})
}

var _ bank.Hooks = (*BusHooks)(nil)
