// Package bank implements the RPC dispatcher and its eight handlers,
// grounded on original_source/server-c/src/server/server.cc's
// Dispatch/Handle* family. The per-view hook surface the C++ original
// splits across HeaderViewInterface/RpcViewInterface/AccountViewInterface/
// ConsoleViewInterface/CallbackViewInterface (server/controller.h) is
// collapsed into a single Hooks interface here — idiomatic Go favors one
// small interface per consumer over a family of single-method interfaces,
// and this repo has exactly one consumer of these notifications (whatever
// bridge subscribes to the dispatcher).
package bank

import (
	"fmt"
	"net"
	"time"

	"github.com/oddbank/rpcbankd/internal/currency"
	"github.com/oddbank/rpcbankd/internal/domain"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
	"github.com/oddbank/rpcbankd/internal/subscriptions"
)

// Hooks receives core-to-UI notifications. Implementations must be
// non-blocking and safe to call from the listener goroutine — spec.md §5
// requires these to "post to a UI queue", not execute synchronously.
// internal/fanout.HookQueue is the reference implementation, wrapping a
// worker pool so a slow observer can never stall dispatch.
type Hooks interface {
	OnRequestReceived(addr *net.UDPAddr, req *rpcwire.Request)
	OnResponsePosted(addr *net.UDPAddr, resp *rpcwire.Response)
	OnConsole(text string)
	OnAccountCreated(acc *domain.Account)
	OnAccountDeleted(acc *domain.Account)
	OnDeposit(acc *domain.Account)
	OnWithdraw(acc *domain.Account)
	OnExchange(acc *domain.Account)
	OnTransfer(receiver, sender *domain.Account)
	OnCallbackCreated(sub *subscriptions.Subscription)
	OnCallbackDeleted(sub *subscriptions.Subscription)
}

// NopHooks is a zero-value Hooks implementation callers can embed to
// implement only the notifications they care about.
type NopHooks struct{}

func (NopHooks) OnRequestReceived(*net.UDPAddr, *rpcwire.Request)  {}
func (NopHooks) OnResponsePosted(*net.UDPAddr, *rpcwire.Response)  {}
func (NopHooks) OnConsole(string)                                  {}
func (NopHooks) OnAccountCreated(*domain.Account)                  {}
func (NopHooks) OnAccountDeleted(*domain.Account)                  {}
func (NopHooks) OnDeposit(*domain.Account)                         {}
func (NopHooks) OnWithdraw(*domain.Account)                        {}
func (NopHooks) OnExchange(*domain.Account)                        {}
func (NopHooks) OnTransfer(receiver, sender *domain.Account)       {}
func (NopHooks) OnCallbackCreated(*subscriptions.Subscription)     {}
func (NopHooks) OnCallbackDeleted(*subscriptions.Subscription)     {}

// FanOutMessage is one callback datagram the dispatcher wants sent to an
// active subscriber. internal/udpserver performs the actual non-blocking
// network send (via internal/fanout) after Dispatch returns — the bank
// package never touches a socket.
type FanOutMessage struct {
	Addr *net.UDPAddr
	Text string
}

// Bank owns the account ledger and the subscription registry. Per
// spec.md §5, a Bank is written exclusively by the single listener
// goroutine — it carries no internal locking.
type Bank struct {
	accounts map[int32]*domain.Account
	nextID   int32
	subs     *subscriptions.Registry
	hooks    Hooks
}

// New constructs an empty Bank reporting notifications to hooks. Pass
// NopHooks{} if no observer is attached.
func New(hooks Hooks) *Bank {
	return &Bank{
		accounts: make(map[int32]*domain.Account),
		subs:     subscriptions.New(),
		hooks:    hooks,
	}
}

// Hooks returns the notification sink this Bank reports to, so
// internal/udpserver can deliver OnRequestReceived/OnResponsePosted
// around the Dispatch call without Bank itself knowing about the wire
// layer.
func (b *Bank) Hooks() Hooks {
	return b.hooks
}

// AccountCount reports how many accounts are currently open, for
// observability.
func (b *Bank) AccountCount() int {
	return len(b.accounts)
}

// ActiveSubscriptionCount reports how many monitor subscriptions are
// currently active, for observability.
func (b *Bank) ActiveSubscriptionCount(now time.Time) int {
	return len(b.subs.Active(now))
}

// Dispatch switches on req.OpCode and invokes the matching handler,
// mirroring server.cc's Dispatch method. from is the inbound datagram's
// source address, needed by monitor to key its subscription and by every
// mutating handler to run the post-success fan-out scan. now is injected
// rather than read via time.Now() so tests can control subscription
// expiry precisely.
func (b *Bank) Dispatch(req *rpcwire.Request, from *net.UDPAddr, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	switch req.OpCode {
	case rpcwire.OpOpen:
		return b.handleOpen(req, now)
	case rpcwire.OpClose:
		return b.handleClose(req, now)
	case rpcwire.OpCheckBalance:
		return b.handleCheckBalance(req)
	case rpcwire.OpDeposit:
		return b.handleDeposit(req, now)
	case rpcwire.OpWithdraw:
		return b.handleWithdraw(req, now)
	case rpcwire.OpTransfer:
		return b.handleTransfer(req, now)
	case rpcwire.OpExchange:
		return b.handleExchange(req, now)
	case rpcwire.OpMonitor:
		return b.handleMonitor(req, from, now)
	default:
		// Unreached: rpcwire.DecodeRequest already rejects unknown op_code
		// tags before a Request reaches Dispatch.
		return nil, nil
	}
}

// authenticate implements the uniform auth chain every handler taking
// (id, user_name, password) applies, per spec.md §4.6: lookup by id, then
// username, then password, byte-exact comparison throughout.
func (b *Bank) authenticate(respID, id int32, username, password string) (*domain.Account, *rpcwire.Response) {
	acc, ok := b.accounts[id]
	if !ok {
		return nil, rpcwire.NewResponse(respID, rpcwire.StatusError,
			fmt.Sprintf("account not found with id: %d", id))
	}
	usernameOK, passwordOK := acc.Authenticate(username, password)
	if !usernameOK {
		return nil, rpcwire.NewResponse(respID, rpcwire.StatusFail, "authentication fails: username not correct")
	}
	if !passwordOK {
		return nil, rpcwire.NewResponse(respID, rpcwire.StatusFail, "authentication fails: password not correct")
	}
	return acc, nil
}

// fanOut builds one FanOutMessage per currently-active subscription,
// leaving expired entries untouched (lazy pruning happens only in
// handleMonitor).
func (b *Bank) fanOut(now time.Time, text string) []FanOutMessage {
	active := b.subs.Active(now)
	if len(active) == 0 {
		return nil
	}
	msgs := make([]FanOutMessage, 0, len(active))
	for _, sub := range active {
		msgs = append(msgs, FanOutMessage{Addr: sub.Addr, Text: text})
	}
	return msgs
}

func (b *Bank) handleOpen(req *rpcwire.Request, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeOpenPayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}

	id := b.nextID
	b.nextID++
	acc := domain.NewAccount(id, p.Username, p.Password)
	acc.Deposit(p.Currency, ToMinor(p.Balance))
	b.accounts[id] = acc

	b.hooks.OnAccountCreated(acc)
	text := "account created: " + acc.String()
	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess, text)
	return resp, b.fanOut(now, text)
}

func (b *Bank) handleClose(req *rpcwire.Request, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeClosePayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	acc, failResp := b.authenticate(req.ID, p.ID, p.Username, p.Password)
	if failResp != nil {
		return failResp, nil
	}

	delete(b.accounts, p.ID)
	b.hooks.OnAccountDeleted(acc)
	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess,
		fmt.Sprintf("successfully remove the account with id: %d", p.ID))
	fanOutText := fmt.Sprintf("account with id: %d deleted", p.ID)
	return resp, b.fanOut(now, fanOutText)
}

func (b *Bank) handleCheckBalance(req *rpcwire.Request) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeCheckBalancePayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	acc, failResp := b.authenticate(req.ID, p.ID, p.Username, p.Password)
	if failResp != nil {
		return failResp, nil
	}

	bal := ToMajor(acc.BalanceOf(p.Currency))
	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess,
		fmt.Sprintf("your current account balance is: %f", bal))
	return resp, nil
}

func (b *Bank) handleDeposit(req *rpcwire.Request, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeAmountPayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	acc, failResp := b.authenticate(req.ID, p.ID, p.Username, p.Password)
	if failResp != nil {
		return failResp, nil
	}

	acc.Deposit(p.Currency, ToMinor(p.Amount))
	newBal := ToMajor(acc.BalanceOf(p.Currency))
	b.hooks.OnDeposit(acc)

	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess,
		fmt.Sprintf("deposit success, current balance of %s is: %f", p.Currency, newBal))
	fanOutText := fmt.Sprintf("successful deposit %f%s to account with id: %d", p.Amount, p.Currency, p.ID)
	return resp, b.fanOut(now, fanOutText)
}

func (b *Bank) handleWithdraw(req *rpcwire.Request, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeAmountPayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	acc, failResp := b.authenticate(req.ID, p.ID, p.Username, p.Password)
	if failResp != nil {
		return failResp, nil
	}

	amount := ToMinor(p.Amount)
	if !acc.Withdraw(p.Currency, amount) {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusFail, "withdraw fails: insufficient fund"), nil
	}

	newBal := ToMajor(acc.BalanceOf(p.Currency))
	b.hooks.OnWithdraw(acc)

	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess,
		fmt.Sprintf("withdraw success, current balance of %s is: %f", p.Currency, newBal))
	fanOutText := fmt.Sprintf("successful withdraw %f%s from account with id: %d", p.Amount, p.Currency, p.ID)
	return resp, b.fanOut(now, fanOutText)
}

// handleTransfer authenticates the sender before looking at the receiver,
// so a bad sender identity is always reported ahead of a missing
// receiver — the tie-break order spec.md §4.6 specifies.
func (b *Bank) handleTransfer(req *rpcwire.Request, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeTransferPayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	sender, failResp := b.authenticate(req.ID, p.SenderID, p.Username, p.Password)
	if failResp != nil {
		return failResp, nil
	}
	receiver, ok := b.accounts[p.ReceiverID]
	if !ok {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError,
			fmt.Sprintf("account not found with id: %d", p.ReceiverID)), nil
	}

	amount := ToMinor(p.Amount)
	if sender.BalanceOf(p.Currency) < amount {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusFail, "withdraw fails: insufficient fund"), nil
	}

	sender.Withdraw(p.Currency, amount)
	receiver.Deposit(p.Currency, amount)
	b.hooks.OnTransfer(receiver, sender)

	text := fmt.Sprintf("transferred %f %s to account with id: %d", p.Amount, p.Currency, p.ReceiverID)
	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess, text)
	return resp, b.fanOut(now, text)
}

func (b *Bank) handleExchange(req *rpcwire.Request, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeExchangePayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	acc, failResp := b.authenticate(req.ID, p.ID, p.Username, p.Password)
	if failResp != nil {
		return failResp, nil
	}

	amountNeeded, err := currency.Convert(p.Amount, p.From, p.To)
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}
	neededMinor := ToMinor(amountNeeded)
	if acc.BalanceOf(p.From) < neededMinor {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusFail, "withdraw fails: insufficient fund"), nil
	}

	acc.Withdraw(p.From, neededMinor)
	acc.Deposit(p.To, ToMinor(p.Amount))
	b.hooks.OnExchange(acc)

	text := "exchange successfully: " + acc.String()
	resp := rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess, text)
	return resp, b.fanOut(now, text)
}

// handleMonitor implements the subscription registration handler,
// delegating the active/expired bookkeeping to internal/subscriptions and
// translating its result into the wire responses spec.md §4.6 specifies.
func (b *Bank) handleMonitor(req *rpcwire.Request, from *net.UDPAddr, now time.Time) (*rpcwire.Response, []FanOutMessage) {
	p, err := DecodeMonitorPayload(req.Payload[:])
	if err != nil {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusError, err.Error()), nil
	}

	alreadyActive, removedExpired, created := b.subs.Monitor(from, time.Duration(p.DurationMs)*time.Millisecond, now)
	if removedExpired != nil {
		b.hooks.OnCallbackDeleted(removedExpired)
	}
	if alreadyActive {
		return rpcwire.NewResponse(req.ID, rpcwire.StatusFail, "monitor window already exists"), nil
	}

	b.hooks.OnConsole("new callback created")
	b.hooks.OnCallbackCreated(created)
	return rpcwire.NewResponse(req.ID, rpcwire.StatusSuccess, "new monitor window created"), nil
}

// ControlPlane is the operator-control surface (spec.md §6): set the
// server-wide invocation semantics, and set the packet-loss simulator's
// lower threshold. internal/udpserver.Server implements this, delegating
// to its internal/semantics.Filter and internal/lossnet.Gate instances —
// Bank itself holds neither, since both are cross-cutting concerns shared
// with the listener loop rather than account-ledger state.
type ControlPlane interface {
	SetMode(rpcwire.Mode)
	SetLossThreshold(t int)
}
