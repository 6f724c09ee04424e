// Payload field layouts are grounded on
// original_source/server-c/src/server/server.cc's `des(request.GetPayload(),
// ...)` calls in each Handle* method — field order copied verbatim, types
// translated per SPEC_FULL.md's codec rules (currency as a length-prefixed
// 3-byte code, amounts as float64 at the wire boundary).
package bank

import (
	"fmt"

	"github.com/oddbank/rpcbankd/internal/codec"
	"github.com/oddbank/rpcbankd/internal/currency"
)

type OpenPayload struct {
	Username string
	Password string
	Balance  float64
	Currency currency.Currency
}

func EncodeOpenPayload(p OpenPayload) []byte {
	w := codec.NewWriter()
	w.PutString(p.Username)
	w.PutString(p.Password)
	w.PutFloat64(p.Balance)
	w.PutString(p.Currency.String())
	return w.Bytes()
}

func DecodeOpenPayload(buf []byte) (OpenPayload, error) {
	r := codec.NewReader(buf)
	var p OpenPayload
	var err error
	if p.Username, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode open username: %w", err)
	}
	if p.Password, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode open password: %w", err)
	}
	if p.Balance, err = r.GetFloat64(); err != nil {
		return p, fmt.Errorf("bank: decode open balance: %w", err)
	}
	code, err := r.GetString()
	if err != nil {
		return p, fmt.Errorf("bank: decode open currency: %w", err)
	}
	if p.Currency, err = currency.FromCode(code); err != nil {
		return p, fmt.Errorf("bank: decode open currency: %w", err)
	}
	return p, nil
}

type ClosePayload struct {
	ID       int32
	Username string
	Password string
}

func EncodeClosePayload(p ClosePayload) []byte {
	w := codec.NewWriter()
	w.PutInt32(p.ID)
	w.PutString(p.Username)
	w.PutString(p.Password)
	return w.Bytes()
}

func DecodeClosePayload(buf []byte) (ClosePayload, error) {
	r := codec.NewReader(buf)
	var p ClosePayload
	var err error
	if p.ID, err = r.GetInt32(); err != nil {
		return p, fmt.Errorf("bank: decode close id: %w", err)
	}
	if p.Username, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode close username: %w", err)
	}
	if p.Password, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode close password: %w", err)
	}
	return p, nil
}

type CheckBalancePayload struct {
	ID       int32
	Username string
	Password string
	Currency currency.Currency
}

func EncodeCheckBalancePayload(p CheckBalancePayload) []byte {
	w := codec.NewWriter()
	w.PutInt32(p.ID)
	w.PutString(p.Username)
	w.PutString(p.Password)
	w.PutString(p.Currency.String())
	return w.Bytes()
}

func DecodeCheckBalancePayload(buf []byte) (CheckBalancePayload, error) {
	r := codec.NewReader(buf)
	var p CheckBalancePayload
	var err error
	if p.ID, err = r.GetInt32(); err != nil {
		return p, fmt.Errorf("bank: decode check_balance id: %w", err)
	}
	if p.Username, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode check_balance username: %w", err)
	}
	if p.Password, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode check_balance password: %w", err)
	}
	code, err := r.GetString()
	if err != nil {
		return p, fmt.Errorf("bank: decode check_balance currency: %w", err)
	}
	if p.Currency, err = currency.FromCode(code); err != nil {
		return p, fmt.Errorf("bank: decode check_balance currency: %w", err)
	}
	return p, nil
}

// AmountPayload is shared by deposit and withdraw: (id, user_name,
// password, currency, amount).
type AmountPayload struct {
	ID       int32
	Username string
	Password string
	Currency currency.Currency
	Amount   float64
}

func EncodeAmountPayload(p AmountPayload) []byte {
	w := codec.NewWriter()
	w.PutInt32(p.ID)
	w.PutString(p.Username)
	w.PutString(p.Password)
	w.PutString(p.Currency.String())
	w.PutFloat64(p.Amount)
	return w.Bytes()
}

func DecodeAmountPayload(buf []byte) (AmountPayload, error) {
	r := codec.NewReader(buf)
	var p AmountPayload
	var err error
	if p.ID, err = r.GetInt32(); err != nil {
		return p, fmt.Errorf("bank: decode amount id: %w", err)
	}
	if p.Username, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode amount username: %w", err)
	}
	if p.Password, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode amount password: %w", err)
	}
	code, err := r.GetString()
	if err != nil {
		return p, fmt.Errorf("bank: decode amount currency: %w", err)
	}
	if p.Currency, err = currency.FromCode(code); err != nil {
		return p, fmt.Errorf("bank: decode amount currency: %w", err)
	}
	if p.Amount, err = r.GetFloat64(); err != nil {
		return p, fmt.Errorf("bank: decode amount value: %w", err)
	}
	return p, nil
}

type TransferPayload struct {
	SenderID   int32
	Username   string
	Password   string
	Currency   currency.Currency
	Amount     float64
	ReceiverID int32
}

func EncodeTransferPayload(p TransferPayload) []byte {
	w := codec.NewWriter()
	w.PutInt32(p.SenderID)
	w.PutString(p.Username)
	w.PutString(p.Password)
	w.PutString(p.Currency.String())
	w.PutFloat64(p.Amount)
	w.PutInt32(p.ReceiverID)
	return w.Bytes()
}

func DecodeTransferPayload(buf []byte) (TransferPayload, error) {
	r := codec.NewReader(buf)
	var p TransferPayload
	var err error
	if p.SenderID, err = r.GetInt32(); err != nil {
		return p, fmt.Errorf("bank: decode transfer sender_id: %w", err)
	}
	if p.Username, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode transfer username: %w", err)
	}
	if p.Password, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode transfer password: %w", err)
	}
	code, err := r.GetString()
	if err != nil {
		return p, fmt.Errorf("bank: decode transfer currency: %w", err)
	}
	if p.Currency, err = currency.FromCode(code); err != nil {
		return p, fmt.Errorf("bank: decode transfer currency: %w", err)
	}
	if p.Amount, err = r.GetFloat64(); err != nil {
		return p, fmt.Errorf("bank: decode transfer amount: %w", err)
	}
	if p.ReceiverID, err = r.GetInt32(); err != nil {
		return p, fmt.Errorf("bank: decode transfer receiver_id: %w", err)
	}
	return p, nil
}

type ExchangePayload struct {
	ID       int32
	Username string
	Password string
	From     currency.Currency
	To       currency.Currency
	Amount   float64
}

func EncodeExchangePayload(p ExchangePayload) []byte {
	w := codec.NewWriter()
	w.PutInt32(p.ID)
	w.PutString(p.Username)
	w.PutString(p.Password)
	w.PutString(p.From.String())
	w.PutString(p.To.String())
	w.PutFloat64(p.Amount)
	return w.Bytes()
}

func DecodeExchangePayload(buf []byte) (ExchangePayload, error) {
	r := codec.NewReader(buf)
	var p ExchangePayload
	var err error
	if p.ID, err = r.GetInt32(); err != nil {
		return p, fmt.Errorf("bank: decode exchange id: %w", err)
	}
	if p.Username, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode exchange username: %w", err)
	}
	if p.Password, err = r.GetString(); err != nil {
		return p, fmt.Errorf("bank: decode exchange password: %w", err)
	}
	fromCode, err := r.GetString()
	if err != nil {
		return p, fmt.Errorf("bank: decode exchange from_currency: %w", err)
	}
	if p.From, err = currency.FromCode(fromCode); err != nil {
		return p, fmt.Errorf("bank: decode exchange from_currency: %w", err)
	}
	toCode, err := r.GetString()
	if err != nil {
		return p, fmt.Errorf("bank: decode exchange to_currency: %w", err)
	}
	if p.To, err = currency.FromCode(toCode); err != nil {
		return p, fmt.Errorf("bank: decode exchange to_currency: %w", err)
	}
	if p.Amount, err = r.GetFloat64(); err != nil {
		return p, fmt.Errorf("bank: decode exchange amount: %w", err)
	}
	return p, nil
}

type MonitorPayload struct {
	DurationMs int64
}

func EncodeMonitorPayload(p MonitorPayload) []byte {
	w := codec.NewWriter()
	w.PutInt64(p.DurationMs)
	return w.Bytes()
}

func DecodeMonitorPayload(buf []byte) (MonitorPayload, error) {
	r := codec.NewReader(buf)
	var p MonitorPayload
	var err error
	if p.DurationMs, err = r.GetInt64(); err != nil {
		return p, fmt.Errorf("bank: decode monitor duration_ms: %w", err)
	}
	return p, nil
}
