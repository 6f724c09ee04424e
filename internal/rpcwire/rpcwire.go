// Package rpcwire implements the Request/Response envelope and its enum
// vocabulary (op_code, status_code, mode), grounded on
// original_source/server-c/src/rpc/protocol.h, request.h, response.h.
package rpcwire

import (
	"fmt"

	"github.com/oddbank/rpcbankd/internal/codec"
)

// DatagramSize is the fixed total size of every inbound/outbound datagram:
// the 200-byte header margin plus the 1200-byte payload tail (spec.md §6).
const DatagramSize = 1400

// PayloadSize is the size of the fixed payload region carried inside every
// Request and Response.
const PayloadSize = 1200

// OpCode identifies which handler a Request targets.
type OpCode int32

const (
	OpOpen OpCode = iota + 1
	OpClose
	OpCheckBalance
	OpDeposit
	OpWithdraw
	OpTransfer
	OpExchange
	OpMonitor
)

func (o OpCode) String() string {
	switch o {
	case OpOpen:
		return "open"
	case OpClose:
		return "close"
	case OpCheckBalance:
		return "check_balance"
	case OpDeposit:
		return "deposit"
	case OpWithdraw:
		return "withdraw"
	case OpTransfer:
		return "transfer"
	case OpExchange:
		return "exchange"
	case OpMonitor:
		return "monitor"
	default:
		return "unknown"
	}
}

// Valid reports whether o is one of the eight known operations.
func (o OpCode) Valid() bool {
	return o >= OpOpen && o <= OpMonitor
}

// StatusCode classifies a Response.
type StatusCode int32

const (
	StatusSuccess StatusCode = iota + 1
	StatusFail
	StatusError
	StatusCallback
)

func (s StatusCode) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusFail:
		return "fail"
	case StatusError:
		return "error"
	case StatusCallback:
		return "callback"
	default:
		return "unknown"
	}
}

// Valid reports whether s is one of the four known status codes.
func (s StatusCode) Valid() bool {
	return s >= StatusSuccess && s <= StatusCallback
}

// Mode is the server-wide invocation semantics selector.
type Mode int32

const (
	ModeAtLeastOnce Mode = iota + 1
	ModeAtMostOnce
	ModeMaybe
)

func (m Mode) String() string {
	switch m {
	case ModeAtLeastOnce:
		return "at_least_once"
	case ModeAtMostOnce:
		return "at_most_once"
	case ModeMaybe:
		return "maybe"
	default:
		return "unknown"
	}
}

// Valid reports whether m is one of the three known modes.
func (m Mode) Valid() bool {
	return m >= ModeAtLeastOnce && m <= ModeMaybe
}

// Request is the fixed-layout inbound envelope: id, op_code, and a
// 1200-byte payload region whose content is interpreted per op_code (see
// internal/bank). Mirrors request.h's Request class.
type Request struct {
	ID      int32
	OpCode  OpCode
	Payload [PayloadSize]byte
}

// NewRequest builds a Request copying at most PayloadSize-1 bytes of
// payload and leaving the remainder zeroed, mirroring the original's
// "copy 1199 bytes, null-terminate position 1199" construction.
func NewRequest(id int32, op OpCode, payload []byte) *Request {
	r := &Request{ID: id, OpCode: op}
	n := len(payload)
	if n > PayloadSize-1 {
		n = PayloadSize - 1
	}
	copy(r.Payload[:n], payload[:n])
	return r
}

// Encode writes the Request in wire format: id (i32) | op_code (i32) |
// payload (1200 bytes).
func (r *Request) Encode() []byte {
	w := codec.NewWriter()
	w.PutInt32(r.ID)
	w.PutInt32(int32(r.OpCode))
	w.PutBytes(r.Payload[:])
	return w.Bytes()
}

// DecodeRequest parses a wire-format Request, validating the op_code tag.
func DecodeRequest(buf []byte) (*Request, error) {
	r := codec.NewReader(buf)
	id, err := r.GetInt32()
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode request id: %w", err)
	}
	opRaw, err := r.GetInt32()
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode request op_code: %w", err)
	}
	op := OpCode(opRaw)
	if !op.Valid() {
		return nil, codec.Validate("op_code", opRaw)
	}
	payload, err := r.GetFixed(PayloadSize)
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode request payload: %w", err)
	}
	req := &Request{ID: id, OpCode: op}
	copy(req.Payload[:], payload)
	return req, nil
}

// Response is the fixed-layout outbound envelope: id (echoed), status_code,
// and a 1200-byte payload region whose first 8 bytes are a text length
// prefix. Mirrors response.h's Response class.
type Response struct {
	ID         int32
	StatusCode StatusCode
	Text       string
}

// NewResponse builds a Response with the given id, status, and message
// text, truncating text to fit the payload region if necessary (mirrors
// `Response::SetPayload`'s copy-then-null-terminate behavior).
func NewResponse(id int32, status StatusCode, text string) *Response {
	const maxText = PayloadSize - 8
	if len(text) > maxText {
		text = text[:maxText]
	}
	return &Response{ID: id, StatusCode: status, Text: text}
}

// Encode writes the Response in wire format: id (i32) | status_code (i32)
// | payload (1200 bytes, leading 8-byte length prefix + text, zero-padded).
func (resp *Response) Encode() []byte {
	w := codec.NewWriter()
	w.PutInt32(resp.ID)
	w.PutInt32(int32(resp.StatusCode))

	payload := codec.NewWriter()
	payload.PutString(resp.Text)
	padded := make([]byte, PayloadSize)
	copy(padded, payload.Bytes())
	w.PutBytes(padded)
	return w.Bytes()
}

// DecodeResponse parses a wire-format Response, validating the
// status_code tag.
func DecodeResponse(buf []byte) (*Response, error) {
	r := codec.NewReader(buf)
	id, err := r.GetInt32()
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode response id: %w", err)
	}
	statusRaw, err := r.GetInt32()
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode response status_code: %w", err)
	}
	status := StatusCode(statusRaw)
	if !status.Valid() {
		return nil, codec.Validate("status_code", statusRaw)
	}
	payload, err := r.GetFixed(PayloadSize)
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode response payload: %w", err)
	}
	pr := codec.NewReader(payload)
	text, err := pr.GetString()
	if err != nil {
		return nil, fmt.Errorf("rpcwire: decode response text: %w", err)
	}
	return &Response{ID: id, StatusCode: status, Text: text}, nil
}
