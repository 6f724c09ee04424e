package rpcwire

import "testing"

func TestRequestRoundTrip(t *testing.T) {
	req := NewRequest(7, OpDeposit, []byte("hello"))
	buf := req.Encode()
	if len(buf) != 4+4+PayloadSize {
		t.Fatalf("Encode() length = %d; want %d", len(buf), 4+4+PayloadSize)
	}
	got, err := DecodeRequest(buf)
	if err != nil {
		t.Fatalf("DecodeRequest() error = %v", err)
	}
	if got.ID != 7 || got.OpCode != OpDeposit {
		t.Fatalf("DecodeRequest() = %+v; want ID=7 OpCode=OpDeposit", got)
	}
	if string(got.Payload[:5]) != "hello" {
		t.Fatalf("payload = %q; want prefix 'hello'", got.Payload[:5])
	}
}

func TestRequestRejectsUnknownOpCode(t *testing.T) {
	req := NewRequest(1, OpCode(99), nil)
	buf := req.Encode()
	if _, err := DecodeRequest(buf); err == nil {
		t.Fatal("DecodeRequest() with unknown op_code returned nil error")
	}
}

func TestResponseRoundTrip(t *testing.T) {
	resp := NewResponse(9, StatusSuccess, "account created: Account{id=0, username=alice}")
	buf := resp.Encode()
	got, err := DecodeResponse(buf)
	if err != nil {
		t.Fatalf("DecodeResponse() error = %v", err)
	}
	if got.ID != 9 || got.StatusCode != StatusSuccess {
		t.Fatalf("DecodeResponse() = %+v; want ID=9 StatusCode=StatusSuccess", got)
	}
	if got.Text != resp.Text {
		t.Fatalf("DecodeResponse() text = %q; want %q", got.Text, resp.Text)
	}
}

func TestResponseRejectsUnknownStatusCode(t *testing.T) {
	resp := NewResponse(1, StatusCode(42), "x")
	buf := resp.Encode()
	if _, err := DecodeResponse(buf); err == nil {
		t.Fatal("DecodeResponse() with unknown status_code returned nil error")
	}
}

func TestOpCodeValid(t *testing.T) {
	if !OpOpen.Valid() || !OpMonitor.Valid() {
		t.Fatal("boundary op codes should be valid")
	}
	if OpCode(0).Valid() || OpCode(9).Valid() {
		t.Fatal("out-of-range op codes should be invalid")
	}
}

func TestModeValid(t *testing.T) {
	if !ModeAtLeastOnce.Valid() || !ModeMaybe.Valid() {
		t.Fatal("boundary modes should be valid")
	}
	if Mode(0).Valid() || Mode(4).Valid() {
		t.Fatal("out-of-range modes should be invalid")
	}
}
