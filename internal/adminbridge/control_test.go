package adminbridge

import (
	"encoding/json"
	"testing"

	"github.com/oddbank/rpcbankd/internal/rpcwire"
)

type recordingControlPlane struct {
	mode          rpcwire.Mode
	lossThreshold int
}

func (r *recordingControlPlane) SetMode(m rpcwire.Mode) { r.mode = m }
func (r *recordingControlPlane) SetLossThreshold(t int) { r.lossThreshold = t }

func TestApplyControlSetMode(t *testing.T) {
	cp := &recordingControlPlane{}
	raw, _ := json.Marshal(ControlEnvelope{Type: controlSetMode, Mode: "at_most_once"})

	ack, err := applyControl(cp, raw)
	if err != nil {
		t.Fatalf("applyControl returned error: %v", err)
	}
	if cp.mode != rpcwire.ModeAtMostOnce {
		t.Fatalf("mode = %v; want ModeAtMostOnce", cp.mode)
	}
	var parsed map[string]any
	if err := json.Unmarshal(ack, &parsed); err != nil {
		t.Fatalf("ack is not valid JSON: %v", err)
	}
	if parsed["ok"] != true {
		t.Fatalf("ack.ok = %v; want true", parsed["ok"])
	}
}

func TestApplyControlSetModeRejectsUnknown(t *testing.T) {
	cp := &recordingControlPlane{mode: rpcwire.ModeAtLeastOnce}
	raw, _ := json.Marshal(ControlEnvelope{Type: controlSetMode, Mode: "bogus"})

	ack, err := applyControl(cp, raw)
	if err != nil {
		t.Fatalf("applyControl returned error: %v", err)
	}
	if cp.mode != rpcwire.ModeAtLeastOnce {
		t.Fatal("SetMode should not have been called for an unknown mode")
	}
	var parsed map[string]any
	json.Unmarshal(ack, &parsed)
	if parsed["ok"] != false {
		t.Fatalf("ack.ok = %v; want false for unknown mode", parsed["ok"])
	}
}

func TestApplyControlSetLoss(t *testing.T) {
	cp := &recordingControlPlane{}
	threshold := 42
	raw, _ := json.Marshal(ControlEnvelope{Type: controlSetLoss, LossThreshold: &threshold})

	if _, err := applyControl(cp, raw); err != nil {
		t.Fatalf("applyControl returned error: %v", err)
	}
	if cp.lossThreshold != 42 {
		t.Fatalf("lossThreshold = %d; want 42", cp.lossThreshold)
	}
}

func TestApplyControlSetLossRequiresValue(t *testing.T) {
	cp := &recordingControlPlane{}
	raw, _ := json.Marshal(ControlEnvelope{Type: controlSetLoss})

	ack, err := applyControl(cp, raw)
	if err != nil {
		t.Fatalf("applyControl returned error: %v", err)
	}
	var parsed map[string]any
	json.Unmarshal(ack, &parsed)
	if parsed["ok"] != false {
		t.Fatal("expected failure ack when loss_threshold is omitted")
	}
}

func TestApplyControlRejectsMalformedJSON(t *testing.T) {
	cp := &recordingControlPlane{}
	if _, err := applyControl(cp, []byte("not json")); err == nil {
		t.Fatal("expected an error decoding malformed JSON")
	}
}

func TestApplyControlUnknownType(t *testing.T) {
	cp := &recordingControlPlane{}
	raw, _ := json.Marshal(ControlEnvelope{Type: "subscribe"})

	ack, err := applyControl(cp, raw)
	if err != nil {
		t.Fatalf("applyControl returned error: %v", err)
	}
	var parsed map[string]any
	json.Unmarshal(ack, &parsed)
	if parsed["ok"] != false {
		t.Fatal("expected failure ack for unknown envelope type")
	}
}
