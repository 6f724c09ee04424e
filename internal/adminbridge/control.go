package adminbridge

import (
	"encoding/json"
	"fmt"

	"github.com/oddbank/rpcbankd/internal/rpcwire"
)

// ControlEnvelope is the single inbound message shape this bridge accepts
// from an operator console — a deliberate simplification of the teacher's
// handleClientMessage family (which switched on subscribe/unsubscribe/ping
// message types) down to the two control-plane actions spec.md §6 exposes.
type ControlEnvelope struct {
	Type          string `json:"type"`
	Mode          string `json:"mode,omitempty"`
	LossThreshold *int   `json:"loss_threshold,omitempty"`
}

const (
	controlSetMode = "set_mode"
	controlSetLoss = "set_loss"
)

// ControlPlane is the subset of bank.ControlPlane this bridge depends on.
// Declared locally so adminbridge does not import internal/bank just for
// an interface it only forwards calls through.
type ControlPlane interface {
	SetMode(rpcwire.Mode)
	SetLossThreshold(t int)
}

// applyControl decodes and applies one inbound operator message, returning
// an ack/error envelope to write back to the same connection.
func applyControl(cp ControlPlane, raw []byte) ([]byte, error) {
	var env ControlEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("adminbridge: decode control envelope: %w", err)
	}

	switch env.Type {
	case controlSetMode:
		mode, err := parseMode(env.Mode)
		if err != nil {
			return ackFailure(err), nil
		}
		cp.SetMode(mode)
		return ackSuccess(fmt.Sprintf("mode set to %s", mode)), nil

	case controlSetLoss:
		if env.LossThreshold == nil {
			return ackFailure(fmt.Errorf("loss_threshold is required for set_loss")), nil
		}
		cp.SetLossThreshold(*env.LossThreshold)
		return ackSuccess(fmt.Sprintf("loss threshold set to %d", *env.LossThreshold)), nil

	default:
		return ackFailure(fmt.Errorf("unknown control type: %q", env.Type)), nil
	}
}

func parseMode(s string) (rpcwire.Mode, error) {
	switch s {
	case "at_least_once":
		return rpcwire.ModeAtLeastOnce, nil
	case "at_most_once":
		return rpcwire.ModeAtMostOnce, nil
	case "maybe":
		return rpcwire.ModeMaybe, nil
	default:
		return 0, fmt.Errorf("unknown mode: %q", s)
	}
}

func ackSuccess(msg string) []byte {
	b, _ := json.Marshal(map[string]any{"kind": "ack", "ok": true, "message": msg})
	return b
}

func ackFailure(err error) []byte {
	b, _ := json.Marshal(map[string]any{"kind": "ack", "ok": false, "message": err.Error()})
	return b
}
