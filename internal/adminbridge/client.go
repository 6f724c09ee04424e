// Package adminbridge is the operator console: a gobwas/ws WebSocket
// bridge that mirrors bank.Hooks notifications as JSON frames and accepts
// small control envelopes to flip invocation semantics or the packet-loss
// threshold. Grounded on the teacher's internal/shared connection/pump
// machinery (ws/internal/shared/{connection,pump_read,pump_write}.go),
// restructured around control envelopes instead of the teacher's trade
// broadcast payloads — this bridge has one inbound message shape
// (ControlEnvelope), not a family of subscription/trade/liquidity topics.
package adminbridge

import (
	"net"
	"sync"
	"time"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// sendBufferSize bounds how many pending notification frames a slow
	// operator connection can accumulate before further frames are dropped,
	// in the style of the teacher's fixed-size per-client send channel.
	sendBufferSize = 256
)

// Client is one connected operator console. Mirrors the teacher's
// shared.Client, trimmed to the fields this bridge actually uses — no
// sequence generator or slow-client scoring, since this bridge has no
// replay/reliability contract to uphold.
type Client struct {
	id        int64
	conn      net.Conn
	remote    string
	send      chan []byte
	closeOnce sync.Once
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		if c.conn != nil {
			c.conn.Close()
		}
	})
}
