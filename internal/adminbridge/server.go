package adminbridge

import (
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/rs/zerolog"
)

// Server upgrades HTTP connections to WebSocket operator consoles and
// mirrors bank.Hooks notifications to every connected client. Grounded on
// the teacher's shared.Server connection bookkeeping (ws/internal/shared/
// server.go, connection.go), trimmed to what an operator console needs: no
// resource guard, no per-symbol subscriptions, no sequence numbering.
type Server struct {
	logger zerolog.Logger
	cp     ControlPlane

	clientCount int64
	clients     sync.Map // *Client -> struct{}
}

// NewServer constructs a bridge that applies operator control envelopes to
// cp and mirrors notifications to every connected client.
func NewServer(cp ControlPlane, logger zerolog.Logger) *Server {
	return &Server{cp: cp, logger: logger}
}

// Handler returns the HTTP handler to mount the WebSocket upgrade
// endpoint at, e.g. on the admin HTTP server alongside /metrics and
// /healthz.
func (s *Server) Handler() http.HandlerFunc {
	return s.handleWebSocket
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, _, _, err := ws.UpgradeHTTP(r, w)
	if err != nil {
		s.logger.Error().Err(err).Msg("adminbridge: websocket upgrade failed")
		return
	}

	client := &Client{
		id:     atomic.AddInt64(&s.clientCount, 1),
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan []byte, sendBufferSize),
	}
	s.clients.Store(client, struct{}{})
	s.logger.Debug().Int64("client_id", client.id).Str("remote", client.remote).Msg("adminbridge: operator connected")

	go s.writePump(client)
	go s.readPump(client)
}

// readPump reads control envelopes from one operator connection until it
// disconnects or sends a close frame, mirroring the teacher's
// shared.readPump loop shape.
func (s *Server) readPump(c *Client) {
	defer s.disconnect(c)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		msg, op, err := wsutil.ReadClientData(c.conn)
		if err != nil {
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(pongWait))

		switch op {
		case ws.OpText:
			ack, err := applyControl(s.cp, msg)
			if err != nil {
				s.logger.Warn().Err(err).Int64("client_id", c.id).Msg("adminbridge: malformed control envelope")
				continue
			}
			select {
			case c.send <- ack:
			default:
				// Slow operator console; drop the ack rather than block the
				// read loop.
			}
		case ws.OpClose:
			return
		}
	}
}

// writePump is the hot path: every Broadcast call and every queued ack
// flows through here, one connection per goroutine, mirroring the
// teacher's pump_write.go structure (ping ticker alongside the send
// channel select).
func (s *Server) writePump(c *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				wsutil.WriteServerMessage(c.conn, ws.OpClose, []byte{})
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpText, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsutil.WriteServerMessage(c.conn, ws.OpPing, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) disconnect(c *Client) {
	s.clients.Delete(c)
	c.close()
	s.logger.Debug().Int64("client_id", c.id).Msg("adminbridge: operator disconnected")
}

// Broadcast mirrors payload (a pre-marshalled JSON notification, typically
// from eventbus.Bus.Subscribe) to every connected operator console,
// dropping it for any client whose send buffer is full rather than
// blocking.
func (s *Server) Broadcast(payload []byte) {
	s.clients.Range(func(key, _ any) bool {
		c := key.(*Client)
		select {
		case c.send <- payload:
		default:
			s.logger.Debug().Int64("client_id", c.id).Msg("adminbridge: dropping notification, send buffer full")
		}
		return true
	})
}

// ClientCount reports how many operator consoles are currently connected.
func (s *Server) ClientCount() int {
	n := 0
	s.clients.Range(func(_, _ any) bool { n++; return true })
	return n
}
