package fanout

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/oddbank/rpcbankd/internal/bank"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
)

// Sender asynchronously writes callback datagrams to UDP subscribers via
// a Pool, so a subscriber that never reads its socket can't stall the
// listener goroutine's main recv/dispatch/send loop.
type Sender struct {
	conn *net.UDPConn
	pool *Pool
	log  zerolog.Logger
}

// NewSender wraps conn (the same socket the listener reads from — UDP
// sockets are safe for concurrent writes) with a dedicated send pool.
func NewSender(conn *net.UDPConn, workerCount, queueSize int, logger zerolog.Logger) *Sender {
	s := &Sender{conn: conn, pool: NewPool(workerCount, queueSize, logger), log: logger}
	s.pool.Start()
	return s
}

// SendCallbacks enqueues one outbound callback-status datagram per
// fan-out message produced by bank.Dispatch. Each send happens on a pool
// worker; SendCallbacks itself never blocks.
func (s *Sender) SendCallbacks(msgs []bank.FanOutMessage) {
	for _, msg := range msgs {
		msg := msg
		s.pool.Submit(func() {
			resp := rpcwire.NewResponse(0, rpcwire.StatusCallback, msg.Text)
			if _, err := s.conn.WriteToUDP(resp.Encode(), msg.Addr); err != nil {
				s.log.Debug().Err(err).Stringer("addr", msg.Addr).Msg("callback send failed")
			}
		})
	}
}

// Stop stops the underlying pool and waits for its workers to exit;
// callbacks still queued at that point are not sent.
func (s *Sender) Stop() {
	s.pool.Stop()
}
