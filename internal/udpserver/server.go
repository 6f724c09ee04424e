// Package udpserver is the listener that ties every other package
// together: receive → inbound loss gate → decode → semantics filter →
// dispatch → encode → outbound loss gate → send. Grounded on the
// teacher's root server.go Start/Shutdown skeleton (single accept/serve
// goroutine, wg-tracked background goroutines, graceful-drain Shutdown),
// rewritten around one net.UDPConn instead of an http.Server plus
// WebSocket upgrades — this server has exactly one long-lived socket and
// no per-client connections to track.
package udpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/oddbank/rpcbankd/internal/adminbridge"
	"github.com/oddbank/rpcbankd/internal/bank"
	"github.com/oddbank/rpcbankd/internal/config"
	"github.com/oddbank/rpcbankd/internal/eventbus"
	"github.com/oddbank/rpcbankd/internal/fanout"
	"github.com/oddbank/rpcbankd/internal/lossnet"
	"github.com/oddbank/rpcbankd/internal/observability"
	"github.com/oddbank/rpcbankd/internal/platform"
	"github.com/oddbank/rpcbankd/internal/ratelimit"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
	"github.com/oddbank/rpcbankd/internal/semantics"
)

// Server owns the UDP socket and every piece of per-datagram machinery.
// Per spec.md §5 it is read and written exclusively by the listener
// goroutine (run), except for the atomic mode/loss-threshold fields which
// internal/semantics.Filter and internal/lossnet.Gate already make safe
// for the admin bridge to write concurrently.
type Server struct {
	cfg    *config.Config
	logger zerolog.Logger

	conn *net.UDPConn

	bank      *bank.Bank
	filter    *semantics.Filter
	inGate    *lossnet.Gate
	outGate   *lossnet.Gate
	rateLimit *ratelimit.PerAddress
	workers   int

	hookPool *fanout.Pool
	sender   *fanout.Sender
	bridge   *adminbridge.Server

	bus   *eventbus.Bus
	audit *eventbus.AuditProducer

	httpSrv *http.Server

	shuttingDown int32
	wg           sync.WaitGroup
}

// New wires every package into a single Server, ready for Start. Hooks
// notifications are delivered through both a fanout.HookQueue (so the
// dispatch-owning goroutine never blocks on a slow observer) and, when
// configured, mirrored over NATS for internal/adminbridge to broadcast to
// operator consoles.
func New(cfg *config.Config, logger zerolog.Logger) (*Server, error) {
	memLimit := cfg.MemoryLimit
	if memLimit == 0 {
		if detected, err := platform.MemoryLimit(); err == nil && detected > 0 {
			memLimit = detected
		}
	}

	workers := cfg.FanOutWorkers
	if workers == 0 {
		workers = platform.FanOutPoolSize(memLimit)
	}

	hookPool := fanout.NewPool(workers, cfg.FanOutQueueSize, logger)

	bus, err := eventbus.Connect(cfg.NatsURL, &logger)
	if err != nil {
		return nil, fmt.Errorf("udpserver: connect nats: %w", err)
	}

	audit, err := eventbus.NewAuditProducer(eventbus.AuditProducerConfig{
		Brokers: splitBrokers(cfg.KafkaBrokers),
		Topic:   cfg.AuditTopic,
		Logger:  &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("udpserver: create audit producer: %w", err)
	}

	hooks := fanout.NewHookQueue(hookPool, eventbus.NewBusHooks(bus))

	mode, err := parseMode(cfg.DefaultMode)
	if err != nil {
		return nil, fmt.Errorf("udpserver: %w", err)
	}

	s := &Server{
		cfg:       cfg,
		logger:    logger,
		bank:      bank.New(hooks),
		filter:    semantics.New(mode),
		inGate:    lossnet.NewGate(1, cfg.DefaultLossThreshold),
		outGate:   lossnet.NewGate(2, cfg.DefaultLossThreshold),
		rateLimit: ratelimit.NewPerAddress(cfg.MaxRequestsPerSecond, cfg.RateLimitBurst),
		workers:   workers,
		hookPool:  hookPool,
		bus:       bus,
		audit:     audit,
	}
	s.bridge = adminbridge.NewServer(s, logger)
	return s, nil
}

// splitBrokers parses a comma-separated broker list, grounded on the
// teacher's main.go helper of the same name and purpose.
func splitBrokers(brokers string) []string {
	var result []string
	for _, b := range strings.Split(brokers, ",") {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// isMutatingOp reports whether op changes durable server state, per
// spec.md §11.5: the audit trail records one JSON record per mutating
// op, not every dispatched request. open/close/deposit/withdraw/transfer/
// exchange change account state; monitor changes subscription state.
// check_balance is a pure read and is excluded.
func isMutatingOp(op rpcwire.OpCode) bool {
	switch op {
	case rpcwire.OpOpen, rpcwire.OpClose, rpcwire.OpDeposit, rpcwire.OpWithdraw,
		rpcwire.OpTransfer, rpcwire.OpExchange, rpcwire.OpMonitor:
		return true
	default:
		return false
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
		return 0, fmt.Errorf("unknown mode %q", s)
	}
}

// SetMode and SetLossThreshold implement bank.ControlPlane. Both the
// inbound and outbound gates share one threshold, per spec.md §4.4 — the
// operator sets a single T, independently drawn against on each side.
func (s *Server) SetMode(mode rpcwire.Mode) {
	s.filter.SetMode(mode)
}

func (s *Server) SetLossThreshold(t int) {
	s.inGate.SetThreshold(t)
	s.outGate.SetThreshold(t)
}

var _ bank.ControlPlane = (*Server)(nil)

// Start binds the UDP socket, launches the listener loop and the admin
// HTTP server (metrics, health, operator console), mirroring the
// teacher's Start: bind first, spawn background goroutines, return
// immediately with the server running.
func (s *Server) Start() error {
	addr, err := net.ResolveUDPAddr("udp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("udpserver: resolve addr: %w", err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return fmt.Errorf("udpserver: listen: %w", err)
	}
	s.conn = conn
	s.sender = fanout.NewSender(conn, s.workers, s.cfg.FanOutQueueSize, s.logger)
	s.hookPool.Start()

	if s.bus != nil {
		if _, err := s.bus.Subscribe(s.bridge.Broadcast); err != nil {
			return fmt.Errorf("udpserver: subscribe admin bridge to notifications: %w", err)
		}
	}

	s.logger.Info().Str("addr", s.cfg.Addr).Msg("udpserver: listening")

	s.wg.Add(1)
	go s.run()

	mux := http.NewServeMux()
	mux.Handle("/metrics", observability.MetricsHandler())
	mux.HandleFunc("/healthz", observability.HealthHandler(s.healthSnapshot))
	mux.HandleFunc("/console", s.bridge.Handler())
	s.httpSrv = &http.Server{Addr: s.cfg.AdminAddr, Handler: mux}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("udpserver: admin http server error")
		}
	}()

	return nil
}

// run is the single listener loop: one read per iteration, strictly
// serial, exactly as spec.md §5's scheduling model requires.
func (s *Server) run() {
	defer s.wg.Done()

	buf := make([]byte, rpcwire.DatagramSize)
	for {
		if atomic.LoadInt32(&s.shuttingDown) == 1 {
			return
		}

		s.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, from, err := s.conn.ReadFromUDP(buf)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}
			if atomic.LoadInt32(&s.shuttingDown) == 1 {
				return
			}
			s.logger.Debug().Err(err).Msg("udpserver: read error")
			continue
		}

		s.handleDatagram(buf[:n], from)
	}
}

// handleDatagram runs one datagram through the full pipeline. Extracted
// from run so it's unit-testable without a real socket.
func (s *Server) handleDatagram(data []byte, from *net.UDPAddr) {
	if !s.rateLimit.Allow(from) {
		observability.RequestsDroppedTotal.WithLabelValues("rate_limit").Inc()
		return
	}

	if !s.inGate.Admit() {
		observability.RequestsDroppedTotal.WithLabelValues("inbound_loss").Inc()
		return
	}

	req, err := rpcwire.DecodeRequest(data)
	if err != nil {
		observability.RequestsDroppedTotal.WithLabelValues("decode").Inc()
		return
	}
	observability.RequestsReceivedTotal.Inc()
	s.bank.Hooks().OnRequestReceived(from, req)

	now := time.Now()
	resp, shouldReply := s.filter.Apply(req, func(req *rpcwire.Request) *rpcwire.Response {
		resp, fanOuts := s.bank.Dispatch(req, from, now)
		if len(fanOuts) > 0 {
			s.sender.SendCallbacks(fanOuts)
		}
		return resp
	})
	if !shouldReply {
		return
	}

	observability.OpsDispatchedTotal.WithLabelValues(req.OpCode.String(), resp.StatusCode.String()).Inc()
	observability.AccountsTotal.Set(float64(s.bank.AccountCount()))
	observability.ActiveSubscriptions.Set(float64(s.bank.ActiveSubscriptionCount(now)))
	s.bank.Hooks().OnResponsePosted(from, resp)

	if s.audit != nil && isMutatingOp(req.OpCode) && resp.StatusCode == rpcwire.StatusSuccess {
		s.audit.Publish(context.Background(), eventbus.AuditRecord{
			RequestID:   req.ID,
			OpCode:      req.OpCode.String(),
			StatusCode:  resp.StatusCode.String(),
			Message:     resp.Text,
			TimestampMs: now.UnixMilli(),
		})
	}

	if !s.outGate.Admit() {
		observability.RequestsDroppedTotal.WithLabelValues("outbound_loss").Inc()
		return
	}
	if _, err := s.conn.WriteToUDP(resp.Encode(), from); err != nil {
		s.logger.Debug().Err(err).Stringer("addr", from).Msg("udpserver: write error")
	}
}

func (s *Server) healthSnapshot() observability.HealthSnapshot {
	sample, _ := platform.SampleSelf()
	memLimit := s.cfg.MemoryLimit
	return observability.HealthSnapshot{
		Mode:             s.filter.Mode().String(),
		LossThreshold:    s.inGate.Threshold(),
		AccountCount:     s.bank.AccountCount(),
		ActiveSubs:       s.bank.ActiveSubscriptionCount(time.Now()),
		MemoryRSSBytes:   sample.RSSBytes,
		MemoryLimitBytes: uint64(memLimit),
		Goroutines:       sample.Goroutines,
	}
}

// Shutdown stops accepting new work and drains background goroutines,
// mirroring the teacher's Shutdown: flip the shutting-down flag, close
// the socket, stop pools, wait for goroutines to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("udpserver: shutting down")
	atomic.StoreInt32(&s.shuttingDown, 1)

	if s.conn != nil {
		s.conn.Close()
	}
	if s.httpSrv != nil {
		s.httpSrv.Shutdown(ctx)
	}
	if s.sender != nil {
		s.sender.Stop()
	}
	s.hookPool.Stop()
	if s.audit != nil {
		s.audit.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info().Msg("udpserver: shutdown complete")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
