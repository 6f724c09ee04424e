package udpserver

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/oddbank/rpcbankd/internal/bank"
	"github.com/oddbank/rpcbankd/internal/currency"
	"github.com/oddbank/rpcbankd/internal/fanout"
	"github.com/oddbank/rpcbankd/internal/lossnet"
	"github.com/oddbank/rpcbankd/internal/ratelimit"
	"github.com/oddbank/rpcbankd/internal/rpcwire"
	"github.com/oddbank/rpcbankd/internal/semantics"
)

// newTestServer builds a Server with its UDP socket and fanout sender
// bound to loopback, without going through Start's admin HTTP server —
// handleDatagram is exercised directly, matching how run() would call it.
func newTestServer(t *testing.T) (*Server, *net.UDPConn) {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 0})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	logger := zerolog.Nop()
	s := &Server{
		logger:    logger,
		conn:      conn,
		bank:      bank.New(bank.NopHooks{}),
		filter:    semantics.New(rpcwire.ModeAtLeastOnce),
		inGate:    lossnet.NewGate(1, 0),
		outGate:   lossnet.NewGate(2, 0),
		rateLimit: ratelimit.NewPerAddress(1000, 1000),
	}
	s.sender = fanout.NewSender(conn, 2, 16, logger)
	return s, conn
}

func TestHandleDatagramOpenRoundTrip(t *testing.T) {
	s, conn := newTestServer(t)

	client, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("dial udp: %v", err)
	}
	defer client.Close()

	payload := bank.EncodeOpenPayload(bank.OpenPayload{
		Username: "alice", Password: "secret", Balance: 100, Currency: currency.USD,
	})
	req := rpcwire.NewRequest(1, rpcwire.OpOpen, payload)
	from := client.LocalAddr().(*net.UDPAddr)

	s.handleDatagram(req.Encode(), from)

	if s.bank.AccountCount() != 1 {
		t.Fatalf("AccountCount() = %d; want 1", s.bank.AccountCount())
	}

	client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, rpcwire.DatagramSize)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("client did not receive a response: %v", err)
	}
	resp, err := rpcwire.DecodeResponse(buf[:n])
	if err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatusCode != rpcwire.StatusSuccess {
		t.Fatalf("StatusCode = %v; want StatusSuccess, text=%q", resp.StatusCode, resp.Text)
	}
}

func TestHandleDatagramDropsOnUnknownOpCode(t *testing.T) {
	s, _ := newTestServer(t)

	// A handcrafted, undecoded datagram with a bogus op_code should be
	// dropped at the decode stage without panicking or mutating state.
	garbage := make([]byte, rpcwire.DatagramSize)
	garbage[7] = 0x7F // op_code's high byte, producing an out-of-range value

	from := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}
	s.handleDatagram(garbage, from)

	if s.bank.AccountCount() != 0 {
		t.Fatalf("AccountCount() = %d; want 0 after a malformed datagram", s.bank.AccountCount())
	}
}

func TestHandleDatagramMaybeModeNeverReplies(t *testing.T) {
	s, conn := newTestServer(t)
	s.filter = semantics.New(rpcwire.ModeMaybe)

	client, err := net.DialUDP("udp", nil, conn.LocalAddr().(*net.UDPAddr))
	if err != nil {
		t.Fatalf("dial udp: %v", err)
	}
	defer client.Close()

	payload := bank.EncodeOpenPayload(bank.OpenPayload{
		Username: "bob", Password: "pw", Balance: 50, Currency: currency.USD,
	})
	req := rpcwire.NewRequest(2, rpcwire.OpOpen, payload)
	s.handleDatagram(req.Encode(), client.LocalAddr().(*net.UDPAddr))

	client.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	buf := make([]byte, rpcwire.DatagramSize)
	if _, err := client.Read(buf); err == nil {
		t.Fatal("expected no reply in maybe mode, but one arrived")
	}
}

func TestIsMutatingOp(t *testing.T) {
	mutating := []rpcwire.OpCode{
		rpcwire.OpOpen, rpcwire.OpClose, rpcwire.OpDeposit,
		rpcwire.OpWithdraw, rpcwire.OpTransfer, rpcwire.OpExchange, rpcwire.OpMonitor,
	}
	for _, op := range mutating {
		if !isMutatingOp(op) {
			t.Errorf("isMutatingOp(%v) = false; want true", op)
		}
	}

	if isMutatingOp(rpcwire.OpCheckBalance) {
		t.Error("isMutatingOp(OpCheckBalance) = true; want false, check_balance is a pure read")
	}
}
