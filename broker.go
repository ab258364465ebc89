package kafka

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/eapache/go-resiliency/breaker"
	"github.com/eapache/queue"
	"github.com/rcrowley/go-metrics"
)

// Broker owns one long-lived TCP connection to a single (host,port) and
// serializes requests over it, correlating responses by id, per spec.md
// §4.2. It is the "actor" of spec.md §5: all mutable state is private and
// reached only through its exported methods, which communicate with its
// internal response-reading goroutine over channels.
type Broker struct {
	id   int32 // node_id from the most recent Metadata response, or -1 if unknown
	addr string

	conf *Config

	mu      sync.Mutex
	conn    net.Conn
	closed  bool
	corrID  int32
	pending *queue.Queue // FIFO of *responsePromise awaiting their reply

	breaker *breaker.Breaker

	incoming chan []byte // raw response frames read off the socket
	done     chan struct{}

	registry metrics.Registry
}

// responsePromise is the in-flight queue entry spec.md §4.2 describes:
// the correlation id paired with the decoder that will turn the matching
// response bytes into a protocolBody.
type responsePromise struct {
	correlationID int32
	body          protocolBody // empty instance of the expected response type, or nil if none expected
	packets       chan []byte
	errs          chan error
}

// NewBroker constructs a Broker for addr ("host:port"); the node_id is
// learned later from a Metadata response and set with SetID. The TCP
// connection is not opened until the first request.
func NewBroker(addr string, conf *Config) *Broker {
	return &Broker{
		id:       -1,
		addr:     addr,
		conf:     conf,
		pending:  queue.New(),
		breaker:  breaker.New(3, 1, 10*time.Second),
		registry: conf.MetricRegistry,
	}
}

// ID returns the broker's node_id, or -1 if it has not been learned yet.
func (b *Broker) ID() int32 { return b.id }

// SetID records the node_id this Broker was created for, per spec.md §3:
// "Identity is node_id from metadata."
func (b *Broker) SetID(id int32) { b.id = id }

// Addr returns the "host:port" this Broker dials.
func (b *Broker) Addr() string { return b.addr }

// Open dials the broker if not already connected. Once connected, further
// calls return ErrAlreadyConnected and leave the connection as it is.
func (b *Broker) Open() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.openLocked()
}

func (b *Broker) openLocked() error {
	if b.conn != nil {
		return ErrAlreadyConnected
	}
	if b.closed {
		return ErrNotConnected
	}

	err := b.breaker.Run(func() error {
		dialer := net.Dialer{Timeout: b.conf.Net.DialTimeout}
		conn, err := dialer.Dial("tcp", b.addr)
		if err != nil {
			return err
		}
		b.conn = conn
		return nil
	})
	if err != nil {
		if errors.Is(err, breaker.ErrBreakerOpen) {
			return fmt.Errorf("kafka: broker %s circuit open: %w", b.addr, err)
		}
		return err
	}

	b.done = make(chan struct{})
	b.incoming = make(chan []byte, 16)
	go b.readLoop(b.conn, b.incoming, b.done)
	go b.dispatchLoop(b.incoming)
	return nil
}

// readLoop pulls length-prefixed frames off the wire and delivers each
// full payload to incoming, in arrival order, matching Kafka's per-
// connection FIFO response guarantee (spec.md §4.2 and §5).
func (b *Broker) readLoop(conn net.Conn, incoming chan<- []byte, done chan struct{}) {
	defer close(incoming)
	var lenBuf [4]byte
	for {
		if _, err := io.ReadFull(conn, lenBuf[:]); err != nil {
			return
		}
		size := binary.BigEndian.Uint32(lenBuf[:])
		buf := make([]byte, size)
		if _, err := io.ReadFull(conn, buf); err != nil {
			return
		}
		select {
		case incoming <- buf:
		case <-done:
			return
		}
	}
}

// Request sends req and blocks until its response is decoded, or returns
// immediately with a nil body when the request carries none (spec.md
// §4.2's has_response == false case, e.g. ProduceRequest with
// RequiredAcks == NoResponse).
func (b *Broker) Request(req protocolBody) (protocolBody, error) {
	promise, err := b.send(req)
	if err != nil {
		return nil, err
	}
	if promise == nil {
		return nil, nil
	}

	timeout := time.NewTimer(b.conf.Net.RequestTimeout)
	defer timeout.Stop()

	select {
	case raw := <-promise.packets:
		_, err := decodeResponse(raw, promise.body)
		if err != nil {
			return nil, err
		}
		return promise.body, nil
	case err := <-promise.errs:
		return nil, err
	case <-timeout.C:
		return nil, ErrLocalRequestTimeout
	}
}

// ErrLocalRequestTimeout is returned by Broker.Request when
// Config.Net.RequestTimeout elapses before a matching response arrives.
// Distinct from ErrRequestTimedOut, the wire-protocol error code a broker
// sends back when it enforces the request's own timeout field.
var ErrLocalRequestTimeout = errors.New("kafka: request timed out waiting for broker response")

// AsyncRequest sends req without blocking the caller; the response (or
// error) is delivered to receiver once available, per spec.md §4.2's
// async_request and §9's single receiver abstraction.
func (b *Broker) AsyncRequest(req protocolBody, receiver ResponseReceiver) {
	promise, err := b.send(req)
	if err != nil {
		receiver.Deliver(nil, err)
		return
	}
	if promise == nil {
		receiver.Deliver(nil, nil)
		return
	}
	go func() {
		select {
		case raw := <-promise.packets:
			_, err := decodeResponse(raw, promise.body)
			if err != nil {
				receiver.Deliver(nil, err)
				return
			}
			receiver.Deliver(promise.body, nil)
		case err := <-promise.errs:
			receiver.Deliver(nil, err)
		}
	}()
}

// ResponseReceiver is spec.md §9's collapsed async-delivery abstraction: a
// single capability, Deliver, that the call site wraps to get FSM-event or
// channel semantics as needed.
type ResponseReceiver interface {
	Deliver(body protocolBody, err error)
}

// ResponseReceiverFunc adapts a plain function to ResponseReceiver.
type ResponseReceiverFunc func(body protocolBody, err error)

func (f ResponseReceiverFunc) Deliver(body protocolBody, err error) { f(body, err) }

// send writes req's wire frame, bumping the correlation id, and returns
// the pending response's promise (nil if the request has no response).
// Correlation ids are assigned in strictly increasing order starting at 0
// per connection, per spec.md §3's invariant.
func (b *Broker) send(req protocolBody) (*responsePromise, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrNotConnected
	}
	if b.conn == nil {
		if err := b.openLocked(); err != nil {
			return nil, err
		}
	}

	correlationID := b.corrID
	b.corrID++

	buf, err := encodeRequest(correlationID, b.conf.ClientID, req)
	if err != nil {
		return nil, err
	}

	if b.conf.Net.WriteTimeout > 0 {
		_ = b.conn.SetWriteDeadline(time.Now().Add(b.conf.Net.WriteTimeout))
	}
	if _, err := b.conn.Write(buf); err != nil {
		b.failLocked(err)
		return nil, err
	}

	if t := metrics.GetOrRegisterMeter("requests-sent", b.registry); t != nil {
		t.Mark(1)
	}

	if !requestHasResponse(req) {
		return nil, nil
	}

	respBody := allocateResponseBody(req.key(), req.version())
	if respBody == nil {
		return nil, PacketDecodingError{Info: "unknown response api key"}
	}

	promise := &responsePromise{
		correlationID: correlationID,
		body:          respBody,
		packets:       make(chan []byte, 1),
		errs:          make(chan error, 1),
	}
	b.pending.Add(promise)

	return promise, nil
}

// dispatchLoop is the single reader of a Broker's incoming frames: Kafka
// guarantees a connection answers requests strictly in send order (spec.md
// §4.2 and §5), so the next frame off the wire always matches the oldest
// still-pending promise. Having exactly one goroutine pop the FIFO keeps
// that matching race-free; per-request callers only ever read their own
// promise's channels.
func (b *Broker) dispatchLoop(incoming <-chan []byte) {
	for raw := range incoming {
		if len(raw) < 4 {
			b.failPendingLocked(PacketDecodingError{Info: "response shorter than correlation id"})
			continue
		}

		b.mu.Lock()
		if b.pending.Length() == 0 {
			b.mu.Unlock()
			Logger.Printf("kafka: broker %s: unexpected response with no pending request", b.addr)
			continue
		}
		promise := b.pending.Remove().(*responsePromise)
		b.mu.Unlock()

		gotID := int32(binary.BigEndian.Uint32(raw))
		if gotID != promise.correlationID {
			promise.errs <- PacketDecodingError{Info: fmt.Sprintf("response correlation id %d, expected %d", gotID, promise.correlationID)}
			continue
		}
		promise.packets <- raw
	}

	b.mu.Lock()
	b.failLocked(io.ErrClosedPipe)
	b.mu.Unlock()
}

func (b *Broker) failPendingLocked(cause error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pending.Length() > 0 {
		p := b.pending.Remove().(*responsePromise)
		p.errs <- cause
	}
}

// failLocked tears the connection down and fails every outstanding
// request, matching spec.md §4.2: "If the socket is closed by the peer
// while requests are pending, all are failed with a connection-closed
// error and the Connection transitions to a reconnect-on-next-request
// state."
func (b *Broker) failLocked(cause error) {
	if b.conn != nil {
		_ = b.conn.Close()
		b.conn = nil
	}
	if b.done != nil {
		close(b.done)
		b.done = nil
	}
	b.incoming = nil

	for b.pending.Length() > 0 {
		p := b.pending.Remove().(*responsePromise)
		select {
		case p.errs <- cause:
		default:
		}
	}
}

// Close gracefully tears down the connection, per spec.md §4.2.
func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrNotConnected
	}
	b.failLocked(ErrClosedClient)
	b.closed = true
	return nil
}

// Connected reports whether the socket is currently open.
func (b *Broker) Connected() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conn != nil
}
