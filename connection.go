package mqttc

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"sync/atomic"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"golang.org/x/net/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lumenmq/mqttc/internal/wsconn"
	"github.com/lumenmq/mqttc/packet"
)

// Connection is the concurrent MQTT v3.1.1 engine of spec §4.2: it
// owns a transport, a receiver task, a keep-alive watchdog, a
// transaction mutex, the packet-id counter and the incoming-message
// queue. Construct one with Dial or DialWebSocket; tear it down with
// Disconnect.
type Connection struct {
	rwc  io.ReadWriteCloser
	opts Options

	logger *log.Logger
	stats  *Stats

	writeMu sync.Mutex // serializes physical writes to rwc
	txMu    sync.Mutex // the transaction mutex of spec §4.2.2

	slots    [packet.DISCONNECT + 1]*slot
	incoming incomingQueue

	packetIDs *packetIDAllocator

	keepConnection atomic.Bool
	lastTxUnixNano int64

	brokenOnce sync.Once
	brokenCh   chan struct{}
	brokenErr  error

	closedOnce sync.Once
	closedCh   chan struct{}
}

// Dial opens network/address as the transport and starts the receiver
// and watchdog tasks. It does not send CONNECT — call Connect
// afterward, per spec §4.2.1 ("construction establishes the
// transport, starts the receiver, and starts the watchdog").
func Dial(network, address string, opts ...Option) (*Connection, error) {
	o := newOptions(opts...)
	dialer := net.Dialer{Timeout: o.DialTimeout}
	conn, err := dialer.Dial(network, address)
	if err != nil {
		return nil, fmt.Errorf("mqttc: dial: %w", err)
	}
	return newConnection(conn, o), nil
}

// DialWebSocket opens a binary WebSocket connection as an alternate
// transport (SPEC_FULL.md DOMAIN STACK), using gorilla/websocket and
// the internal/wsconn stream adapter to present it as the
// io.ReadWriteCloser the engine expects.
func DialWebSocket(urlStr string, opts ...Option) (*Connection, error) {
	o := newOptions(opts...)
	dialer := gorillaws.Dialer{HandshakeTimeout: o.DialTimeout, Subprotocols: []string{"mqtt"}}
	wsc, _, err := dialer.Dial(urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("mqttc: websocket dial: %w", err)
	}
	return newConnection(wsconn.NewGorillaStream(wsc), o), nil
}

// DialXNetWebsocket is the golang.org/x/net/websocket counterpart to
// DialWebSocket. x/net's Conn already implements net.Conn directly,
// so no adapter is needed here — it is wired in as the teacher's own
// dial switch keeps both websocket libraries side by side.
func DialXNetWebsocket(urlStr, origin string, opts ...Option) (*Connection, error) {
	o := newOptions(opts...)
	cfg, err := websocket.NewConfig(urlStr, origin)
	if err != nil {
		return nil, fmt.Errorf("mqttc: websocket config: %w", err)
	}
	cfg.Protocol = []string{"mqtt"}
	wsc, err := websocket.DialConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("mqttc: websocket dial: %w", err)
	}
	wsc.PayloadType = websocket.BinaryFrame
	return newConnection(wsc, o), nil
}

func newConnection(rwc io.ReadWriteCloser, o Options) *Connection {
	c := &Connection{
		rwc:       rwc,
		opts:      o,
		logger:    o.Logger,
		stats:     newStats(o.ClientID),
		packetIDs: newPacketIDAllocator(o.PacketIDBase),
		brokenCh:  make(chan struct{}),
		closedCh:  make(chan struct{}),
	}
	if c.logger == nil {
		c.logger = discardLogger
	}
	for i := range c.slots {
		c.slots[i] = newSlot()
	}
	c.stats.register(o.Registerer)
	c.stats.activeConnection.Set(1)
	c.noteTransaction()
	c.startTasks()
	return c
}

// startTasks launches the receiver and watchdog under an
// errgroup.WithContext, the same pairing the teacher's
// connectAndSubscribe uses: the group's derived context is cancelled
// the instant either task returns (runReceiver always returns a
// non-nil error when it stops), so a transport failure wakes the
// watchdog out of its select immediately instead of leaving it
// parked until the next Disconnect. Without that cancellation,
// eg.Wait() — and therefore teardown() — would never observe a
// broker-initiated disconnect.
func (c *Connection) startTasks() {
	eg, ctx := errgroup.WithContext(context.Background())
	eg.Go(c.runReceiver)
	eg.Go(func() error { return c.runWatchdog(ctx) })
	go func() {
		c.teardown(eg.Wait())
	}()
}

// teardown runs exactly once per physical connection: it broadcasts
// the broken-connection notification to every blocked transaction
// (spec §4.2.3, §5 "broken-connection liveness"), marks the
// connection no longer open, and closes the transport.
func (c *Connection) teardown(err error) {
	c.brokenOnce.Do(func() {
		c.brokenErr = err
		c.keepConnection.Store(false)
		c.stats.activeConnection.Set(0)
		close(c.brokenCh)
		_ = c.rwc.Close()
		if err != nil {
			c.logf("connection closed: %v", err)
		}
	})
}

func (c *Connection) isOpen() bool {
	select {
	case <-c.brokenCh:
		return false
	default:
		return true
	}
}

func (c *Connection) logf(format string, args ...any) {
	c.logger.Printf(format, args...)
}

func (c *Connection) writeFrame(p packet.Packet) error {
	buf, err := p.Serialize()
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := c.rwc.Write(buf); err != nil {
		return fmt.Errorf("mqttc: write: %w", err)
	}
	c.stats.packetsSent.Inc()
	c.stats.bytesSent.Add(float64(len(buf)))
	return nil
}

// Connect sends CONNECT and waits for CONNACK (spec §4.2.1). On
// acceptance it sets keep_connection=true and returns whether the
// broker restored a prior session. On rejection it returns
// session_present=false with ErrConnectRejected wrapping the CONNACK
// return code for inspection (spec §7 "Protocol mismatch").
func (c *Connection) Connect() (sessionPresent bool, err error) {
	req := &packet.Connect{
		CleanSession: c.opts.CleanSession,
		KeepAlive:    uint16(c.opts.KeepAlive / time.Second),
		ClientID:     c.opts.ClientID,
		Will:         c.opts.Will,
		HasUserName:  c.opts.HasUserName,
		UserName:     c.opts.UserName,
		HasPassword:  c.opts.HasPassword,
		Password:     c.opts.Password,
	}
	resp, err := c.transact(req, packet.CONNACK)
	if err != nil {
		return false, err
	}
	ca := resp.(*packet.Connack)
	if ca.ReturnCode != packet.ConnectAccepted.Code {
		return false, fmt.Errorf("%w: %w", ErrConnectRejected, packet.ConnackReason(ca.ReturnCode))
	}
	c.keepConnection.Store(true)
	return ca.SessionPresent, nil
}

// Publish_Qos0 fires-and-forgets: no Packet Identifier, no response.
func (c *Connection) Publish_Qos0(retain bool, topic string, payload []byte) error {
	req := &packet.Publish{QoS: packet.AtMostOnce, Retain: retain, Topic: topic, Payload: payload}
	_, err := c.transact(req, 0)
	return err
}

// Publish_Qos1 sends PUBLISH and waits for the matching PUBACK,
// returning the Packet Identifier used.
func (c *Connection) Publish_Qos1(retain, dup bool, topic string, payload []byte) (uint16, error) {
	id := c.packetIDs.allocate()
	req := &packet.Publish{QoS: packet.AtLeastOnce, Retain: retain, Dup: dup, Topic: topic, PacketID: id, Payload: payload}
	if _, err := c.transact(req, packet.PUBACK); err != nil {
		return 0, err
	}
	return id, nil
}

// Publish_Qos2 runs the full PUBLISH/PUBREC/PUBREL/PUBCOMP handshake
// as one transaction-mutex acquisition (spec §4.2.2, DESIGN NOTES §9
// option (a): a single non-reentrant sequence rather than a reentrant
// lock). PUBREL reuses the same Packet Identifier as PUBLISH — it is
// never re-incremented.
func (c *Connection) Publish_Qos2(retain, dup bool, topic string, payload []byte) (uint16, error) {
	id := c.packetIDs.allocate()

	c.txMu.Lock()
	defer c.txMu.Unlock()

	pub := &packet.Publish{QoS: packet.ExactlyOnce, Retain: retain, Dup: dup, Topic: topic, PacketID: id, Payload: payload}
	if _, err := c.transactLocked(pub, packet.PUBREC); err != nil {
		return 0, err
	}
	rel := &packet.Pubrel{PacketID: id}
	if _, err := c.transactLocked(rel, packet.PUBCOMP); err != nil {
		return 0, err
	}
	return id, nil
}

// Subscribe sends SUBSCRIBE and returns the broker's per-filter
// return codes from SUBACK, in the same order as filters.
func (c *Connection) Subscribe(filters []packet.Subscription) ([]uint8, error) {
	req := &packet.Subscribe{PacketID: c.packetIDs.allocate(), Subscriptions: filters}
	resp, err := c.transact(req, packet.SUBACK)
	if err != nil {
		return nil, err
	}
	return resp.(*packet.Suback).ReturnCodes, nil
}

// Unsubscribe sends UNSUBSCRIBE and waits for UNSUBACK.
func (c *Connection) Unsubscribe(filters []string) error {
	req := &packet.Unsubscribe{PacketID: c.packetIDs.allocate(), TopicFilters: filters}
	_, err := c.transact(req, packet.UNSUBACK)
	return err
}

// Ping sends PINGREQ and waits for PINGRESP. Callers rarely need this
// directly — the keep-alive watchdog calls it automatically — but it
// is part of the public façade (spec §4.2.1).
func (c *Connection) Ping() error {
	_, err := c.transact(&packet.Pingreq{}, packet.PINGRESP)
	return err
}

// Disconnect sends DISCONNECT, sets keep_connection=false, and tears
// the connection down: close transport, join watchdog, join receiver
// (spec §3 "Connection" teardown order, §4.2.6).
func (c *Connection) Disconnect() error {
	c.txMu.Lock()
	_, err := c.transactLocked(&packet.Disconnect{}, 0)
	c.txMu.Unlock()

	c.keepConnection.Store(false)
	c.closedOnce.Do(func() { close(c.closedCh) })
	_ = c.rwc.Close() // unblocks the receiver's Read, which drives teardown via startTasks' errgroup
	<-c.brokenCh      // closed by teardown once both tasks have returned
	return err
}

// IsConnected reports whether the receiver is alive and the
// connection is in the Open state (spec §4.2.6).
func (c *Connection) IsConnected() bool {
	return c.isOpen() && c.keepConnection.Load()
}

// IsIncomingEmpty reports whether GetIncoming has anything to return.
func (c *Connection) IsIncomingEmpty() bool {
	return c.incoming.empty()
}

// GetIncoming dequeues the next received application message, if any.
func (c *Connection) GetIncoming() (packet.Message, bool) {
	return c.incoming.pop()
}

// Redial is the opt-in reconnect helper recovered from
// original_source/Controller/main_connection.cpp and
// SensorA/main_connection.cpp (SPEC_FULL.md "Supplemented features").
// It is not part of the mandatory façade — Connect alone satisfies
// that — but a real deployment needs it. It must only be called after
// this Connection's tasks have already exited (IsConnected() false).
func (c *Connection) Redial(ctx context.Context, dial func() (io.ReadWriteCloser, error), backoff time.Duration) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		rwc, err := dial()
		if err == nil {
			c.reset(rwc)
			if _, err = c.Connect(); err == nil {
				return nil
			}
		}
		c.logf("redial attempt failed: %v", err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
}

func (c *Connection) reset(rwc io.ReadWriteCloser) {
	c.rwc = rwc
	c.brokenOnce = sync.Once{}
	c.brokenCh = make(chan struct{})
	c.closedOnce = sync.Once{}
	c.closedCh = make(chan struct{})
	for i := range c.slots {
		c.slots[i].clear()
	}
	c.stats.activeConnection.Set(1)
	c.noteTransaction()
	c.startTasks()
}
