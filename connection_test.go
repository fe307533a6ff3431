package mqttc

import (
	"net"
	"testing"
	"time"

	"github.com/lumenmq/mqttc/packet"
)

// brokerSide reads whole frames off one end of a net.Pipe the way the
// receiver does on the client end, for scripting fake broker replies.
type brokerSide struct {
	conn net.Conn
	buf  []byte
}

func newBrokerSide(conn net.Conn) *brokerSide {
	return &brokerSide{conn: conn}
}

func (b *brokerSide) next(t *testing.T) packet.Packet {
	t.Helper()
	tmp := make([]byte, 4096)
	for {
		frameLen, ok, err := packet.PeekFrameLength(b.buf)
		if err != nil {
			t.Fatalf("PeekFrameLength: %v", err)
		}
		if ok && frameLen <= len(b.buf) {
			frame := b.buf[:frameLen]
			b.buf = b.buf[frameLen:]
			pkt, err := packet.Parse(frame)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			return pkt
		}
		n, err := b.conn.Read(tmp)
		if err != nil {
			t.Fatalf("broker read: %v", err)
		}
		b.buf = append(b.buf, tmp[:n]...)
	}
}

func (b *brokerSide) send(t *testing.T, p packet.Packet) {
	t.Helper()
	buf, err := p.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, err := b.conn.Write(buf); err != nil {
		t.Fatalf("broker write: %v", err)
	}
}

func newTestConnection(opts ...Option) (*Connection, *brokerSide) {
	clientEnd, brokerEnd := net.Pipe()
	o := newOptions(append([]Option{WithTransactionTimeout(2 * time.Second)}, opts...)...)
	c := newConnection(clientEnd, o)
	return c, newBrokerSide(brokerEnd)
}

func TestConnectAccepted(t *testing.T) {
	c, broker := newTestConnection()
	done := make(chan struct{})
	go func() {
		defer close(done)
		pkt := broker.next(t)
		if _, ok := pkt.(*packet.Connect); !ok {
			t.Errorf("got %T, want *packet.Connect", pkt)
		}
		broker.send(t, &packet.Connack{SessionPresent: true, ReturnCode: packet.ConnectAccepted.Code})
	}()

	sessionPresent, err := c.Connect()
	<-done
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if !sessionPresent {
		t.Error("sessionPresent = false, want true")
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after accepted CONNACK")
	}
}

func TestConnectRejected(t *testing.T) {
	c, broker := newTestConnection()
	go func() {
		broker.next(t)
		broker.send(t, &packet.Connack{ReturnCode: packet.ErrNotAuthorized.Code})
	}()

	_, err := c.Connect()
	if err == nil {
		t.Fatal("Connect() should fail on rejection")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after rejected CONNACK")
	}
}

func connectedTestConnection(t *testing.T) (*Connection, *brokerSide) {
	t.Helper()
	c, broker := newTestConnection()
	go func() {
		broker.next(t)
		broker.send(t, &packet.Connack{ReturnCode: packet.ConnectAccepted.Code})
	}()
	if _, err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return c, broker
}

func TestPublishQoS1(t *testing.T) {
	c, broker := connectedTestConnection(t)
	go func() {
		pkt := broker.next(t)
		pub, ok := pkt.(*packet.Publish)
		if !ok || pub.QoS != packet.AtLeastOnce {
			t.Errorf("got %+v, want QoS1 PUBLISH", pkt)
		}
		broker.send(t, &packet.Puback{PacketID: pub.PacketID})
	}()

	id, err := c.Publish_Qos1(false, false, "a/b", []byte("hi"))
	if err != nil {
		t.Fatalf("Publish_Qos1: %v", err)
	}
	if id == 0 {
		t.Error("Publish_Qos1 returned packet id 0")
	}
}

// S5 — full QoS-2 handshake: PUBLISH -> PUBREC -> PUBREL -> PUBCOMP,
// the same packet id throughout.
func TestPublishQoS2Handshake(t *testing.T) {
	c, broker := connectedTestConnection(t)
	go func() {
		pub := broker.next(t).(*packet.Publish)
		broker.send(t, &packet.Pubrec{PacketID: pub.PacketID})

		rel := broker.next(t).(*packet.Pubrel)
		if rel.PacketID != pub.PacketID {
			t.Errorf("PUBREL id = %d, want %d (must reuse, not re-increment)", rel.PacketID, pub.PacketID)
		}
		broker.send(t, &packet.Pubcomp{PacketID: rel.PacketID})
	}()

	if _, err := c.Publish_Qos2(false, false, "x", []byte("y")); err != nil {
		t.Fatalf("Publish_Qos2: %v", err)
	}
}

func TestSubscribeReturnsCodes(t *testing.T) {
	c, broker := connectedTestConnection(t)
	go func() {
		sub := broker.next(t).(*packet.Subscribe)
		broker.send(t, &packet.Suback{PacketID: sub.PacketID, ReturnCodes: []uint8{packet.SubackMaxQos1, packet.SubackFailure}})
	}()

	codes, err := c.Subscribe([]packet.Subscription{
		{TopicFilter: "a/b", MaximumQoS: packet.AtLeastOnce},
		{TopicFilter: "c/d", MaximumQoS: packet.ExactlyOnce},
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(codes) != 2 || codes[0] != packet.SubackMaxQos1 || codes[1] != packet.SubackFailure {
		t.Errorf("ReturnCodes = %v", codes)
	}
}

// Inbound PUBLISH must be auto-acked and queued for GetIncoming.
func TestInboundPublishAutoAck(t *testing.T) {
	c, broker := connectedTestConnection(t)
	broker.send(t, &packet.Publish{QoS: packet.AtLeastOnce, Topic: "in/topic", PacketID: 5, Payload: []byte("payload")})

	ack := broker.next(t)
	puback, ok := ack.(*packet.Puback)
	if !ok || puback.PacketID != 5 {
		t.Fatalf("got %+v, want PUBACK(5)", ack)
	}

	deadline := time.Now().Add(time.Second)
	for c.IsIncomingEmpty() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	msg, ok := c.GetIncoming()
	if !ok {
		t.Fatal("GetIncoming() found nothing")
	}
	if msg.TopicName != "in/topic" || string(msg.Payload) != "payload" {
		t.Errorf("GetIncoming() = %+v", msg)
	}
}

// S7 — a transaction blocked on a response must fail, not deadlock,
// once the transport closes.
func TestBrokenConnectionUnblocksTransaction(t *testing.T) {
	c, broker := connectedTestConnection(t)

	subErrCh := make(chan error, 1)
	go func() {
		_, err := c.Subscribe([]packet.Subscription{{TopicFilter: "x", MaximumQoS: packet.AtMostOnce}})
		subErrCh <- err
	}()
	broker.next(t) // consume the SUBSCRIBE, then go silent

	time.Sleep(20 * time.Millisecond)
	broker.conn.Close()

	select {
	case err := <-subErrCh:
		if err == nil {
			t.Error("Subscribe should fail once the transport breaks")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Subscribe did not unblock after broken connection")
	}

	if c.IsConnected() {
		t.Error("IsConnected() should be false after broken connection")
	}
	if err := c.Ping(); err == nil {
		t.Error("Ping() should fail immediately once broken")
	}
}

// S6 — with a short keep-alive and no other traffic, the watchdog
// issues a PINGREQ on its own.
func TestKeepAliveWatchdogPings(t *testing.T) {
	c, broker := newTestConnection(WithKeepAlive(200 * time.Millisecond))
	go func() {
		broker.next(t)
		broker.send(t, &packet.Connack{ReturnCode: packet.ConnectAccepted.Code})
	}()
	if _, err := c.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	pingCh := make(chan struct{}, 1)
	go func() {
		if _, ok := broker.next(t).(*packet.Pingreq); ok {
			broker.send(t, &packet.Pingresp{})
			pingCh <- struct{}{}
		}
	}()

	select {
	case <-pingCh:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not send PINGREQ within the keep-alive window")
	}
	if !c.IsConnected() {
		t.Error("IsConnected() should remain true across a keep-alive ping")
	}
}
