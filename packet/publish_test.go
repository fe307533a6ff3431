package packet

import (
	"bytes"
	"testing"
)

// S4: a retained QoS-1 PUBLISH round trips and its first serialized
// byte is 0x33 (type 3, flags DUP=0 QoS=1 RETAIN=1 = 0011).
func TestPublishQoS1RoundTrip(t *testing.T) {
	p := &Publish{QoS: AtLeastOnce, Retain: true, Topic: "a/b", PacketID: 7, Payload: []byte("hi")}
	buf, err := p.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if buf[0] != 0x33 {
		t.Errorf("first byte = %02x, want 33", buf[0])
	}
	pkt, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := pkt.(*Publish)
	if got.Topic != p.Topic || got.PacketID != p.PacketID || !bytes.Equal(got.Payload, p.Payload) || got.QoS != p.QoS {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

// PacketID must be absent on the wire for QoS 0, per spec property 3.
func TestPublishQoS0HasNoPacketID(t *testing.T) {
	p := &Publish{QoS: AtMostOnce, Topic: "t", Payload: []byte("x")}
	buf, err := p.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// fixed header(2) + topic len-prefix(2)+1 + payload(1) = 6 bytes;
	// the remaining length after the fixed header is 4.
	want := []byte{0x30, 0x04, 0x00, 0x01, 't', 'x'}
	if !bytes.Equal(buf, want) {
		t.Errorf("Serialize(QoS0) = % x, want % x", buf, want)
	}
	pkt, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := pkt.(*Publish)
	if got.PacketID != 0 {
		t.Errorf("PacketID = %d, want 0 for QoS0", got.PacketID)
	}
}

func TestPublishZeroLengthPayloadIsLegal(t *testing.T) {
	p := &Publish{QoS: AtMostOnce, Topic: "t"}
	buf, err := p.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	pkt, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(pkt.(*Publish).Payload) != 0 {
		t.Errorf("Payload = %v, want empty", pkt.(*Publish).Payload)
	}
}

func TestPublishDupRetainFlags(t *testing.T) {
	p := &Publish{Dup: true, Retain: true, QoS: ExactlyOnce, Topic: "t", PacketID: 1}
	buf, err := p.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	// 0x3<<4 | Dup(0x08) | QoS2(0x04) | Retain(0x01) = 0x3D
	if buf[0] != 0x3D {
		t.Errorf("first byte = %02x, want 3d", buf[0])
	}
}
