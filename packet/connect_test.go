package packet

import (
	"bytes"
	"testing"
)

// S2: a CONNECT with CleanSession set and a 60-second keep-alive
// serializes byte-exact.
func TestConnectSerializeBasic(t *testing.T) {
	c := &Connect{CleanSession: true, KeepAlive: 60, ClientID: "testclient"}
	got, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	want := []byte{
		0x10, 0x16, // fixed header: CONNECT, remaining length 22
		0x00, 0x04, 'M', 'Q', 'T', 'T',
		0x04,       // protocol level 4
		0x02,       // flags: CleanSession only
		0x00, 0x3C, // keep alive 60
		0x00, 0x0A, 't', 'e', 's', 't', 'c', 'l', 'i', 'e', 'n', 't',
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Serialize() = % x, want % x", got, want)
	}
}

func TestConnectRoundTripWithWillAndCredentials(t *testing.T) {
	c := &Connect{
		CleanSession: true,
		KeepAlive:    30,
		ClientID:     "client-42",
		Will:         &Will{Topic: "status/client-42", Payload: []byte("offline"), QoS: AtLeastOnce, Retain: true},
		HasUserName:  true,
		UserName:     "alice",
		HasPassword:  true,
		Password:     "hunter2",
	}
	buf, err := c.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	pkt, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got, ok := pkt.(*Connect)
	if !ok {
		t.Fatalf("Parse returned %T, want *Connect", pkt)
	}
	if got.ClientID != c.ClientID || got.KeepAlive != c.KeepAlive || !got.CleanSession {
		t.Errorf("basic fields mismatch: %+v", got)
	}
	if got.Will == nil || got.Will.Topic != c.Will.Topic || !bytes.Equal(got.Will.Payload, c.Will.Payload) ||
		got.Will.QoS != c.Will.QoS || got.Will.Retain != c.Will.Retain {
		t.Errorf("Will mismatch: %+v", got.Will)
	}
	if got.UserName != c.UserName || got.Password != c.Password {
		t.Errorf("credentials mismatch: user=%q pass=%q", got.UserName, got.Password)
	}
}

func TestConnectCredentialFlagsConsistency(t *testing.T) {
	c := &Connect{ClientID: "x", HasPassword: true, HasUserName: false}
	if _, err := c.Serialize(); err != ErrCredentialFlags {
		t.Errorf("Serialize(password without username) = %v, want ErrCredentialFlags", err)
	}
}

func TestConnectUnpackRejectsBadProtocolName(t *testing.T) {
	buf := []byte{0x00, 0x03, 'M', 'Q', 'X', 0x04, 0x00, 0x00, 0x00, 0x00, 0x00}
	c := &Connect{}
	err := c.unpack(&FixedHeader{Type: CONNECT, RemainingLength: uint32(len(buf))}, NewCursor(buf))
	if err != ErrProtocolName {
		t.Errorf("unpack(bad protocol name) = %v, want ErrProtocolName", err)
	}
}

func TestConnectUnpackRejectsWillFlagInconsistency(t *testing.T) {
	// WillFlag=0 but WillQoS bits set (flags 0x10): inconsistent.
	body := []byte{0x00, 0x04, 'M', 'Q', 'T', 'T', 0x04, 0x10, 0x00, 0x00, 0x00, 0x00}
	c := &Connect{}
	err := c.unpack(&FixedHeader{Type: CONNECT, RemainingLength: uint32(len(body))}, NewCursor(body))
	if err != ErrWillFlagInconsistent {
		t.Errorf("unpack(will flag inconsistency) = %v, want ErrWillFlagInconsistent", err)
	}
}

// S3: a CONNACK with SessionPresent=true and return code
// ConnectAccepted parses from its four raw bytes.
func TestConnackParse(t *testing.T) {
	buf := []byte{0x20, 0x02, 0x01, 0x00}
	pkt, err := Parse(buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ca, ok := pkt.(*Connack)
	if !ok {
		t.Fatalf("Parse returned %T, want *Connack", pkt)
	}
	if !ca.SessionPresent || ca.ReturnCode != 0x00 {
		t.Errorf("Connack = %+v, want SessionPresent=true ReturnCode=0", ca)
	}
}
