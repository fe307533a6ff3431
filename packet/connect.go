package packet

import (
	"bytes"
)

// protocolName is the literal wire value of the CONNECT protocol name
// field: a UTF-8 length-prefixed "MQTT" (spec §6).
var protocolName = []byte{0x00, 0x04, 'M', 'Q', 'T', 'T'}

// ProtocolLevel311 is the MQTT v3.1.1 protocol level byte (spec §6).
const ProtocolLevel311 byte = 4

// Connect is the CONNECT control packet (spec §3 "CONNECT payload").
// Field order on the wire is fixed: ClientId, WillTopic, WillMessage,
// UserName, Password, with each optional group present only when its
// flag bit is set.
type Connect struct {
	CleanSession bool
	KeepAlive    uint16
	ClientID     string
	Will         *Will // nil means no will
	UserName     string
	HasUserName  bool
	Password     string
	HasPassword  bool
}

func (p *Connect) Kind() byte { return CONNECT }

func (p *Connect) Serialize() ([]byte, error) {
	if p.HasPassword && !p.HasUserName {
		return nil, ErrCredentialFlags
	}
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(protocolName)
	buf.WriteByte(ProtocolLevel311)

	var flags byte
	if p.HasUserName {
		flags |= 1 << 7
	}
	if p.HasPassword {
		flags |= 1 << 6
	}
	if p.Will != nil {
		flags |= 1 << 2
		if p.Will.Retain {
			flags |= 1 << 5
		}
		flags |= byte(p.Will.QoS&0x03) << 3
	}
	if p.CleanSession {
		flags |= 1 << 1
	}
	buf.WriteByte(flags)

	var kab [2]byte
	kab[0], kab[1] = byte(p.KeepAlive>>8), byte(p.KeepAlive)
	buf.Write(kab[:])

	buf.Write(putString(nil, p.ClientID))
	if p.Will != nil {
		buf.Write(putString(nil, p.Will.Topic))
		buf.Write(putBinary(nil, p.Will.Payload))
	}
	if p.HasUserName {
		buf.Write(putString(nil, p.UserName))
	}
	if p.HasPassword {
		buf.Write(putBinary(nil, []byte(p.Password)))
	}

	fh := &FixedHeader{Type: CONNECT}
	header, err := fh.pack(buf.Len())
	if err != nil {
		return nil, err
	}
	return append(header, buf.Bytes()...), nil
}

func (p *Connect) unpack(_ *FixedHeader, c *Cursor) error {
	name, err := c.take(6)
	if err != nil {
		return err
	}
	if !bytes.Equal(name, protocolName) {
		return ErrProtocolName
	}
	level, err := c.take(1)
	if err != nil {
		return err
	}
	if level[0] != ProtocolLevel311 {
		return ErrUnsupportedProtocolVersion
	}
	flagsB, err := c.take(1)
	if err != nil {
		return err
	}
	flags := flagsB[0]
	if flags&0x01 != 0 {
		return ErrMalformedPacket // reserved bit must be 0
	}
	userNameFlag := flags&(1<<7) != 0
	passwordFlag := flags&(1<<6) != 0
	willRetain := flags&(1<<5) != 0
	willQoS := QoS((flags >> 3) & 0x03)
	willFlag := flags&(1<<2) != 0
	p.CleanSession = flags&(1<<1) != 0

	if passwordFlag && !userNameFlag {
		return ErrCredentialFlags
	}
	if !willFlag && (willQoS != 0 || willRetain) {
		return ErrWillFlagInconsistent
	}
	if willQoS > ExactlyOnce {
		return ErrMalformedPacket
	}

	ka, err := readU16(c)
	if err != nil {
		return err
	}
	p.KeepAlive = ka

	p.ClientID, err = readString(c)
	if err != nil {
		return err
	}

	if willFlag {
		topic, err := readString(c)
		if err != nil {
			return err
		}
		payload, err := readBinary(c)
		if err != nil {
			return err
		}
		p.Will = &Will{Topic: topic, Payload: payload, QoS: willQoS, Retain: willRetain}
	}
	p.HasUserName = userNameFlag
	if userNameFlag {
		p.UserName, err = readString(c)
		if err != nil {
			return err
		}
	}
	p.HasPassword = passwordFlag
	if passwordFlag {
		pw, err := readBinary(c)
		if err != nil {
			return err
		}
		p.Password = string(pw)
	}
	return nil
}
