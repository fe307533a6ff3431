package packet

// Publish is the PUBLISH control packet (spec §3, §6 bit-exact
// layout example). A Packet Identifier is present iff QoS > 0 (spec
// §8 property 3); a zero-length Payload is legal.
type Publish struct {
	Dup      bool
	QoS      QoS
	Retain   bool
	Topic    string
	PacketID uint16 // only meaningful when QoS > 0
	Payload  []byte
}

func (p *Publish) Kind() byte { return PUBLISH }

func (p *Publish) Serialize() ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(putString(nil, p.Topic))
	if p.QoS != AtMostOnce {
		buf.Write(putU16(nil, p.PacketID))
	}
	buf.Write(p.Payload)

	fh := &FixedHeader{Type: PUBLISH, Dup: p.Dup, QoS: uint8(p.QoS), Retain: p.Retain}
	header, err := fh.pack(buf.Len())
	if err != nil {
		return nil, err
	}
	return append(header, buf.Bytes()...), nil
}

func (p *Publish) unpack(fh *FixedHeader, c *Cursor) error {
	p.Dup, p.QoS, p.Retain = fh.Dup, QoS(fh.QoS), fh.Retain

	topic, err := readString(c)
	if err != nil {
		return err
	}
	p.Topic = topic

	if p.QoS != AtMostOnce {
		id, err := readU16(c)
		if err != nil {
			return err
		}
		if id == 0 {
			return ErrMalformedPacket
		}
		p.PacketID = id
	}
	// whatever remains is the payload, zero length is legal.
	p.Payload = append([]byte(nil), c.Bytes()...)
	c.Skip(c.Size())
	return nil
}
