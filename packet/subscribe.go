package packet

// Subscribe carries one or more topic-filter/requested-QoS pairs
// (spec §3, §4.1). An empty filter list is malformed.
type Subscribe struct {
	PacketID      uint16
	Subscriptions []Subscription
}

func (p *Subscribe) Kind() byte { return SUBSCRIBE }

func (p *Subscribe) Serialize() ([]byte, error) {
	if len(p.Subscriptions) == 0 {
		return nil, ErrEmptySubscribeList
	}
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(putU16(nil, p.PacketID))
	for _, s := range p.Subscriptions {
		buf.Write(putString(nil, s.TopicFilter))
		buf.WriteByte(byte(s.MaximumQoS))
	}

	fh := &FixedHeader{Type: SUBSCRIBE}
	header, err := fh.pack(buf.Len())
	if err != nil {
		return nil, err
	}
	return append(header, buf.Bytes()...), nil
}

func (p *Subscribe) unpack(_ *FixedHeader, c *Cursor) error {
	id, err := readU16(c)
	if err != nil {
		return err
	}
	if id == 0 {
		return ErrMalformedPacket
	}
	p.PacketID = id

	for c.Size() > 0 {
		filter, err := readString(c)
		if err != nil {
			return err
		}
		qb, err := c.take(1)
		if err != nil {
			return err
		}
		if qb[0] > byte(ExactlyOnce) {
			return ErrMalformedPacket
		}
		p.Subscriptions = append(p.Subscriptions, Subscription{TopicFilter: filter, MaximumQoS: QoS(qb[0])})
	}
	if len(p.Subscriptions) == 0 {
		return ErrEmptySubscribeList
	}
	return nil
}
