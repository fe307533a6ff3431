package packet

// Unsubscribe carries one or more topic filters to remove (spec §3).
// Its fixed-header flags are reserved to 0b0010, same as SUBSCRIBE.
type Unsubscribe struct {
	PacketID     uint16
	TopicFilters []string
}

func (p *Unsubscribe) Kind() byte { return UNSUBSCRIBE }

func (p *Unsubscribe) Serialize() ([]byte, error) {
	if len(p.TopicFilters) == 0 {
		return nil, ErrEmptySubscribeList
	}
	buf := getBuffer()
	defer putBuffer(buf)

	buf.Write(putU16(nil, p.PacketID))
	for _, f := range p.TopicFilters {
		buf.Write(putString(nil, f))
	}

	fh := &FixedHeader{Type: UNSUBSCRIBE}
	header, err := fh.pack(buf.Len())
	if err != nil {
		return nil, err
	}
	return append(header, buf.Bytes()...), nil
}

func (p *Unsubscribe) unpack(_ *FixedHeader, c *Cursor) error {
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
		p.TopicFilters = append(p.TopicFilters, filter)
	}
	if len(p.TopicFilters) == 0 {
		return ErrEmptySubscribeList
	}
	return nil
}
