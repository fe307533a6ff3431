package packet

// Connack is the CONNACK control packet (spec §3, §4.1). Remaining
// Length is always 2: one flags byte (only bit 0, SessionPresent, is
// meaningful) and one return code byte.
type Connack struct {
	SessionPresent bool
	ReturnCode     uint8
}

func (p *Connack) Kind() byte { return CONNACK }

func (p *Connack) Serialize() ([]byte, error) {
	body := make([]byte, 2)
	if p.SessionPresent {
		body[0] = 1
	}
	body[1] = p.ReturnCode
	fh := &FixedHeader{Type: CONNACK}
	header, err := fh.pack(len(body))
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

func (p *Connack) unpack(fh *FixedHeader, c *Cursor) error {
	if fh.RemainingLength != 2 {
		return ErrMalformedPacket
	}
	b, err := c.take(1)
	if err != nil {
		return err
	}
	if b[0]&0xFE != 0 {
		return ErrMalformedPacket
	}
	p.SessionPresent = b[0]&0x01 != 0
	b, err = c.take(1)
	if err != nil {
		return err
	}
	p.ReturnCode = b[0]
	return nil
}
