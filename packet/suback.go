package packet

// Suback carries one return code per filter in the originating
// SUBSCRIBE, in the same order (spec §3, §6). Each byte is reported
// verbatim — the codec does not validate it against
// SubackMaxQos{0,1,2}/SubackFailure; that is a caller concern.
type Suback struct {
	PacketID    uint16
	ReturnCodes []uint8
}

func (p *Suback) Kind() byte { return SUBACK }

func (p *Suback) Serialize() ([]byte, error) {
	body := make([]byte, 0, 2+len(p.ReturnCodes))
	body = putU16(body, p.PacketID)
	body = append(body, p.ReturnCodes...)

	fh := &FixedHeader{Type: SUBACK}
	header, err := fh.pack(len(body))
	if err != nil {
		return nil, err
	}
	return append(header, body...), nil
}

func (p *Suback) unpack(_ *FixedHeader, c *Cursor) error {
	id, err := readU16(c)
	if err != nil {
		return err
	}
	if id == 0 {
		return ErrMalformedPacket
	}
	p.PacketID = id
	p.ReturnCodes = append([]byte(nil), c.Bytes()...)
	c.Skip(c.Size())
	return nil
}
