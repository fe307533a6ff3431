package packet

// Pingresp has no variable header and no payload.
type Pingresp struct{}

func (p *Pingresp) Kind() byte { return PINGRESP }

func (p *Pingresp) Serialize() ([]byte, error) {
	fh := &FixedHeader{Type: PINGRESP}
	return fh.pack(0)
}

func (p *Pingresp) unpack(_ *FixedHeader, c *Cursor) error {
	if c.Size() != 0 {
		return ErrMalformedPacket
	}
	return nil
}
