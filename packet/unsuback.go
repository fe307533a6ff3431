package packet

// Unsuback acknowledges an UNSUBSCRIBE.
type Unsuback struct {
	PacketID uint16
}

func (p *Unsuback) Kind() byte { return UNSUBACK }

func (p *Unsuback) Serialize() ([]byte, error) {
	return packIDOnly(&FixedHeader{Type: UNSUBACK}, p.PacketID)
}

func (p *Unsuback) unpack(fh *FixedHeader, c *Cursor) error {
	id, err := unpackIDOnly(fh, c)
	if err != nil {
		return err
	}
	p.PacketID = id
	return nil
}
