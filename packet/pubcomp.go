package packet

// Pubcomp is the third and final step of the QoS-2 publish handshake.
type Pubcomp struct {
	PacketID uint16
}

func (p *Pubcomp) Kind() byte { return PUBCOMP }

func (p *Pubcomp) Serialize() ([]byte, error) {
	return packIDOnly(&FixedHeader{Type: PUBCOMP}, p.PacketID)
}

func (p *Pubcomp) unpack(fh *FixedHeader, c *Cursor) error {
	id, err := unpackIDOnly(fh, c)
	if err != nil {
		return err
	}
	p.PacketID = id
	return nil
}
