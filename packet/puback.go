package packet

// Puback acknowledges a QoS-1 PUBLISH (spec §3, §4.2.1).
type Puback struct {
	PacketID uint16
}

func (p *Puback) Kind() byte { return PUBACK }

func (p *Puback) Serialize() ([]byte, error) {
	return packIDOnly(&FixedHeader{Type: PUBACK}, p.PacketID)
}

func (p *Puback) unpack(fh *FixedHeader, c *Cursor) error {
	id, err := unpackIDOnly(fh, c)
	if err != nil {
		return err
	}
	p.PacketID = id
	return nil
}
