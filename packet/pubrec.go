package packet

// Pubrec is the first step of the QoS-2 publish handshake, sent in
// response to PUBLISH (spec §3, §8 scenario S5).
type Pubrec struct {
	PacketID uint16
}

func (p *Pubrec) Kind() byte { return PUBREC }

func (p *Pubrec) Serialize() ([]byte, error) {
	return packIDOnly(&FixedHeader{Type: PUBREC}, p.PacketID)
}

func (p *Pubrec) unpack(fh *FixedHeader, c *Cursor) error {
	id, err := unpackIDOnly(fh, c)
	if err != nil {
		return err
	}
	p.PacketID = id
	return nil
}
