package packet

// Pubrel is the second step of the QoS-2 publish handshake. It MUST
// carry the same Packet Identifier as the originating PUBLISH/PUBREC
// — it is never re-incremented (spec DESIGN NOTES §9 Open Questions).
// Its fixed-header flags are reserved to 0b0010.
type Pubrel struct {
	PacketID uint16
}

func (p *Pubrel) Kind() byte { return PUBREL }

func (p *Pubrel) Serialize() ([]byte, error) {
	return packIDOnly(&FixedHeader{Type: PUBREL}, p.PacketID)
}

func (p *Pubrel) unpack(fh *FixedHeader, c *Cursor) error {
	id, err := unpackIDOnly(fh, c)
	if err != nil {
		return err
	}
	p.PacketID = id
	return nil
}
