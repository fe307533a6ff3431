package packet

// PUBACK, PUBREC, PUBREL, PUBCOMP and UNSUBACK all share the same
// variable header shape: exactly one Packet Identifier and no payload
// (spec §3, §4.1). This file holds the shared pack/unpack so each
// type's file stays a thin wrapper naming its own fixed-header flags.

func packIDOnly(fh *FixedHeader, id uint16) ([]byte, error) {
	header, err := fh.pack(2)
	if err != nil {
		return nil, err
	}
	return append(header, putU16(nil, id)...), nil
}

func unpackIDOnly(fh *FixedHeader, c *Cursor) (uint16, error) {
	if fh.RemainingLength != 2 {
		return 0, ErrMalformedPacket
	}
	id, err := readU16(c)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, ErrMalformedPacket
	}
	return id, nil
}
