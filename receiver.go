package mqttc

import (
	"fmt"

	"github.com/lumenmq/mqttc/packet"
)

// readChunkSize is how much the receiver asks the transport for on
// each read; the rolling buffer grows past this when a frame spans
// multiple reads.
const readChunkSize = 4096

// runReceiver is the persistent frame-demultiplexer task of spec
// §4.2.3. It owns the transport's read half exclusively for the life
// of the Connection. Each loop iteration reads whatever is available,
// then peels complete frames off the front of a rolling buffer using
// packet.PeekFrameLength, dispatching each to the inbound handler or
// the transaction correlator. It returns the error that ended it
// (EOF or a transport/protocol failure); the caller turns that into a
// broken-connection broadcast.
func (c *Connection) runReceiver() error {
	buf := make([]byte, 0, readChunkSize)
	tmp := make([]byte, readChunkSize)

	for {
		n, err := c.rwc.Read(tmp)
		if n > 0 {
			buf = append(buf, tmp[:n]...)
			c.stats.bytesReceived.Add(float64(n))

			for {
				frameLen, ok, perr := packet.PeekFrameLength(buf)
				if perr != nil {
					return fmt.Errorf("mqttc: invalid frame header: %w", perr)
				}
				if !ok || frameLen > len(buf) {
					break // header or body still incomplete: read more
				}
				frame := buf[:frameLen]
				buf = buf[frameLen:]
				if derr := c.deliver(frame); derr != nil {
					return derr
				}
			}
			// compact so the backing array doesn't grow without
			// bound across a long-lived connection.
			if len(buf) == 0 {
				buf = buf[:0]
			} else if cap(buf)-len(buf) < len(buf) {
				compacted := make([]byte, len(buf), 2*len(buf))
				copy(compacted, buf)
				buf = compacted
			}
		}
		if err != nil {
			return err
		}
	}
}

// deliver parses one already-boundary-known frame and routes it.
func (c *Connection) deliver(frame []byte) error {
	c.stats.packetsReceived.Inc()

	pkt, err := packet.Parse(frame)
	if err != nil {
		// spec §7: a malformed frame fails the current transaction
		// and the connection SHOULD close. The frame boundary is
		// already known correctly (PeekFrameLength succeeded), so
		// the failure is content-level, not a desync; closing is
		// still the simplest way to honour "SHOULD close".
		return fmt.Errorf("%w: %v", packet.ErrMalformedPacket, err)
	}

	handled, err := c.handleInbound(pkt, frame)
	if err != nil {
		return err
	}
	if handled {
		return nil
	}

	if sl := c.slots[pkt.Kind()]; sl != nil {
		sl.put(frame)
	}
	return nil
}
