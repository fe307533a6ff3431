package mqttc

import "github.com/lumenmq/mqttc/packet"

// handleInbound implements the auto-acknowledgement rules of spec
// §4.2.4 for the two packet types the broker pushes unsolicited:
// PUBLISH and, to finish an inbound QoS-2 handshake, PUBREL. It
// reports handled=true when it consumed the packet; otherwise the
// caller (the receiver task) delivers the frame to the transaction
// correlator instead.
func (c *Connection) handleInbound(pkt packet.Packet, frame []byte) (handled bool, err error) {
	switch p := pkt.(type) {
	case *packet.Publish:
		return true, c.handleInboundPublish(p)
	case *packet.Pubrel:
		return true, c.handleInboundPubrel(p)
	default:
		return false, nil
	}
}

func (c *Connection) handleInboundPublish(p *packet.Publish) error {
	c.incoming.push(packet.Message{TopicName: p.Topic, Payload: p.Payload})
	c.stats.messagesReceived.Inc()

	switch p.QoS {
	case packet.AtMostOnce:
		return nil
	case packet.AtLeastOnce:
		return c.writeFrame(&packet.Puback{PacketID: p.PacketID})
	case packet.ExactlyOnce:
		// Per spec §4.2.4's note, the client need not track
		// pending inbound ids to suppress duplicate delivery; the
		// broker is responsible for not re-sending after PUBCOMP.
		return c.writeFrame(&packet.Pubrec{PacketID: p.PacketID})
	default:
		return nil
	}
}

func (c *Connection) handleInboundPubrel(p *packet.Pubrel) error {
	return c.writeFrame(&packet.Pubcomp{PacketID: p.PacketID})
}
