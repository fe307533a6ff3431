package packet

// QoS is the delivery guarantee requested for a PUBLISH or a
// SUBSCRIBE filter (spec §3).
type QoS uint8

const (
	AtMostOnce  QoS = 0
	AtLeastOnce QoS = 1
	ExactlyOnce QoS = 2
)

func (q QoS) String() string {
	switch q {
	case AtMostOnce:
		return "QoS0"
	case AtLeastOnce:
		return "QoS1"
	case ExactlyOnce:
		return "QoS2"
	default:
		return "QoS?"
	}
}

// Message is a received application message: a topic name and its
// payload, as delivered by an inbound PUBLISH (spec §3 "Received
// application message").
type Message struct {
	TopicName string
	Payload   []byte
}

// Will is the message a broker publishes on behalf of a client that
// disconnects abnormally (spec §3 CONNECT payload, Will).
type Will struct {
	Topic   string
	Payload []byte
	QoS     QoS
	Retain  bool
}

// Subscription pairs a topic filter with the maximum QoS requested
// for it in a SUBSCRIBE packet (spec §3 "Topic filter"). The core
// never interprets filter wildcards — that is the broker's job.
type Subscription struct {
	TopicFilter string
	MaximumQoS  QoS
}
