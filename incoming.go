package mqttc

import (
	"sync"

	"github.com/lumenmq/mqttc/packet"
)

// incomingQueue holds received application messages between delivery
// by the receiver task and consumption by GetIncoming (spec §3
// "Received application message", §5 "producer is the receiver;
// consumers are caller-thread GetIncoming calls"). Modelled after the
// teacher's InFight map, but FIFO rather than keyed by packet id since
// delivered messages have no id to key on once acknowledged.
type incomingQueue struct {
	mu       sync.Mutex
	messages []packet.Message
}

func (q *incomingQueue) push(m packet.Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.messages = append(q.messages, m)
}

func (q *incomingQueue) pop() (packet.Message, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.messages) == 0 {
		return packet.Message{}, false
	}
	m := q.messages[0]
	q.messages = q.messages[1:]
	return m, true
}

func (q *incomingQueue) empty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.messages) == 0
}
