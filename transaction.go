package mqttc

import (
	"time"

	"github.com/lumenmq/mqttc/packet"
)

// slotQueueCapacity bounds each per-response-type inbound queue (spec
// DESIGN NOTES §9: "capacity 5 is enough — any excess is the sign of
// a bug or a rogue broker; drop the oldest").
const slotQueueCapacity = 5

// slot is one response-type's inbound queue. The teacher correlates
// responses with a plain buffered channel per packet kind
// (Client.recv); a Go channel already behaves like a capacity-bounded
// queue guarded by an implicit condition variable, so it stands in
// for the mutex+condvar pairing spec §4.2.2/§5 describes.
type slot struct {
	ch chan []byte
}

func newSlot() *slot {
	return &slot{ch: make(chan []byte, slotQueueCapacity)}
}

// clear drains any stale frames left over from a previous, aborted
// transaction (spec §4.2.2 step 2: "stale responses... never satisfy
// a new one").
func (s *slot) clear() {
	for {
		select {
		case <-s.ch:
		default:
			return
		}
	}
}

// put enqueues frame, dropping the oldest queued frame if the slot is
// full.
func (s *slot) put(frame []byte) {
	for {
		select {
		case s.ch <- frame:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// wait blocks for a matching frame, a broken-connection notification,
// or timeout, whichever happens first (spec §4.2.2 step 5, §5
// "cancellation and timeouts").
func (s *slot) wait(timeout time.Duration, broken <-chan struct{}) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case frame := <-s.ch:
		return frame, nil
	case <-broken:
		return nil, ErrBrokenConnection
	case <-timer.C:
		return nil, ErrTransactionTimeout
	}
}

// transact runs one request/response cycle under the transaction
// mutex: Clear the response slot, write the request, then wait for
// the type-matched response (spec §4.2.2). expect == 0 means the
// request has no response (PUBLISH QoS0, DISCONNECT) and transact
// returns as soon as the write completes.
//
// QoS-2 Publish needs two such cycles — PUBLISH/PUBREC then
// PUBREL/PUBCOMP — performed as one lock acquisition rather than two
// reentrant ones (spec DESIGN NOTES §9, option (a)); callers that need
// that do their own locking and call transactLocked twice.
func (c *Connection) transact(req packet.Packet, expect byte) (packet.Packet, error) {
	c.txMu.Lock()
	defer c.txMu.Unlock()
	return c.transactLocked(req, expect)
}

func (c *Connection) transactLocked(req packet.Packet, expect byte) (packet.Packet, error) {
	if !c.isOpen() {
		return nil, ErrNotConnected
	}

	var sl *slot
	if expect != 0 {
		sl = c.slots[expect]
		sl.clear()
	}

	if err := c.writeFrame(req); err != nil {
		return nil, err
	}
	c.noteTransaction()
	c.stats.transactions.Inc()

	if expect == 0 {
		return nil, nil
	}

	frame, err := sl.wait(c.opts.TransactionTimeout, c.brokenCh)
	if err != nil {
		return nil, err
	}
	resp, err := packet.Parse(frame)
	if err != nil {
		return nil, err
	}
	if resp.Kind() != expect {
		return nil, ErrUnexpectedResponse
	}
	return resp, nil
}
