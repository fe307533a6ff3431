package mqttc

import (
	"context"
	"sync/atomic"
	"time"
)

// watchdogTick is how often the keep-alive watchdog wakes to check
// the idle interval (spec §4.2.5 suggests 1s).
const watchdogTick = 1 * time.Second

// runWatchdog is the third actor of spec §5: while the connection
// thinks it's open and no other transaction has reset the idle timer,
// it issues a PINGREQ once the idle interval exceeds the negotiated
// keep-alive. It returns when the connection is torn down or the
// receiver reports broken. ctx is the errgroup-derived context from
// startTasks: it is cancelled the moment runReceiver returns, which is
// what lets the watchdog fall out of its select on a broker-initiated
// disconnect instead of only ever noticing via its own ticker.
func (c *Connection) runWatchdog(ctx context.Context) error {
	if c.opts.KeepAlive <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(watchdogTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-c.closedCh:
			return nil
		case <-ticker.C:
			if !c.keepConnection.Load() {
				continue
			}
			idle := time.Since(c.lastTransactionTime())
			if idle < c.opts.KeepAlive {
				continue
			}
			if err := c.Ping(); err != nil {
				c.logf("keep-alive ping failed: %v", err)
			}
		}
	}
}

func (c *Connection) noteTransaction() {
	atomic.StoreInt64(&c.lastTxUnixNano, time.Now().UnixNano())
}

func (c *Connection) lastTransactionTime() time.Time {
	return time.Unix(0, atomic.LoadInt64(&c.lastTxUnixNano))
}
