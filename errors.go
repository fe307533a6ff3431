package mqttc

import "errors"

// Façade-level error taxonomy (spec §7). Codec failures are reported
// as the sentinels in package packet instead; these wrap or stand
// alongside them at the Connection boundary.
var (
	ErrNotConnected       = errors.New("mqttc: not connected")
	ErrAlreadyConnected   = errors.New("mqttc: already connected")
	ErrBrokenConnection   = errors.New("mqttc: broken connection")
	ErrTransactionTimeout = errors.New("mqttc: transaction timed out")
	ErrUnexpectedResponse = errors.New("mqttc: unexpected response packet")
	ErrConnectRejected    = errors.New("mqttc: broker rejected connect")
	ErrSubscribeRejected  = errors.New("mqttc: broker rejected one or more subscriptions")
)
