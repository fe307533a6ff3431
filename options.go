package mqttc

import (
	"io"
	"log"
	"time"

	"github.com/golang-io/requests"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/lumenmq/mqttc/packet"
)

// Options configures a Connection at construction time (spec §9 notes
// the logger should be injected rather than global; the teacher
// configures its Client the same way, through functional options
// rather than a struct literal).
type Options struct {
	ClientID     string
	CleanSession bool

	HasUserName bool
	UserName    string
	HasPassword bool
	Password    string

	Will *packet.Will

	KeepAlive          time.Duration
	DialTimeout        time.Duration
	TransactionTimeout time.Duration
	PacketIDBase       uint16

	Logger     *log.Logger
	Registerer prometheus.Registerer
}

// Option mutates an Options during construction.
type Option func(*Options)

func newOptions(opts ...Option) Options {
	o := Options{
		ClientID:           "mqttc-" + requests.GenId(),
		CleanSession:       true,
		KeepAlive:          60 * time.Second,
		DialTimeout:        10 * time.Second,
		TransactionTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClientID overrides the generated client identifier.
func WithClientID(id string) Option {
	return func(o *Options) { o.ClientID = id }
}

// WithCleanSession sets the CleanSession bit sent on CONNECT. Default
// is true (discard any prior session).
func WithCleanSession(clean bool) Option {
	return func(o *Options) { o.CleanSession = clean }
}

// WithCredentials sets the CONNECT user name and password. Setting a
// password without a user name is rejected at Connect time, per the
// credentials invariant of spec §3.
func WithCredentials(userName, password string) Option {
	return func(o *Options) {
		o.HasUserName = userName != ""
		o.UserName = userName
		o.HasPassword = password != ""
		o.Password = password
	}
}

// WithWill attaches a Last Will and Testament to the next CONNECT,
// recovered from original_source/LIB.Share/utilsShareMQTT.cpp's will
// construction helper (SPEC_FULL.md "Supplemented features").
func WithWill(topic string, payload []byte, qos packet.QoS, retain bool) Option {
	return func(o *Options) {
		o.Will = &packet.Will{Topic: topic, Payload: payload, QoS: qos, Retain: retain}
	}
}

// WithKeepAlive sets the keep-alive interval advertised on CONNECT and
// enforced by the watchdog (spec §4.2.5). Rounded down to whole
// seconds on the wire, since MQTT's KeepAlive field is seconds.
func WithKeepAlive(d time.Duration) Option {
	return func(o *Options) { o.KeepAlive = d }
}

// WithDialTimeout bounds the initial transport dial.
func WithDialTimeout(d time.Duration) Option {
	return func(o *Options) { o.DialTimeout = d }
}

// WithTransactionTimeout bounds every request/response transaction
// (spec §5: "suggested 10s, must be ≤ 1.5 × keep-alive").
func WithTransactionTimeout(d time.Duration) Option {
	return func(o *Options) { o.TransactionTimeout = d }
}

// WithPacketIDBase seeds the packet-id counter from a configured base
// instead of 0, mirroring original_source/utilsPacketMQTTv3_1_1.h.
func WithPacketIDBase(base uint16) Option {
	return func(o *Options) { o.PacketIDBase = base }
}

// WithLogger injects a logger for connection close (with its cause,
// such as a malformed frame or a disconnect), failed keep-alive pings
// and failed redial attempts. A nil logger (the default) discards
// these events.
func WithLogger(l *log.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetricsRegisterer registers the Connection's Stats on reg
// instead of leaving them unregistered.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *Options) { o.Registerer = reg }
}

var discardLogger = log.New(io.Discard, "", 0)
