package mqttc

import "github.com/prometheus/client_golang/prometheus"

// Stats are the per-Connection Prometheus collectors, grounded on the
// teacher's package-level Stat (here made per-instance so multiple
// Connections in one process don't collide on registration).
type Stats struct {
	packetsSent      prometheus.Counter
	bytesSent        prometheus.Counter
	packetsReceived  prometheus.Counter
	bytesReceived    prometheus.Counter
	messagesReceived prometheus.Counter
	transactions     prometheus.Counter
	activeConnection prometheus.Gauge
}

func newStats(clientID string) *Stats {
	labels := prometheus.Labels{"client_id": clientID}
	return &Stats{
		packetsSent:      prometheus.NewCounter(prometheus.CounterOpts{Name: "mqttc_packets_sent_total", Help: "Control packets written to the transport.", ConstLabels: labels}),
		bytesSent:        prometheus.NewCounter(prometheus.CounterOpts{Name: "mqttc_bytes_sent_total", Help: "Bytes written to the transport.", ConstLabels: labels}),
		packetsReceived:  prometheus.NewCounter(prometheus.CounterOpts{Name: "mqttc_packets_received_total", Help: "Control packets parsed from the transport.", ConstLabels: labels}),
		bytesReceived:    prometheus.NewCounter(prometheus.CounterOpts{Name: "mqttc_bytes_received_total", Help: "Bytes read from the transport.", ConstLabels: labels}),
		messagesReceived: prometheus.NewCounter(prometheus.CounterOpts{Name: "mqttc_messages_received_total", Help: "Inbound PUBLISH application messages queued for GetIncoming.", ConstLabels: labels}),
		transactions:     prometheus.NewCounter(prometheus.CounterOpts{Name: "mqttc_transactions_total", Help: "Transaction requests written to the transport, whether or not a response followed.", ConstLabels: labels}),
		activeConnection: prometheus.NewGauge(prometheus.GaugeOpts{Name: "mqttc_connection_open", Help: "1 while the connection is open, 0 otherwise.", ConstLabels: labels}),
	}
}

func (s *Stats) register(reg prometheus.Registerer) {
	if reg == nil {
		return
	}
	for _, c := range []prometheus.Collector{
		s.packetsSent, s.bytesSent, s.packetsReceived, s.bytesReceived,
		s.messagesReceived, s.transactions, s.activeConnection,
	} {
		reg.MustRegister(c)
	}
}
