// Package metrics exports signaling counters in Prometheus format.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "signalmaster"

// Admission outcomes.
const (
	AdmissionAccepted   = "accepted"
	AdmissionNoSession  = "no_session"
	AdmissionMalformed  = "malformed"
	AdmissionDenied     = "denied"
	AdmissionStoreError = "store_error"
)

type Metrics struct {
	registry *prometheus.Registry

	admissions  *prometheus.CounterVec
	connections prometheus.Gauge
	rooms       prometheus.Gauge
	relayed     prometheus.Counter
	relayMisses prometheus.Counter
	dropped     prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		admissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admissions_total",
			Help:      "WebSocket admission attempts by outcome.",
		}, []string{"result"}),
		connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connections",
			Help:      "Live signaling connections.",
		}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms",
			Help:      "Rooms with at least one member.",
		}),
		relayed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relayed_messages_total",
			Help:      "Signaling payloads forwarded to their target.",
		}),
		relayMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relay_misses_total",
			Help:      "Signaling payloads addressed to an unknown connection.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_frames_total",
			Help:      "Frames not delivered because the recipient buffer was full or closed.",
		}),
	}
	m.registry.MustRegister(
		m.admissions, m.connections, m.rooms, m.relayed, m.relayMisses, m.dropped,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Admission(result string) {
	if m == nil {
		return
	}
	m.admissions.WithLabelValues(result).Inc()
}

func (m *Metrics) ConnectionOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnectionClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) SetRooms(n int) {
	if m == nil {
		return
	}
	m.rooms.Set(float64(n))
}

func (m *Metrics) Relayed() {
	if m == nil {
		return
	}
	m.relayed.Inc()
}

func (m *Metrics) RelayMiss() {
	if m == nil {
		return
	}
	m.relayMisses.Inc()
}

func (m *Metrics) Dropped(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.dropped.Add(float64(n))
}
