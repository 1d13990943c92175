package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	offersSent       *prometheus.CounterVec
	offerOutcomes    *prometheus.CounterVec
	missionsResolved *prometheus.CounterVec
	escalationsTotal *prometheus.CounterVec
	acceptLatency    *prometheus.HistogramVec
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.CounterVec, *prometheus.HistogramVec) {
	sent := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offers_sent_total",
			Help: "Number of offers sent to providers",
		},
		[]string{"tier"},
	)
	outcomes := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "offer_outcomes_total",
			Help: "Terminal offer transitions by status",
		},
		[]string{"status"},
	)
	missions := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "missions_resolved_total",
			Help: "Missions reaching a terminal dispatch state",
		},
		[]string{"status"},
	)
	esc := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalations_total",
			Help: "Escalation policy decisions by target",
		},
		[]string{"target"},
	)
	lat := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "offer_accept_latency_seconds",
			Help:    "Latency from offer sent to acceptance",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tier"},
	)
	return sent, outcomes, missions, esc, lat
}

func init() {
	offersSent, offerOutcomes, missionsResolved, escalationsTotal, acceptLatency = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(offersSent, offerOutcomes, missionsResolved, escalationsTotal, acceptLatency)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	offersSent, offerOutcomes, missionsResolved, escalationsTotal, acceptLatency = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
