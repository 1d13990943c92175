package metrics

import (
	coremetrics "github.com/koryxa/dispatch/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records offer and mission outcomes in Prometheus metrics.
type PromSink struct {
	outcomes    *prometheus.CounterVec
	missions    *prometheus.CounterVec
	escalations *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewPromSink registers outcome metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using cfg.PrometheusPort.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(_ coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_offer_outcomes_total",
		Help: "Terminal offer transitions recorded by the sink",
	}, []string{"status", "country"})
	missions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_mission_outcomes_total",
		Help: "Terminal mission transitions recorded by the sink",
	}, []string{"status", "tier", "country"})
	escalations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sink_escalations_total",
		Help: "Escalation decisions recorded by the sink",
	}, []string{"target"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sink_offer_accept_latency_seconds",
		Help:    "Time between offer send and acceptance",
		Buckets: prometheus.DefBuckets,
	}, []string{"country"})

	if err := reg.Register(outcomes); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			outcomes = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(missions); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			missions = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(escalations); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			escalations = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{outcomes: outcomes, missions: missions, escalations: escalations, latency: latency}, nil
}

// RecordOfferOutcome increments the counter for each outcome.
func (s *PromSink) RecordOfferOutcome(outs []coremetrics.OfferOutcome) error {
	for _, o := range outs {
		s.outcomes.WithLabelValues(o.Status.String(), o.Country).Inc()
		if o.Latency > 0 {
			s.latency.WithLabelValues(o.Country).Observe(o.Latency.Seconds())
		}
	}
	return nil
}

// RecordMissionOutcome increments the mission outcome counter.
func (s *PromSink) RecordMissionOutcome(out coremetrics.MissionOutcome) error {
	s.missions.WithLabelValues(out.Status.String(), out.Tier.String(), out.Country).Inc()
	return nil
}

// RecordEscalation increments the escalation counter.
func (s *PromSink) RecordEscalation(ev coremetrics.EscalationEvent) error {
	s.escalations.WithLabelValues(ev.Target).Inc()
	return nil
}
