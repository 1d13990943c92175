package metrics

import coremetrics "github.com/koryxa/dispatch/core/metrics"

// MultiSink fans outcomes out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordOfferOutcome forwards the outcomes to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordOfferOutcome(outs []coremetrics.OfferOutcome) error {
	for _, s := range m.Sinks {
		if err := s.RecordOfferOutcome(outs); err != nil {
			return err
		}
	}
	return nil
}

// RecordMissionOutcome forwards mission outcomes when supported by the sink.
func (m *MultiSink) RecordMissionOutcome(out coremetrics.MissionOutcome) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.MissionRecorder); ok {
			if err := rec.RecordMissionOutcome(out); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordEscalation forwards escalation events when supported by the sink.
func (m *MultiSink) RecordEscalation(ev coremetrics.EscalationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.EscalationRecorder); ok {
			if err := rec.RecordEscalation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
