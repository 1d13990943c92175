package metrics

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/koryxa/dispatch/core/metrics"
	"github.com/koryxa/dispatch/infra/logger"
)

// InfluxSink writes offer and mission outcomes to an InfluxDB instance using
// the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordOfferOutcome writes each outcome as a line protocol event.
func (s *InfluxSink) RecordOfferOutcome(outs []coremetrics.OfferOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, o := range outs {
		p := write.NewPointWithMeasurement("offer_outcome").
			AddTag("mission_id", o.MissionID).
			AddTag("provider_id", o.ProviderID).
			AddTag("status", o.Status.String()).
			AddTag("wave", strconv.Itoa(o.Wave)).
			AddTag("component", "dispatcher").
			AddField("latency_ms", o.Latency.Seconds()*1000).
			SetTime(o.Time)
		if o.Country != "" {
			p = p.AddTag("country", o.Country)
		}
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordMissionOutcome writes a terminal mission transition.
func (s *InfluxSink) RecordMissionOutcome(out coremetrics.MissionOutcome) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("mission_outcome").
		AddTag("mission_id", out.MissionID).
		AddTag("status", out.Status.String()).
		AddTag("tier", out.Tier.String()).
		AddTag("country", out.Country).
		AddTag("component", "dispatcher").
		AddField("waves", out.Wave).
		SetTime(out.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEscalation writes an escalation decision.
func (s *InfluxSink) RecordEscalation(ev coremetrics.EscalationEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("escalation_decided").
		AddTag("mission_id", ev.MissionID).
		AddTag("target", ev.Target).
		AddTag("component", "dispatcher").
		AddField("wave", ev.Wave).
		AddField("reasons", strings.Join(ev.Reasons, ",")).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}
