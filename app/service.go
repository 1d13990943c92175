package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/koryxa/dispatch/api/auditlog"
	"github.com/koryxa/dispatch/api/capability"
	"github.com/koryxa/dispatch/api/dashboard"
	"github.com/koryxa/dispatch/api/missions"
	"github.com/koryxa/dispatch/api/offers"
	"github.com/koryxa/dispatch/api/providers"
	"github.com/koryxa/dispatch/auth"
	"github.com/koryxa/dispatch/config"
	"github.com/koryxa/dispatch/connectors/clients/worldstats"
	"github.com/koryxa/dispatch/connectors/factory"
	"github.com/koryxa/dispatch/core/audit"
	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/kpi"
	coremetrics "github.com/koryxa/dispatch/core/metrics"
	"github.com/koryxa/dispatch/core/needindex"
	"github.com/koryxa/dispatch/core/notify"
	"github.com/koryxa/dispatch/core/quota"
	"github.com/koryxa/dispatch/core/rank"
	"github.com/koryxa/dispatch/infra/logger"
	"github.com/koryxa/dispatch/infra/metrics"
	"github.com/koryxa/dispatch/infra/mqtt"
	"github.com/koryxa/dispatch/internal/eventbus"
)

// Service orchestrates the dispatcher, the API server and the metric sinks.
type Service struct {
	Dispatcher *dispatch.Dispatcher
	Directory  *dispatch.MemoryDirectory

	bus         *eventbus.Bus[any]
	store       audit.Store
	notifier    *mqtt.PahoNotifier
	log         logger.Logger
	apiAddr     string
	handler     http.Handler
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	countries := cfg.NeedIndex.Countries
	if cfg.NeedSource.Connector != "" {
		fetched, err := fetchCountryStats(cfg.NeedSource)
		if err != nil {
			// The static list keeps the service bootable when the
			// provider is down.
			logg.Warnf("need source fetch failed, using static countries: %v", err)
		} else if len(fetched) > 0 {
			countries = fetched
		}
	}
	scorer, err := needindex.NewScorer(cfg.NeedIndex.Weights, countries)
	if err != nil {
		return nil, fmt.Errorf("need index: %w", err)
	}
	store, err := newAuditStore(cfg.Audit)
	if err != nil {
		return nil, fmt.Errorf("audit store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(
			cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket))
	}
	var sink coremetrics.MetricsSink
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	var pahoNotifier *mqtt.PahoNotifier
	var notifier notify.Notifier
	if cfg.Notify.Enabled {
		pahoNotifier, err = mqtt.NewPahoNotifier(cfg.Notify.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
		notifier = notify.NewRetrying(pahoNotifier, cfg.Notify.Attempts,
			time.Duration(cfg.Notify.BackoffMS)*time.Millisecond, logg)
	}

	bus := eventbus.New[any]()
	ledger := quota.NewLedger(cfg.Quota)
	dir := dispatch.NewMemoryDirectory()
	d, err := dispatch.NewDispatcher(cfg.Dispatch, rank.New(logg), ledger, scorer, dir,
		notifier, store, sink, bus, logg)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: %w", err)
	}

	caps := capability.Set(nil)
	if len(cfg.API.Capabilities) > 0 {
		caps = capability.FromList(cfg.API.Capabilities)
	}
	mux := http.NewServeMux()
	mux.Handle("/api/missions", capability.Require(caps, capability.Dispatch, missions.NewHandler(d)))
	mux.Handle("/api/missions/", capability.Require(caps, capability.Dispatch, missions.NewHandler(d)))
	mux.Handle("/api/offers/", capability.Require(caps, capability.Dispatch, offers.NewRespondHandler(d)))
	mux.Handle("/api/providers", capability.Require(caps, capability.Dispatch, providers.NewHandler(dir)))
	mux.Handle("/api/dashboard", capability.Require(caps, capability.Dashboard, dashboard.NewHandler(kpi.New(store))))
	mux.Handle("/api/audit/logs", capability.Require(caps, capability.AuditLog, auditlog.NewHandler(store, cfg.Audit.Token)))

	return &Service{
		Dispatcher:  d,
		Directory:   dir,
		bus:         bus,
		store:       store,
		notifier:    pahoNotifier,
		log:         logg,
		apiAddr:     cfg.API.Addr,
		handler:     mux,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

func fetchCountryStats(cfg config.NeedSourceConfig) ([]needindex.CountryStats, error) {
	var cred *auth.ClientCred
	if cfg.Auth.ClientID != "" {
		cred = auth.NewClientCred(cfg.Auth)
	}
	client, err := factory.NewStatsClient(cfg.Connector, cfg.URL, cred)
	if err != nil {
		return nil, err
	}
	if len(cfg.Countries) > 0 {
		return client.Fetch(worldstats.WithCountries(cfg.Countries))
	}
	return client.Fetch()
}

func newAuditStore(cfg config.AuditConfig) (audit.Store, error) {
	switch cfg.Backend {
	case "memory":
		return audit.NewMemoryStore(), nil
	case "jsonl":
		return audit.NewJSONLStore(cfg.Path)
	case "sqlite":
		return audit.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown audit backend %s", cfg.Backend)
	}
}

// Handler exposes the API mux, for tests.
func (s *Service) Handler() http.Handler { return s.handler }

// Subscribe returns a channel receiving dispatcher events.
func (s *Service) Subscribe() <-chan any { return s.bus.Subscribe() }

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.Dispatcher.Run(ctx)
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.apiAddr, Handler: s.handler}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api server shutdown: %v", err)
		}
	}()
	s.log.Infof("API server listening on %s", s.apiAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.notifier != nil {
		s.notifier.Disconnect()
	}
	return s.Dispatcher.Close()
}
