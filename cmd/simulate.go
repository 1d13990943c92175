package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/koryxa/dispatch/app"
	"github.com/koryxa/dispatch/config"
	"github.com/koryxa/dispatch/core/dispatch"
	"github.com/koryxa/dispatch/core/model"
	"github.com/koryxa/dispatch/infra/logger"
	"github.com/koryxa/dispatch/simulator"
)

var (
	simProviders int
	simMissions  int
	simAccept    float64
	simRefuse    float64
	simLatency   time.Duration
	simWait      time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run missions against a simulated provider fleet",
	Long: `Creates an in-memory service, registers a fleet of synthetic providers
answering offers with the configured probabilities, dispatches missions and
reports the outcome of each. The deployed audit, notify and metrics backends
are not touched.`,
	RunE: runSimulation,
}

func init() {
	simulateCmd.Flags().IntVar(&simProviders, "providers", 10, "number of simulated providers")
	simulateCmd.Flags().IntVar(&simMissions, "missions", 3, "number of missions to dispatch")
	simulateCmd.Flags().Float64Var(&simAccept, "accept-rate", 0.5, "probability a provider accepts")
	simulateCmd.Flags().Float64Var(&simRefuse, "refuse-rate", 0.3, "probability a provider refuses")
	simulateCmd.Flags().DurationVar(&simLatency, "latency", 200*time.Millisecond, "provider answer delay")
	simulateCmd.Flags().DurationVar(&simWait, "wait", 30*time.Second, "how long to wait for missions to settle")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.Audit.Backend = "memory"
	cfg.Notify.Enabled = false
	cfg.Metrics.PrometheusEnabled = false
	cfg.Metrics.InfluxEnabled = false

	logg := logger.New("simulate")
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logg.Errorf("service close: %v", err)
		}
	}()

	country := firstCountry(cfg)
	skills := []string{"go"}
	fleet := simulator.NewFleet(simulator.Config{
		Count:      simProviders,
		Countries:  []string{country},
		Skills:     skills,
		AcceptRate: simAccept,
		RefuseRate: simRefuse,
		Latency:    simLatency,
	}, svc.Dispatcher, nil, logg)
	for _, p := range fleet.Providers() {
		if err := svc.Directory.Upsert(p); err != nil {
			return fmt.Errorf("seed provider: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), simWait)
	defer cancel()
	go svc.Dispatcher.Run(ctx)
	go fleet.Run(ctx, svc.Subscribe())

	ids := make([]string, 0, simMissions)
	for i := 0; i < simMissions; i++ {
		id, err := svc.Dispatcher.CreateMission(ctx, dispatch.MissionSpec{
			RequesterID: "simulation",
			Title:       fmt.Sprintf("Simulated mission %d", i+1),
			Skills:      skills,
			Country:     country,
			Deadline:    time.Now().Add(24 * time.Hour),
			BudgetEUR:   100,
			Mode:        model.ModeRemote,
			Tier:        "standard",
		})
		if err != nil {
			return fmt.Errorf("create mission: %w", err)
		}
		ids = append(ids, id)
	}

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	for {
		if settled(svc, ids) {
			break
		}
		select {
		case <-ctx.Done():
			logg.Warnf("simulation timed out before all missions settled")
			return report(svc, ids, logg)
		case <-ticker.C:
		}
	}
	return report(svc, ids, logg)
}

func settled(svc *app.Service, ids []string) bool {
	for _, id := range ids {
		view, err := svc.Dispatcher.GetMission(id)
		if err != nil {
			return false
		}
		switch view.Mission.Status {
		case model.MissionConfirmed, model.MissionEscalated, model.MissionCancelled, model.MissionClosed:
		default:
			return false
		}
	}
	return true
}

func report(svc *app.Service, ids []string, logg logger.Logger) error {
	for _, id := range ids {
		view, err := svc.Dispatcher.GetMission(id)
		if err != nil {
			return err
		}
		logg.Infof("mission %s status=%s waves=%d offers=%d",
			id, view.Mission.Status, lastWave(view.Offers), len(view.Offers))
	}
	return nil
}

func lastWave(offers []model.Offer) int {
	max := 0
	for _, o := range offers {
		if o.Wave > max {
			max = o.Wave
		}
	}
	return max
}
