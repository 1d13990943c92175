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
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Inject a synthetic mission to smoke-test the configuration",
	RunE:  dispatchMission,
}

func init() {
	rootCmd.AddCommand(dispatchCmd)
}

// dispatchMission creates one synthetic mission against an in-memory service
// and reports the wave it produced. Useful to validate wave sizes, quota
// limits and need-index data before deploying.
func dispatchMission(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// Force a harmless in-process setup regardless of the deployed config.
	cfg.Audit.Backend = "memory"
	cfg.Notify.Enabled = false
	cfg.Metrics.PrometheusEnabled = false
	cfg.Metrics.InfluxEnabled = false

	logg := logger.New("dispatch-command")
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
	for i := 0; i < 3; i++ {
		p := model.Provider{
			ID:             fmt.Sprintf("smoke-provider-%d", i+1),
			Country:        country,
			Skills:         skills,
			AcceptanceRate: 0.5,
		}
		if err := svc.Directory.Upsert(p); err != nil {
			return fmt.Errorf("seed provider: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	id, err := svc.Dispatcher.CreateMission(ctx, dispatch.MissionSpec{
		RequesterID: "smoke-requester",
		Title:       "Synthetic smoke mission",
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
	view, err := svc.Dispatcher.GetMission(id)
	if err != nil {
		return fmt.Errorf("get mission: %w", err)
	}
	logg.Infof("mission %s status=%s offers=%d", id, view.Mission.Status, len(view.Offers))
	return nil
}

func firstCountry(cfg *config.Config) string {
	if len(cfg.NeedIndex.Countries) > 0 {
		return cfg.NeedIndex.Countries[0].Country
	}
	return ""
}
