package cli

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"crypto-advisor/internal/resilience"
	"crypto-advisor/internal/server"
	"crypto-advisor/internal/store"
	"crypto-advisor/internal/stream"
)

func addServeCommand(rootCmd *cobra.Command, app *App) {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP JSON API and WebSocket state feed",
		Long: `Serve the dashboard API. Every state change is pushed to WebSocket
clients on /ws; /healthz reports the cooldown gate, the store, the AI
backend and alert evaluation counters.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if addr == "" {
				addr = app.Config.Server.Addr
			}

			health := newHealthMonitor(app)
			app.Hub.Start(ctx)
			go app.Orch.Start(ctx)

			output := NewOutput(cmd)
			if !output.IsJSON() {
				output.Info("%s listening on %s", app.Translator.T("general.appName", nil), addr)
			}
			return server.New(addr, app.Orch, app.Translator, health, app.Logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr from config)")
	rootCmd.AddCommand(cmd)
}

// newHealthMonitor registers the checks reported on /healthz.
func newHealthMonitor(app *App) *resilience.HealthMonitor {
	health := resilience.NewHealthMonitor(5*time.Second, app.Logger)
	health.RegisterComponent("cooldown", resilience.CooldownHealthCheck(app.Cooldown))
	health.RegisterComponent("store", resilience.PingHealthCheck(func(ctx context.Context) error {
		_, _, err := app.Store.Get(ctx, store.LanguageKey)
		return err
	}))
	health.RegisterComponent("ai", resilience.AvailabilityHealthCheck(app.Advisor.Available, "AI API key not configured"))
	health.RegisterComponent("alerts", alertsHealthCheck(app.Monitor))
	return health
}

// alertsHealthCheck reports the monitor's counters. It is always healthy.
func alertsHealthCheck(m *stream.AlertMonitor) resilience.HealthCheck {
	return func(context.Context) resilience.ComponentHealth {
		stats := m.GetStats()
		return resilience.ComponentHealth{
			Status:  resilience.HealthStatusHealthy,
			Message: "Evaluating",
			Details: map[string]any{
				"evaluations": stats.Evaluations,
				"triggered":   stats.TotalTriggered,
				"queued":      stats.Queued,
			},
		}
	}
}
