package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/magicstocks/calendar/internal/api"
	"github.com/magicstocks/calendar/internal/api/handlers"
	"github.com/magicstocks/calendar/internal/pipeline"
	"github.com/magicstocks/calendar/internal/scheduler"
	"github.com/magicstocks/calendar/internal/scheduler/jobs"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the API server with the retrain scheduler",
	Long: `Starts the HTTP API server, the daily retrain scheduler and a
bootstrap training run over a reduced universe.

Endpoints:
  GET  /health                   - Health check
  GET  /api/calendar/historical  - Full 366-day calendar
  GET  /api/signals/today        - Today's signal
  POST /api/ops/retrain          - Trigger a retrain run
  GET  /metrics                  - Prometheus metrics (when enabled)

Example:
  mscal api
  mscal api --port 8080`,
	RunE: runAPIServer,
}

var apiPort string

func init() {
	rootCmd.AddCommand(apiCmd)

	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := initApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.logger

	// The read path must never be empty, even before the first run.
	if err := a.runner.EnsureSeed(ctx); err != nil {
		return fmt.Errorf("ensure seed calendar: %w", err)
	}

	calendarHandler := handlers.NewCalendarHandler(a.store, log)
	opsHandler := handlers.NewOpsHandler(a.runner, log)
	router := api.NewRouter(calendarHandler, opsHandler, a.cfg.MetricsEnabled, log)
	server := api.New(a.cfg, log, router)

	sched := scheduler.New(log)
	if err := sched.AddJob(jobs.NewRetrainJob(a.runner, log, a.cfg.Pipeline.RetrainSchedule)); err != nil {
		return fmt.Errorf("register retrain job: %w", err)
	}
	sched.Start()

	// Bootstrap run over a reduced universe so a fresh deployment gets a
	// real calendar without waiting for the nightly schedule.
	go func() {
		_, err := a.runner.Run(context.Background(), pipeline.Options{Limit: a.cfg.Pipeline.BootstrapLimit})
		if err != nil && err != pipeline.ErrAlreadyRunning {
			log.WithError(err).Error("Bootstrap training run failed")
		}
	}()

	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("Server running on http://localhost:%s\n", a.cfg.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	fmt.Println("Server stopped")
	return nil
}
