package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"agreement-radar/api/handler"
	"agreement-radar/api/router"
	"agreement-radar/job"
	"agreement-radar/storage/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the reminder job",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	if err := postgres.Migrate(a.db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	reminder := job.NewReminder(a.repo, job.LogNotifier{Log: a.log}, a.cfg.Reminder.HorizonDays, a.log)
	scheduler, err := job.StartCronJob(a.cfg.Reminder, reminder, a.log)
	if err != nil {
		return fmt.Errorf("schedule reminders: %w", err)
	}
	defer scheduler.Stop()

	h := handler.NewAgreementHandler(a.svc, a.log)
	engine := router.NewRouter(h, a.cfg.HTTP, a.cfg.Environment, a.log)

	addr := fmt.Sprintf("%s:%d", a.cfg.HTTP.Host, a.cfg.HTTP.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Msg("starting agreement service")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
