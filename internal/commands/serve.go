package commands

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"task-tracker/internal/api"
	"task-tracker/internal/auth"
	"task-tracker/internal/config"
	"task-tracker/internal/logger"
	"task-tracker/internal/notify"
	"task-tracker/internal/repository"
	"task-tracker/internal/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP(S) API and the overdue digest",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if serveAddr != "" {
		cfg.HTTPAddr = serveAddr
	}
	log := logger.New(cfg.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("close store")
		}
	}()

	verifier, err := auth.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	scheduler, err := startDigest(cfg, store, log)
	if err != nil {
		return fmt.Errorf("digest: %w", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	errorLog := log.WriterLevel(logrus.ErrorLevel)
	defer errorLog.Close()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(store, verifier, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          stdlog.New(errorLog, "", 0),
	}

	errCh := make(chan error, 1)
	go func() {
		fields := logrus.Fields{"addr": cfg.HTTPAddr, "tls": cfg.TLSEnabled(), "driver": cfg.DBDriver}
		log.WithFields(fields).Info("task tracker started")
		if cfg.TLSEnabled() {
			errCh <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("shutdown complete")
	return nil
}

// startDigest schedules the overdue digest. It returns nil when the digest is disabled.
func startDigest(cfg config.Config, store *repository.Store, log *logrus.Logger) (*service.SchedulerService, error) {
	if cfg.DigestAt == "" && cfg.DigestInterval <= 0 {
		log.Info("overdue digest disabled")
		return nil, nil
	}

	var notifier service.Notifier = notify.NewLog(log)
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID, log)
		if err != nil {
			return nil, err
		}
		notifier = tg
	}
	digest := service.NewDigestService(store, notifier, log)

	scheduler := service.NewSchedulerService(time.Local, log)
	if cfg.DigestAt != "" {
		if _, err := scheduler.ScheduleDaily("digest", cfg.DigestAt, digest.Run); err != nil {
			return nil, err
		}
	} else if _, err := scheduler.ScheduleInterval("digest", cfg.DigestInterval, digest.Run); err != nil {
		return nil, err
	}
	scheduler.Start()
	return scheduler, nil
}
