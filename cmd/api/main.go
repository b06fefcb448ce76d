package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pacuit/conferencia/internal/auth"
	"github.com/pacuit/conferencia/internal/bootstrap"
	"github.com/pacuit/conferencia/internal/conference"
	"github.com/pacuit/conferencia/internal/config"
	internalhttp "github.com/pacuit/conferencia/internal/http"
	"github.com/pacuit/conferencia/internal/metrics"
	"github.com/pacuit/conferencia/internal/notify"
	"github.com/pacuit/conferencia/internal/records"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("api encerrada com erro")
	}
}

func run() error {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	configureLogger(cfg)

	ctx := context.Background()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(registry)

	backend, err := bootstrap.OpenRecords(ctx, cfg)
	if err != nil {
		return fmt.Errorf("records: %w", err)
	}
	defer backend.Close()
	recordService := records.NewService(backend.Store, backend.Backend, recorder)

	uploader, closeUploader, err := bootstrap.NewUploader(ctx, cfg, recorder)
	if err != nil {
		return fmt.Errorf("uploader: %w", err)
	}
	defer closeUploader()

	mailer, err := bootstrap.NewMailer(cfg)
	if err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	notifier := notify.NewSlackNotifier(cfg.Notify.SlackWebhookURL, nil)

	forms := conference.NewService(uploader, recordService, mailer, notifier, cfg.Upload.Timeout)

	deps := internalhttp.Dependencies{
		Records:  recordService,
		Forms:    forms,
		Metrics:  recorder,
		Gatherer: registry,
		Checks:   map[string]internalhttp.Check{},
	}
	for name, check := range backend.Checks {
		deps.Checks[name] = check
	}
	if cfg.Admin.Enabled() {
		deps.Tokens = auth.NewJWTManager(cfg.Admin.JWTSecret, cfg.Admin.AccessTTL)
		deps.Admin = auth.NewAdminAuthenticator(cfg.Admin.Username, cfg.Admin.PasswordHash, deps.Tokens)
	} else {
		log.Warn().Msg("ADMIN_JWT_SECRET ausente: rotas de registros sem autenticação")
	}

	handler, err := internalhttp.NewRouter(cfg, deps)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("records", cfg.RecordBackend).
			Str("attachments", cfg.Storage.Provider).
			Msgf("API ouvindo em :%d", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("encerrando...")
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func configureLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
