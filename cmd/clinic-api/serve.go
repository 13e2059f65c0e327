package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/psyclinic/clinic-api/internal/api"
	"github.com/psyclinic/clinic-api/internal/api/handler"
	"github.com/psyclinic/clinic-api/internal/api/metrics"
	"github.com/psyclinic/clinic-api/internal/core/domain"
	"github.com/psyclinic/clinic-api/internal/core/ports"
	"github.com/psyclinic/clinic-api/internal/core/service"
	mongodb "github.com/psyclinic/clinic-api/internal/infrastructure/db/mongo"
	redisdb "github.com/psyclinic/clinic-api/internal/infrastructure/db/redis"
	"github.com/psyclinic/clinic-api/internal/infrastructure/messaging"
	"github.com/psyclinic/clinic-api/internal/infrastructure/oauth"
	"github.com/psyclinic/clinic-api/internal/infrastructure/queue"
	"github.com/psyclinic/clinic-api/internal/pkg/config"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, log, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			return runServer(ctx, cfg, log)
		},
	}
}

func runServer(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Database
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = client.Disconnect(dctx)
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Mongo.Database).Msg("connected to mongodb")

	// Sessions
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Timeout:  cfg.StoreTimeout,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()
	sessions := redisdb.NewSessionStore(rdb, cfg.SessionTTL)
	log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to redis")

	// Events
	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	dispatcher := queue.NewDispatcher(cfg.EventWorkers, publisher, log)
	dispatcher.OnDrop = func(domain.AppointmentEvent) { metrics.EventsDroppedTotal.Inc() }
	dispatcher.Start(ctx)
	defer dispatcher.Stop()

	// Services
	identityRepo := mongodb.NewIdentityRepository(db)
	patientRepo := mongodb.NewPatientRepository(db)
	appointmentRepo := mongodb.NewAppointmentRepository(db)

	identities := service.NewIdentityService(identityRepo, log)
	patients := service.NewPatientService(patientRepo, log)
	appointments := service.NewAppointmentService(appointmentRepo, patientRepo, dispatcher, log)

	var provider ports.OAuthProvider
	if cfg.GitHubEnabled() {
		provider = oauth.NewGitHubProvider(oauth.GitHubConfig{
			ClientID:     cfg.GitHub.ClientID,
			ClientSecret: cfg.GitHub.ClientSecret,
			CallbackURL:  cfg.GitHub.CallbackURL,
		})
	} else {
		log.Warn().Msg("GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET missing, GitHub login disabled")
	}

	e := api.NewRouter(api.Dependencies{
		Log:           log,
		Environment:   cfg.Env,
		Development:   !cfg.IsProduction(),
		CORSOrigins:   cfg.CORSOrigins,
		AuthRateLimit: cfg.AuthRateLimit,
		Identities:    identities,
		Patients:      patients,
		Appointments:  appointments,
		Sessions:      sessions,
		OAuth:         provider,
		Database:      mongodb.Pinger{Client: client},
		Auth: handler.AuthConfig{
			SessionSecret: cfg.SessionSecret,
			SessionTTL:    cfg.SessionTTL,
			SecureCookies: cfg.IsProduction(),
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (ports.EventPublisher, error) {
	if cfg.RabbitMQ.URL == "" {
		log.Info().Msg("RABBITMQ_URL not set, appointment events go to the log")
		return messaging.NewLogPublisher(log), nil
	}
	return messaging.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
}
