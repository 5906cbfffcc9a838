// Command server runs the recovery case-progression API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	actionhandler "recouvro/internal/action/handler"
	actionmetrics "recouvro/internal/action/metrics"
	actionservice "recouvro/internal/action/service"
	actionstore "recouvro/internal/action/store"
	audiencehandler "recouvro/internal/audience/handler"
	audienceservice "recouvro/internal/audience/service"
	audiencestore "recouvro/internal/audience/store"
	documenthandler "recouvro/internal/document/handler"
	documentmetrics "recouvro/internal/document/metrics"
	documentservice "recouvro/internal/document/service"
	documentstore "recouvro/internal/document/store"
	dossierhandler "recouvro/internal/dossier/handler"
	dossiermetrics "recouvro/internal/dossier/metrics"
	dossierservice "recouvro/internal/dossier/service"
	dossierstore "recouvro/internal/dossier/store"
	"recouvro/internal/jwttoken"
	"recouvro/internal/platform/config"
	"recouvro/internal/platform/httpserver"
	"recouvro/internal/platform/logger"
	platformredis "recouvro/internal/platform/redis"
	"recouvro/internal/progression"
	progressionhandler "recouvro/internal/progression/handler"
	progressionmetrics "recouvro/internal/progression/metrics"
	progressionservice "recouvro/internal/progression/service"
	httptransport "recouvro/internal/transport/http"
	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/platform/audit/publisher"
	auditmemory "recouvro/pkg/platform/audit/store/memory"
	auditpostgres "recouvro/pkg/platform/audit/store/postgres"
)

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores: PostgreSQL when configured, in-memory otherwise.
	var (
		dossiers   dossierstore.Store
		documents  documentstore.Store
		actions    actionstore.Store
		audiences  audiencestore.Store
		auditStore audit.Store
	)
	if cfg.PostgresURL != "" {
		db, err := sql.Open("pgx", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			return err
		}
		dossiers = dossierstore.NewPostgres(db)
		documents = documentstore.NewPostgres(db)
		actions = actionstore.NewPostgres(db)
		audiences = audiencestore.NewPostgres(db)
		auditStore = auditpostgres.New(db)
		log.Info("postgres stores enabled")
	} else {
		dossiers = dossierstore.NewInMemory()
		documents = documentstore.NewInMemory()
		actions = actionstore.NewInMemory()
		audiences = audiencestore.NewInMemory()
		auditStore = auditmemory.New()
		log.Warn("postgres not configured, using in-memory stores")
	}

	var healthChecks []httptransport.Health

	// Dossier snapshot cache.
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		dossiers = dossierstore.NewCached(dossiers, redisClient, log)
		healthChecks = append(healthChecks, redisClient)
		log.Info("dossier snapshot cache enabled")
	}

	// Audit publisher, with the Kafka sink when brokers are configured.
	publisherOpts := []publisher.Option{publisher.WithLogger(log)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := publisher.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		publisherOpts = append(publisherOpts, publisher.WithSink(sink))
		log.Info("audit kafka sink enabled", "topic", cfg.KafkaAuditTopic)
	}
	auditor := publisher.New(auditStore, publisherOpts...)

	// Domain services.
	dossierSvc := dossierservice.New(dossiers,
		dossierservice.WithLogger(log),
		dossierservice.WithAuditPublisher(auditor),
		dossierservice.WithMetrics(dossiermetrics.New()),
	)
	documentSvc := documentservice.New(documents, dossiers,
		documentservice.WithLogger(log),
		documentservice.WithAuditPublisher(auditor),
		documentservice.WithMetrics(documentmetrics.New()),
	)
	actionSvc := actionservice.New(actions, dossierSvc,
		actionservice.WithLogger(log),
		actionservice.WithAuditPublisher(auditor),
		actionservice.WithMetrics(actionmetrics.New()),
	)
	audienceSvc := audienceservice.New(audiences, dossiers,
		audienceservice.WithLogger(log),
		audienceservice.WithAuditPublisher(auditor),
	)
	loader := progression.NewLoader(dossiers, documents, actions, audiences)
	progressionSvc := progressionservice.New(dossiers, loader,
		progressionservice.WithLogger(log),
		progressionservice.WithAuditPublisher(auditor),
		progressionservice.WithMetrics(progressionmetrics.New()),
	)

	tokens := jwttoken.NewService(cfg.JWTSigningKey, "recouvro")

	router := httptransport.NewRouter(httptransport.Config{
		Logger:    log,
		Validator: tokens,
		Auth:      httptransport.NewTokenHandler(tokens, cfg.APISecretHash, cfg.TokenTTL, log),
		Modules: []httptransport.Registrar{
			dossierhandler.New(dossierSvc, log),
			documenthandler.New(documentSvc, log),
			actionhandler.New(actionSvc, log),
			audiencehandler.New(audienceSvc, log),
			progressionhandler.New(progressionSvc, log),
			httptransport.NewAuditHandler(auditStore, log),
		},
		HealthChecks: healthChecks,
	})

	server := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}
