// Command server runs the TurboFCL assessment API.
//
// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal services.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/twmb/franz-go/pkg/kgo"

	entitystore "turbofcl/internal/entity/store"
	focihandler "turbofcl/internal/foci/handler"
	"turbofcl/internal/foci/indicators"
	"turbofcl/internal/foci/locks"
	"turbofcl/internal/foci/metrics"
	"turbofcl/internal/foci/mitigation"
	"turbofcl/internal/foci/scoring"
	"turbofcl/internal/foci/service"
	focistore "turbofcl/internal/foci/store"
	"turbofcl/internal/foci/submission"
	"turbofcl/internal/foci/traversal"
	ownershipstore "turbofcl/internal/ownership/store"
	"turbofcl/internal/platform/config"
	"turbofcl/internal/platform/httpserver"
	"turbofcl/internal/platform/logger"
	platformRedis "turbofcl/internal/platform/redis"
	httptransport "turbofcl/internal/transport/http"
	"turbofcl/pkg/platform/audit"
	auditRelay "turbofcl/pkg/platform/audit/relay"
	auditMemory "turbofcl/pkg/platform/audit/store/memory"
	auditPostgres "turbofcl/pkg/platform/audit/store/postgres"
	"turbofcl/pkg/platform/tx"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	var (
		db       *sql.DB
		entities entitystore.Store
		owners   ownershipstore.Store
		assess   focistore.Store
		auditSt  audit.Store
		runner   tx.Runner
		health   httptransport.HealthChecker
	)

	if cfg.PostgresDSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			log.Error("failed to open postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			log.Error("failed to ping postgres", "error", err)
			os.Exit(1)
		}
		entities = entitystore.NewPostgres(db)
		owners = ownershipstore.NewPostgres(db)
		assess = focistore.NewPostgresStore(db)
		auditSt = auditPostgres.New(db)
		runner = tx.NewSQLRunner(db)
		health = db.Ping
		log.Info("using postgres stores")
	} else {
		memEntities := entitystore.NewInMemory()
		memOwners := ownershipstore.NewInMemory()
		seedDemoData(log, memEntities, memOwners)
		entities = memEntities
		owners = memOwners
		assess = focistore.NewInMemoryStore()
		auditSt = auditMemory.NewInMemoryStore()
		runner = tx.NopRunner{}
		log.Info("using in-memory stores with demo seed")
	}

	var locker locks.Locker
	redisClient, err := platformRedis.New(cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		locker = locks.NewRedisLocker(redisClient)
		log.Info("using redis assessment lock")
	} else {
		locker = locks.NewInMemoryLocker()
	}

	auditPublisher := audit.NewPublisher(auditSt, audit.WithLogger(log))

	traverser, err := traversal.New(owners, traversal.WithLogger(log))
	if err != nil {
		log.Error("failed to build traverser", "error", err)
		os.Exit(1)
	}

	engineMetrics := metrics.New()

	svc, err := service.New(
		entities,
		traverser,
		indicators.NewDefaultRegistry(indicators.DefaultConfig()),
		mitigation.New(mitigation.DefaultConfig()),
		scoring.New(scoring.DefaultConfig(), scoring.WithLogger(log)),
		submission.New(),
		assess,
		runner,
		auditPublisher,
		service.WithLogger(log),
		service.WithLocker(locker),
		service.WithMetrics(engineMetrics),
	)
	if err != nil {
		log.Error("failed to build assessment service", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(focihandler.New(svc, log), health)
	srv := httpserver.New(cfg.Addr, router)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Outbox relay needs both postgres and kafka configured.
	if db != nil && len(cfg.KafkaBrokers) > 0 {
		kafkaClient, err := kgo.NewClient(
			kgo.SeedBrokers(cfg.KafkaBrokers...),
			kgo.ProducerLinger(50*time.Millisecond),
		)
		if err != nil {
			log.Error("failed to build kafka client", "error", err)
			os.Exit(1)
		}
		defer kafkaClient.Close()

		relay, err := auditRelay.New(db, kafkaClient, cfg.AuditTopic, log)
		if err != nil {
			log.Error("failed to build audit relay", "error", err)
			os.Exit(1)
		}
		if err := relay.EnsureTopic(rootCtx, 3, 1); err != nil {
			log.Error("failed to ensure audit topic", "error", err)
			os.Exit(1)
		}
		go func() {
			if err := relay.Run(rootCtx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("audit relay stopped", "error", err)
			}
		}()
		log.Info("audit relay started", "topic", cfg.AuditTopic)
	}

	go func() {
		log.Info("starting turbofcl server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-rootCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
