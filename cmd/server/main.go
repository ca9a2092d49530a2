// Command server runs the shift trust API. Storage is selected once at
// startup: Postgres when DATABASE_URL is set, the in-memory stores otherwise.
// The process never flips between the two at runtime.
package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"shifttrust/internal/audit"
	"shifttrust/internal/binding"
	"shifttrust/internal/identity"
	"shifttrust/internal/platform/config"
	"shifttrust/internal/platform/httpserver"
	"shifttrust/internal/platform/logger"
	"shifttrust/internal/platform/metrics"
	"shifttrust/internal/platform/postgres"
	"shifttrust/internal/platform/redis"
	"shifttrust/internal/risk"
	"shifttrust/internal/shift"
	httptransport "shifttrust/internal/transport/http"
	"shifttrust/internal/verify"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()

	var (
		identityStore identity.Store
		bindingStore  binding.Store
		shiftStore    shift.Store
		verifyStore   verify.Store
		db            *sql.DB
	)
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			log.Error("failed to apply schema", "error", err)
			os.Exit(1)
		}
		identityStore = identity.NewPostgresStore(db)
		bindingStore = binding.NewPostgresStore(db)
		shiftStore = shift.NewPostgresStore(db)
		verifyStore = verify.NewPostgresStore(db)
		log.Info("storage ready", "backend", "postgres")
	} else {
		identityStore = identity.NewInMemoryStore()
		bindingStore = binding.NewInMemoryStore()
		shiftStore = shift.NewInMemoryStore()
		verifyStore = verify.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	var complaints risk.ComplaintStore
	if cfg.RedisURL != "" {
		rdb, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		complaints = risk.NewRedisComplaintStore(rdb.Client)
		log.Info("complaint store ready", "backend", "redis")
	} else if db != nil {
		complaints = risk.NewPostgresComplaintStore(db)
		log.Info("complaint store ready", "backend", "postgres")
	} else {
		complaints = risk.NewInMemoryComplaintStore()
		log.Warn("REDIS_URL not set, using in-memory complaint store")
	}

	var sink audit.Sink
	if len(cfg.KafkaBrokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		if err != nil {
			log.Error("failed to connect to kafka", "error", err)
			os.Exit(1)
		}
		defer kafkaSink.Close()
		sink = kafkaSink
		log.Info("audit sink ready", "backend", "kafka", "topic", cfg.KafkaTopic)
	} else {
		sink = audit.NewLogSink(log)
	}
	publisher := audit.NewPublisher(0)
	auditWorker := audit.NewWorker(publisher.Inbox(), sink)

	identities := identity.NewService(identityStore, publisher, m)
	bindings := binding.NewService(bindingStore, identities, publisher, m)
	shifts := shift.NewService(shiftStore, bindings, identities, complaints, publisher, m)
	verifier := verify.NewService(verifyStore, identities, bindings, shifts, publisher, m)

	handler := httptransport.NewHandler(identities, bindings, shifts, verifier, complaints, m, log)
	srv := httpserver.New(cfg.Addr, httptransport.NewRouter(handler))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return auditWorker.Run(groupCtx)
	})
	if cfg.MaxShiftDuration > 0 {
		janitor := shift.NewJanitor(shifts, cfg.MaxShiftDuration, cfg.MaxShiftDuration/10, log)
		group.Go(func() error {
			return janitor.Run(groupCtx)
		})
		log.Info("shift expiry enabled", "max_duration", cfg.MaxShiftDuration)
	}
	group.Go(func() error {
		log.Info("starting shifttrust server", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
