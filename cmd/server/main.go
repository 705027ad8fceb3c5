package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"portaria/internal/audit"
	audithandler "portaria/internal/audit/handler"
	auditkafka "portaria/internal/audit/kafka"
	auditmem "portaria/internal/audit/store/memory"
	auditpg "portaria/internal/audit/store/postgres"
	"portaria/internal/auth"
	authhandler "portaria/internal/auth/handler"
	sessionstore "portaria/internal/auth/store/session"
	userstore "portaria/internal/auth/store/user"
	"portaria/internal/platform/config"
	"portaria/internal/platform/httpserver"
	"portaria/internal/platform/logger"
	"portaria/internal/platform/metrics"
	"portaria/internal/platform/postgres"
	"portaria/internal/platform/redis"
	visitorhandler "portaria/internal/visitor/handler"
	visitorservice "portaria/internal/visitor/service"
	visitorstore "portaria/internal/visitor/store"
)

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New()
	m := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores. Postgres and Redis are optional; without them the service runs
	// fully in memory, which is how local development and the handler tests
	// exercise it.
	var (
		visitors visitorstore.Store = visitorstore.NewInMemory()
		users    userstore.Store    = userstore.NewInMemory()
		sessions sessionstore.Store = sessionstore.NewInMemory()
		auditDst audit.Store        = auditmem.NewInMemoryStore()
	)

	if cfg.DatabaseURL != "" {
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		visitors = visitorstore.NewPostgres(pool)

		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.Migrate(ctx, db); err != nil {
			return err
		}
		users = userstore.NewPostgres(db)
		auditDst = auditpg.New(db)
		log.Info("postgres stores enabled")
	}

	redisClient, err := redis.New(cfg.RedisURL)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionstore.NewRedis(redisClient.Client)
		log.Info("redis session store enabled")
	}

	auditOpts := []audit.Option{audit.WithMetrics(m)}
	if len(cfg.KafkaBrokers) > 0 {
		sink, err := auditkafka.New(cfg.KafkaBrokers, cfg.KafkaAuditTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		auditOpts = append(auditOpts, audit.WithSink(sink))
		log.Info("kafka audit sink enabled", "brokers", cfg.KafkaBrokers)
	}
	auditSvc := audit.NewService(auditDst, log, auditOpts...)

	authSvc := auth.NewService(
		users,
		sessions,
		auth.NewJWTService(cfg.JWTSigningKey, "portaria"),
		auditSvc,
		log,
		m,
		auth.Config{
			Passphrase: cfg.AdminPassphrase,
			SessionTTL: cfg.SessionTTL,
		},
	)
	admissionSvc := visitorservice.New(visitors, auditSvc, log, m)

	router := chi.NewRouter()
	authhandler.New(authSvc, log, m).Register(router)
	visitorhandler.New(admissionSvc, log, m, authSvc).Register(router)
	audithandler.New(auditSvc, log, m, authSvc).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if redisClient != nil {
			if err := redisClient.Health(r.Context()); err != nil {
				http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting portaria", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("portaria stopped")
	return nil
}
