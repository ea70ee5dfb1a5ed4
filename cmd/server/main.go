// Command server wires configuration, storage, caching, the audit pipeline,
// and the HTTP router, then runs until SIGINT/SIGTERM.
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

	"golang.org/x/sync/errgroup"

	"github.com/AliAbadiHub/val-backend/internal/audit"
	"github.com/AliAbadiHub/val-backend/internal/auth"
	authhandler "github.com/AliAbadiHub/val-backend/internal/auth/handler"
	authservice "github.com/AliAbadiHub/val-backend/internal/auth/service"
	"github.com/AliAbadiHub/val-backend/internal/jwttoken"
	"github.com/AliAbadiHub/val-backend/internal/platform/config"
	"github.com/AliAbadiHub/val-backend/internal/platform/httpserver"
	"github.com/AliAbadiHub/val-backend/internal/platform/logger"
	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	"github.com/AliAbadiHub/val-backend/internal/platform/postgres"
	"github.com/AliAbadiHub/val-backend/internal/platform/redis"
	producthandler "github.com/AliAbadiHub/val-backend/internal/product/handler"
	productservice "github.com/AliAbadiHub/val-backend/internal/product/service"
	productstore "github.com/AliAbadiHub/val-backend/internal/product/store"
	httptransport "github.com/AliAbadiHub/val-backend/internal/transport/http"
	userhandler "github.com/AliAbadiHub/val-backend/internal/user/handler"
	userservice "github.com/AliAbadiHub/val-backend/internal/user/service"
	userstore "github.com/AliAbadiHub/val-backend/internal/user/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	pool, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("postgres connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	cache, err := redis.New(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	if cache != nil {
		defer cache.Close()
	}

	m := metrics.New()
	auditor := audit.NewPublisher(log)
	sink, closeSink, err := buildAuditSink(ctx, cfg, log)
	if err != nil {
		log.Error("audit sink setup failed", "error", err)
		os.Exit(1)
	}
	defer closeSink()

	tokens := jwttoken.NewService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	hasher := auth.NewBcryptHasher(cfg.BcryptCost)

	users := userstore.NewPostgres(pool)
	products := productstore.NewPostgres(pool)

	userSvc := userservice.New(users, hasher, m, auditor)
	authSvc := authservice.New(users, hasher, tokens, cfg.TokenTTL, m, auditor)

	var productCache productservice.Cache
	if cache != nil {
		productCache = productservice.NewRedisCache(cache)
	}
	productSvc := productservice.New(products, productCache, cfg.ProductCacheTTL, m, log)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Logger:   log,
		Metrics:  m,
		Timeout:  30 * time.Second,
		JWT:      jwttoken.NewMiddlewareAdapter(tokens),
		Auth:     authhandler.New(authSvc, log),
		Users:    userhandler.New(userSvc, log),
		Products: producthandler.New(productSvc, log),
		DB:       pool,
		Redis:    cache,
	})

	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return audit.NewWorker(sink, auditor.Inbox(), log).Run(gctx)
	})

	g.Go(func() error {
		log.Info("server starting", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

// buildAuditSink chooses Kafka when brokers are configured and the in-memory
// sink otherwise, so the service runs without a broker in development.
func buildAuditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Info("no kafka brokers configured, audit events stay in memory")
		return audit.NewMemorySink(), func() {}, nil
	}

	sink, err := audit.NewKafkaSink(ctx, cfg.KafkaBrokers, cfg.AuditTopic)
	if err != nil {
		return nil, nil, err
	}
	log.Info("audit events publishing to kafka", "topic", cfg.AuditTopic)
	return sink, sink.Close, nil
}
