// Package httptransport assembles the HTTP surface: middleware chain,
// per-resource routes, health, and metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "github.com/AliAbadiHub/val-backend/internal/auth/handler"
	"github.com/AliAbadiHub/val-backend/internal/platform/metrics"
	"github.com/AliAbadiHub/val-backend/internal/platform/middleware"
	"github.com/AliAbadiHub/val-backend/internal/platform/redis"
	producthandler "github.com/AliAbadiHub/val-backend/internal/product/handler"
	"github.com/AliAbadiHub/val-backend/internal/transport/http/shared"
	userhandler "github.com/AliAbadiHub/val-backend/internal/user/handler"
)

// RouterDeps carries everything the router mounts. Redis may be nil when
// caching is not configured; health reporting skips it then.
type RouterDeps struct {
	Logger   *slog.Logger
	Metrics  *metrics.Metrics
	Timeout  time.Duration
	JWT      middleware.JWTValidator
	Auth     *authhandler.Handler
	Users    *userhandler.Handler
	Products *producthandler.Handler
	DB       *pgxpool.Pool
	Redis    *redis.Client
}

func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(deps.Timeout))
	r.Use(middleware.Latency(deps.Metrics))

	r.Get("/healthz", healthHandler(deps.DB, deps.Redis))
	r.Handle("/metrics", promhttp.Handler())

	requireAuth := middleware.RequireAuth(deps.JWT, deps.Logger)
	deps.Auth.Register(r)
	deps.Users.Register(r, requireAuth)
	deps.Products.Register(r, requireAuth)

	return r
}

type healthResponse struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

func healthHandler(db *pgxpool.Pool, cache *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		resp := healthResponse{Status: "ok", Components: map[string]string{}}

		if err := db.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.Components["postgres"] = err.Error()
		} else {
			resp.Components["postgres"] = "ok"
		}

		if cache != nil {
			if err := cache.Health(ctx); err != nil {
				resp.Status = "degraded"
				resp.Components["redis"] = err.Error()
			} else {
				resp.Components["redis"] = "ok"
			}
		}

		status := http.StatusOK
		if resp.Status != "ok" {
			status = http.StatusServiceUnavailable
		}
		shared.WriteJSON(w, status, resp)
	}
}
