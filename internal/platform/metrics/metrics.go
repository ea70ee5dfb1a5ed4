// Package metrics holds the Prometheus instruments for the application.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every instrument so handlers and services share one
// registration point.
type Metrics struct {
	UsersRegistered   prometheus.Counter
	ProfilesAttached  prometheus.Counter
	Logins            *prometheus.CounterVec
	RoleTransitions   *prometheus.CounterVec
	ProductCacheHits  prometheus.Counter
	ProductCacheMiss  prometheus.Counter
	RequestDurationMs *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics on the default registry.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "val_users_registered_total",
			Help: "Total number of users registered",
		}),
		ProfilesAttached: promauto.NewCounter(prometheus.CounterOpts{
			Name: "val_profiles_attached_total",
			Help: "Total number of profiles attached to users",
		}),
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "val_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		RoleTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "val_role_transitions_total",
			Help: "User role transitions by target role",
		}, []string{"to"}),
		ProductCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "val_product_cache_hits_total",
			Help: "Product reads served from Redis",
		}),
		ProductCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "val_product_cache_misses_total",
			Help: "Product reads that fell through to the store",
		}),
		RequestDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "val_http_request_duration_ms",
			Help:    "HTTP request latency in milliseconds",
			Buckets: []float64{1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		}, []string{"method", "route"}),
	}
}
