// Package metrics holds the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "showcase_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	SecurityAlerts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_security_alerts_total",
		Help: "Security alerts fired, by type.",
	}, []string{"type"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_rate_limited_total",
		Help: "Requests rejected by a rate limit rule.",
	}, []string{"rule"})

	ProxyFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_proxy_fetches_total",
		Help: "External asset fetches by outcome.",
	}, []string{"outcome"})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_cache_lookups_total",
		Help: "Model cache lookups by result.",
	}, []string{"result"})

	Compactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "showcase_db_compactions_total",
		Help: "Database compaction runs by outcome.",
	}, []string{"outcome"})
)
