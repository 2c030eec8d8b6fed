// Package metrics объявляет метрики Prometheus магазина. Метрики регистрируются
// в реестре по умолчанию при импорте пакета и отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "neuro_store"

// Значения меток result.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// HTTPRequestsTotal число обработанных запросов.
// Метки: method, route (шаблон маршрута chi), status.
var HTTPRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	},
	[]string{"method", "route", "status"},
)

// HTTPRequestDuration длительность обработки запросов.
var HTTPRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"method", "route", "status"},
)

// HTTPInFlight число запросов в обработке.
var HTTPInFlight = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_in_flight_requests",
		Help:      "In-flight HTTP requests.",
	},
)

// PurchasesTotal попытки покупки подписки по результату.
var PurchasesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "subscription_purchases_total",
		Help:      "Total number of subscription purchase attempts.",
	},
	[]string{"result"},
)

// TopUpsTotal операции пополнения баланса.
// Метка stage: "created" или "verified".
var TopUpsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_topups_total",
		Help:      "Total number of balance top-up operations.",
	},
	[]string{"stage", "result"},
)

// CacheLookupsTotal обращения к кешу каталога.
// Метка result: "hit", "miss" или "error".
var CacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cache_lookups_total",
		Help:      "Catalog cache lookups by result.",
	},
	[]string{"result"},
)

// RateLimitedTotal запросы, отклоненные лимитером.
var RateLimitedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the rate limiter.",
	},
	[]string{"policy"},
)
