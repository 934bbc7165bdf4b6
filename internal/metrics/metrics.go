package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	KindProduct  = "product"
	KindCategory = "category"
	KindSearch   = "search"
)

var (
	// DocumentsRendered counts JSON-LD documents built from catalog data (cache misses).
	DocumentsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsonld_documents_rendered_total",
			Help: "Total number of JSON-LD documents rendered",
		},
		[]string{"kind"},
	)

	// RenderErrors counts failed document requests by reason.
	RenderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsonld_render_errors_total",
			Help: "Total number of JSON-LD document requests that failed",
		},
		[]string{"kind", "reason"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsonld_cache_requests_total",
			Help: "Total number of JSON-LD cache lookups by result",
		},
		[]string{"kind", "result"},
	)

	RenderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "jsonld_render_duration_seconds",
			Help:    "Duration of JSON-LD document loading and rendering in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)

	// InvalidationEvents counts catalog events consumed by the invalidation listener.
	InvalidationEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "jsonld_invalidation_events_total",
			Help: "Total number of catalog events handled by the cache invalidation listener",
		},
		[]string{"event_type", "result"},
	)
)
