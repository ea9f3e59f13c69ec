package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder exports metrics through a Prometheus registry.
type PrometheusRecorder struct {
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	usersCreated  prometheus.Counter
	usersDeleted  prometheus.Counter
	msgsCreated   prometheus.Counter
	msgsDeleted   prometheus.Counter
	cacheRequests *prometheus.CounterVec
}

// NewPrometheus registers the application collectors on reg.
// Pass prometheus.DefaultRegisterer to expose them via promhttp.Handler.
func NewPrometheus(reg prometheus.Registerer) *PrometheusRecorder {
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgboard_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "msgboard_http_request_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "route"},
		),
		usersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgboard_users_created_total",
			Help: "Total users created",
		}),
		usersDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgboard_users_deleted_total",
			Help: "Total users deleted",
		}),
		msgsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgboard_messages_created_total",
			Help: "Total messages created",
		}),
		msgsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "msgboard_messages_deleted_total",
			Help: "Total messages deleted (cascaded deletes excluded)",
		}),
		cacheRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "msgboard_entity_cache_requests_total",
				Help: "Entity cache lookups by result",
			},
			[]string{"entity", "result"}, // result: "hit" or "miss"
		),
	}
}

// ObserveHTTPRequest records a finished request.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncUserCreated increments the users created counter.
func (p *PrometheusRecorder) IncUserCreated() { p.usersCreated.Inc() }

// IncUserDeleted increments the users deleted counter.
func (p *PrometheusRecorder) IncUserDeleted() { p.usersDeleted.Inc() }

// IncMessageCreated increments the messages created counter.
func (p *PrometheusRecorder) IncMessageCreated() { p.msgsCreated.Inc() }

// IncMessageDeleted increments the messages deleted counter.
func (p *PrometheusRecorder) IncMessageDeleted() { p.msgsDeleted.Inc() }

// IncCacheHit records a cache hit for entity.
func (p *PrometheusRecorder) IncCacheHit(entity string) {
	p.cacheRequests.WithLabelValues(entity, "hit").Inc()
}

// IncCacheMiss records a cache miss for entity.
func (p *PrometheusRecorder) IncCacheMiss(entity string) {
	p.cacheRequests.WithLabelValues(entity, "miss").Inc()
}
