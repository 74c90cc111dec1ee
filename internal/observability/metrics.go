package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "x_http_requests_total",
			Help: "Total number of HTTP requests processed by the debug server.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "x_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	patchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "x_realtime_patches_total",
			Help: "Total number of patch operations applied by path category.",
		},
		[]string{"category", "op"},
	)
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "x_events_emitted_total",
			Help: "Total number of domain events emitted.",
		},
		[]string{"event"},
	)
	bufferDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "x_preready_buffer_depth",
			Help: "Number of raw events queued before readiness.",
		},
	)
	resolverFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "x_resolver_fetches_total",
			Help: "Total number of entity resolution fetches.",
		},
		[]string{"kind", "outcome"},
	)
	feedFramesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "x_feed_frames_total",
			Help: "Total number of frames read from the push channel.",
		},
		[]string{"kind"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "x_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		patchesTotal,
		eventsTotal,
		bufferDepth,
		resolverFetchesTotal,
		feedFramesTotal,
		amqpPublishErrorsTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func IncPatch(category, op string) {
	patchesTotal.WithLabelValues(category, op).Inc()
}

func IncEvent(event string) {
	eventsTotal.WithLabelValues(event).Inc()
}

func SetBufferDepth(depth int) {
	bufferDepth.Set(float64(depth))
}

func IncResolverFetch(kind, outcome string) {
	resolverFetchesTotal.WithLabelValues(kind, outcome).Inc()
}

func IncFeedFrame(kind string) {
	feedFramesTotal.WithLabelValues(kind).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
