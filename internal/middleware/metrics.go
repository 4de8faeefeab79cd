package middleware

import (
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
)

var (
    // Total HTTP requests partitioned by method, route, and status code
    httpRequestsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "http_requests_total",
            Help: "Total number of HTTP requests processed",
        },
        []string{"method", "route", "status"},
    )

    // Request duration in seconds partitioned by method, route, and status code
    httpRequestDuration = promauto.NewHistogramVec(
        prometheus.HistogramOpts{
            Name:    "http_request_duration_seconds",
            Help:    "HTTP request latencies in seconds",
            Buckets: prometheus.DefBuckets,
        },
        []string{"method", "route", "status"},
    )

    // In-flight HTTP requests
    httpInFlight = promauto.NewGauge(
        prometheus.GaugeOpts{
            Name: "http_inflight_requests",
            Help: "Number of HTTP requests currently being served",
        },
    )

    // WebhookEventsTotal counts provider events by outcome.
    WebhookEventsTotal = promauto.NewCounterVec(
        prometheus.CounterOpts{
            Name: "webhook_events_total",
            Help: "Provider webhook events by processing outcome",
        },
        []string{"result"},
    )
)

// Metrics records basic Prometheus metrics per request. Labels stay
// low-cardinality by using the matched chi route pattern.
func Metrics(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        start := time.Now()
        httpInFlight.Inc()
        defer httpInFlight.Dec()

        recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
        next.ServeHTTP(recorder, r)

        route := r.URL.Path
        if ctx := chi.RouteContext(r.Context()); ctx != nil && ctx.RoutePattern() != "" {
            route = ctx.RoutePattern()
        }

        labels := prometheus.Labels{
            "method": r.Method,
            "route":  route,
            "status": strconv.Itoa(recorder.status),
        }
        httpRequestsTotal.With(labels).Inc()
        httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
    })
}

type statusRecorder struct {
    http.ResponseWriter
    status int
}

func (r *statusRecorder) WriteHeader(status int) {
    r.status = status
    r.ResponseWriter.WriteHeader(status)
}
