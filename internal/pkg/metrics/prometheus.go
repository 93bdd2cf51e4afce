package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "tradepulse",
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	// Reconciliation metrics
	reconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "recon",
			Name:      "runs_total",
			Help:      "Total number of reconciliation runs by kind, source and status",
		},
		[]string{"kind", "source", "status"},
	)

	reconciliationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "recon",
			Name:      "run_duration_seconds",
			Help:      "Duration of a reconciliation run in seconds",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	scanPagesFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "recon",
			Name:      "pages_fetched_total",
			Help:      "Total number of user-directory pages fetched",
		},
	)

	scanUsersScanned = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "recon",
			Name:      "users_scanned_total",
			Help:      "Total number of users scanned",
		},
	)

	scanTruncatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "recon",
			Name:      "truncated_scans_total",
			Help:      "Scans cut short by the user cap (partial results)",
		},
	)

	summaryFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "recon",
			Name:      "summary_fallbacks_total",
			Help:      "Reconciliations that fell back from the summary source to a full scan",
		},
	)

	upstreamErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tradepulse",
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Total number of upstream API errors",
		},
		[]string{"endpoint"},
	)

	// Run-history database metrics
	dbQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "tradepulse",
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation", "table"},
	)
)

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware returns a middleware that records Prometheus metrics
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()

		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		if routePattern == "" {
			routePattern = "unknown"
		}

		status := strconv.Itoa(wrapped.statusCode)

		httpRequestsTotal.WithLabelValues(r.Method, routePattern, status).Inc()
		httpRequestDuration.WithLabelValues(r.Method, routePattern, status).Observe(duration)
	})
}

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordReconciliation records a completed reconciliation run
func RecordReconciliation(kind, source, status string, duration time.Duration) {
	reconciliationsTotal.WithLabelValues(kind, source, status).Inc()
	reconciliationDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordPageFetched records one user-directory page fetch
func RecordPageFetched(users int) {
	scanPagesFetched.Inc()
	scanUsersScanned.Add(float64(users))
}

// RecordTruncatedScan records a scan stopped by the user cap
func RecordTruncatedScan() {
	scanTruncatedTotal.Inc()
}

// RecordSummaryFallback records a fallback from summary to full scan
func RecordSummaryFallback() {
	summaryFallbacksTotal.Inc()
}

// RecordUpstreamError records an upstream API error by endpoint
func RecordUpstreamError(endpoint string) {
	upstreamErrorsTotal.WithLabelValues(endpoint).Inc()
}

// RecordDBQuery records a database query duration
func RecordDBQuery(operation, table string, duration time.Duration) {
	dbQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}
