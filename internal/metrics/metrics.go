package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "cadetportal"

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method and status code",
	}, []string{"method", "code"})
	HTTPDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	})
	DBQueryDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Name: "db_query_duration_seconds", Help: "SQLite call latency by operation",
		Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"op"})
	MarksWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "attendance_marks_written_total", Help: "Attendance marks written by status",
	}, []string{"status"})
	SessionEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "attendance_sessions_total", Help: "Attendance session lifecycle events",
	}, []string{"event"})
	ReportExports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Name: "report_exports_total", Help: "Report exports by format and result",
	}, []string{"format", "result"})
	LiveSubscribers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "live_subscribers", Help: "Open live snapshot subscriptions",
	})
	LiveTopics = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "live_topics", Help: "Live topics with at least one subscriber",
	})
)

func init() {
	prometheus.MustRegister(
		HTTPRequests, HTTPDuration, DBQueryDuration,
		MarksWritten, SessionEvents, ReportExports,
		LiveSubscribers, LiveTopics,
	)
}

// Handler serves the default registry.
func Handler() http.Handler { return promhttp.Handler() }

// ObserveRequest records one served HTTP request.
func ObserveRequest(method string, code int, d time.Duration) {
	HTTPRequests.WithLabelValues(method, strconv.Itoa(code)).Inc()
	HTTPDuration.Observe(d.Seconds())
}

// ObserveQuery records one database call.
func ObserveQuery(op string, d time.Duration) {
	DBQueryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveMarks counts n marks written with status.
func ObserveMarks(status string, n int) {
	MarksWritten.WithLabelValues(status).Add(float64(n))
}

// ObserveSession counts a session lifecycle event (created, locked, deleted).
func ObserveSession(event string) {
	SessionEvents.WithLabelValues(event).Inc()
}

// ObserveExport counts a report export attempt.
func ObserveExport(format string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ReportExports.WithLabelValues(format, result).Inc()
}
