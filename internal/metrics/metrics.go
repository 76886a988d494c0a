package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AssignmentsTotal counts assignment attempts by decision path and outcome
	// (success or conflict type).
	AssignmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "territory_assignments_total",
			Help: "Total number of client assignment attempts.",
		},
		[]string{"path", "outcome"},
	)

	AssignmentDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "territory_assignment_duration_ms",
			Help:    "Duration of client assignment decisions.",
			Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"path"},
	)

	RestRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path"},
	)

	RestResponseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_duration_ms",
			Help:    "Duration of HTTP requests.",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500, 1000},
		},
		[]string{"path", "method"},
	)

	RestResponsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_responses_total",
			Help: "HTTP responses by status.",
		},
		[]string{"path", "status"},
	)
)

func ObserveAssignment(path, outcome string, took time.Duration) {
	AssignmentsTotal.WithLabelValues(path, outcome).Inc()
	AssignmentDuration.WithLabelValues(path).Observe(millis(took))
}

func ObserveRequest(path, method string, status int, took time.Duration) {
	RestRequestsTotal.WithLabelValues(path).Inc()
	RestResponseDuration.WithLabelValues(path, method).Observe(millis(took))
	RestResponsesTotal.WithLabelValues(path, http.StatusText(status)).Inc()
}

// millis keeps sub-millisecond precision.
func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
