// Package metrics exposes Prometheus instrumentation for the HTTP surface
// and the recipe domain. Collectors register with the default registry.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "larder"

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "API request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "api_active_requests",
			Help:      "Current number of in-flight API requests",
		},
	)

	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limit_hits_total",
			Help:      "Requests rejected by the credential rate limiter",
		},
		[]string{"route"},
	)

	// Domain
	LoginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by result",
		},
		[]string{"result"}, // success, failure
	)

	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "users_registered_total",
			Help:      "Accounts created",
		},
	)

	RecipeMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recipe_mutations_total",
			Help:      "Recipe writes by operation",
		},
		[]string{"operation"}, // create, update, delete
	)

	ReviewMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "review_mutations_total",
			Help:      "Review writes by operation",
		},
		[]string{"operation"}, // add, edit, edit_noop, delete
	)

	ImageUploads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "image_uploads_total",
			Help:      "Accepted recipe images by format",
		},
		[]string{"format"},
	)

	OrphanTagsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orphan_tags_deleted_total",
			Help:      "Tags removed after losing their last recipe",
		},
	)

	SearchQueries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Searches by kind",
		},
		[]string{"kind"}, // filter, suggest
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search latency in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

// RecordAPIRequest records one completed request.
func RecordAPIRequest(method, route string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest moves the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLogin counts a login attempt.
func RecordLogin(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	LoginAttempts.WithLabelValues(result).Inc()
}

// RecordRecipe counts a recipe write.
func RecordRecipe(operation string) {
	RecipeMutations.WithLabelValues(operation).Inc()
}

// RecordReview counts a review write.
func RecordReview(operation string) {
	ReviewMutations.WithLabelValues(operation).Inc()
}

// RecordSearch records a search of the given kind.
func RecordSearch(kind string, duration time.Duration) {
	SearchQueries.WithLabelValues(kind).Inc()
	SearchDuration.WithLabelValues(kind).Observe(duration.Seconds())
}
