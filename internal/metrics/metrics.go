package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tweetfeed_http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	TweetsPosted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetfeed_tweets_posted_total",
		Help: "Total tweets successfully posted",
	})

	TweetsDeleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetfeed_tweets_deleted_total",
		Help: "Total tweets deleted by their authors",
	})

	LikeChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetfeed_like_changes_total",
		Help: "Likes added and removed",
	}, []string{"action"})

	FollowChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetfeed_follow_changes_total",
		Help: "Follow edges added and removed",
	}, []string{"action"})

	EventPublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetfeed_event_publish_failures_total",
		Help: "Domain events that could not be written to Kafka",
	}, []string{"type"})

	EventsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tweetfeed_worker_events_processed_total",
		Help: "Events consumed by the notification worker",
	}, []string{"type"})

	NotificationsWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "tweetfeed_notifications_written_total",
		Help: "Notifications stored by the worker",
	})
)

func init() {
	prometheus.MustRegister(
		RequestDuration,
		TweetsPosted,
		TweetsDeleted,
		LikeChanges,
		FollowChanges,
		EventPublishFailures,
		EventsProcessed,
		NotificationsWritten,
	)
}

// Middleware to track request timing and status code
type statusRecordingWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *statusRecordingWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// InstrumentHandler records request duration labelled by the chi route
// pattern, so /api/tweets/1 and /api/tweets/2 share one series.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &statusRecordingWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		RequestDuration.
			WithLabelValues(r.Method, route, fmt.Sprintf("%d", rw.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}
