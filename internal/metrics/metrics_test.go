package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentHandler_UsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(InstrumentHandler)
	r.Get("/api/tweets/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tweets/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	n := testutil.CollectAndCount(RequestDuration, "tweetfeed_http_request_duration_seconds")
	assert.GreaterOrEqual(t, n, 1)

	exp := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(exp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := exp.Body.String()
	assert.True(t, strings.Contains(body, `route="/api/tweets/{id}"`))
	assert.False(t, strings.Contains(body, `route="/api/tweets/42"`))
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(LikeChanges.WithLabelValues("add"))
	LikeChanges.WithLabelValues("add").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(LikeChanges.WithLabelValues("add")))

	TweetsPosted.Inc()
	NotificationsWritten.Inc()
	EventsProcessed.WithLabelValues("tweet_created").Inc()

	exp := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(exp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	for _, m := range []string{
		"tweetfeed_tweets_posted_total",
		"tweetfeed_like_changes_total",
		"tweetfeed_notifications_written_total",
		"tweetfeed_worker_events_processed_total",
	} {
		assert.Contains(t, exp.Body.String(), m)
	}
}
