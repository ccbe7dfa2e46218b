package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordAPIRequest(t *testing.T) {
	before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test/record", "200"))

	RecordAPIRequest("GET", "/test/record", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues("GET", "/test/record", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordLogin(t *testing.T) {
	ok := testutil.ToFloat64(LoginAttempts.WithLabelValues("success"))
	bad := testutil.ToFloat64(LoginAttempts.WithLabelValues("failure"))

	RecordLogin(true)
	RecordLogin(false)
	RecordLogin(false)

	assert.Equal(t, ok+1, testutil.ToFloat64(LoginAttempts.WithLabelValues("success")))
	assert.Equal(t, bad+2, testutil.ToFloat64(LoginAttempts.WithLabelValues("failure")))
}

func TestDomainCounters(t *testing.T) {
	created := testutil.ToFloat64(RecipeMutations.WithLabelValues("create"))
	noop := testutil.ToFloat64(ReviewMutations.WithLabelValues("edit_noop"))
	suggest := testutil.ToFloat64(SearchQueries.WithLabelValues("suggest"))

	RecordRecipe("create")
	RecordReview("edit_noop")
	RecordSearch("suggest", time.Millisecond)

	assert.Equal(t, created+1, testutil.ToFloat64(RecipeMutations.WithLabelValues("create")))
	assert.Equal(t, noop+1, testutil.ToFloat64(ReviewMutations.WithLabelValues("edit_noop")))
	assert.Equal(t, suggest+1, testutil.ToFloat64(SearchQueries.WithLabelValues("suggest")))
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	TrackActiveRequest(true)
	assert.Equal(t, before+1, testutil.ToFloat64(APIActiveRequests))
	TrackActiveRequest(false)
	assert.Equal(t, before, testutil.ToFloat64(APIActiveRequests))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/metrics-test/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	counter := APIRequestsTotal.WithLabelValues("GET", "/metrics-test/{id}", "418")
	before := testutil.ToFloat64(counter)

	for _, path := range []string{"/metrics-test/1", "/metrics-test/2"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestMiddleware_ImplicitOK(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	counter := APIRequestsTotal.WithLabelValues("GET", unmatchedRoute, "200")
	before := testutil.ToFloat64(counter)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/anything", nil))
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
