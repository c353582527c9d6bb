package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	method string
	route  string
	status int
}

type recordingObserver struct {
	mu  sync.Mutex
	got []observation
}

func (o *recordingObserver) ObserveHTTP(method, route string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.got = append(o.got, observation{method, route, status})
}

func TestMetrics_LabelsByRoutePattern(t *testing.T) {
	observer := &recordingObserver{}

	r := chi.NewRouter()
	r.Use(Metrics(observer))
	r.Get("/api/receipts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, path := range []string{"/api/receipts/6f1c2b55-1b7e-4f7e-9d62-0c1d8a3b9e11", "/api/health", "/nope"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	require.Len(t, observer.got, 3)
	assert.Equal(t, observation{"GET", "/api/receipts/{id}", http.StatusNotFound}, observer.got[0])
	assert.Equal(t, observation{"GET", "/api/health", http.StatusOK}, observer.got[1])
	assert.Equal(t, http.StatusNotFound, observer.got[2].status)
}
