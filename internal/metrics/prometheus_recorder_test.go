package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)

	pr.IncRequest("/", 200)
	pr.IncRequest("/", 200)
	pr.IncRequest("/api/v1/gallery/:postID", 404)
	pr.ObserveImages("post", 12)
	pr.IncCache(true)
	pr.IncCache(false)
	pr.IncRefresh(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(pr.requests.WithLabelValues("/", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.requests.WithLabelValues("/api/v1/gallery/:postID", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.cache.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pr.refreshes.WithLabelValues("changed")))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, mfs, 4)
}

func TestHTTPHandler(t *testing.T) {
	reg := prom.NewRegistry()
	NewPrometheusRecorder(reg).IncRequest("/", 200)

	rec := httptest.NewRecorder()
	HTTPHandler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "gallery_requests_total"))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.IncRequest("/", 200)
	r.ObserveImages("home", 3)
	r.IncCache(true)
	r.IncRefresh(false)
}
