package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	requests  *prom.CounterVec
	images    *prom.HistogramVec
	cache     *prom.CounterVec
	refreshes *prom.CounterVec
}

func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		requests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gallery",
			Name:      "requests_total",
			Help:      "Gallery requests by route and status code",
		}, []string{"route", "status"}),
		images: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "gallery",
			Name:      "images_per_view",
			Help:      "Number of images extracted for a rendered view",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"mode"}),
		cache: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gallery",
			Name:      "page_cache_lookups_total",
			Help:      "Page cache lookups by result",
		}, []string{"result"}),
		refreshes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: "gallery",
			Name:      "refreshes_total",
			Help:      "Store rescans by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(pr.requests, pr.images, pr.cache, pr.refreshes)
	return pr
}

func (p *PrometheusRecorder) IncRequest(route string, status int) {
	p.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

func (p *PrometheusRecorder) ObserveImages(mode string, count int) {
	p.images.WithLabelValues(mode).Observe(float64(count))
}

func (p *PrometheusRecorder) IncCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	p.cache.WithLabelValues(result).Inc()
}

func (p *PrometheusRecorder) IncRefresh(changed bool) {
	outcome := "unchanged"
	if changed {
		outcome = "changed"
	}
	p.refreshes.WithLabelValues(outcome).Inc()
}

// HTTPHandler serves the metrics gathered by reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
