package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 预测结果分类（placekit_predictions_total 的 outcome 标签）
const (
	OutcomePlaced       = "placed"
	OutcomeNotPlaced    = "not_placed"
	OutcomeInvalidInput = "invalid_input"
	OutcomeUnavailable  = "unavailable"
	OutcomeError        = "error"
)

// 缓存查询结果（placekit_cache_lookups_total 的 result 标签）
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics 服务指标，注册在独立的 Registry 上，避免与全局默认 Registry 冲突。
// nil *Metrics 的所有方法都是空操作，方便测试和不需要指标的调用方。
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpLatency    *prometheus.HistogramVec
	predictions    *prometheus.CounterVec
	fallbacks      *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	artifactLoaded prometheus.Gauge
}

// NewMetrics 创建并注册所有指标
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placekit_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "path", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "placekit_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placekit_predictions_total",
			Help: "Prediction requests by outcome.",
		}, []string{"outcome"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placekit_category_fallbacks_total",
			Help: "Unknown categorical values encoded with the fallback code.",
		}, []string{"field"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "placekit_cache_lookups_total",
			Help: "Classification cache lookups by result.",
		}, []string{"result"}),
		artifactLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "placekit_artifacts_loaded",
			Help: "1 when the model artifacts are loaded, 0 otherwise.",
		}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.httpLatency,
		m.predictions,
		m.fallbacks,
		m.cacheLookups,
		m.artifactLoaded,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler 返回 /metrics 的 HTTP handler
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry 返回底层 Registry（测试用）
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveHTTP(method, path, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, status).Inc()
	m.httpLatency.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

func (m *Metrics) IncPrediction(outcome string) {
	if m == nil {
		return
	}
	m.predictions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncFallback(field string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(field).Inc()
}

func (m *Metrics) IncCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SetArtifactsLoaded(loaded bool) {
	if m == nil {
		return
	}
	if loaded {
		m.artifactLoaded.Set(1)
	} else {
		m.artifactLoaded.Set(0)
	}
}
