package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CityRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_city_requests_total",
		Help: "Total city info requests by source (catalog, live)",
	}, []string{"source"})
	CityNotFoundTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "virasat_city_not_found_total",
		Help: "Total city requests that could not be geocoded",
	})
	CityDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "virasat_city_duration_ms",
		Help:    "Live city aggregation duration in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000},
	})
	DegradedCategoriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_degraded_categories_total",
		Help: "Category searches that failed and degraded to an empty list",
	}, []string{"category"})
	PlacesDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_places_dropped_total",
		Help: "Provider entities dropped before enrichment by reason",
	}, []string{"reason"})
	ProviderRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_provider_requests_total",
		Help: "Total outbound provider requests",
	}, []string{"provider"})
	ProviderSuccessTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_provider_success_total",
		Help: "Total outbound provider successes",
	}, []string{"provider"})
	ProviderFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_provider_fail_total",
		Help: "Total outbound provider failures (transport, status, decode)",
	}, []string{"provider"})
	ProviderDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "virasat_provider_duration_ms",
		Help:    "Outbound provider call duration in milliseconds",
		Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
	}, []string{"provider"})
	ProviderHeartbeatTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_provider_heartbeat_total",
		Help: "Provider heartbeat count by status",
	}, []string{"provider", "status"})
	ProviderUp = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "virasat_provider_up",
		Help: "1 when the last heartbeat of a provider succeeded",
	}, []string{"provider"})
	RedisHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "virasat_redis_hits_total",
		Help: "Total redis cache hits",
	})
	RedisMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "virasat_redis_misses_total",
		Help: "Total redis cache misses",
	})
	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "virasat_rate_limited_total",
		Help: "Requests rejected by the inbound rate limiter",
	}, []string{"scope"})
)

func init() {
	prometheus.MustRegister(CityRequestsTotal)
	prometheus.MustRegister(CityNotFoundTotal)
	prometheus.MustRegister(CityDurationMs)
	prometheus.MustRegister(DegradedCategoriesTotal)
	prometheus.MustRegister(PlacesDroppedTotal)
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderSuccessTotal)
	prometheus.MustRegister(ProviderFailTotal)
	prometheus.MustRegister(ProviderDurationMs)
	prometheus.MustRegister(ProviderHeartbeatTotal)
	prometheus.MustRegister(ProviderUp)
	prometheus.MustRegister(RedisHitsTotal)
	prometheus.MustRegister(RedisMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// ProviderCall：记录一次外部调用的开始，返回的函数在结束时按成功/失败计数并观测耗时
func ProviderCall(provider string) func(ok bool) {
	t0 := time.Now()
	ProviderRequestsTotal.WithLabelValues(provider).Inc()
	return func(ok bool) {
		ProviderDurationMs.WithLabelValues(provider).Observe(float64(time.Since(t0).Milliseconds()))
		if ok {
			ProviderSuccessTotal.WithLabelValues(provider).Inc()
		} else {
			ProviderFailTotal.WithLabelValues(provider).Inc()
		}
	}
}

// Handler：Prometheus 指标处理器，在主入口挂载到 /metrics
func Handler() http.Handler { return promhttp.Handler() }
