// 包 middleware：入口中间件（令牌桶限流、CORS、访问者 IP 解析）
package middleware

import (
	"net/http"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
)

// 文档注释：令牌桶限流中间件
// 背景：在流量峰值时对入口限速，保护下游免费服务（Nominatim/Overpass）不被放大请求打满。
// 约束：不排队，超限直接返回 429；全局桶之外每个访问者 IP 另有一个同速率的桶，
// 访问者桶闲置 10 分钟后回收。
type RateLimiter struct {
	global   *rate.Limiter
	qps      rate.Limit
	burst    int
	visitors *cache.Cache
}

func NewRateLimiter(qps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		global:   rate.NewLimiter(rate.Limit(qps), burst),
		qps:      rate.Limit(qps),
		burst:    burst,
		visitors: cache.New(10*time.Minute, 5*time.Minute),
	}
}

func (l *RateLimiter) visitor(ip string) *rate.Limiter {
	if v, ok := l.visitors.Get(ip); ok {
		l.visitors.SetDefault(ip, v)
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(l.qps/4, max(1, l.burst/4))
	if err := l.visitors.Add(ip, lim, cache.DefaultExpiration); err != nil {
		// 并发下已被其他请求创建
		if v, ok := l.visitors.Get(ip); ok {
			return v.(*rate.Limiter)
		}
	}
	return lim
}

func (l *RateLimiter) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := VisitorIP(r)
		if !l.visitor(ip).Allow() {
			metrics.RateLimitedTotal.WithLabelValues("visitor").Inc()
			logger.L().Debug("rate_limited", "scope", "visitor", "ip", ip)
			tooMany(w)
			return
		}
		if !l.global.Allow() {
			metrics.RateLimitedTotal.WithLabelValues("global").Inc()
			logger.L().Debug("rate_limited", "scope", "global", "ip", ip)
			tooMany(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func tooMany(w http.ResponseWriter) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("retry-after", "1")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"Too many requests"}`))
}
