// 包 api：集中注册 HTTP API 路由以解耦主入口，便于后续扩展与替换
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"virasat-setu/internal/artisan"
	"virasat-setu/internal/geoip"
	"virasat-setu/internal/places"
	"virasat-setu/internal/plugins"
)

// CityService：城市聚合能力（由 fusion.Aggregator 实现）
type CityService interface {
	GetCityInfo(ctx context.Context, cityName string) (places.CityRecord, error)
	SearchPlaces(ctx context.Context, cityName, category string) ([]places.PlaceRecord, error)
	HotCities(ctx context.Context) ([]places.HotCity, bool)
}

// Locator：IP 到城市的定位（由 geoip.Locator 实现）
type Locator interface {
	Lookup(ip string) (geoip.Result, bool, error)
}

// Deps：路由依赖；Redis/Locator/Plugins 可为 nil，对应功能降级或关闭
type Deps struct {
	Cities     CityService
	Artisans   artisan.Repository
	Redis      *redis.Client
	HotTTL     time.Duration
	Locator    Locator
	Plugins    *plugins.Manager
	AdminToken string
}

// 构建并返回 API 路由：独立 ServeMux 便于在主入口挂载到 /api 前缀
func BuildRoutes(d Deps) *http.ServeMux {
	h := &handlers{d: d, hot: newHotCache(d.Redis, d.HotTTL)}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /places/city/{cityName}", h.city)
	mux.HandleFunc("GET /places/search", h.search)
	mux.HandleFunc("GET /places/hot-cities", h.hotCities)
	mux.HandleFunc("GET /places/artisans/{city}", h.listArtisans)
	mux.HandleFunc("POST /places/artisan", h.createArtisan)
	mux.HandleFunc("GET /places/locate", h.locate)
	mux.HandleFunc("GET /providers", h.providers)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

type handlers struct {
	d   Deps
	hot *hotCache
}
