// 程序入口：仅负责读取配置、初始化依赖并启动服务；API 注册在 internal/api 以便扩展
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"virasat-setu/internal/api"
	"virasat-setu/internal/artisan"
	"virasat-setu/internal/config"
	"virasat-setu/internal/fusion"
	"virasat-setu/internal/geoip"
	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/middleware"
	"virasat-setu/internal/nominatim"
	"virasat-setu/internal/overpass"
	"virasat-setu/internal/plugins"
	"virasat-setu/internal/unsplash"
	"virasat-setu/internal/utils"
	"virasat-setu/internal/wikipedia"
)

func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	cfg := config.Load()
	// 日志初始化
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	l.Debug("log_init_ok")
	l.Debug("config_api_base", "base", cfg.APIBase)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 上游客户端：Nominatim 需遵守约 1 req/s 的使用政策
	burst := cfg.NominatimBurst
	if burst < 1 {
		burst = 1
	}
	geo := nominatim.New(cfg.NominatimBaseURL, cfg.UserAgent, nil, rate.NewLimiter(rate.Limit(cfg.NominatimRPS), burst))
	wiki := wikipedia.New(cfg.WikipediaAPIURL, cfg.UserAgent, nil)
	img := unsplash.New(cfg.UnsplashBaseURL, cfg.UnsplashKey, nil)
	poi := overpass.New(cfg.OverpassURL, cfg.UserAgent, nil, cfg.OverpassRetries)

	// 文档注释：插件注册与心跳
	// 背景：未配置 Unsplash 密钥时没有可探测的上游，不注册。
	pm := plugins.NewManager(cfg.HeartbeatInterval)
	pm.Register(geo)
	pm.Register(wiki)
	pm.Register(poi)
	if img.Keyed() {
		pm.Register(img)
	} else {
		l.Info("plugin_skip", "name", img.Name(), "reason", "UNSPLASH_ACCESS_KEY not set")
	}
	pm.Start(ctx)

	// 聚合器按心跳结果跳过被判定为不健康的上游；地理编码始终调用
	agg := fusion.New(geo, wiki, img, poi, fusion.Options{
		Timeout:           cfg.AggregateTimeout,
		EnrichConcurrency: cfg.EnrichConcurrency,
		Health:            pm,
	})

	store, closeStore, err := artisan.Open(ctx, artisan.StoreOptions{Kind: cfg.ArtisanStore, MongoURI: cfg.MongoURI, MongoDB: cfg.MongoDBName})
	if err != nil {
		l.Error("artisan_store_error", "store", cfg.ArtisanStore, "err", err)
		os.Exit(1)
	}
	defer closeStore()

	var rc *redis.Client
	if cfg.RedisEnable {
		if rc, err = utils.OpenRedisFromEnv(ctx); err != nil {
			l.Warn("redis_unavailable", "err", err)
			rc = nil
		} else {
			l.Info("redis_enabled")
			defer rc.Close()
		}
	}

	deps := api.Deps{
		Cities:     agg,
		Artisans:   artisan.NewCached(store, 5*time.Minute),
		Redis:      rc,
		HotTTL:     cfg.HotCitiesTTL,
		Plugins:    pm,
		AdminToken: cfg.AdminToken,
	}
	if cfg.GeoIPDBPath != "" {
		loc, err := geoip.Open(cfg.GeoIPDBPath)
		if err != nil {
			l.Warn("geoip_open_error", "path", cfg.GeoIPDBPath, "err", err)
		} else {
			defer loc.Close()
			deps.Locator = loc
		}
	}

	mux := http.NewServeMux()
	apiMux := api.BuildRoutes(deps)
	mux.Handle(cfg.APIBase+"/", http.StripPrefix(cfg.APIBase, apiMux))
	mux.Handle(cfg.APIBase+"/metrics", metrics.Handler())

	handler := logger.AccessMiddleware(l)(mux)
	if cfg.RateLimit {
		handler = middleware.NewRateLimiter(cfg.RateLimitQPS, cfg.RateLimitBurst).Wrap(handler)
		l.Info("rate_limit_enabled", "qps", cfg.RateLimitQPS, "burst", cfg.RateLimitBurst)
	}
	handler = middleware.CORS(cfg.CORSOrigins)(handler)

	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.AggregateTimeout + 10*time.Second,
	}
	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.Shutdown(sctx)
	}()

	if cfg.TLSEnable {
		if err := utils.EnsureSelfSignedCert(cfg.TLSCertPath, cfg.TLSKeyPath, "virasat-setu.local"); err != nil {
			l.Error("tls_cert_error", "err", err)
			os.Exit(1)
		}
		l.Info("listening_tls", "addr", cfg.Addr, "cert", cfg.TLSCertPath)
		err = s.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
	} else {
		l.Info("listening", "addr", cfg.Addr)
		err = s.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error("server_error", "err", err)
		os.Exit(1)
	}
	l.Info("server_stopped")
}
