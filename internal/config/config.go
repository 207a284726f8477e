// 包 config：集中读取环境变量为类型化配置；.env 由入口在调用 Load 前加载
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr      string
	APIBase   string
	LogLevel  string
	LogFormat string
	UserAgent string

	NominatimBaseURL string
	NominatimRPS     float64
	NominatimBurst   int
	WikipediaAPIURL  string
	OverpassURL      string
	OverpassRetries  int
	UnsplashBaseURL  string
	UnsplashKey      string

	AggregateTimeout  time.Duration
	EnrichConcurrency int
	HeartbeatInterval time.Duration

	ArtisanStore string
	MongoURI     string
	MongoDBName  string

	RedisEnable    bool
	HotCitiesTTL   time.Duration
	GeoIPDBPath    string
	AdminToken     string
	CORSOrigins    []string
	RateLimit      bool
	RateLimitQPS   float64
	RateLimitBurst int

	TLSEnable   bool
	TLSCertPath string
	TLSKeyPath  string
}

// Load：读取环境变量；解析失败的数值项回退为默认值
func Load() Config {
	return Config{
		Addr:      str("ADDR", ":8080"),
		APIBase:   strings.TrimRight(str("API_BASE", "/api"), "/"),
		LogLevel:  str("LOG_LEVEL", "info"),
		LogFormat: str("LOG_FORMAT", "text"),
		UserAgent: str("USER_AGENT", "Virasat-Setu/1.0"),

		NominatimBaseURL: str("NOMINATIM_BASE_URL", "https://nominatim.openstreetmap.org"),
		NominatimRPS:     float("NOMINATIM_RPS", 1),
		NominatimBurst:   integer("NOMINATIM_BURST", 4),
		WikipediaAPIURL:  str("WIKIPEDIA_API_URL", "https://en.wikipedia.org/w/api.php"),
		OverpassURL:      str("OVERPASS_URL", "https://overpass-api.de/api/interpreter"),
		OverpassRetries:  integer("OVERPASS_RETRIES", 0),
		UnsplashBaseURL:  str("UNSPLASH_BASE_URL", "https://api.unsplash.com"),
		UnsplashKey:      os.Getenv("UNSPLASH_ACCESS_KEY"),

		AggregateTimeout:  duration("AGGREGATE_TIMEOUT", 25*time.Second),
		EnrichConcurrency: integer("ENRICH_CONCURRENCY", 10),
		HeartbeatInterval: duration("HEARTBEAT_INTERVAL", 60*time.Second),

		ArtisanStore: strings.ToLower(str("ARTISAN_STORE", "memory")),
		MongoURI:     str("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:  str("MONGO_DB_NAME", "virasat_setu"),

		RedisEnable:    os.Getenv("REDIS_ENABLE") == "true",
		HotCitiesTTL:   time.Duration(integer("HOT_CITIES_TTL_S", 3600)) * time.Second,
		GeoIPDBPath:    os.Getenv("GEOIP_DB_PATH"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		CORSOrigins:    list("CORS_ORIGINS", []string{"*"}),
		RateLimit:      os.Getenv("RATE_LIMIT_ENABLED") == "true",
		RateLimitQPS:   float("RATE_LIMIT_QPS", 200),
		RateLimitBurst: integer("RATE_LIMIT_BURST", 400),

		TLSEnable:   os.Getenv("TLS_ENABLE") == "true",
		TLSCertPath: str("TLS_CERT_PATH", "data/certs/server.crt"),
		TLSKeyPath:  str("TLS_KEY_PATH", "data/certs/server.key"),
	}
}

func str(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func integer(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n >= 0 {
			return n
		}
	}
	return def
}

func float(key string, def float64) float64 {
	if s := os.Getenv(key); s != "" {
		if n, e := strconv.ParseFloat(s, 64); e == nil && n > 0 {
			return n
		}
	}
	return def
}

// duration：支持 "25s" 形式，也接受纯数字秒
func duration(key string, def time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	if d, e := time.ParseDuration(s); e == nil && d > 0 {
		return d
	}
	if n, e := strconv.Atoi(s); e == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	return def
}

func list(key string, def []string) []string {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
