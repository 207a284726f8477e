package fusion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"virasat-setu/internal/catalog"
	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/overpass"
	"virasat-setu/internal/places"
	"virasat-setu/internal/unsplash"
)

// 数据源接口：各外部客户端在 fusion 内仅通过以下能力被调用
type Geocoder interface {
	Geocode(ctx context.Context, city string) (places.GeocodeResult, bool)
}

type Encyclopedia interface {
	Lookup(ctx context.Context, title string) (places.EncyclopediaResult, bool)
}

type ImageResolver interface {
	Resolve(ctx context.Context, subject, scope string) string
}

type POIProvider interface {
	Search(ctx context.Context, tag overpass.Tag, center places.Coordinate, radius int) ([]overpass.Element, error)
}

// HealthChecker：提供方健康状态（由 plugins.Manager 实现）
type HealthChecker interface {
	Healthy(name string) bool
}

// Options：Health 为空时所有提供方视为可用
type Options struct {
	Timeout           time.Duration
	EnrichConcurrency int
	Health            HealthChecker
}

// errProviderDown：心跳判定不可用的提供方被跳过
var errProviderDown = errors.New("provider marked unhealthy")

const (
	defaultTimeout     = 25 * time.Second
	defaultEnrichLimit = 10
)

// Aggregator：城市信息编排器
// 约束：无跨请求可变状态；单次调用内的备忘在 session 中，调用结束即丢弃
type Aggregator struct {
	geo         Geocoder
	wiki        Encyclopedia
	img         ImageResolver
	poi         POIProvider
	timeout     time.Duration
	enrichLimit int
	health      HealthChecker
}

func New(geo Geocoder, wiki Encyclopedia, img ImageResolver, poi POIProvider, opts Options) *Aggregator {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.EnrichConcurrency <= 0 {
		opts.EnrichConcurrency = defaultEnrichLimit
	}
	return &Aggregator{geo: geo, wiki: wiki, img: img, poi: poi, timeout: opts.Timeout, enrichLimit: opts.EnrichConcurrency, health: opts.Health}
}

type categorySlot struct {
	category places.Category
	cap      int
}

// 城市页四类列表与各自上限
var citySlots = [4]categorySlot{
	{places.CategoryMonument, 6},
	{places.CategoryRestaurant, 6},
	{places.CategoryHotel, 4},
	{places.CategoryAttraction, 6},
}

// 文档注释：提供方是否被心跳判定为不可用
// 背景：与插件管理器的健康表联动，不可用的数据源直接走兜底，不再等待其超时。
// 约束：地理编码是唯一的终止性步骤，从不因健康状态跳过；未实现 Name 的提供方视为可用。
func (a *Aggregator) down(p any) bool {
	if a.health == nil {
		return false
	}
	n, ok := p.(interface{ Name() string })
	if !ok || a.health.Healthy(n.Name()) {
		return false
	}
	logger.L().Debug("provider_skipped", "name", n.Name())
	return true
}

func (a *Aggregator) lookupWiki(ctx context.Context, title string) (places.EncyclopediaResult, bool) {
	if a.down(a.wiki) {
		return places.EncyclopediaResult{}, false
	}
	return a.wiki.Lookup(ctx, title)
}

func (a *Aggregator) resolveImage(ctx context.Context, subject, scope string) string {
	if a.down(a.img) {
		return unsplash.Placeholder(subject, scope)
	}
	return a.img.Resolve(ctx, subject, scope)
}

func (a *Aggregator) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.timeout)
}

// 文档注释：获取城市聚合信息
// 背景：精选城市直接返回静态数据；其余城市先地理编码一次，再并发查询百科与四类地点，任一分类失败只降级为空列表。
// 返回：唯一的错误是 places.ErrCityNotFound（可用 errors.Is 判断）。
func (a *Aggregator) GetCityInfo(ctx context.Context, cityName string) (places.CityRecord, error) {
	name := strings.TrimSpace(cityName)
	if rec, ok := catalog.Lookup(name); ok {
		metrics.CityRequestsTotal.WithLabelValues("catalog").Inc()
		logger.L().Debug("city_catalog_hit", "city", name)
		return rec, nil
	}
	metrics.CityRequestsTotal.WithLabelValues("live").Inc()
	t0 := time.Now()
	defer func() { metrics.CityDurationMs.Observe(float64(time.Since(t0).Milliseconds())) }()

	ctx, cancel := a.withDeadline(ctx)
	defer cancel()
	ctx, span := otel.Tracer("CityAggregator").Start(ctx, "GetCityInfo", trace.WithAttributes(
		attribute.String("city.name", name),
	))
	defer span.End()

	geo, ok := a.geo.Geocode(ctx, name)
	if !ok {
		metrics.CityNotFoundTotal.Inc()
		span.SetStatus(codes.Error, "City not found")
		logger.L().Info("city_not_found", "city", name)
		return places.CityRecord{}, fmt.Errorf("city %q: %w", name, places.ErrCityNotFound)
	}

	s := newSession(a.lookupWiki)
	var (
		info   places.EncyclopediaResult
		infoOK bool
		lists  [len(citySlots)][]places.PlaceRecord
	)
	branches := []func(context.Context){
		func(ctx context.Context) { info, infoOK = s.lookup(ctx, name) },
	}
	for i, slot := range citySlots {
		branches = append(branches, func(ctx context.Context) {
			ps, err := a.searchAt(ctx, s, name, slot.category, geo)
			if err != nil {
				metrics.DegradedCategoriesTotal.WithLabelValues(string(slot.category)).Inc()
				logger.L().Warn("category_degraded", "city", name, "category", slot.category, "err", err)
			}
			lists[i] = capPlaces(ps, slot.cap)
		})
	}
	settle(ctx, 0, branches...)

	rec := places.CityRecord{
		Name:        name,
		State:       geo.Region,
		Coordinates: geo.Coordinate,
		Description: "Explore " + name + ", India",
		Places: places.CityPlaces{
			Monuments:   lists[0],
			Restaurants: lists[1],
			Hotels:      lists[2],
			Attractions: lists[3],
		},
	}
	if infoOK && info.Extract != "" {
		rec.Description = info.Extract
	}
	if infoOK && info.Image != "" {
		rec.Image = info.Image
	} else {
		rec.Image = a.resolveImage(ctx, name, "India")
	}
	span.SetAttributes(
		attribute.Int("monuments.count", len(rec.Places.Monuments)),
		attribute.Int("restaurants.count", len(rec.Places.Restaurants)),
		attribute.Int("hotels.count", len(rec.Places.Hotels)),
		attribute.Int("attractions.count", len(rec.Places.Attractions)),
	)
	span.SetStatus(codes.Ok, "City assembled")
	return rec, nil
}

// capPlaces：截断到上限；nil 归一为空切片
func capPlaces(ps []places.PlaceRecord, n int) []places.PlaceRecord {
	if len(ps) > n {
		ps = ps[:n]
	}
	if ps == nil {
		ps = []places.PlaceRecord{}
	}
	return ps
}

// GeocodeCity：直通地理编码，供外层路由单独使用
func (a *Aggregator) GeocodeCity(ctx context.Context, cityName string) (places.GeocodeResult, bool) {
	ctx, cancel := a.withDeadline(ctx)
	defer cancel()
	return a.geo.Geocode(ctx, strings.TrimSpace(cityName))
}

// GetWikipediaInfo：直通百科查询
func (a *Aggregator) GetWikipediaInfo(ctx context.Context, title string) (places.EncyclopediaResult, bool) {
	ctx, cancel := a.withDeadline(ctx)
	defer cancel()
	return a.lookupWiki(ctx, title)
}
