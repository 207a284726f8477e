package fusion

import (
	"context"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"virasat-setu/internal/catalog"
	"virasat-setu/internal/places"
	"virasat-setu/internal/unsplash"
)

const hotDescriptionRunes = 100

// 文档注释：首页热门城市
// 背景：城市列表来自静态目录；每个城市并发调用 GeocodeCity 与 GetWikipediaInfo，失败时用目录坐标、"Explore {name}" 与占位图兜底。
// 返回：顺序与目录一致，永不失败；enriched 表示至少一个城市拿到了上游的坐标、摘要或图片，
// 为 false 时结果全部是兜底值，调用方不应长期缓存。
func (a *Aggregator) HotCities(ctx context.Context) (cities []places.HotCity, enriched bool) {
	ctx, cancel := a.withDeadline(ctx)
	defer cancel()
	ctx, span := otel.Tracer("CityAggregator").Start(ctx, "HotCities")
	defer span.End()

	catalogCities := catalog.Cities()
	out := make([]places.HotCity, len(catalogCities))
	var live atomic.Bool
	var branches []func(context.Context)
	for i, c := range catalogCities {
		out[i] = places.HotCity{
			Name:        c.Name,
			State:       c.State,
			Coordinates: c.Coordinates,
			Description: "Explore " + c.Name,
			Image:       unsplash.Placeholder("India", c.Name),
		}
		var (
			geo   places.GeocodeResult
			geoOK bool
			info  places.EncyclopediaResult
			wOK   bool
		)
		branches = append(branches, func(ctx context.Context) {
			settle(ctx, 0,
				func(ctx context.Context) { geo, geoOK = a.GeocodeCity(ctx, c.Name) },
				func(ctx context.Context) { info, wOK = a.GetWikipediaInfo(ctx, c.Name) },
			)
			if geoOK {
				out[i].Coordinates = geo.Coordinate
				live.Store(true)
			}
			if wOK && info.Extract != "" {
				out[i].Description = truncateRunes(info.Extract, hotDescriptionRunes)
				live.Store(true)
			}
			if wOK && info.Image != "" {
				out[i].Image = info.Image
				live.Store(true)
			}
		})
	}
	settle(ctx, 0, branches...)
	span.SetAttributes(attribute.Int("cities.count", len(out)), attribute.Bool("enriched", live.Load()))
	return out, live.Load()
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n])
	}
	return s
}
