package fusion

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/overpass"
	"virasat-setu/internal/places"
)

// 单次检索最多富化的实体数（上游返回更多时按原顺序截断）
const maxEntities = 10

// 文档注释：按分类检索城市周边地点
// 背景：category 大小写不敏感，未知分类按 attraction 处理；先地理编码，再查询 Overpass 并对每个实体并发补全描述与图片。
// 返回：城市无法地理编码时返回包装后的 places.ErrCityNotFound；Overpass 失败时返回其错误。
func (a *Aggregator) SearchPlaces(ctx context.Context, cityName, category string) ([]places.PlaceRecord, error) {
	name := strings.TrimSpace(cityName)
	cat, _ := places.ParseCategory(category)
	ctx, cancel := a.withDeadline(ctx)
	defer cancel()
	ctx, span := otel.Tracer("CityAggregator").Start(ctx, "SearchPlaces", trace.WithAttributes(
		attribute.String("city.name", name),
		attribute.String("category", string(cat)),
	))
	defer span.End()

	geo, ok := a.geo.Geocode(ctx, name)
	if !ok {
		metrics.CityNotFoundTotal.Inc()
		span.SetStatus(codes.Error, "City not found")
		return nil, fmt.Errorf("search %q: %w", name, places.ErrCityNotFound)
	}
	out, err := a.searchAt(ctx, newSession(a.lookupWiki), name, cat, geo)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "POI provider failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("results.count", len(out)))
	return out, nil
}

type candidate struct {
	el   overpass.Element
	name string
	pos  places.Coordinate
}

// searchAt：复用已有地理编码结果执行检索与富化
func (a *Aggregator) searchAt(ctx context.Context, s *session, city string, cat places.Category, geo places.GeocodeResult) ([]places.PlaceRecord, error) {
	if a.down(a.poi) {
		return nil, fmt.Errorf("search %s: %w", cat, errProviderDown)
	}
	els, err := a.poi.Search(ctx, overpass.TagFor(cat), geo.Coordinate, overpass.DefaultRadius)
	if err != nil {
		return nil, err
	}
	if len(els) > maxEntities {
		els = els[:maxEntities]
	}
	cands := make([]candidate, 0, len(els))
	for _, el := range els {
		name := strings.TrimSpace(el.Tags["name"])
		if name == "" {
			metrics.PlacesDroppedTotal.WithLabelValues("unnamed").Inc()
			continue
		}
		pos, ok := el.Position()
		if !ok {
			metrics.PlacesDroppedTotal.WithLabelValues("no_coordinates").Inc()
			logger.L().Debug("place_dropped", "id", el.ID, "name", name, "reason", "no_coordinates")
			continue
		}
		cands = append(cands, candidate{el: el, name: name, pos: pos})
	}

	out := make([]places.PlaceRecord, len(cands))
	branches := make([]func(context.Context), len(cands))
	for i, c := range cands {
		branches[i] = func(ctx context.Context) {
			out[i] = a.enrich(ctx, s, city, cat, geo, c)
		}
	}
	settle(ctx, a.enrichLimit, branches...)
	logger.L().Debug("places_search_done", "city", city, "category", cat, "elements", len(els), "places", len(out))
	return out, nil
}

// enrich：描述按 百科摘要 → 标签 description → 合成文案 回退；图片缺失时走图片兜底
func (a *Aggregator) enrich(ctx context.Context, s *session, city string, cat places.Category, geo places.GeocodeResult, c candidate) places.PlaceRecord {
	tags := c.el.Tags
	p := places.PlaceRecord{
		ID:        fmt.Sprintf("%s/%d", c.el.Type, c.el.ID),
		Name:      c.name,
		Category:  cat,
		Latitude:  c.pos.Latitude,
		Longitude: c.pos.Longitude,
		Address:   firstNonEmpty(tags["addr:full"], geo.DisplayName),
		Website:   firstNonEmpty(tags["website"], tags["contact:website"]),
		Phone:     firstNonEmpty(tags["phone"], tags["contact:phone"]),
	}
	info, ok := s.lookup(ctx, c.name)
	if !ok {
		info = places.EncyclopediaResult{}
	}
	p.Description = firstNonEmpty(info.Extract, tags["description"], fmt.Sprintf("A %s in %s", cat, city))
	p.Image = info.Image
	if p.Image == "" {
		p.Image = a.resolveImage(ctx, c.name, city)
	}
	return p
}

func firstNonEmpty(vs ...string) string {
	for _, v := range vs {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
