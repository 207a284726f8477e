package fusion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/overpass"
	"virasat-setu/internal/places"
	"virasat-setu/internal/unsplash"
)

func init() { logger.Use(logger.Discard()) }

type fakeGeo struct {
	known map[string]places.GeocodeResult
	calls atomic.Int32
	hang  bool
}

func (f *fakeGeo) Name() string { return "nominatim" }

// Geocode：hang 为 true 时阻塞到 ctx 结束，模拟无响应的上游
func (f *fakeGeo) Geocode(ctx context.Context, city string) (places.GeocodeResult, bool) {
	f.calls.Add(1)
	if f.hang {
		<-ctx.Done()
		return places.GeocodeResult{}, false
	}
	r, ok := f.known[strings.ToLower(city)]
	return r, ok
}

type fakeWiki struct {
	mu    sync.Mutex
	pages map[string]places.EncyclopediaResult
	calls map[string]int
}

func (f *fakeWiki) Name() string { return "wikipedia" }

func (f *fakeWiki) Lookup(_ context.Context, title string) (places.EncyclopediaResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[title]++
	r, ok := f.pages[title]
	return r, ok
}

func (f *fakeWiki) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

type fakeImg struct{ calls atomic.Int32 }

func (f *fakeImg) Name() string { return "unsplash" }

func (f *fakeImg) Resolve(_ context.Context, subject, scope string) string {
	f.calls.Add(1)
	return "img:" + subject + "|" + scope
}

type poiReply struct {
	els  []overpass.Element
	err  error
	hang bool
}

type fakePOI struct {
	mu      sync.Mutex
	byValue map[string]poiReply
	tags    []overpass.Tag
	centers []places.Coordinate
}

func (f *fakePOI) Name() string { return "overpass" }

func (f *fakePOI) Search(ctx context.Context, tag overpass.Tag, center places.Coordinate, _ int) ([]overpass.Element, error) {
	f.mu.Lock()
	f.tags = append(f.tags, tag)
	f.centers = append(f.centers, center)
	f.mu.Unlock()
	r := f.byValue[tag.Value]
	if r.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return r.els, r.err
}

func node(id int64, name string, lat, lon float64, kv ...string) overpass.Element {
	tags := map[string]string{}
	if name != "" {
		tags["name"] = name
	}
	for i := 0; i+1 < len(kv); i += 2 {
		tags[kv[i]] = kv[i+1]
	}
	return overpass.Element{Type: "node", ID: id, Lat: &lat, Lon: &lon, Tags: tags}
}

func named(prefix string, n int) []overpass.Element {
	out := make([]overpass.Element, n)
	for i := range out {
		out[i] = node(int64(i+1), fmt.Sprintf("%s %d", prefix, i+1), 18.5, 73.8)
	}
	return out
}

var pune = places.GeocodeResult{
	Coordinate:  places.Coordinate{Latitude: 18.5204, Longitude: 73.8567},
	DisplayName: "Pune, Maharashtra, India",
	Region:      "Maharashtra",
}

type fixture struct {
	geo  *fakeGeo
	wiki *fakeWiki
	img  *fakeImg
	poi  *fakePOI
	agg  *Aggregator
}

func newFixture() *fixture {
	f := &fixture{
		geo:  &fakeGeo{known: map[string]places.GeocodeResult{"pune": pune}},
		wiki: &fakeWiki{pages: map[string]places.EncyclopediaResult{}},
		img:  &fakeImg{},
		poi:  &fakePOI{byValue: map[string]poiReply{}},
	}
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Timeout: 5 * time.Second, EnrichConcurrency: 3})
	return f
}

func TestGetCityInfo_CatalogShortCircuit(t *testing.T) {
	f := newFixture()
	a, err := f.agg.GetCityInfo(context.Background(), "Jaipur")
	require.NoError(t, err)
	b, err := f.agg.GetCityInfo(context.Background(), "  jaipur ")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "Rajasthan", a.State)
	assert.NotEmpty(t, a.Places.Monuments)
	assert.Zero(t, f.geo.calls.Load())
	assert.Zero(t, f.wiki.total())
	assert.Zero(t, f.img.calls.Load())
	assert.Empty(t, f.poi.tags)
}

func TestGetCityInfo_CatalogIsNotMutatedByCallers(t *testing.T) {
	f := newFixture()
	a, _ := f.agg.GetCityInfo(context.Background(), "Hampi")
	a.Places.Monuments[0].Description = "tampered"
	a.Places.Hotels = nil

	b, _ := f.agg.GetCityInfo(context.Background(), "Hampi")
	assert.NotEqual(t, "tampered", b.Places.Monuments[0].Description)
	assert.NotEmpty(t, b.Places.Hotels)
}

func TestGetCityInfo_UnknownCity(t *testing.T) {
	f := newFixture()
	_, err := f.agg.GetCityInfo(context.Background(), "Atlantis")
	require.Error(t, err)
	assert.True(t, errors.Is(err, places.ErrCityNotFound))
	assert.Empty(t, f.poi.tags)
	assert.Zero(t, f.wiki.total())
}

func TestSearchPlaces_UnknownCityForEveryCategory(t *testing.T) {
	f := newFixture()
	for _, c := range []string{"monument", "restaurant", "hotel", "attraction", "temple", "cafe", "museum", "market", ""} {
		_, err := f.agg.SearchPlaces(context.Background(), "Atlantis", c)
		assert.ErrorIs(t, err, places.ErrCityNotFound, c)
	}
	assert.Empty(t, f.poi.tags)
}

func TestGetCityInfo_LiveAssemblyAndCaps(t *testing.T) {
	f := newFixture()
	for _, v := range []string{"monument", "restaurant", "hotel", "attraction"} {
		f.poi.byValue[v] = poiReply{els: named(v, 10)}
	}
	f.wiki.pages["Pune"] = places.EncyclopediaResult{Extract: "Pune is a city...", Image: "https://upload.wikimedia.org/pune.jpg"}

	rec, err := f.agg.GetCityInfo(context.Background(), " Pune ")
	require.NoError(t, err)
	assert.Equal(t, "Pune", rec.Name)
	assert.Equal(t, "Maharashtra", rec.State)
	assert.Equal(t, pune.Coordinate, rec.Coordinates)
	assert.Equal(t, "Pune is a city...", rec.Description)
	assert.Equal(t, "https://upload.wikimedia.org/pune.jpg", rec.Image)
	assert.Len(t, rec.Places.Monuments, 6)
	assert.Len(t, rec.Places.Restaurants, 6)
	assert.Len(t, rec.Places.Hotels, 4)
	assert.Len(t, rec.Places.Attractions, 6)

	assert.Equal(t, int32(1), f.geo.calls.Load())
	require.Len(t, f.poi.centers, 4)
	for _, c := range f.poi.centers {
		assert.Equal(t, pune.Coordinate, c)
	}
}

func TestGetCityInfo_CategoryFailureDegrades(t *testing.T) {
	f := newFixture()
	f.poi.byValue["monument"] = poiReply{els: named("Fort", 3)}
	f.poi.byValue["restaurant"] = poiReply{err: errors.New("overpass status 504")}
	f.poi.byValue["hotel"] = poiReply{err: context.DeadlineExceeded}

	rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Len(t, rec.Places.Monuments, 3)
	assert.NotNil(t, rec.Places.Restaurants)
	assert.Empty(t, rec.Places.Restaurants)
	assert.NotNil(t, rec.Places.Hotels)
	assert.Empty(t, rec.Places.Hotels)
	assert.NotNil(t, rec.Places.Attractions)
	assert.Empty(t, rec.Places.Attractions)
}

func TestGetCityInfo_Fallbacks(t *testing.T) {
	f := newFixture()

	rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Explore Pune, India", rec.Description)
	assert.Equal(t, "img:Pune|India", rec.Image)
}

func TestGetCityInfo_ExtractWithoutImage(t *testing.T) {
	f := newFixture()
	f.wiki.pages["Pune"] = places.EncyclopediaResult{Extract: "Pune..."}

	rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune...", rec.Description)
	assert.Equal(t, "img:Pune|India", rec.Image)
}

func TestSearchPlaces_EnrichmentAndFiltering(t *testing.T) {
	f := newFixture()
	wayNoCenter := overpass.Element{Type: "way", ID: 77, Tags: map[string]string{"name": "Ghost Way"}}
	wayWithCenter := overpass.Element{Type: "way", ID: 88, Center: &overpass.Center{Lat: 18.51, Lon: 73.85}, Tags: map[string]string{
		"name": "Shaniwar Wada", "addr:full": "Shaniwar Peth, Pune", "website": "https://example.org", "phone": "+91 20 0000",
	}}
	els := []overpass.Element{
		node(1, "Aga Khan Palace", 18.55, 73.90),
		node(2, "", 18.50, 73.80),
		wayNoCenter,
		wayWithCenter,
		node(3, "Sinhagad", 18.36, 73.75, "description", "Hill fortress"),
	}
	els = append(els, named("Filler", 5)...)
	els = append(els, node(99, "Beyond Ten", 18.0, 73.0))
	f.poi.byValue["monument"] = poiReply{els: els}
	f.wiki.pages["Aga Khan Palace"] = places.EncyclopediaResult{Extract: "Palace extract...", Image: "https://upload.wikimedia.org/aga.jpg"}

	got, err := f.agg.SearchPlaces(context.Background(), "Pune", "Monument")
	require.NoError(t, err)
	require.Len(t, got, 8)

	byName := map[string]places.PlaceRecord{}
	for _, p := range got {
		assert.NotEmpty(t, p.Image, p.Name)
		assert.Nil(t, p.Rating, p.Name)
		assert.Equal(t, places.CategoryMonument, p.Category)
		byName[p.Name] = p
	}
	assert.NotContains(t, byName, "Ghost Way")
	assert.NotContains(t, byName, "Beyond Ten")

	aga := byName["Aga Khan Palace"]
	assert.Equal(t, "node/1", aga.ID)
	assert.Equal(t, "Palace extract...", aga.Description)
	assert.Equal(t, "https://upload.wikimedia.org/aga.jpg", aga.Image)
	assert.Equal(t, pune.DisplayName, aga.Address)

	wada := byName["Shaniwar Wada"]
	assert.Equal(t, "way/88", wada.ID)
	assert.Equal(t, 18.51, wada.Latitude)
	assert.Equal(t, "Shaniwar Peth, Pune", wada.Address)
	assert.Equal(t, "https://example.org", wada.Website)
	assert.Equal(t, "+91 20 0000", wada.Phone)
	assert.Equal(t, "A monument in Pune", wada.Description)
	assert.Equal(t, "img:Shaniwar Wada|Pune", wada.Image)

	assert.Equal(t, "Hill fortress", byName["Sinhagad"].Description)

	assert.Equal(t, "Aga Khan Palace", got[0].Name)
	assert.Equal(t, "Shaniwar Wada", got[1].Name)
}

func TestSearchPlaces_UnknownCategoryUsesAttraction(t *testing.T) {
	f := newFixture()
	_, err := f.agg.SearchPlaces(context.Background(), "Pune", "zoo")
	require.NoError(t, err)
	require.Len(t, f.poi.tags, 1)
	assert.Equal(t, overpass.Tag{Key: "tourism", Value: "attraction"}, f.poi.tags[0])
}

func TestSearchPlaces_ProviderErrorIsReturned(t *testing.T) {
	f := newFixture()
	f.poi.byValue["hotel"] = poiReply{err: errors.New("overpass status 429")}
	_, err := f.agg.SearchPlaces(context.Background(), "Pune", "hotel")
	require.Error(t, err)
	assert.False(t, errors.Is(err, places.ErrCityNotFound))
}

func TestSearchPlaces_ImageNeverEmptyWithRealResolver(t *testing.T) {
	f := newFixture()
	f.agg.img = unsplash.New("", "", nil)
	f.poi.byValue["cafe"] = poiReply{els: named("Cafe", 4)}

	got, err := f.agg.SearchPlaces(context.Background(), "Pune", "cafe")
	require.NoError(t, err)
	require.Len(t, got, 4)
	for _, p := range got {
		assert.True(t, strings.HasPrefix(p.Image, unsplash.PlaceholderBase), p.Image)
	}
}

func TestGetCityInfo_EncyclopediaMemoizedAcrossCategories(t *testing.T) {
	f := newFixture()
	shared := []overpass.Element{node(1, "Lal Mahal", 18.51, 73.85)}
	f.poi.byValue["monument"] = poiReply{els: shared}
	f.poi.byValue["attraction"] = poiReply{els: shared}
	f.poi.byValue["hotel"] = poiReply{els: shared}

	rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Len(t, rec.Places.Monuments, 1)
	assert.Len(t, rec.Places.Attractions, 1)

	f.wiki.mu.Lock()
	defer f.wiki.mu.Unlock()
	assert.Equal(t, 1, f.wiki.calls["Lal Mahal"])
	assert.Equal(t, 1, f.wiki.calls["Pune"])
}

func TestHotCities(t *testing.T) {
	f := newFixture()
	f.geo.known["jaipur"] = places.GeocodeResult{Coordinate: places.Coordinate{Latitude: 26.9, Longitude: 75.8}}
	f.wiki.pages["Varanasi"] = places.EncyclopediaResult{Extract: strings.Repeat("v", 150), Image: "https://upload.wikimedia.org/v.jpg"}

	got, enriched := f.agg.HotCities(context.Background())
	require.Len(t, got, 6)
	assert.True(t, enriched)
	assert.Equal(t, "Jaipur", got[0].Name)
	assert.Equal(t, places.Coordinate{Latitude: 26.9, Longitude: 75.8}, got[0].Coordinates)
	assert.Equal(t, "Explore Jaipur", got[0].Description)
	assert.Equal(t, "https://source.unsplash.com/800x600/?Jaipur,India", got[0].Image)

	assert.Equal(t, "Varanasi", got[1].Name)
	assert.Equal(t, strings.Repeat("v", 100), got[1].Description)
	assert.Equal(t, "https://upload.wikimedia.org/v.jpg", got[1].Image)
	assert.Equal(t, 25.3176, got[1].Coordinates.Latitude)
}

func TestSettle_BranchesAllRunUnderLimit(t *testing.T) {
	var running, peak atomic.Int32
	var done atomic.Int32
	branches := make([]func(context.Context), 12)
	for i := range branches {
		branches[i] = func(context.Context) {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
		}
	}
	settle(context.Background(), 3, branches...)
	assert.Equal(t, int32(12), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

type fakeHealth map[string]bool

func (h fakeHealth) Healthy(name string) bool { return !h[name] }

// withinDeadline：在 limit 内拿到 fn 的结果，否则判定失败（防止实现忽略截止时间时测试挂住）
func withinDeadline[T any](t *testing.T, limit time.Duration, fn func() T) (T, time.Duration) {
	t.Helper()
	start := time.Now()
	ch := make(chan T, 1)
	go func() { ch <- fn() }()
	select {
	case v := <-ch:
		return v, time.Since(start)
	case <-time.After(limit):
		t.Fatalf("call did not return within %s", limit)
		var zero T
		return zero, limit
	}
}

type cityResult struct {
	rec places.CityRecord
	err error
}

func TestGetCityInfo_HangingCategoryDegradesAtDeadline(t *testing.T) {
	f := newFixture()
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Timeout: 50 * time.Millisecond})
	f.poi.byValue["monument"] = poiReply{els: named("Fort", 2)}
	f.poi.byValue["hotel"] = poiReply{hang: true}

	res, elapsed := withinDeadline(t, 2*time.Second, func() cityResult {
		rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
		return cityResult{rec, err}
	})
	require.NoError(t, res.err)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Len(t, res.rec.Places.Monuments, 2)
	assert.NotNil(t, res.rec.Places.Hotels)
	assert.Empty(t, res.rec.Places.Hotels)
}

func TestGetCityInfo_HangingGeocoderIsUnresolvableAtDeadline(t *testing.T) {
	f := newFixture()
	f.geo.hang = true
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Timeout: 50 * time.Millisecond})

	res, elapsed := withinDeadline(t, 2*time.Second, func() cityResult {
		rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
		return cityResult{rec, err}
	})
	assert.ErrorIs(t, res.err, places.ErrCityNotFound)
	assert.Less(t, elapsed, time.Second)
	assert.Empty(t, f.poi.tags)
}

func TestSearchPlaces_HangingProviderFailsAtDeadline(t *testing.T) {
	f := newFixture()
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Timeout: 50 * time.Millisecond})
	f.poi.byValue["restaurant"] = poiReply{hang: true}

	err, elapsed := withinDeadline(t, 2*time.Second, func() error {
		_, err := f.agg.SearchPlaces(context.Background(), "Pune", "restaurant")
		return err
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, time.Second)
}

func TestGetCityInfo_SkipsProvidersMarkedDown(t *testing.T) {
	f := newFixture()
	f.poi.byValue["monument"] = poiReply{els: named("Fort", 3)}
	f.wiki.pages["Pune"] = places.EncyclopediaResult{Extract: "Pune...", Image: "https://upload.wikimedia.org/pune.jpg"}
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Health: fakeHealth{"overpass": true, "wikipedia": true, "unsplash": true}})

	rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.geo.calls.Load())
	assert.Empty(t, f.poi.tags)
	assert.Zero(t, f.wiki.total())
	assert.Zero(t, f.img.calls.Load())
	assert.Empty(t, rec.Places.Monuments)
	assert.NotNil(t, rec.Places.Attractions)
	assert.Equal(t, "Explore Pune, India", rec.Description)
	assert.Equal(t, unsplash.Placeholder("Pune", "India"), rec.Image)

	_, err = f.agg.SearchPlaces(context.Background(), "Pune", "monument")
	assert.ErrorIs(t, err, errProviderDown)
	assert.False(t, errors.Is(err, places.ErrCityNotFound))
}

func TestGetCityInfo_OnlyUnhealthyProviderIsSkipped(t *testing.T) {
	f := newFixture()
	f.poi.byValue["monument"] = poiReply{els: named("Fort", 3)}
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Health: fakeHealth{"wikipedia": true}})

	rec, err := f.agg.GetCityInfo(context.Background(), "Pune")
	require.NoError(t, err)
	assert.Len(t, rec.Places.Monuments, 3)
	assert.Zero(t, f.wiki.total())
	assert.Equal(t, "A monument in Pune", rec.Places.Monuments[0].Description)
	assert.Equal(t, "img:Fort 1|Pune", rec.Places.Monuments[0].Image)
}

func TestHotCities_GoesThroughStandaloneLookups(t *testing.T) {
	f := newFixture()
	f.agg = New(f.geo, f.wiki, f.img, f.poi, Options{Health: fakeHealth{"wikipedia": true}})

	got, enriched := f.agg.HotCities(context.Background())
	require.Len(t, got, 6)
	// 百科被判不可用：GetWikipediaInfo 直接返回兜底
	assert.Zero(t, f.wiki.total())
	assert.Equal(t, int32(6), f.geo.calls.Load())
	assert.False(t, enriched)
	for _, c := range got {
		assert.Equal(t, "Explore "+c.Name, c.Description)
	}
}

func TestHotCities_NotEnrichedWhenEverythingFails(t *testing.T) {
	f := newFixture()
	got, enriched := f.agg.HotCities(context.Background())
	require.Len(t, got, 6)
	assert.False(t, enriched)
	assert.Equal(t, unsplash.Placeholder("India", "Hampi"), got[2].Image)
}
