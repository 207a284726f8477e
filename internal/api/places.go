package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"virasat-setu/internal/artisan"
	"virasat-setu/internal/geoip"
	"virasat-setu/internal/logger"
	"virasat-setu/internal/places"
)

// 城市页展示的手工艺人上限
const cityArtisanLimit = 6

type cityView struct {
	Name        string            `json:"name"`
	State       string            `json:"state"`
	Description string            `json:"description"`
	Image       string            `json:"image"`
	Coordinates places.Coordinate `json:"coordinates"`
	WikiURL     string            `json:"wikiUrl"`
}

type cityData struct {
	Monuments   []places.PlaceRecord `json:"monuments"`
	Restaurants []places.PlaceRecord `json:"restaurants"`
	Hotels      []places.PlaceRecord `json:"hotels"`
	Attractions []places.PlaceRecord `json:"attractions"`
	Artisans    []artisanView        `json:"artisans"`
}

type cityResponse struct {
	City cityView `json:"city"`
	Data cityData `json:"data"`
}

func wikiURL(name string) string {
	return "https://en.wikipedia.org/wiki/" + strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
}

func (h *handlers) city(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.PathValue("cityName"))
	h.writeCity(w, r, name, nil)
}

// writeCity：聚合城市信息并附带本地手工艺人；located 非空时一并返回定位结果
func (h *handlers) writeCity(w http.ResponseWriter, r *http.Request, name string, located *geoip.Result) {
	ctx := r.Context()
	rec, err := h.d.Cities.GetCityInfo(ctx, name)
	if err != nil {
		if errors.Is(err, places.ErrCityNotFound) {
			writeError(w, http.StatusNotFound, "City not found")
			return
		}
		logger.L().Error("city_info_error", "city", name, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch city information")
		return
	}
	resp := cityResponse{
		City: cityView{
			Name:        rec.Name,
			State:       rec.State,
			Description: rec.Description,
			Image:       rec.Image,
			Coordinates: rec.Coordinates,
			WikiURL:     wikiURL(name),
		},
		Data: cityData{
			Monuments:   rec.Places.Monuments,
			Restaurants: rec.Places.Restaurants,
			Hotels:      rec.Places.Hotels,
			Attractions: rec.Places.Attractions,
			Artisans:    h.cityArtisans(ctx, name),
		},
	}
	if located != nil {
		writeJSON(w, http.StatusOK, struct {
			Located geoip.Result `json:"located"`
			cityResponse
		}{*located, resp})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// cityArtisans：存储失败时记录日志并返回空列表，不影响城市信息本身
func (h *handlers) cityArtisans(ctx context.Context, city string) []artisanView {
	out := []artisanView{}
	if h.d.Artisans == nil {
		return out
	}
	list, err := h.d.Artisans.List(ctx, artisan.Query{City: city, Limit: cityArtisanLimit})
	if err != nil {
		logger.L().Warn("city_artisans_error", "city", city, "err", err)
		return out
	}
	for _, a := range list {
		out = append(out, toArtisanView(a))
	}
	return out
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	city := strings.TrimSpace(q.Get("city"))
	if city == "" {
		writeError(w, http.StatusBadRequest, "City parameter is required")
		return
	}
	category := q.Get("category")
	if category == "" {
		category = string(places.CategoryAttraction)
	}
	out, err := h.d.Cities.SearchPlaces(r.Context(), city, category)
	if err != nil {
		if errors.Is(err, places.ErrCityNotFound) {
			writeError(w, http.StatusNotFound, "City not found")
			return
		}
		logger.L().Warn("search_error", "city", city, "category", category, "err", err)
		writeError(w, http.StatusBadGateway, "Search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"places": out})
}

func (h *handlers) hotCities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if cs, ok := h.hot.get(ctx); ok {
		writeJSON(w, http.StatusOK, map[string]any{"cities": cs})
		return
	}
	cs, enriched := h.d.Cities.HotCities(ctx)
	// 全部为兜底值时不写缓存，上游恢复后下一次请求即可拿到真实数据
	if enriched {
		h.hot.set(ctx, cs)
	} else {
		logger.L().Warn("hot_cities_not_enriched")
	}
	writeJSON(w, http.StatusOK, map[string]any{"cities": cs})
}

// 文档注释：按访问者 IP 定位城市并返回城市信息
// 约束：未配置 GeoIP 库时 501；IP 非法 400；库中无城市 404。
func (h *handlers) locate(w http.ResponseWriter, r *http.Request) {
	if h.d.Locator == nil {
		writeError(w, http.StatusNotImplemented, "GeoIP database not configured")
		return
	}
	ip := getClientIP(r)
	res, ok, err := h.d.Locator.Lookup(ip)
	if err != nil {
		if errors.Is(err, geoip.ErrBadIP) {
			writeError(w, http.StatusBadRequest, "Invalid IP address")
			return
		}
		logger.L().Warn("locate_error", "ip", ip, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to locate client")
		return
	}
	if !ok {
		writeError(w, http.StatusNotFound, "City not found")
		return
	}
	logger.L().Debug("locate_ok", "ip", ip, "city", res.City, "country", res.CountryISO)
	h.writeCity(w, r, res.City, &res)
}

func (h *handlers) providers(w http.ResponseWriter, r *http.Request) {
	if h.d.Plugins == nil {
		writeJSON(w, http.StatusOK, map[string]any{"providers": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"providers": h.d.Plugins.Snapshot()})
}
