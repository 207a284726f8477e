package overpass

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/places"
)

const (
	DefaultURL    = "https://overpass-api.de/api/interpreter"
	DefaultRadius = 10000
	providerName  = "overpass"
	resultLimit   = 20
)

// Tag：OSM key=value 过滤条件
type Tag struct {
	Key   string
	Value string
}

func (t Tag) String() string { return t.Key + "=" + t.Value }

var categoryTags = map[places.Category]Tag{
	places.CategoryMonument:   {"historic", "monument"},
	places.CategoryTemple:     {"amenity", "place_of_worship"},
	places.CategoryRestaurant: {"amenity", "restaurant"},
	places.CategoryCafe:       {"amenity", "cafe"},
	places.CategoryHotel:      {"tourism", "hotel"},
	places.CategoryMuseum:     {"tourism", "museum"},
	places.CategoryAttraction: {"tourism", "attraction"},
	places.CategoryMarket:     {"amenity", "marketplace"},
}

// TagFor：分类到 OSM 标签；未登记分类回退为 tourism=attraction
func TagFor(c places.Category) Tag {
	if t, ok := categoryTags[c]; ok {
		return t
	}
	return categoryTags[places.CategoryAttraction]
}

// Element：Overpass 返回的 node/way；way 的坐标在 center 中
type Element struct {
	Type   string            `json:"type"`
	ID     int64             `json:"id"`
	Lat    *float64          `json:"lat"`
	Lon    *float64          `json:"lon"`
	Center *Center           `json:"center"`
	Tags   map[string]string `json:"tags"`
}

type Center struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Position：node 取自身坐标，way 取 center；都没有时 ok=false
func (e Element) Position() (places.Coordinate, bool) {
	if e.Lat != nil && e.Lon != nil {
		return places.Coordinate{Latitude: *e.Lat, Longitude: *e.Lon}, true
	}
	if e.Center != nil {
		return places.Coordinate{Latitude: e.Center.Lat, Longitude: e.Center.Lon}, true
	}
	return places.Coordinate{}, false
}

type response struct {
	Elements []Element `json:"elements"`
}

// Client：Overpass interpreter 客户端
// 约束：retries=0 时每次查询只发一次请求；重试仅针对传输错误、429 与 5xx
type Client struct {
	endpoint  string
	userAgent string
	client    *http.Client
	retries   uint64
	backoff   time.Duration
}

func New(endpoint, userAgent string, client *http.Client, retries int) *Client {
	if endpoint == "" {
		endpoint = DefaultURL
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{endpoint: endpoint, userAgent: userAgent, client: client, retries: uint64(retries), backoff: 500 * time.Millisecond}
}

func (c *Client) Name() string { return providerName }

// BuildQuery：以 center 为圆心、radius 米内的 node 与 way，way 输出中心点
func BuildQuery(tag Tag, center places.Coordinate, radius int) string {
	filter := fmt.Sprintf(`["%s"="%s"](around:%d,%g,%g)`, tag.Key, tag.Value, radius, center.Latitude, center.Longitude)
	return fmt.Sprintf(`[out:json][timeout:10];(node%s;way%s;);out center %d;`, filter, filter, resultLimit)
}

// 文档注释：按标签检索周边地点
// 返回：上游顺序的元素列表（最多 20 条）；失败时返回包装后的错误，由调用方决定是否降级。
func (c *Client) Search(ctx context.Context, tag Tag, center places.Coordinate, radius int) ([]Element, error) {
	if radius <= 0 {
		radius = DefaultRadius
	}
	q := BuildQuery(tag, center, radius)
	b := retry.WithMaxRetries(c.retries, retry.NewExponential(c.backoff))
	var out []Element
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		els, err := c.post(ctx, q)
		if err != nil {
			return err
		}
		out = els
		return nil
	})
	if err != nil {
		logger.L().Error("overpass_error", "tag", tag.String(), "err", err)
		return nil, fmt.Errorf("overpass search %s: %w", tag, err)
	}
	logger.L().Debug("overpass_resp", "tag", tag.String(), "elements", len(out))
	return out, nil
}

func (c *Client) post(ctx context.Context, q string) ([]Element, error) {
	form := url.Values{}
	form.Set("data", q)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	done := metrics.ProviderCall(providerName)
	resp, err := c.client.Do(req)
	if err != nil {
		done(false)
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, retry.RetryableError(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		done(false)
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		logger.L().Warn("overpass_http_error", "status", resp.StatusCode)
		err := fmt.Errorf("overpass status %d", resp.StatusCode)
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, retry.RetryableError(err)
		}
		return nil, err
	}
	var r response
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		done(false)
		return nil, fmt.Errorf("decode overpass response: %w", err)
	}
	done(true)
	return r.Elements, nil
}

// Heartbeat：发送一条只取 ID 的最小查询
func (c *Client) Heartbeat(ctx context.Context) error {
	_, err := c.post(ctx, `[out:json][timeout:5];node(1);out ids;`)
	return err
}
