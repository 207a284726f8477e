package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/places"
)

const (
	DefaultBaseURL   = "https://nominatim.openstreetmap.org"
	countryQualifier = "India"
	providerName     = "nominatim"
)

// 文档注释：Nominatim 搜索响应（仅解析需要的字段）
// 约束：lat/lon 为字符串；address.state 作为行政区名
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
	Address     struct {
		State string `json:"state"`
	} `json:"address"`
}

// Client：Nominatim 地理编码客户端
// 约束：所有请求携带固定 User-Agent；limiter 非空时每次请求前等待令牌
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
	limiter   *rate.Limiter
}

// New：构造客户端；client 为空时使用 5s 超时的默认客户端，limiter 为空时不限速
func New(baseURL, userAgent string, client *http.Client, limiter *rate.Limiter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), userAgent: userAgent, client: client, limiter: limiter}
}

func (c *Client) Name() string { return providerName }

// 文档注释：城市名地理编码
// 参数：city 为自由文本，查询时追加国家限定以偏向印度境内结果，仅取最佳一条。
// 返回：ok=false 表示无法解析；零结果与任何传输/解码错误都归一为 ok=false，只记录日志不向上抛出。
func (c *Client) Geocode(ctx context.Context, city string) (places.GeocodeResult, bool) {
	var out places.GeocodeResult
	city = strings.TrimSpace(city)
	if city == "" {
		return out, false
	}
	rs, err := c.search(ctx, city+", "+countryQualifier)
	if err != nil {
		logger.L().Error("nominatim_error", "city", city, "err", err)
		return out, false
	}
	if len(rs) == 0 {
		logger.L().Debug("nominatim_no_result", "city", city)
		return out, false
	}
	r := rs[0]
	lat, err1 := strconv.ParseFloat(r.Lat, 64)
	lon, err2 := strconv.ParseFloat(r.Lon, 64)
	if err1 != nil || err2 != nil {
		logger.L().Error("nominatim_bad_coordinate", "city", city, "lat", r.Lat, "lon", r.Lon)
		return out, false
	}
	out.Coordinate = places.Coordinate{Latitude: lat, Longitude: lon}
	out.DisplayName = r.DisplayName
	out.Region = r.Address.State
	return out, true
}

func (c *Client) search(ctx context.Context, q string) ([]searchResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}
	v := url.Values{}
	v.Set("q", q)
	v.Set("format", "json")
	v.Set("limit", "1")
	v.Set("addressdetails", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+v.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	done := metrics.ProviderCall(providerName)
	logger.L().Debug("nominatim_req", "q", q)
	resp, err := c.client.Do(req)
	if err != nil {
		done(false)
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		done(false)
		return nil, fmt.Errorf("nominatim status %d", resp.StatusCode)
	}
	var rs []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&rs); err != nil {
		done(false)
		return nil, fmt.Errorf("decode nominatim response: %w", err)
	}
	done(true)
	logger.L().Debug("nominatim_resp", "q", q, "results", len(rs))
	return rs, nil
}

// Heartbeat：探测 /status 接口，非 200 视为不可用
// 约束：与检索共用限速器，探测同样计入上游的请求配额
func (c *Client) Heartbeat(ctx context.Context) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status?format=json", nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("nominatim status %d", resp.StatusCode)
	}
	return nil
}
