package wikipedia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
	"virasat-setu/internal/places"
)

const (
	DefaultAPIURL = "https://en.wikipedia.org/w/api.php"
	providerName  = "wikipedia"
	extractRunes  = 200
)

type queryResponse struct {
	Query *struct {
		Pages map[string]page `json:"pages"`
	} `json:"query"`
}

type page struct {
	PageID   int     `json:"pageid"`
	Title    string  `json:"title"`
	Missing  *string `json:"missing"`
	Extract  string  `json:"extract"`
	Original *struct {
		Source string `json:"source"`
	} `json:"original"`
}

// Client：MediaWiki query API 客户端
type Client struct {
	apiURL    string
	userAgent string
	client    *http.Client
}

func New(apiURL, userAgent string, client *http.Client) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Client{apiURL: apiURL, userAgent: userAgent, client: client}
}

func (c *Client) Name() string { return providerName }

// 文档注释：按标题查询百科摘要与原图
// 背景：启用 redirects，别名标题返回目标页内容；页面缺失时 API 仍返回 200，需按 missing 字段判断。
// 返回：ok=false 表示页面不存在或请求失败；摘要非空时截取前 200 个字符并追加 "..."。
func (c *Client) Lookup(ctx context.Context, title string) (places.EncyclopediaResult, bool) {
	var out places.EncyclopediaResult
	title = strings.TrimSpace(title)
	if title == "" {
		return out, false
	}
	v := url.Values{}
	v.Set("action", "query")
	v.Set("format", "json")
	v.Set("prop", "extracts|pageimages")
	v.Set("exintro", "1")
	v.Set("explaintext", "1")
	v.Set("piprop", "original")
	v.Set("titles", title)
	v.Set("redirects", "1")

	var qr queryResponse
	if err := c.get(ctx, v, &qr); err != nil {
		logger.L().Error("wikipedia_error", "title", title, "err", err)
		return out, false
	}
	if qr.Query == nil || len(qr.Query.Pages) == 0 {
		logger.L().Debug("wikipedia_no_pages", "title", title)
		return out, false
	}
	p := firstPage(qr.Query.Pages)
	if p.Missing != nil {
		logger.L().Debug("wikipedia_missing", "title", title)
		return out, false
	}
	out.Extract = truncate(p.Extract, extractRunes)
	if p.Original != nil {
		out.Image = p.Original.Source
	}
	return out, true
}

// firstPage：单标题查询只有一页；缺失页的 key 为负数，按 key 排序保证结果稳定
func firstPage(pages map[string]page) page {
	var key string
	for k := range pages {
		if key == "" || k < key {
			key = k
		}
	}
	return pages[key]
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r) + "..."
}

func (c *Client) get(ctx context.Context, v url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"?"+v.Encode(), nil)
	if err != nil {
		return err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	done := metrics.ProviderCall(providerName)
	logger.L().Debug("wikipedia_req", "titles", v.Get("titles"), "meta", v.Get("meta"))
	resp, err := c.client.Do(req)
	if err != nil {
		done(false)
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		done(false)
		return fmt.Errorf("wikipedia status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		done(false)
		return fmt.Errorf("decode wikipedia response: %w", err)
	}
	done(true)
	return nil
}

// Heartbeat：请求 siteinfo 元数据
func (c *Client) Heartbeat(ctx context.Context) error {
	v := url.Values{}
	v.Set("action", "query")
	v.Set("meta", "siteinfo")
	v.Set("format", "json")
	var raw map[string]any
	return c.get(ctx, v, &raw)
}
