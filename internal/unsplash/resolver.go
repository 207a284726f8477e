package unsplash

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
)

const (
	DefaultBaseURL  = "https://api.unsplash.com"
	PlaceholderBase = "https://source.unsplash.com/800x600/?"
	providerName    = "unsplash"
)

// searcher：带密钥的 Unsplash 搜索能力；未配置密钥时 Resolver 不持有该对象
type searcher struct {
	baseURL string
	key     string
	client  *http.Client
}

type searchResponse struct {
	Results []struct {
		URLs struct {
			Regular string `json:"regular"`
		} `json:"urls"`
	} `json:"results"`
}

// Resolver：图片兜底解析器
// 约束：Resolve 永不返回空串；是否具备搜索能力在构造时确定
type Resolver struct {
	s *searcher
}

// New：key 为空时返回仅生成占位图的解析器
func New(baseURL, key string, client *http.Client) *Resolver {
	key = strings.TrimSpace(key)
	if key == "" {
		return &Resolver{}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Resolver{s: &searcher{baseURL: strings.TrimRight(baseURL, "/"), key: key, client: client}}
}

// Keyed：是否配置了访问密钥（决定是否注册健康探测）
func (r *Resolver) Keyed() bool { return r.s != nil }

func (r *Resolver) Name() string { return providerName }

// 文档注释：为 (subject, scope) 解析一张图片，scope 通常是所在城市
// 返回：密钥搜索命中时返回首个结果的 regular 尺寸 URL；其余情况返回确定性的占位 URL。
func (r *Resolver) Resolve(ctx context.Context, subject, scope string) string {
	if r.s != nil {
		u, err := r.s.search(ctx, strings.TrimSpace(subject+" "+scope+" India"))
		if err != nil {
			logger.L().Error("unsplash_error", "subject", subject, "err", err)
		} else if u != "" {
			return u
		}
	}
	return Placeholder(subject, scope)
}

// Placeholder：确定性占位图 URL，subject 为空时省略
func Placeholder(subject, scope string) string {
	subject = strings.TrimSpace(subject)
	q := escape(strings.TrimSpace(scope))
	if subject != "" {
		q += "," + escape(subject)
	}
	return PlaceholderBase + q
}

// escape：空格编码为 %20 而非 +
func escape(s string) string { return strings.ReplaceAll(url.QueryEscape(s), "+", "%20") }

func (s *searcher) search(ctx context.Context, query string) (string, error) {
	v := url.Values{}
	v.Set("query", query)
	v.Set("per_page", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/search/photos?"+v.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+s.key)
	req.Header.Set("Accept-Version", "v1")
	done := metrics.ProviderCall(providerName)
	logger.L().Debug("unsplash_req", "query", query)
	resp, err := s.client.Do(req)
	if err != nil {
		done(false)
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		done(false)
		return "", fmt.Errorf("unsplash status %d", resp.StatusCode)
	}
	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		done(false)
		return "", fmt.Errorf("decode unsplash response: %w", err)
	}
	done(true)
	if len(sr.Results) == 0 {
		return "", nil
	}
	return sr.Results[0].URLs.Regular, nil
}

// Heartbeat：无密钥时没有可探测的上游
func (r *Resolver) Heartbeat(ctx context.Context) error {
	if r.s == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.s.baseURL+"/photos?per_page=1", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Client-ID "+r.s.key)
	resp, err := r.s.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unsplash status %d", resp.StatusCode)
	}
	return nil
}
