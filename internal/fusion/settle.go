package fusion

import (
	"context"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"virasat-setu/internal/places"
)

// settle：并发执行全部分支并等待其全部结束
// 约束：分支自行兜底（写入默认值），从不向 errgroup 返回错误，因此一个分支失败不会取消其他分支；limit<=0 表示不限并发
func settle(ctx context.Context, limit int, branches ...func(context.Context)) {
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for _, b := range branches {
		g.Go(func() error {
			b(gctx)
			return nil
		})
	}
	_ = g.Wait()
}

type wikiEntry struct {
	res places.EncyclopediaResult
	ok  bool
}

// session：单次聚合调用内的百科查询备忘
// 背景：同一地点名可能同时出现在多个分类中，并发查询合并为一次请求，结果在本次调用内复用。
type session struct {
	wiki func(ctx context.Context, title string) (places.EncyclopediaResult, bool)
	sf   singleflight.Group
	mu   sync.Mutex
	memo map[string]wikiEntry
}

func newSession(wiki func(ctx context.Context, title string) (places.EncyclopediaResult, bool)) *session {
	return &session{wiki: wiki, memo: make(map[string]wikiEntry)}
}

func (s *session) lookup(ctx context.Context, title string) (places.EncyclopediaResult, bool) {
	key := strings.ToLower(strings.TrimSpace(title))
	s.mu.Lock()
	e, hit := s.memo[key]
	s.mu.Unlock()
	if hit {
		return e.res, e.ok
	}
	v, _, _ := s.sf.Do(key, func() (any, error) {
		s.mu.Lock()
		cached, hit := s.memo[key]
		s.mu.Unlock()
		if hit {
			return cached, nil
		}
		r, ok := s.wiki(ctx, title)
		e := wikiEntry{res: r, ok: ok}
		s.mu.Lock()
		s.memo[key] = e
		s.mu.Unlock()
		return e, nil
	})
	e = v.(wikiEntry)
	return e.res, e.ok
}
