package artisan

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryRepository：进程内实现，用于未配置数据库的部署与测试
type MemoryRepository struct {
	mu   sync.RWMutex
	rows []Artisan
}

func NewMemoryRepository() *MemoryRepository { return &MemoryRepository{} }

func (m *MemoryRepository) List(ctx context.Context, q Query) ([]Artisan, error) {
	city := strings.ToLower(strings.TrimSpace(q.City))
	spec := strings.TrimSpace(q.Specialty)
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Artisan{}
	for _, a := range m.rows {
		if !strings.Contains(strings.ToLower(a.City), city) {
			continue
		}
		if spec != "" && !strings.EqualFold(a.Specialty, spec) {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (m *MemoryRepository) Create(ctx context.Context, a *Artisan) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.prepare()
	m.mu.Lock()
	m.rows = append(m.rows, *a)
	m.mu.Unlock()
	return nil
}
