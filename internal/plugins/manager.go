package plugins

import (
	"context"
	"sort"
	"sync"
	"time"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/metrics"
)

// 文档注释：上游数据源插件契约
// 背景：地理编码、百科、POI、图片等客户端统一以插件注册，管理器只关心名称与心跳。
type Plugin interface {
	Name() string
	Heartbeat(ctx context.Context) error
}

// Status：对外暴露的健康快照
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}

// 文档注释：插件管理器
// 背景：负责插件注册与周期心跳，健康状态供 /providers 展示并导出为 gauge。
// 约束：心跳在锁外执行，慢探测不阻塞快照读取；单次探测超时 5s。
type Manager struct {
	mu           sync.RWMutex
	ps           map[string]Plugin
	st           map[string]Status
	hbInterval   time.Duration
	checkTimeout time.Duration
}

func NewManager(interval time.Duration) *Manager {
	if interval <= 0 {
		interval = 60 * time.Second
	}
	return &Manager{ps: make(map[string]Plugin), st: make(map[string]Status), hbInterval: interval, checkTimeout: 5 * time.Second}
}

// 文档注释：注册插件
// 背景：注册即视为健康，首轮心跳后再按结果更新。
func (m *Manager) Register(p Plugin) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ps[p.Name()] = p
	m.st[p.Name()] = Status{Name: p.Name(), Healthy: true, LastCheck: time.Now()}
	metrics.ProviderUp.WithLabelValues(p.Name()).Set(1)
	logger.L().Info("plugin_registered", "name", p.Name())
}

// Snapshot：按名称排序的健康状态
func (m *Manager) Snapshot() []Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Status, 0, len(m.st))
	for _, s := range m.st {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Healthy：未注册的名称返回 false
func (m *Manager) Healthy(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.st[name].Healthy
}

// 文档注释：启动心跳循环
// 背景：启动时立即探测一轮，之后按周期执行；ctx 取消时停止。
func (m *Manager) Start(ctx context.Context) {
	t := time.NewTicker(m.hbInterval)
	go func() {
		defer t.Stop()
		m.Check(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				m.Check(ctx)
			}
		}
	}()
}

// Check：对全部插件执行一轮心跳
func (m *Manager) Check(ctx context.Context) {
	m.mu.RLock()
	ps := make([]Plugin, 0, len(m.ps))
	for _, p := range m.ps {
		ps = append(ps, p)
	}
	m.mu.RUnlock()

	for _, p := range ps {
		pctx, cancel := context.WithTimeout(ctx, m.checkTimeout)
		err := p.Heartbeat(pctx)
		cancel()
		s := Status{Name: p.Name(), Healthy: err == nil, LastCheck: time.Now()}
		if err != nil {
			s.Error = err.Error()
			logger.L().Warn("plugin_heartbeat_fail", "name", p.Name(), "err", err)
			metrics.ProviderHeartbeatTotal.WithLabelValues(p.Name(), "fail").Inc()
			metrics.ProviderUp.WithLabelValues(p.Name()).Set(0)
		} else {
			logger.L().Debug("plugin_heartbeat_ok", "name", p.Name())
			metrics.ProviderHeartbeatTotal.WithLabelValues(p.Name(), "ok").Inc()
			metrics.ProviderUp.WithLabelValues(p.Name()).Set(1)
		}
		m.mu.Lock()
		m.st[p.Name()] = s
		m.mu.Unlock()
	}
}
