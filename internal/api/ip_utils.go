package api

import (
	"net/http"
	"strings"

	"virasat-setu/internal/middleware"
)

// 文档注释：获取定位目标 IP
// 背景：显式 ?ip 参数优先（便于排查与测试），否则使用访问者 IP，头部顺序与限流中间件一致。
func getClientIP(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("ip")); q != "" {
		return q
	}
	return middleware.VisitorIP(r)
}
