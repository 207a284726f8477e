// 包 geoip：基于 GeoLite2/GeoIP2 City 库把访问者 IP 映射到城市
package geoip

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/oschwald/geoip2-golang"
	"github.com/oschwald/maxminddb-golang"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/places"
)

var ErrBadIP = errors.New("invalid ip")

type Result struct {
	City       string            `json:"city"`
	Region     string            `json:"region"`
	CountryISO string            `json:"country_iso"`
	Coordinate places.Coordinate `json:"coordinates"`
}

// Locator：只读，可并发使用
type Locator struct {
	r *geoip2.Reader
}

// Open：打开 mmdb 文件；非 City 类型的库直接拒绝
func Open(path string) (*Locator, error) {
	r, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open geoip db: %w", err)
	}
	md := r.Metadata()
	if err := checkDatabaseType(md); err != nil {
		_ = r.Close()
		return nil, err
	}
	logger.L().Info("geoip_open_ok", "path", path, "type", md.DatabaseType, "build", buildTime(md).Format(time.DateOnly))
	return &Locator{r: r}, nil
}

func checkDatabaseType(md maxminddb.Metadata) error {
	if !strings.Contains(md.DatabaseType, "City") {
		return fmt.Errorf("geoip db type %q is not a City database", md.DatabaseType)
	}
	return nil
}

func buildTime(md maxminddb.Metadata) time.Time {
	return time.Unix(int64(md.BuildEpoch), 0).UTC()
}

// 文档注释：IP 查城市
// 返回：库中没有城市名时 ok=false；IP 无法解析时返回 ErrBadIP。
func (l *Locator) Lookup(ip string) (Result, bool, error) {
	var out Result
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return out, false, fmt.Errorf("%w: %q", ErrBadIP, ip)
	}
	rec, err := l.r.City(parsed)
	if err != nil {
		return out, false, fmt.Errorf("geoip lookup: %w", err)
	}
	out.City = rec.City.Names["en"]
	if len(rec.Subdivisions) > 0 {
		out.Region = rec.Subdivisions[0].Names["en"]
	}
	out.CountryISO = rec.Country.IsoCode
	out.Coordinate = places.Coordinate{Latitude: rec.Location.Latitude, Longitude: rec.Location.Longitude}
	return out, out.City != "", nil
}

func (l *Locator) Close() error { return l.r.Close() }
