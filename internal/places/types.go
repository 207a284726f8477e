// 包 places：地点聚合的领域模型，供各数据源客户端、编排层与 API 层共享
package places

import (
	"errors"
	"strings"
)

// ErrCityNotFound：城市无法地理编码（整次城市请求的终止性错误）
var ErrCityNotFound = errors.New("city not found")

// Coordinate：WGS84 坐标；来源于数据源时视为可信，不做范围校验
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Category：地点分类（固定枚举）
type Category string

const (
	CategoryMonument   Category = "monument"
	CategoryRestaurant Category = "restaurant"
	CategoryHotel      Category = "hotel"
	CategoryAttraction Category = "attraction"
	CategoryTemple     Category = "temple"
	CategoryCafe       Category = "cafe"
	CategoryMuseum     Category = "museum"
	CategoryMarket     Category = "market"
)

var categories = map[Category]struct{}{
	CategoryMonument:   {},
	CategoryRestaurant: {},
	CategoryHotel:      {},
	CategoryAttraction: {},
	CategoryTemple:     {},
	CategoryCafe:       {},
	CategoryMuseum:     {},
	CategoryMarket:     {},
}

// ParseCategory：大小写不敏感解析；未知或空值回退为 attraction，ok 表示是否为已知分类
func ParseCategory(s string) (Category, bool) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categories[c]; ok {
		return c, true
	}
	return CategoryAttraction, false
}

// PlaceRecord：归一化后的单个地点；每次请求现建，不落库
// 约束：Image 永不为空；Rating 无真实评分来源时为 nil
type PlaceRecord struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Category    Category `json:"category"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Address     string   `json:"address"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Rating      *float64 `json:"rating,omitempty"`
	Website     string   `json:"website,omitempty"`
	Phone       string   `json:"phone,omitempty"`
}

// CityPlaces：四类地点列表；任何情况下均为非 nil 切片
type CityPlaces struct {
	Monuments   []PlaceRecord `json:"monuments"`
	Restaurants []PlaceRecord `json:"restaurants"`
	Hotels      []PlaceRecord `json:"hotels"`
	Attractions []PlaceRecord `json:"attractions"`
}

// CityRecord：城市聚合结果（静态目录原样返回或按请求组装）
type CityRecord struct {
	Name        string     `json:"name"`
	State       string     `json:"state"`
	Coordinates Coordinate `json:"coordinates"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
	Places      CityPlaces `json:"places"`
}

// Clone：深拷贝，保证共享只读数据不被调用方修改
func (c CityRecord) Clone() CityRecord {
	out := c
	out.Places = CityPlaces{
		Monuments:   clonePlaces(c.Places.Monuments),
		Restaurants: clonePlaces(c.Places.Restaurants),
		Hotels:      clonePlaces(c.Places.Hotels),
		Attractions: clonePlaces(c.Places.Attractions),
	}
	return out
}

func clonePlaces(in []PlaceRecord) []PlaceRecord {
	out := make([]PlaceRecord, len(in))
	for i, p := range in {
		if p.Rating != nil {
			r := *p.Rating
			p.Rating = &r
		}
		out[i] = p
	}
	return out
}

// GeocodeResult：一次地理编码命中；仅在当前聚合调用内使用
type GeocodeResult struct {
	Coordinate  Coordinate `json:"coordinates"`
	DisplayName string     `json:"display_name"`
	Region      string     `json:"region"`
}

// EncyclopediaResult：百科摘要与代表图；Image 可为空
type EncyclopediaResult struct {
	Extract string `json:"extract"`
	Image   string `json:"image,omitempty"`
}

// HotCity：首页热门城市卡片
type HotCity struct {
	Name        string     `json:"name"`
	State       string     `json:"state"`
	Coordinates Coordinate `json:"coordinates"`
	Description string     `json:"description"`
	Image       string     `json:"image"`
}
