// 包 artisan：手工艺人目录（模型、校验与多种存储实现）
package artisan

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"virasat-setu/internal/places"
)

var ErrInvalid = errors.New("invalid artisan")

// 可选工艺类别；大小写不敏感匹配后归一为此处写法
var Specialties = []string{
	"Block Printing",
	"Blue Pottery",
	"Handicrafts",
	"Textile Weaving",
	"Wood Carving",
	"Metal Work",
	"Jewelry Making",
	"Leather Craft",
	"Painting",
	"Sculpture",
	"Embroidery",
	"Basket Weaving",
	"Other",
}

type Artisan struct {
	ID          string             `json:"id" bson:"_id"`
	Name        string             `json:"name" bson:"name"`
	City        string             `json:"city" bson:"city"`
	State       string             `json:"state,omitempty" bson:"state,omitempty"`
	Specialty   string             `json:"specialty" bson:"specialty"`
	Description string             `json:"description" bson:"description"`
	Address     string             `json:"address,omitempty" bson:"address,omitempty"`
	Phone       string             `json:"phone,omitempty" bson:"phone,omitempty"`
	Email       string             `json:"email,omitempty" bson:"email,omitempty"`
	Website     string             `json:"website,omitempty" bson:"website,omitempty"`
	Image       string             `json:"image,omitempty" bson:"image,omitempty"`
	Coordinates *places.Coordinate `json:"coordinates,omitempty" bson:"coordinates,omitempty"`
	Verified    bool               `json:"verified" bson:"verified"`
	AddedBy     string             `json:"added_by,omitempty" bson:"added_by,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
}

// 文档注释：写入前的规范化与校验
// 约束：name/city/specialty/description 必填；specialty 必须在 Specialties 内；字符串字段去首尾空白。
func (a *Artisan) Validate() error {
	a.Name = strings.TrimSpace(a.Name)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Specialty = strings.TrimSpace(a.Specialty)
	a.Description = strings.TrimSpace(a.Description)
	a.Address = strings.TrimSpace(a.Address)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Email = strings.TrimSpace(a.Email)
	a.Website = strings.TrimSpace(a.Website)
	a.Image = strings.TrimSpace(a.Image)
	if a.Name == "" || a.City == "" || a.Specialty == "" || a.Description == "" {
		return fmt.Errorf("%w: name, city, specialty, and description are required", ErrInvalid)
	}
	s, ok := NormalizeSpecialty(a.Specialty)
	if !ok {
		return fmt.Errorf("%w: unknown specialty %q", ErrInvalid, a.Specialty)
	}
	a.Specialty = s
	return nil
}

func NormalizeSpecialty(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, v := range Specialties {
		if strings.EqualFold(v, s) {
			return v, true
		}
	}
	return "", false
}

// prepare：补齐 ID 与创建时间
func (a *Artisan) prepare() {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
}

// ImageOrPlaceholder：未上传图片时按工艺类别生成占位图
func (a Artisan) ImageOrPlaceholder() string {
	if a.Image != "" {
		return a.Image
	}
	return "https://source.unsplash.com/600x400/?" + strings.ReplaceAll(a.Specialty, " ", "%20") + ",craft"
}

// Query：按城市（大小写不敏感的包含匹配）与可选工艺类别筛选；Limit<=0 表示不限
type Query struct {
	City      string
	Specialty string
	Limit     int
}

type Repository interface {
	List(ctx context.Context, q Query) ([]Artisan, error)
	Create(ctx context.Context, a *Artisan) error
}
