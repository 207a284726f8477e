package api

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"virasat-setu/internal/artisan"
	"virasat-setu/internal/logger"
)

// 单次提交的请求体上限
const maxArtisanBody = 64 << 10

type artisanContact struct {
	Phone string `json:"phone"`
}

// artisanView：城市页中的手工艺人卡片
type artisanView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Specialty   string          `json:"specialty"`
	Description string          `json:"description"`
	Address     string          `json:"address,omitempty"`
	Images      []string        `json:"images"`
	Contact     *artisanContact `json:"contact,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Website     string          `json:"website,omitempty"`
}

func toArtisanView(a artisan.Artisan) artisanView {
	v := artisanView{
		ID:          a.ID,
		Name:        a.Name,
		Specialty:   a.Specialty,
		Description: a.Description,
		Address:     a.Address,
		Images:      []string{a.ImageOrPlaceholder()},
		Phone:       a.Phone,
		Website:     a.Website,
	}
	if a.Phone != "" {
		v.Contact = &artisanContact{Phone: a.Phone}
	}
	return v
}

func (h *handlers) listArtisans(w http.ResponseWriter, r *http.Request) {
	city := strings.TrimSpace(r.PathValue("city"))
	q := artisan.Query{City: city}
	if s := strings.TrimSpace(r.URL.Query().Get("specialty")); s != "" {
		if norm, ok := artisan.NormalizeSpecialty(s); ok {
			s = norm
		}
		q.Specialty = s
	}
	list, err := h.d.Artisans.List(r.Context(), q)
	if err != nil {
		logger.L().Error("artisans_list_error", "city", city, "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch artisans")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"artisans": list})
}

// 文档注释：新增手工艺人
// 背景：写入入口仅对持有管理令牌的调用方开放；新记录一律未认证，AddedBy 记为 "admin"。
// 约束：未配置 ADMIN_TOKEN 时拒绝所有写入；令牌比较为常量时间。
func (h *handlers) createArtisan(w http.ResponseWriter, r *http.Request) {
	t := r.Header.Get("x-admin-token")
	if h.d.AdminToken == "" || subtle.ConstantTimeCompare([]byte(t), []byte(h.d.AdminToken)) != 1 {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	var a artisan.Artisan
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxArtisanBody))
	if err := dec.Decode(&a); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	a.ID = ""
	a.CreatedAt = time.Time{}
	a.Verified = false
	a.AddedBy = "admin"
	if err := h.d.Artisans.Create(r.Context(), &a); err != nil {
		if errors.Is(err, artisan.ErrInvalid) {
			writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), artisan.ErrInvalid.Error()+": "))
			return
		}
		logger.L().Error("artisan_create_error", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to add artisan")
		return
	}
	logger.L().Info("artisan_created", "id", a.ID, "city", a.City, "specialty", a.Specialty)
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Artisan added successfully", "artisan": a})
}
