package artisan

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"virasat-setu/internal/places"
)

// PostgresRepository：基于 artisans 表（见 migrate.EnsureSchema）
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository { return &PostgresRepository{db: db} }

// likeEscape：转义 LIKE 通配符，城市名按字面包含匹配
func likeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// listSQL：城市按字面包含、工艺类别按大小写不敏感相等匹配，与其他存储实现一致
func listSQL(q Query) (string, []any) {
	sqlStr := `SELECT id, name, city, state, specialty, description, address, phone, email, website, image, lat, lon, verified, added_by, created_at
		FROM artisans WHERE city ILIKE $1`
	args := []any{"%" + likeEscape(strings.TrimSpace(q.City)) + "%"}
	if s := strings.TrimSpace(q.Specialty); s != "" {
		args = append(args, s)
		sqlStr += fmt.Sprintf(" AND lower(specialty) = lower($%d)", len(args))
	}
	sqlStr += " ORDER BY created_at DESC"
	if q.Limit > 0 {
		args = append(args, q.Limit)
		sqlStr += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return sqlStr, args
}

func (p *PostgresRepository) List(ctx context.Context, q Query) ([]Artisan, error) {
	sqlStr, args := listSQL(q)
	rows, err := p.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query artisans: %w", err)
	}
	defer rows.Close()
	out := []Artisan{}
	for rows.Next() {
		var a Artisan
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&a.ID, &a.Name, &a.City, &a.State, &a.Specialty, &a.Description, &a.Address,
			&a.Phone, &a.Email, &a.Website, &a.Image, &lat, &lon, &a.Verified, &a.AddedBy, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan artisan: %w", err)
		}
		if lat.Valid && lon.Valid {
			a.Coordinates = &places.Coordinate{Latitude: lat.Float64, Longitude: lon.Float64}
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *PostgresRepository) Create(ctx context.Context, a *Artisan) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.prepare()
	var lat, lon sql.NullFloat64
	if a.Coordinates != nil {
		lat = sql.NullFloat64{Float64: a.Coordinates.Latitude, Valid: true}
		lon = sql.NullFloat64{Float64: a.Coordinates.Longitude, Valid: true}
	}
	_, err := p.db.ExecContext(ctx, `INSERT INTO artisans
		(id, name, city, state, specialty, description, address, phone, email, website, image, lat, lon, verified, added_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		a.ID, a.Name, a.City, a.State, a.Specialty, a.Description, a.Address, a.Phone, a.Email, a.Website, a.Image,
		lat, lon, a.Verified, a.AddedBy, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert artisan: %w", err)
	}
	return nil
}
