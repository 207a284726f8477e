package migrate

import (
	"database/sql"

	"virasat-setu/internal/logger"
)

// 背景：首次运行自动创建手工艺人目录表与索引
// 约束：使用 IF NOT EXISTS 避免与既有结构冲突；可选文本列以空串存储，坐标列可为空
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS artisans (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			city TEXT NOT NULL,
			state TEXT NOT NULL DEFAULT '',
			specialty TEXT NOT NULL,
			description TEXT NOT NULL,
			address TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			website TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			lat DOUBLE PRECISION,
			lon DOUBLE PRECISION,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			added_by TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_artisans_city_lower ON artisans (lower(city))`,
		`CREATE INDEX IF NOT EXISTS idx_artisans_specialty_lower ON artisans (lower(specialty))`,
		`CREATE INDEX IF NOT EXISTS idx_artisans_created ON artisans (created_at DESC)`,
	}
	for i, s := range stmts {
		logger.L().Debug("schema_exec", "idx", i)
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	logger.L().Debug("schema_done")
	return nil
}
