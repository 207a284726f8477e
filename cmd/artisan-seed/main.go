package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"virasat-setu/internal/artisan"
	"virasat-setu/internal/config"
	"virasat-setu/internal/logger"
)

// 文档注释：向手工艺人目录写入示例数据
// 背景：新部署的目录为空，城市页的手工艺人区块没有内容；按 ARTISAN_STORE 写入 postgres 或 mongo。
// 约束：同城同名的记录已存在时跳过，可重复执行；memory 存储没有意义，直接退出。
func main() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))
	cfg := config.Load()
	l := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.ArtisanStore == "" || cfg.ArtisanStore == "memory" {
		l.Error("seed_store_invalid", "store", cfg.ArtisanStore, "hint", "set ARTISAN_STORE=postgres or mongo")
		os.Exit(1)
	}
	ctx := context.Background()
	repo, closeFn, err := artisan.Open(ctx, artisan.StoreOptions{Kind: cfg.ArtisanStore, MongoURI: cfg.MongoURI, MongoDB: cfg.MongoDBName})
	if err != nil {
		l.Error("seed_store_open_error", "err", err)
		os.Exit(1)
	}
	defer closeFn()
	added, skipped, err := seed(ctx, repo, sampleArtisans())
	if err != nil {
		l.Error("seed_error", "added", added, "err", err)
		closeFn()
		os.Exit(1)
	}
	l.Info("seed_done", "added", added, "skipped", skipped)
}

func seed(ctx context.Context, repo artisan.Repository, rows []artisan.Artisan) (added, skipped int, err error) {
	for i := range rows {
		a := rows[i]
		existing, err := repo.List(ctx, artisan.Query{City: a.City})
		if err != nil {
			return added, skipped, err
		}
		if containsName(existing, a.Name) {
			skipped++
			continue
		}
		if err := repo.Create(ctx, &a); err != nil {
			return added, skipped, err
		}
		added++
	}
	return added, skipped, nil
}

func containsName(list []artisan.Artisan, name string) bool {
	for _, a := range list {
		if strings.EqualFold(a.Name, name) {
			return true
		}
	}
	return false
}
