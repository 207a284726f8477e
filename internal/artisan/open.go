package artisan

import (
	"context"
	"fmt"

	"virasat-setu/internal/logger"
	"virasat-setu/internal/migrate"
	"virasat-setu/internal/utils"
)

// StoreOptions：存储选择；Kind 为 memory、postgres 或 mongo
type StoreOptions struct {
	Kind     string
	MongoURI string
	MongoDB  string
}

// 文档注释：按配置打开手工艺人存储
// 背景：postgres 连接参数读取 PG_*（或 DATABASE_URL），首次运行自动建表；mongo 建组合索引失败只告警。
// 返回：存储实现与对应的关闭函数；未知 Kind 返回错误。
func Open(ctx context.Context, o StoreOptions) (Repository, func(), error) {
	l := logger.L()
	switch o.Kind {
	case "", "memory":
		l.Info("artisan_store", "kind", "memory")
		return NewMemoryRepository(), func() {}, nil
	case "postgres":
		db, err := utils.OpenPostgresFromEnv(ctx)
		if err != nil {
			return nil, nil, err
		}
		if err := migrate.EnsureSchema(db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure artisan schema: %w", err)
		}
		l.Info("artisan_store", "kind", "postgres")
		return NewPostgresRepository(db), func() { _ = db.Close() }, nil
	case "mongo":
		client, mdb, err := utils.OpenMongo(ctx, o.MongoURI, o.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		repo := NewMongoRepository(mdb)
		if err := repo.EnsureIndexes(ctx); err != nil {
			l.Warn("mongo_index_error", "err", err)
		}
		l.Info("artisan_store", "kind", "mongo", "db", o.MongoDB)
		return repo, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		return nil, nil, fmt.Errorf("unknown artisan store %q", o.Kind)
	}
}
