package artisan

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoCollection = "artisans"

// MongoRepository：artisans 集合
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(mongoCollection)}
}

// EnsureIndexes：city+specialty 组合索引
func (m *MongoRepository) EnsureIndexes(ctx context.Context) error {
	_, err := m.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "city", Value: 1}, {Key: "specialty", Value: 1}},
	})
	return err
}

// listFilter：城市按包含、工艺类别按整串匹配，均不区分大小写
func listFilter(q Query) bson.M {
	filter := bson.M{
		"city": bson.M{"$regex": regexp.QuoteMeta(strings.TrimSpace(q.City)), "$options": "i"},
	}
	if s := strings.TrimSpace(q.Specialty); s != "" {
		filter["specialty"] = bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
	}
	return filter
}

func (m *MongoRepository) List(ctx context.Context, q Query) ([]Artisan, error) {
	filter := listFilter(q)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}
	cur, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find artisans: %w", err)
	}
	defer cur.Close(ctx)
	out := []Artisan{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode artisans: %w", err)
	}
	return out, nil
}

func (m *MongoRepository) Create(ctx context.Context, a *Artisan) error {
	if err := a.Validate(); err != nil {
		return err
	}
	a.prepare()
	if _, err := m.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert artisan: %w", err)
	}
	return nil
}
