package highscore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo хранит рекорд документом {_id: key, value: n} в коллекции high_scores
type MongoRepo struct {
	client     *mongo.Client
	collection *mongo.Collection
	key        string
}

type scoreDocument struct {
	Key   string `bson:"_id"`
	Value int    `bson:"value"`
}

// NewMongoRepo подключается к MongoDB
func NewMongoRepo(ctx context.Context, uri, database, key string) (*MongoRepo, error) {
	if key == "" {
		key = DefaultKey
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("не удалось подключиться к MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("не удалось проверить соединение с MongoDB: %w", err)
	}

	return &MongoRepo{
		client:     client,
		collection: client.Database(database).Collection("high_scores"),
		key:        key,
	}, nil
}

func (r *MongoRepo) Load(ctx context.Context) (int, bool, error) {
	var doc scoreDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": r.key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("ошибка загрузки рекорда: %w", err)
	}
	return doc.Value, true, nil
}

func (r *MongoRepo) RecordMax(ctx context.Context, height int) (int, error) {
	if height < 0 {
		return 0, ErrNegativeScore
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc scoreDocument
	err := r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": r.key},
		bson.M{"$max": bson.M{"value": height}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("ошибка сохранения рекорда: %w", err)
	}
	return doc.Value, nil
}

func (r *MongoRepo) Reset(ctx context.Context) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": r.key}); err != nil {
		return fmt.Errorf("ошибка сброса рекорда: %w", err)
	}
	return nil
}

func (r *MongoRepo) Close() error {
	return r.client.Disconnect(context.Background())
}
