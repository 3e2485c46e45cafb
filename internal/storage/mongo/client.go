package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lingochat/internal/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "documents"

// document: JSON хранится строкой, чтобы байты возвращались ровно в том виде, в каком записаны.
type document struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type Client struct {
	cli  *mongo.Client
	coll *mongo.Collection
}

func New(ctx context.Context, uri, database string) (*Client, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := cli.Ping(ctx, nil); err != nil {
		_ = cli.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return &Client{cli: cli, coll: cli.Database(database).Collection(collectionName)}, nil
}

func (c *Client) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return c.cli.Disconnect(ctx)
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	defer logger.DeferLogDuration("mongo.Get", time.Now())()
	var doc document
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mongoStore.Get %s: %w", key, err)
	}
	return []byte(doc.Value), nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte) error {
	defer logger.DeferLogDuration("mongo.Set", time.Now())()
	doc := document{Key: key, Value: string(value), UpdatedAt: time.Now().UTC()}
	_, err := c.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongoStore.Set %s: %w", key, err)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, key string) error {
	defer logger.DeferLogDuration("mongo.Remove", time.Now())()
	if _, err := c.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongoStore.Remove %s: %w", key, err)
	}
	return nil
}
