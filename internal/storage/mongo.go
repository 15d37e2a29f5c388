package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"community-crawler/internal/types"
)

// MongoMirror mirrors collected posts into a MongoDB collection, keyed by
// URL so repeated runs update rather than duplicate. It is an optional
// sink, enabled only when a URI is configured.
type MongoMirror struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoMirror connects to MongoDB and prepares the posts collection
// with a unique index on url.
func NewMongoMirror(ctx context.Context, uri, database, collection string, logger *slog.Logger) (*MongoMirror, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	coll := client.Database(database).Collection(collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		logger.Warn("failed to ensure url index", "error", err)
	}

	return &MongoMirror{
		client:     client,
		collection: coll,
		logger:     logger.With("component", "mongo_mirror"),
	}, nil
}

func (m *MongoMirror) Name() string { return "mongo" }

// Append upserts each post by URL. Individual upsert failures are logged
// and skipped so one bad document does not lose the batch.
func (m *MongoMirror) Append(ctx context.Context, posts []types.Post) (int, error) {
	stored := 0
	for _, post := range posts {
		if post.URL == "" {
			continue
		}
		doc := bson.M{
			"channel":     post.Channel,
			"category":    post.Category,
			"title":       post.Title,
			"content":     post.Content,
			"view_cnt":    post.ViewCnt,
			"like_cnt":    post.LikeCnt,
			"comment_cnt": post.CommentCnt,
			"created_at":  post.CreatedAt,
			"own_company": post.OwnCompany,
			"url":         post.URL,
			"stored_at":   time.Now(),
		}
		_, err := m.collection.UpdateOne(ctx,
			bson.M{"url": post.URL},
			bson.M{"$set": doc},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			m.logger.Warn("upsert failed", "url", post.URL, "error", err)
			continue
		}
		stored++
	}
	m.logger.Info("mirrored posts", "stored", stored, "batch", len(posts))
	return stored, nil
}

func (m *MongoMirror) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
