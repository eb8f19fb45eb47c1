package mongostore

import (
	"context"
	"fmt"
	"time"

	"shate-rag-be/internal/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MaxResultDocuments caps how many documents one aggregation may return to the formatter.
const MaxResultDocuments = 100

// Store is a read-only handle on the storefront database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	logger logger.ILogger
}

func Connect(ctx context.Context, uri, dbName string, log logger.ILogger) (*Store, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri).SetAppName("shate-rag-be"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	log.Info("MONGO", "Connected to MongoDB", map[string]interface{}{"database": dbName})
	return &Store{client: client, db: client.Database(dbName), logger: log}, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

// Aggregate runs q and returns at most MaxResultDocuments+1 documents. The extra document
// only tells the caller the result was cut; see Truncate.
func (s *Store) Aggregate(ctx context.Context, q *Query) ([]bson.D, error) {
	pipeline := make(mongo.Pipeline, 0, len(q.Pipeline)+1)
	pipeline = append(pipeline, q.Pipeline...)
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: MaxResultDocuments + 1}})

	cursor, err := s.db.Collection(q.Collection).Aggregate(ctx, pipeline, options.Aggregate().SetMaxTime(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("aggregate %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.D
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("read aggregate %s: %w", q.Collection, err)
	}

	s.logger.Debug("MONGO", "Aggregation finished", map[string]interface{}{
		"collection": q.Collection,
		"stages":     len(q.Pipeline),
		"documents":  len(docs),
	})
	return docs, nil
}

// Truncate caps docs at MaxResultDocuments and reports whether anything was dropped.
func Truncate(docs []bson.D) ([]bson.D, bool) {
	if len(docs) <= MaxResultDocuments {
		return docs, false
	}
	return docs[:MaxResultDocuments], true
}

// RenderResults turns aggregation output into a relaxed extended JSON array.
func RenderResults(docs []bson.D) (string, error) {
	if len(docs) == 0 {
		return "[]", nil
	}
	out := []byte("[\n")
	for i, doc := range docs {
		raw, err := bson.MarshalExtJSONIndent(doc, false, false, "  ", "  ")
		if err != nil {
			return "", fmt.Errorf("render result %d: %w", i, err)
		}
		out = append(out, "  "...)
		out = append(out, raw...)
		if i < len(docs)-1 {
			out = append(out, ',')
		}
		out = append(out, '\n')
	}
	out = append(out, ']')
	return string(out), nil
}
