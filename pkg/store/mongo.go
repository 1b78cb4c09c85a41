package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo defaults.
const (
	DefaultMongoDatabase   = "flowscope"
	DefaultMongoCollection = "graphs"
)

// MongoStore persists documents in a MongoDB collection, for server
// deployments where snapshots outlive a single process.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// MongoOptions configures a MongoDB connection.
type MongoOptions struct {
	// URI is the connection string, e.g. mongodb://localhost:27017.
	URI string

	// Database and Collection default to "flowscope" and "graphs".
	Database   string
	Collection string
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, opts MongoOptions) (*MongoStore, error) {
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// Save inserts or replaces a document.
func (s *MongoStore) Save(ctx context.Context, doc *Document) error {
	now := time.Now()
	if doc.ID == "" {
		doc.ID = NewID()
	}
	if doc.CreatedAt.IsZero() {
		if prev, err := s.Get(ctx, doc.ID); err == nil {
			doc.CreatedAt = prev.CreatedAt
		} else {
			doc.CreatedAt = now
		}
	}
	doc.UpdatedAt = now

	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc,
		options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save graph %q: %w", doc.ID, err)
	}
	return nil
}

// Get retrieves a document by ID.
func (s *MongoStore) Get(ctx context.Context, id string) (*Document, error) {
	var doc Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, NotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("get graph %q: %w", id, err)
	}
	return &doc, nil
}

// List returns summaries of all documents, newest first.
// Documents are fetched whole and summarized here; snapshot payloads stay
// small enough that a projection pipeline is not worth the complexity.
func (s *MongoStore) List(ctx context.Context) ([]Summary, error) {
	cursor, err := s.coll.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode graphs: %w", err)
	}

	out := make([]Summary, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].Summarize())
	}
	return out, nil
}

// Delete removes a document.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete graph %q: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return NotFound(id)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
