package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuncerburak97/iskele/internal/audit"
)

const collectionName = "audit_log"

type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

func NewRepository(uri, dbName string) (*Repository, error) {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	return &Repository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

func (r *Repository) SaveEntries(ctx context.Context, entries []*audit.Entry) error {
	docs := make([]interface{}, len(entries))
	for i, entry := range entries {
		docs[i] = entry
	}

	_, err := r.db.Collection(collectionName).InsertMany(ctx, docs)
	return err
}

// Migrate is a no-op; the collection is created on first insert.
func (r *Repository) Migrate(ctx context.Context) error {
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx, nil)
}

func (r *Repository) Close() error {
	return r.client.Disconnect(context.Background())
}
