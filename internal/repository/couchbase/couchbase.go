package couchbase

import (
	"context"
	"time"

	"github.com/couchbase/gocb/v2"

	"github.com/tuncerburak97/iskele/internal/audit"
)

type Repository struct {
	Cluster *gocb.Cluster
	Bucket  *gocb.Bucket
}

func NewRepository(connStr, bucketName, username, password string) (*Repository, error) {
	cluster, err := gocb.Connect(connStr, gocb.ClusterOptions{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, err
	}

	bucket := cluster.Bucket(bucketName)
	if err := bucket.WaitUntilReady(5*time.Second, nil); err != nil {
		return nil, err
	}

	return &Repository{Cluster: cluster, Bucket: bucket}, nil
}

func (r *Repository) SaveEntries(ctx context.Context, entries []*audit.Entry) error {
	collection := r.Bucket.DefaultCollection()
	for _, entry := range entries {
		if _, err := collection.Upsert(entry.ID, entry, &gocb.UpsertOptions{Context: ctx}); err != nil {
			return err
		}
	}
	return nil
}

// Migrate is a no-op; documents need no schema.
func (r *Repository) Migrate(ctx context.Context) error {
	return nil
}

func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.Bucket.Ping(&gocb.PingOptions{Context: ctx})
	return err
}

func (r *Repository) Close() error {
	return r.Cluster.Close(nil)
}
