package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// defaultDatabase is used when MONGO_DB is not configured.
const defaultDatabase = "rentmob"

// Client holds the rental database handle the repositories and the
// idempotency store share.
type Client struct {
	DB *mongo.Database
}

// New connects and selects the rental database, defaulting the name
// when none is configured. Retryable writes stay enabled; the
// version-guarded rental upserts depend on them during failovers.
func New(uri, database string) (*Client, error) {
	if database == "" {
		database = defaultDatabase
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	opts := options.Client().ApplyURI(uri).SetRetryWrites(true)
	m, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Client{DB: m.Database(database)}, nil
}

// Ping verifies the deployment is reachable. The readiness endpoint
// calls it on every scrape.
func (c *Client) Ping(ctx context.Context) error {
	return c.DB.Client().Ping(ctx, nil)
}
