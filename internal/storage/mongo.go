package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Mongo implements the four stores on top of a MongoDB database, one
// collection per entity type. All partial updates are single findOneAndUpdate
// calls so each entity mutation is atomic at the document level.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.SugaredLogger
}

const (
	colZones         = "zones"
	colSensors       = "sensors"
	colPumps         = "pumps"
	colNotifications = "notifications"
)

// NewMongo connects and pings the server, retrying with exponential backoff
// so the service survives a broker-style cold start ordering.
func NewMongo(ctx context.Context, uri, dbName string, logger *zap.SugaredLogger) (*Mongo, error) {
	var client *mongo.Client

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	err := backoff.Retry(func() error {
		cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		c, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
		if err != nil {
			return err
		}
		if err := c.Ping(cctx, nil); err != nil {
			_ = c.Disconnect(context.Background())
			logger.Warnw("mongo ping failed, retrying", "error", err)
			return err
		}
		client = c
		return nil
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	logger.Infow("connected to mongodb", "db", dbName)
	return &Mongo{client: client, db: client.Database(dbName), logger: logger}, nil
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// mapErr folds driver errors into the store's error kinds.
func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	default:
		return err
	}
}

func userScope(id, userID string) map[string]any {
	return map[string]any{"_id": id, "userId": userID}
}

var afterUpdate = options.FindOneAndUpdate().SetReturnDocument(options.After)
