package mongo

import (
	"alcyxob/boxing-app/internal/repository"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI.
// It returns the mongo.Client which can be used to access databases and collections.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary node to verify the connection.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// NewRepositories wires every MongoDB repository against db.
func NewRepositories(db *mongo.Database) repository.Repositories {
	return repository.Repositories{
		Users:     NewMongoUserRepository(db),
		Programs:  NewMongoProgramRepository(db),
		Days:      NewMongoProgramDayRepository(db),
		Steps:     NewMongoStepRepository(db),
		Movements: NewMongoMovementRepository(db),
	}
}

// EnsureIndexes creates the indexes of every collection. Failures are logged, not fatal.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) {
	ensure := func(name string, models []mongo.IndexModel) {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			logger.Warn("failed to create indexes", zap.String("collection", name), zap.Error(err))
		}
	}
	ensure(userCollectionName, userIndexes())
	ensure(programCollectionName, programIndexes())
	ensure(programDayCollectionName, programDayIndexes())
	ensure(stepCollectionName, stepIndexes())
	ensure(movementCollectionName, movementIndexes())
}

// decodeAll drains a cursor into out and checks the cursor error afterwards.
func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)

	out := []T{}
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
