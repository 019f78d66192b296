package mongo

import (
	"context"
	"time"

	"alcyxob/coachtrack/internal/repository"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// pings the primary before returning the client.
func ConnectDB(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The connect call is lazy; a ping proves the server is actually there.
	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = DisconnectDB(client)
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

// NewStores builds the repository bundle over db and ensures its indexes.
func NewStores(ctx context.Context, db *mongo.Database) (repository.Stores, error) {
	if err := EnsureUserIndexes(ctx, db.Collection(userCollectionName)); err != nil {
		return repository.Stores{}, err
	}
	return repository.Stores{
		Clients:     NewMongoClientRepository(db),
		Invitations: NewMongoInvitationRepository(db),
		Collections: NewMongoCollectionRepository(db),
	}, nil
}
