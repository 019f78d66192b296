package mongo

import (
	"alcyxob/coachtrack/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionsCollectionName = "collections"

// collectionDoc stores one serialized collection under its well-known key.
type collectionDoc struct {
	Key       string    `bson:"_id"`
	Data      []byte    `bson:"data"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoCollectionRepository struct {
	collection *mongo.Collection
}

func NewMongoCollectionRepository(db *mongo.Database) repository.CollectionStore {
	return &mongoCollectionRepository{
		collection: db.Collection(collectionsCollectionName),
	}
}

func (r *mongoCollectionRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var doc collectionDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return doc.Data, nil
}

func (r *mongoCollectionRepository) Save(ctx context.Context, key string, data []byte) error {
	doc := collectionDoc{Key: key, Data: data, UpdatedAt: time.Now().UTC()}
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}
