package mongo

import (
	"alcyxob/coachtrack/internal/domain"
	"alcyxob/coachtrack/internal/repository"
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const invitationCollectionName = "invitations"

type mongoInvitationRepository struct {
	collection *mongo.Collection
}

func NewMongoInvitationRepository(db *mongo.Database) repository.InvitationStore {
	return &mongoInvitationRepository{
		collection: db.Collection(invitationCollectionName),
	}
}

// GetAll returns invitations newest first.
func (r *mongoInvitationRepository) GetAll(ctx context.Context) ([]domain.Invitation, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	invs := []domain.Invitation{}
	if err = cursor.All(ctx, &invs); err != nil {
		return nil, err
	}
	return invs, nil
}

func (r *mongoInvitationRepository) Create(ctx context.Context, inv *domain.Invitation) error {
	if _, err := r.collection.InsertOne(ctx, inv); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrConflict
		}
		return err
	}
	return nil
}

// Remove is a single-document delete, so concurrent callers cannot both claim the code.
func (r *mongoInvitationRepository) Remove(ctx context.Context, code string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": code})
	if err != nil {
		return false, err
	}
	return result.DeletedCount == 1, nil
}
