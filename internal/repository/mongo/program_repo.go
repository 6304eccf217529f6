// internal/repository/mongo/program_repo.go
package mongo

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const programCollectionName = "programs"

// mongoProgramRepository implements repository.ProgramRepository
type mongoProgramRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramRepository creates a new Program repository backed by MongoDB.
func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		collection: db.Collection(programCollectionName),
	}
}

// Create inserts a new program.
func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.Title == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	if program.DayIDs == nil {
		program.DayIDs = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted program ID")
	}
	return insertedID, nil
}

// GetByID retrieves a program by its ID.
func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error) {
	var program domain.Program
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&program)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

// List returns every program, newest first.
func (r *mongoProgramRepository) List(ctx context.Context) ([]domain.Program, error) {
	return r.find(ctx, bson.M{})
}

// ListAdminAndCreatedBy returns admin programs plus the ones userID authored.
func (r *mongoProgramRepository) ListAdminAndCreatedBy(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"isUserCreated": false},
		bson.M{"createdBy": userID},
	}}
	return r.find(ctx, filter)
}

// ListByIDs returns the programs whose IDs are in ids.
func (r *mongoProgramRepository) ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Program, error) {
	if len(ids) == 0 {
		return []domain.Program{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *mongoProgramRepository) find(ctx context.Context, filter bson.M) ([]domain.Program, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Program](ctx, cursor)
}

// SetDays records the IDs of the program's days once they have been created.
func (r *mongoProgramRepository) SetDays(ctx context.Context, id primitive.ObjectID, dayIDs []primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"days": dayIDs, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a program document.
func (r *mongoProgramRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func programIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdBy", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "isUserCreated", Value: 1}},
			Options: options.Index(),
		},
	}
}
