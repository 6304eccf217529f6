package mongo

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const stepCollectionName = "steps"

// mongoStepRepository implements repository.StepRepository
type mongoStepRepository struct {
	collection *mongo.Collection
}

// NewMongoStepRepository creates a new Step repository backed by MongoDB.
func NewMongoStepRepository(db *mongo.Database) repository.StepRepository {
	return &mongoStepRepository{
		collection: db.Collection(stepCollectionName),
	}
}

// Create inserts a new step.
func (r *mongoStepRepository) Create(ctx context.Context, step *domain.Step) (primitive.ObjectID, error) {
	if step.DayID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	step.ID = primitive.NewObjectID()
	if step.SelectedMovements == nil {
		step.SelectedMovements = []primitive.ObjectID{}
	}

	result, err := r.collection.InsertOne(ctx, step)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted step ID")
	}
	return insertedID, nil
}

// GetByDayIDs returns the steps of the given days ordered by their position.
func (r *mongoStepRepository) GetByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.Step, error) {
	if len(dayIDs) == 0 {
		return []domain.Step{}, nil
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "dayId", Value: 1}, {Key: "order", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"dayId": bson.M{"$in": dayIDs}}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Step](ctx, cursor)
}

// DeleteByDayIDs removes every step that references one of dayIDs.
func (r *mongoStepRepository) DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error) {
	if len(dayIDs) == 0 {
		return 0, nil
	}
	result, err := r.collection.DeleteMany(ctx, bson.M{"dayId": bson.M{"$in": dayIDs}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func stepIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "dayId", Value: 1}, {Key: "order", Value: 1}},
			Options: options.Index(),
		},
	}
}
