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

const programDayCollectionName = "program_days"

// mongoProgramDayRepository implements repository.ProgramDayRepository
type mongoProgramDayRepository struct {
	collection *mongo.Collection
}

// NewMongoProgramDayRepository creates a new ProgramDay repository.
func NewMongoProgramDayRepository(db *mongo.Database) repository.ProgramDayRepository {
	return &mongoProgramDayRepository{
		collection: db.Collection(programDayCollectionName),
	}
}

// Create inserts a new day.
func (r *mongoProgramDayRepository) Create(ctx context.Context, day *domain.ProgramDay) (primitive.ObjectID, error) {
	if day.ProgramID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	day.ID = primitive.NewObjectID()

	result, err := r.collection.InsertOne(ctx, day)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted day ID")
	}
	return insertedID, nil
}

// GetByProgramID returns the program's days ordered by day number.
func (r *mongoProgramDayRepository) GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramDay, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "dayNumber", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"programId": programID}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.ProgramDay](ctx, cursor)
}

// CountByProgramID returns the program's current day count.
func (r *mongoProgramDayRepository) CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"programId": programID})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// DeleteByProgramID removes every day of a program.
func (r *mongoProgramDayRepository) DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"programId": programID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func programDayIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "programId", Value: 1}, {Key: "dayNumber", Value: 1}},
			Options: options.Index(),
		},
	}
}
