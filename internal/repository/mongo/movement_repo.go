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

const movementCollectionName = "movements"

// mongoMovementRepository implements repository.MovementRepository
type mongoMovementRepository struct {
	collection *mongo.Collection
}

// NewMongoMovementRepository creates a new Movement repository backed by MongoDB.
func NewMongoMovementRepository(db *mongo.Database) repository.MovementRepository {
	return &mongoMovementRepository{
		collection: db.Collection(movementCollectionName),
	}
}

// Create inserts a new movement.
func (r *mongoMovementRepository) Create(ctx context.Context, movement *domain.Movement) (primitive.ObjectID, error) {
	if movement.MovementName == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	movement.ID = primitive.NewObjectID()
	movement.CreatedAt = time.Now().UTC()
	if movement.MovementContent == nil {
		movement.MovementContent = []domain.MovementContent{}
	}
	if movement.Media == nil {
		movement.Media = []domain.Media{}
	}

	result, err := r.collection.InsertOne(ctx, movement)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted movement ID")
	}
	return insertedID, nil
}

// GetByID retrieves a movement by its ID.
func (r *mongoMovementRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	var movement domain.Movement
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&movement)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &movement, nil
}

// GetByIDs returns the movements whose IDs are in ids. Unknown IDs are skipped.
func (r *mongoMovementRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Movement, error) {
	if len(ids) == 0 {
		return []domain.Movement{}, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Movement](ctx, cursor)
}

// List returns every movement, newest first.
func (r *mongoMovementRepository) List(ctx context.Context) ([]domain.Movement, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, err
	}
	return decodeAll[domain.Movement](ctx, cursor)
}

// Update replaces the editable fields of a movement.
func (r *mongoMovementRepository) Update(ctx context.Context, movement *domain.Movement) error {
	if movement.ID == primitive.NilObjectID {
		return errors.New("movement ID is required for update")
	}
	update := bson.M{
		"$set": bson.M{
			"movementName":    movement.MovementName,
			"movementDesc":    movement.MovementDesc,
			"movementImage":   movement.MovementImage,
			"movementContent": movement.MovementContent,
			"media":           movement.Media,
		},
	}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": movement.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a movement.
func (r *mongoMovementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func movementIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
	}
}
