package repository

import (
	"alcyxob/boxing-app/internal/domain"
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound      = RepositoryError("not found")
	ErrDuplicateKey  = RepositoryError("duplicate key")
	ErrInvalidRecord = RepositoryError("invalid record")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
// Enrollments are embedded in the user document; Update writes them back as a whole.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
}

// ProgramRepository defines the interface for program documents.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.Program) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Program, error)
	List(ctx context.Context) ([]domain.Program, error) // newest first
	ListAdminAndCreatedBy(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Program, error)
	SetDays(ctx context.Context, id primitive.ObjectID, dayIDs []primitive.ObjectID) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ProgramDayRepository defines the interface for program days.
type ProgramDayRepository interface {
	Create(ctx context.Context, day *domain.ProgramDay) (primitive.ObjectID, error)
	GetByProgramID(ctx context.Context, programID primitive.ObjectID) ([]domain.ProgramDay, error) // ordered by dayNumber
	CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error)
	DeleteByProgramID(ctx context.Context, programID primitive.ObjectID) (int64, error)
}

// StepRepository defines the interface for day steps.
type StepRepository interface {
	Create(ctx context.Context, step *domain.Step) (primitive.ObjectID, error)
	GetByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) ([]domain.Step, error) // ordered by order
	DeleteByDayIDs(ctx context.Context, dayIDs []primitive.ObjectID) (int64, error)
}

// MovementRepository defines the interface for the movement library.
type MovementRepository interface {
	Create(ctx context.Context, movement *domain.Movement) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Movement, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Movement, error)
	List(ctx context.Context) ([]domain.Movement, error) // newest first
	Update(ctx context.Context, movement *domain.Movement) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Repositories bundles every repository so a storage driver can be swapped in one place.
type Repositories struct {
	Users     UserRepository
	Programs  ProgramRepository
	Days      ProgramDayRepository
	Steps     StepRepository
	Movements MovementRepository
}
