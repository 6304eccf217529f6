// internal/domain/program.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Program is a multi-day boxing training program, either admin-authored or created by a user.
type Program struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CreatedBy     *primitive.ObjectID `bson:"createdBy" json:"createdBy"` // nil for admin programs
	IsUserCreated bool                `bson:"isUserCreated" json:"isUserCreated"`
	Title         string              `bson:"title" json:"title"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	CoverImage    string              `bson:"coverImage,omitempty" json:"coverImage,omitempty"`
	CoverImageKey string              `bson:"coverImageKey,omitempty" json:"-"` // object storage key, internal use
	Duration      int                 `bson:"duration" json:"duration"`         // total number of days
	DayIDs        []primitive.ObjectID `bson:"days" json:"days"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether userID authored this program.
func (p *Program) OwnedBy(userID primitive.ObjectID) bool {
	return p.IsUserCreated && p.CreatedBy != nil && *p.CreatedBy == userID
}

// EnrollmentKind picks the user collection an enrollment in this program belongs to.
func (p *Program) EnrollmentKind(userID primitive.ObjectID) EnrollmentKind {
	if p.OwnedBy(userID) {
		return KindUserCreated
	}
	return KindRegistered
}

// ProgramDay is one day of a program.
type ProgramDay struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID   primitive.ObjectID `bson:"programId" json:"programId"`
	DayNumber   int                `bson:"dayNumber" json:"dayNumber"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
}

// Step is an ordered exercise block inside a day.
type Step struct {
	ID                primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	DayID             primitive.ObjectID   `bson:"dayId" json:"dayId"`
	Order             int                  `bson:"order" json:"order"`
	Title             string               `bson:"title" json:"title"`
	Description       string               `bson:"description" json:"description"`
	Duration          int                  `bson:"duration" json:"duration"` // seconds
	VideoURL          string               `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"`
	VideoKey          string               `bson:"videoKey,omitempty" json:"-"`
	SelectedMovements []primitive.ObjectID `bson:"selectedMovements" json:"selectedMovements"`
}
