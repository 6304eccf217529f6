package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account. Program enrollments are embedded in the user document
// and are always loaded, mutated and written back together with it.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// Programs holds enrollments in admin-authored programs.
	Programs []ProgramProgress `bson:"programs" json:"programs"`
	// CreatedPrograms holds enrollments in programs this user authored.
	CreatedPrograms []ProgramProgress `bson:"createProgramByUser" json:"createProgramByUser"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Enrollments returns a pointer to the collection backing kind so callers can append in place.
// KindAny has no single backing collection and yields nil.
func (u *User) Enrollments(kind EnrollmentKind) *[]ProgramProgress {
	switch kind {
	case KindRegistered:
		return &u.Programs
	case KindUserCreated:
		return &u.CreatedPrograms
	}
	return nil
}

// FindEnrollment locates the enrollment for programID in the collection selected by kind.
// KindAny searches registered enrollments first, then user-created ones.
// The returned pointer aliases the element inside the user, so mutations are persisted
// by saving the user.
func (u *User) FindEnrollment(programID primitive.ObjectID, kind EnrollmentKind) (*ProgramProgress, EnrollmentKind) {
	kinds := []EnrollmentKind{kind}
	if kind == KindAny {
		kinds = []EnrollmentKind{KindRegistered, KindUserCreated}
	}
	for _, k := range kinds {
		list := u.Enrollments(k)
		if list == nil {
			continue
		}
		for i := range *list {
			if (*list)[i].ProgramID == programID {
				return &(*list)[i], k
			}
		}
	}
	return nil, KindAny
}

// RemoveEnrollment drops every enrollment for programID from the collection selected by kind
// and reports how many were removed.
func (u *User) RemoveEnrollment(programID primitive.ObjectID, kind EnrollmentKind) int {
	list := u.Enrollments(kind)
	if list == nil {
		return 0
	}
	kept := (*list)[:0]
	removed := 0
	for _, p := range *list {
		if p.ProgramID == programID {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	*list = kept
	return removed
}
