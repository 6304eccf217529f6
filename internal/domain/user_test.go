package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFindEnrollmentPrefersRegistered(t *testing.T) {
	programID := primitive.NewObjectID()
	u := &User{
		Programs:        []ProgramProgress{{ProgramID: programID, IsRegistered: true}},
		CreatedPrograms: []ProgramProgress{{ProgramID: programID, IsRegistered: true, IsCompleted: true}},
	}

	p, kind := u.FindEnrollment(programID, KindAny)
	require.NotNil(t, p)
	assert.Equal(t, KindRegistered, kind)
	assert.False(t, p.IsCompleted)

	p, kind = u.FindEnrollment(programID, KindUserCreated)
	require.NotNil(t, p)
	assert.Equal(t, KindUserCreated, kind)

	p.IsCompleted = false
	assert.False(t, u.CreatedPrograms[0].IsCompleted, "returned pointer must alias the embedded element")

	p, _ = u.FindEnrollment(primitive.NewObjectID(), KindAny)
	assert.Nil(t, p)
}

func TestRemoveEnrollment(t *testing.T) {
	keep, drop := primitive.NewObjectID(), primitive.NewObjectID()
	u := &User{CreatedPrograms: []ProgramProgress{{ProgramID: drop}, {ProgramID: keep}}}

	assert.Equal(t, 1, u.RemoveEnrollment(drop, KindUserCreated))
	require.Len(t, u.CreatedPrograms, 1)
	assert.Equal(t, keep, u.CreatedPrograms[0].ProgramID)
	assert.Equal(t, 0, u.RemoveEnrollment(drop, KindRegistered))
}

func TestProgramEnrollmentKind(t *testing.T) {
	owner := primitive.NewObjectID()
	userProgram := &Program{IsUserCreated: true, CreatedBy: &owner}
	adminProgram := &Program{}

	assert.Equal(t, KindUserCreated, userProgram.EnrollmentKind(owner))
	assert.Equal(t, KindRegistered, userProgram.EnrollmentKind(primitive.NewObjectID()))
	assert.Equal(t, KindRegistered, adminProgram.EnrollmentKind(owner))
}
