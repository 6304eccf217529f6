package service

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"alcyxob/boxing-app/internal/repository/memory"
	"alcyxob/boxing-app/internal/storage"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type testEnv struct {
	ctx      context.Context
	repos    repository.Repositories
	files    *storage.MemoryStorage
	clock    *fakeClock
	progress ProgressService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repos := memory.NewRepositories(memory.NewStore())
	files := storage.NewMemoryStorage()
	clock := &fakeClock{now: time.Date(2025, 3, 10, 18, 30, 0, 0, time.UTC)}
	return &testEnv{
		ctx:      context.Background(),
		repos:    repos,
		files:    files,
		clock:    clock,
		progress: NewProgressService(repos, files, zap.NewNop(), WithClock(clock.Now)),
	}
}

func (e *testEnv) createUser(t *testing.T, email string) primitive.ObjectID {
	t.Helper()
	id, err := e.repos.Users.Create(e.ctx, &domain.User{
		Username:     "boxer",
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleUser,
	})
	require.NoError(t, err)
	return id
}

// createProgram stores a program with the given number of days and one step per day.
// A non-nil owner makes it a user-created program.
func (e *testEnv) createProgram(t *testing.T, owner *primitive.ObjectID, days int) (primitive.ObjectID, []primitive.ObjectID) {
	t.Helper()
	return e.createProgramFrom(t, &domain.Program{Title: "Fundamentals", IsUserCreated: owner != nil, CreatedBy: owner}, days)
}

func (e *testEnv) createProgramFrom(t *testing.T, program *domain.Program, days int) (primitive.ObjectID, []primitive.ObjectID) {
	t.Helper()
	program.Duration = days
	programID, err := e.repos.Programs.Create(e.ctx, program)
	require.NoError(t, err)

	dayIDs := make([]primitive.ObjectID, 0, days)
	for n := 1; n <= days; n++ {
		dayID, err := e.repos.Days.Create(e.ctx, &domain.ProgramDay{ProgramID: programID, DayNumber: n})
		require.NoError(t, err)
		_, err = e.repos.Steps.Create(e.ctx, &domain.Step{DayID: dayID, Order: 1, Title: "Shadow boxing"})
		require.NoError(t, err)
		dayIDs = append(dayIDs, dayID)
	}
	require.NoError(t, e.repos.Programs.SetDays(e.ctx, programID, dayIDs))
	return programID, dayIDs
}

func (e *testEnv) user(t *testing.T, id primitive.ObjectID) *domain.User {
	t.Helper()
	u, err := e.repos.Users.GetByID(e.ctx, id)
	require.NoError(t, err)
	return u
}

func (e *testEnv) completeDay(t *testing.T, userID, programID, dayID primitive.ObjectID) *CompleteDayResult {
	t.Helper()
	res, err := e.progress.CompleteDay(e.ctx, CompleteDayInput{UserID: userID, ProgramID: programID, DayID: dayID, LastCompletedStep: 1})
	require.NoError(t, err)
	return res
}
