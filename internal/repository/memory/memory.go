// Package memory keeps every collection in process memory. It backs the "memory"
// database driver for local runs and is the store used by service and API tests.
// Records are copied on the way in and out, so callers get the same detached
// documents a real document store would hand them.
package memory

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store holds all collections behind one lock.
type Store struct {
	mu        sync.RWMutex
	users     map[primitive.ObjectID]domain.User
	programs  map[primitive.ObjectID]domain.Program
	days      map[primitive.ObjectID]domain.ProgramDay
	steps     map[primitive.ObjectID]domain.Step
	movements map[primitive.ObjectID]domain.Movement
	// seq gives every inserted record a monotonically increasing position for "newest first" listing.
	seq   map[primitive.ObjectID]int64
	clock int64
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:     map[primitive.ObjectID]domain.User{},
		programs:  map[primitive.ObjectID]domain.Program{},
		days:      map[primitive.ObjectID]domain.ProgramDay{},
		steps:     map[primitive.ObjectID]domain.Step{},
		movements: map[primitive.ObjectID]domain.Movement{},
		seq:       map[primitive.ObjectID]int64{},
	}
}

// NewRepositories exposes the store through the repository interfaces.
func NewRepositories(s *Store) repository.Repositories {
	return repository.Repositories{
		Users:     &userRepo{s},
		Programs:  &programRepo{s},
		Days:      &dayRepo{s},
		Steps:     &stepRepo{s},
		Movements: &movementRepo{s},
	}
}

func (s *Store) track(id primitive.ObjectID) {
	s.clock++
	s.seq[id] = s.clock
}

// newestFirst sorts records by insertion order, latest first.
func newestFirst[T any](s *Store, items []T, id func(T) primitive.ObjectID) {
	sort.SliceStable(items, func(i, j int) bool {
		return s.seq[id(items[i])] > s.seq[id(items[j])]
	})
}

// --- users ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(_ context.Context, user *domain.User) (primitive.ObjectID, error) {
	if user.Email == "" || user.PasswordHash == "" || user.Role == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return primitive.NilObjectID, repository.ErrDuplicateKey
		}
	}
	user.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Programs == nil {
		user.Programs = []domain.ProgramProgress{}
	}
	if user.CreatedPrograms == nil {
		user.CreatedPrograms = []domain.ProgramProgress{}
	}
	r.s.users[user.ID] = cloneUser(*user)
	r.s.track(user.ID)
	return user.ID, nil
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			out := cloneUser(u)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *userRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	user.UpdatedAt = time.Now().UTC()
	stored.Username = user.Username
	stored.Role = user.Role
	stored.UpdatedAt = user.UpdatedAt
	updated := cloneUser(*user)
	stored.Programs = updated.Programs
	stored.CreatedPrograms = updated.CreatedPrograms
	r.s.users[user.ID] = stored
	return nil
}

// --- programs ---

type programRepo struct{ s *Store }

func (r *programRepo) Create(_ context.Context, program *domain.Program) (primitive.ObjectID, error) {
	if program.Title == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	if program.DayIDs == nil {
		program.DayIDs = []primitive.ObjectID{}
	}
	r.s.programs[program.ID] = cloneProgram(*program)
	r.s.track(program.ID)
	return program.ID, nil
}

func (r *programRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Program, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.programs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneProgram(p)
	return &out, nil
}

func (r *programRepo) List(_ context.Context) ([]domain.Program, error) {
	return r.filter(func(domain.Program) bool { return true }), nil
}

func (r *programRepo) ListAdminAndCreatedBy(_ context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	return r.filter(func(p domain.Program) bool {
		return !p.IsUserCreated || (p.CreatedBy != nil && *p.CreatedBy == userID)
	}), nil
}

func (r *programRepo) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Program, error) {
	want := make(map[primitive.ObjectID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.filter(func(p domain.Program) bool { return want[p.ID] }), nil
}

func (r *programRepo) filter(keep func(domain.Program) bool) []domain.Program {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Program{}
	for _, p := range r.s.programs {
		if keep(p) {
			out = append(out, cloneProgram(p))
		}
	}
	newestFirst(r.s, out, func(p domain.Program) primitive.ObjectID { return p.ID })
	return out
}

func (r *programRepo) SetDays(_ context.Context, id primitive.ObjectID, dayIDs []primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.DayIDs = append([]primitive.ObjectID{}, dayIDs...)
	p.UpdatedAt = time.Now().UTC()
	r.s.programs[id] = p
	return nil
}

func (r *programRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.programs, id)
	delete(r.s.seq, id)
	return nil
}

// --- days ---

type dayRepo struct{ s *Store }

func (r *dayRepo) Create(_ context.Context, day *domain.ProgramDay) (primitive.ObjectID, error) {
	if day.ProgramID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	day.ID = primitive.NewObjectID()
	r.s.days[day.ID] = *day
	r.s.track(day.ID)
	return day.ID, nil
}

func (r *dayRepo) GetByProgramID(_ context.Context, programID primitive.ObjectID) ([]domain.ProgramDay, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.ProgramDay{}
	for _, d := range r.s.days {
		if d.ProgramID == programID {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DayNumber != out[j].DayNumber {
			return out[i].DayNumber < out[j].DayNumber
		}
		return r.s.seq[out[i].ID] < r.s.seq[out[j].ID]
	})
	return out, nil
}

func (r *dayRepo) CountByProgramID(ctx context.Context, programID primitive.ObjectID) (int, error) {
	days, err := r.GetByProgramID(ctx, programID)
	return len(days), err
}

func (r *dayRepo) DeleteByProgramID(_ context.Context, programID primitive.ObjectID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, d := range r.s.days {
		if d.ProgramID == programID {
			delete(r.s.days, id)
			delete(r.s.seq, id)
			n++
		}
	}
	return n, nil
}

// --- steps ---

type stepRepo struct{ s *Store }

func (r *stepRepo) Create(_ context.Context, step *domain.Step) (primitive.ObjectID, error) {
	if step.DayID == primitive.NilObjectID {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	step.ID = primitive.NewObjectID()
	if step.SelectedMovements == nil {
		step.SelectedMovements = []primitive.ObjectID{}
	}
	r.s.steps[step.ID] = cloneStep(*step)
	r.s.track(step.ID)
	return step.ID, nil
}

func (r *stepRepo) GetByDayIDs(_ context.Context, dayIDs []primitive.ObjectID) ([]domain.Step, error) {
	want := make(map[primitive.ObjectID]bool, len(dayIDs))
	for _, id := range dayIDs {
		want[id] = true
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Step{}
	for _, st := range r.s.steps {
		if want[st.DayID] {
			out = append(out, cloneStep(st))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return r.s.seq[out[i].ID] < r.s.seq[out[j].ID]
	})
	return out, nil
}

func (r *stepRepo) DeleteByDayIDs(_ context.Context, dayIDs []primitive.ObjectID) (int64, error) {
	want := make(map[primitive.ObjectID]bool, len(dayIDs))
	for _, id := range dayIDs {
		want[id] = true
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, st := range r.s.steps {
		if want[st.DayID] {
			delete(r.s.steps, id)
			delete(r.s.seq, id)
			n++
		}
	}
	return n, nil
}

// --- movements ---

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(_ context.Context, movement *domain.Movement) (primitive.ObjectID, error) {
	if movement.MovementName == "" {
		return primitive.NilObjectID, repository.ErrInvalidRecord
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	movement.ID = primitive.NewObjectID()
	movement.CreatedAt = time.Now().UTC()
	if movement.MovementContent == nil {
		movement.MovementContent = []domain.MovementContent{}
	}
	if movement.Media == nil {
		movement.Media = []domain.Media{}
	}
	r.s.movements[movement.ID] = cloneMovement(*movement)
	r.s.track(movement.ID)
	return movement.ID, nil
}

func (r *movementRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movements[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneMovement(m)
	return &out, nil
}

func (r *movementRepo) GetByIDs(_ context.Context, ids []primitive.ObjectID) ([]domain.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Movement{}
	for _, id := range ids {
		if m, ok := r.s.movements[id]; ok {
			out = append(out, cloneMovement(m))
		}
	}
	return out, nil
}

func (r *movementRepo) List(_ context.Context) ([]domain.Movement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []domain.Movement{}
	for _, m := range r.s.movements {
		out = append(out, cloneMovement(m))
	}
	newestFirst(r.s, out, func(m domain.Movement) primitive.ObjectID { return m.ID })
	return out, nil
}

func (r *movementRepo) Update(_ context.Context, movement *domain.Movement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.movements[movement.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := cloneMovement(*movement)
	updated.CreatedAt = stored.CreatedAt
	r.s.movements[movement.ID] = updated
	return nil
}

func (r *movementRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.movements[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.movements, id)
	delete(r.s.seq, id)
	return nil
}
