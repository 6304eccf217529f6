package service

import (
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"alcyxob/boxing-app/internal/storage"
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// --- Error Definitions ---
var (
	ErrUserNotFound        = newError(ErrNotFound, "user not found")
	ErrProgramNotFound     = newError(ErrNotFound, "program not found")
	ErrProgramHasNoDays    = newError(ErrNotFound, "program has no days")
	ErrDayNotFound         = newError(ErrNotFound, "day not found in program")
	ErrNotRegistered       = newError(ErrNotFound, "user is not registered for this program")
	ErrNotFoundOrForbidden = newError(ErrNotFound, "program not found or you do not have permission to delete it")
	ErrAlreadyRegistered   = newError(ErrConflict, "user is already registered for this program")
	ErrAlreadyCompleted    = newError(ErrConflict, "program is already completed")
	ErrInvalidStep         = newError(ErrValidation, "lastCompletedStep must not be negative")
)

// CompleteDayInput identifies the day to mark done. Kind selects the enrollment
// collection to search; domain.KindAny searches registered first, then user-created.
type CompleteDayInput struct {
	UserID            primitive.ObjectID
	ProgramID         primitive.ObjectID
	DayID             primitive.ObjectID
	LastCompletedStep int
	Kind              domain.EnrollmentKind
}

// CompleteDayResult reports the outcome of CompleteDay. When AlreadyCompleted is set
// nothing was written and Day reflects the stored state.
type CompleteDayResult struct {
	ProgramID        primitive.ObjectID    `json:"programId"`
	Kind             domain.EnrollmentKind `json:"kind"`
	AlreadyCompleted bool                  `json:"alreadyCompleted"`
	Day              domain.DayProgress    `json:"day"`
	CompletedDay     *domain.CompletedDay  `json:"completedDay,omitempty"`
	ProgramCompleted bool                  `json:"programCompleted"`
}

// DayProgressView is a day of GetProgress with the unlock gate evaluated at server time.
type DayProgressView struct {
	domain.DayProgress
	IsAccessible bool `json:"isAccessible"`
}

// ProgressView is the read model returned by GetProgress. IsCompleted is derived from the
// completion log and the program's current day count; CompletedManually mirrors the override
// set by CompleteProgram.
type ProgressView struct {
	ProgramID          primitive.ObjectID    `json:"programId"`
	Kind               domain.EnrollmentKind `json:"kind"`
	IsRegistered       bool                  `json:"isRegistered"`
	IsCompleted        bool                  `json:"isCompleted"`
	CompletedManually  bool                  `json:"completedManually"`
	Progress           []DayProgressView     `json:"progress"`
	CompletedDays      []domain.CompletedDay `json:"completedDays"`
	TotalDays          int                   `json:"totalDays"`
	LastCompletedAt    *time.Time            `json:"lastCompletedAt"`
	NewDayLockedToDate *time.Time            `json:"newDayLockedToDate"`
	ServerTime         time.Time             `json:"serverTime"`
}

type StatsUser struct {
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

type Stats struct {
	TotalPrograms                int `json:"totalPrograms"`
	TotalCompletedPrograms       int `json:"totalCompletedPrograms"`
	RegisteredPrograms           int `json:"registeredPrograms"`
	CompletedRegisteredPrograms  int `json:"completedRegisteredPrograms"`
	UserCreatedPrograms          int `json:"userCreatedPrograms"`
	CompletedUserCreatedPrograms int `json:"completedUserCreatedPrograms"`
}

type UserStats struct {
	User  StatsUser `json:"user"`
	Stats Stats     `json:"stats"`
}

// DeleteResult counts what DeleteUserCreatedProgram removed.
type DeleteResult struct {
	ProgramID          primitive.ObjectID `json:"programId"`
	DeletedPrograms    int                `json:"deletedPrograms"`
	DeletedDays        int64              `json:"deletedDays"`
	DeletedSteps       int64              `json:"deletedSteps"`
	RemovedEnrollments int                `json:"removedEnrollments"`
}

// --- Service Interface ---
type ProgressService interface {
	Enroll(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error)
	CompleteDay(ctx context.Context, in CompleteDayInput) (*CompleteDayResult, error)
	CompleteProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error)
	GetProgress(ctx context.Context, userID, programID primitive.ObjectID) (*ProgressView, error)
	IsRegistered(ctx context.Context, userID, programID primitive.ObjectID) bool
	GetUserStats(ctx context.Context, userID primitive.ObjectID) (*UserStats, error)
	DeleteUserCreatedProgram(ctx context.Context, userID, programID primitive.ObjectID) (*DeleteResult, error)
}

// ProgressOption customizes a progress service.
type ProgressOption func(*progressService)

// WithClock replaces the wall clock used for completion timestamps and the unlock gate.
func WithClock(now func() time.Time) ProgressOption {
	return func(s *progressService) { s.now = now }
}

// --- Service Implementation ---

// progressService owns every state transition of an enrollment. Each operation loads the
// whole user, mutates the embedded enrollment in place and writes the user back.
// Concurrent writers for the same user are not coordinated: the last Update wins.
type progressService struct {
	repos   repository.Repositories
	storage storage.FileStorage // optional, used to clean up media of deleted programs
	logger  *zap.Logger
	now     func() time.Time
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(repos repository.Repositories, fileStorage storage.FileStorage, logger *zap.Logger, opts ...ProgressOption) ProgressService {
	s := &progressService{
		repos:   repos,
		storage: fileStorage,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *progressService) loadUser(ctx context.Context, userID primitive.ObjectID) (*domain.User, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("load user", err)
	}
	return user, nil
}

func (s *progressService) saveUser(ctx context.Context, user *domain.User) error {
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return storageError("save user", err)
	}
	return nil
}

// Enroll snapshots the program's days into a new enrollment. Programs the user authored
// go into the user-created collection, everything else into registered programs.
func (s *progressService) Enroll(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error) {
	program, err := s.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, storageError("load program", err)
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing, _ := user.FindEnrollment(programID, domain.KindAny); existing != nil {
		return nil, ErrAlreadyRegistered
	}

	days, err := s.repos.Days.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, storageError("load program days", err)
	}
	if len(days) == 0 {
		return nil, ErrProgramHasNoDays
	}

	kind := program.EnrollmentKind(userID)
	progress := domain.NewProgramProgress(programID, days, s.now())
	list := user.Enrollments(kind)
	*list = append(*list, progress)

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user enrolled",
		zap.String("userId", userID.Hex()),
		zap.String("programId", programID.Hex()),
		zap.String("kind", string(kind)),
		zap.Int("days", len(days)))
	return &progress, nil
}

// CompleteDay marks one day done. Completing a day twice is a no-op that reports
// AlreadyCompleted. Once the log covers every current day of the program, the stored
// program flag is set as well.
func (s *progressService) CompleteDay(ctx context.Context, in CompleteDayInput) (*CompleteDayResult, error) {
	if in.LastCompletedStep < 0 {
		return nil, ErrInvalidStep
	}

	user, err := s.loadUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	enrollment, kind := user.FindEnrollment(in.ProgramID, in.Kind)
	if enrollment == nil {
		return nil, ErrProgramNotFound
	}
	day := enrollment.FindDay(in.DayID)
	if day == nil {
		return nil, ErrDayNotFound
	}

	result := &CompleteDayResult{ProgramID: in.ProgramID, Kind: kind}
	if day.IsCompleted {
		result.AlreadyCompleted = true
		result.Day = *day
		result.ProgramCompleted = enrollment.IsCompleted
		return result, nil
	}

	entry := day.Complete(in.LastCompletedStep, s.now())
	enrollment.CompletedDays = append(enrollment.CompletedDays, entry)

	totalDays, err := s.repos.Days.CountByProgramID(ctx, in.ProgramID)
	if err != nil {
		return nil, storageError("count program days", err)
	}
	if enrollment.AllDaysCompleted(totalDays) {
		enrollment.IsCompleted = true
	}

	result.Day = *day
	result.CompletedDay = &entry
	result.ProgramCompleted = enrollment.IsCompleted

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("day completed",
		zap.String("userId", in.UserID.Hex()),
		zap.String("programId", in.ProgramID.Hex()),
		zap.Int("dayNumber", entry.DayNumber),
		zap.Bool("programCompleted", result.ProgramCompleted))
	return result, nil
}

// CompleteProgram sets the stored completion flag without requiring every day to be done.
func (s *progressService) CompleteProgram(ctx context.Context, userID, programID primitive.ObjectID) (*domain.ProgramProgress, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollment, _ := user.FindEnrollment(programID, domain.KindAny)
	if enrollment == nil {
		return nil, ErrNotRegistered
	}
	if enrollment.IsCompleted {
		return nil, ErrAlreadyCompleted
	}

	enrollment.IsCompleted = true
	enrollment.CompletedManually = true
	out := *enrollment

	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *progressService) GetProgress(ctx context.Context, userID, programID primitive.ObjectID) (*ProgressView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	enrollment, kind := user.FindEnrollment(programID, domain.KindAny)
	if enrollment == nil {
		return nil, ErrNotRegistered
	}
	// the owner may have deleted the program under other enrollees
	if _, err := s.repos.Programs.GetByID(ctx, programID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, storageError("load program", err)
	}

	totalDays, err := s.repos.Days.CountByProgramID(ctx, programID)
	if err != nil {
		return nil, storageError("count program days", err)
	}

	now := s.now()
	view := &ProgressView{
		ProgramID:         programID,
		Kind:              kind,
		IsRegistered:      enrollment.IsRegistered,
		IsCompleted:       enrollment.AllDaysCompleted(totalDays),
		CompletedManually: enrollment.CompletedManually,
		Progress:          make([]DayProgressView, len(enrollment.Days)),
		CompletedDays:     enrollment.CompletedDays,
		TotalDays:         totalDays,
		ServerTime:        now,
	}
	if view.CompletedDays == nil {
		view.CompletedDays = []domain.CompletedDay{}
	}
	for i, d := range enrollment.Days {
		view.Progress[i] = DayProgressView{DayProgress: d, IsAccessible: domain.IsDayAccessible(enrollment.Days, i, now)}
	}

	if last, ok := enrollment.LastCompletion(); ok {
		completedAt := last.CompletedAt
		view.LastCompletedAt = &completedAt
		if day := enrollment.FindDay(last.DayID); day != nil && day.NewDayLockedToDate != nil {
			lockedTo := *day.NewDayLockedToDate
			view.NewDayLockedToDate = &lockedTo
		} else {
			lockedTo := completedAt.Add(domain.DayUnlockDelay)
			view.NewDayLockedToDate = &lockedTo
		}
	}
	return view, nil
}

// IsRegistered never fails: a missing user or enrollment, or a storage error, reads as false.
func (s *progressService) IsRegistered(ctx context.Context, userID, programID primitive.ObjectID) bool {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("is-registered lookup failed", zap.String("userId", userID.Hex()), zap.Error(err))
		}
		return false
	}
	enrollment, _ := user.FindEnrollment(programID, domain.KindAny)
	return enrollment != nil
}

func (s *progressService) GetUserStats(ctx context.Context, userID primitive.ObjectID) (*UserStats, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed := func(list []domain.ProgramProgress) int {
		n := 0
		for _, p := range list {
			if p.IsCompleted {
				n++
			}
		}
		return n
	}

	st := Stats{
		RegisteredPrograms:           len(user.Programs),
		CompletedRegisteredPrograms:  completed(user.Programs),
		UserCreatedPrograms:          len(user.CreatedPrograms),
		CompletedUserCreatedPrograms: completed(user.CreatedPrograms),
	}
	st.TotalPrograms = st.RegisteredPrograms + st.UserCreatedPrograms
	st.TotalCompletedPrograms = st.CompletedRegisteredPrograms + st.CompletedUserCreatedPrograms

	return &UserStats{
		User:  StatsUser{Username: user.Username, Email: user.Email, Role: user.Role},
		Stats: st,
	}, nil
}

// DeleteUserCreatedProgram removes a program the caller authored together with its days,
// their steps, the stored media and the caller's enrollment. Anything else is reported as
// not found, and nothing is deleted.
func (s *progressService) DeleteUserCreatedProgram(ctx context.Context, userID, programID primitive.ObjectID) (*DeleteResult, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if enrollment, _ := user.FindEnrollment(programID, domain.KindUserCreated); enrollment == nil {
		return nil, ErrNotFoundOrForbidden
	}
	program, err := s.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFoundOrForbidden
		}
		return nil, storageError("load program", err)
	}
	if !program.OwnedBy(userID) {
		return nil, ErrNotFoundOrForbidden
	}

	days, err := s.repos.Days.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, storageError("load program days", err)
	}
	dayIDs := make([]primitive.ObjectID, len(days))
	for i, d := range days {
		dayIDs[i] = d.ID
	}

	mediaKeys := []string{}
	if program.CoverImageKey != "" {
		mediaKeys = append(mediaKeys, program.CoverImageKey)
	}
	result := &DeleteResult{ProgramID: programID}
	if len(dayIDs) > 0 {
		steps, err := s.repos.Steps.GetByDayIDs(ctx, dayIDs)
		if err != nil {
			return nil, storageError("load steps", err)
		}
		for _, st := range steps {
			if st.VideoKey != "" {
				mediaKeys = append(mediaKeys, st.VideoKey)
			}
		}
		if result.DeletedSteps, err = s.repos.Steps.DeleteByDayIDs(ctx, dayIDs); err != nil {
			return nil, storageError("delete steps", err)
		}
	}
	if result.DeletedDays, err = s.repos.Days.DeleteByProgramID(ctx, programID); err != nil {
		return nil, storageError("delete days", err)
	}
	if err := s.repos.Programs.Delete(ctx, programID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, storageError("delete program", err)
	} else if err == nil {
		result.DeletedPrograms = 1
	}

	s.deleteMedia(ctx, mediaKeys)

	result.RemovedEnrollments = user.RemoveEnrollment(programID, domain.KindUserCreated)
	if err := s.saveUser(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user-created program deleted",
		zap.String("userId", userID.Hex()),
		zap.String("programId", programID.Hex()),
		zap.Int64("days", result.DeletedDays),
		zap.Int64("steps", result.DeletedSteps))
	return result, nil
}

// deleteMedia is best effort: orphaned objects are logged, the delete still succeeds.
func (s *progressService) deleteMedia(ctx context.Context, keys []string) {
	if s.storage == nil {
		return
	}
	for _, key := range keys {
		if err := s.storage.DeleteObject(ctx, key); err != nil {
			s.logger.Warn("failed to delete media object", zap.String("key", key), zap.Error(err))
		}
	}
}
