package service

import (
	"alcyxob/boxing-app/internal/content"
	"alcyxob/boxing-app/internal/domain"
	"alcyxob/boxing-app/internal/repository"
	"alcyxob/boxing-app/internal/storage"
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultStepDuration = 30 // seconds

var (
	ErrProgramTitleRequired = newError(ErrValidation, "program title is required")
	ErrProgramDaysRequired  = newError(ErrValidation, "program must have at least one day")
)

// Upload is a file received with a program or movement request.
type Upload struct {
	Name string
	Data []byte
}

type StepInput struct {
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Duration          int      `json:"duration"`
	VideoName         string   `json:"videoName"` // original filename of the matching upload
	SelectedMovements []string `json:"selectedMovements"`
}

type DayInput struct {
	DayNumber   int         `json:"dayNumber"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Steps       []StepInput `json:"steps"`
}

// ProgramInput is the authoring payload shared by admin and user-created programs.
type ProgramInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Duration    int        `json:"duration"`
	Days        []DayInput `json:"days"`

	Cover *Upload          `json:"-"`
	Files map[string]Upload `json:"-"` // keyed by original filename
}

type StepDetail struct {
	domain.Step
	Movements []domain.Movement `json:"movements"`
}

type DayDetail struct {
	domain.ProgramDay
	Steps []StepDetail `json:"steps"`
}

// ProgramDetail is a program with its days, steps and referenced movements resolved.
type ProgramDetail struct {
	domain.Program
	Days []DayDetail `json:"days"`
}

// RegisteredProgram is a program the user is enrolled in with the stored enrollment flags.
type RegisteredProgram struct {
	domain.Program
	Kind              domain.EnrollmentKind `json:"kind"`
	IsCompleted       bool                  `json:"isCompleted"`
	CompletedManually bool                  `json:"completedManually"`
}

// --- Service Interface ---
type ProgramService interface {
	CreateProgram(ctx context.Context, in ProgramInput) (*ProgramDetail, error)
	CreateUserProgram(ctx context.Context, userID primitive.ObjectID, in ProgramInput) (*ProgramDetail, error)
	ListPrograms(ctx context.Context) ([]domain.Program, error)
	GetProgram(ctx context.Context, programID primitive.ObjectID) (*ProgramDetail, error)
	ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error)
	ListRegistered(ctx context.Context, userID primitive.ObjectID) ([]RegisteredProgram, error)
}

// --- Service Implementation ---

type programService struct {
	repos          repository.Repositories
	progress       ProgressService
	storage        storage.FileStorage
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewProgramService creates a new instance of programService.
func NewProgramService(repos repository.Repositories, progress ProgressService, fileStorage storage.FileStorage, logger *zap.Logger, maxUploadBytes int64) ProgramService {
	return &programService{
		repos:          repos,
		progress:       progress,
		storage:        fileStorage,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreateProgram stores an admin-authored program.
func (s *programService) CreateProgram(ctx context.Context, in ProgramInput) (*ProgramDetail, error) {
	return s.create(ctx, &domain.Program{}, in)
}

// CreateUserProgram stores a program authored by userID with its text stripped of markup,
// then enrolls the author into it.
func (s *programService) CreateUserProgram(ctx context.Context, userID primitive.ObjectID, in ProgramInput) (*ProgramDetail, error) {
	in = sanitizeProgramInput(in)
	detail, err := s.create(ctx, &domain.Program{CreatedBy: &userID, IsUserCreated: true}, in)
	if err != nil {
		return nil, err
	}
	if _, err := s.progress.Enroll(ctx, userID, detail.ID); err != nil {
		return nil, fmt.Errorf("enroll author: %w", err)
	}
	return detail, nil
}

func sanitizeProgramInput(in ProgramInput) ProgramInput {
	in.Title = content.PlainText(in.Title)
	in.Description = content.PlainText(in.Description)
	days := make([]DayInput, len(in.Days))
	for i, d := range in.Days {
		d.Title = content.PlainText(d.Title)
		d.Description = content.PlainText(d.Description)
		steps := make([]StepInput, len(d.Steps))
		for j, st := range d.Steps {
			st.Title = content.PlainText(st.Title)
			st.Description = content.PlainText(st.Description)
			steps[j] = st
		}
		d.Steps = steps
		days[i] = d
	}
	in.Days = days
	return in
}

// validatedUpload is an upload that passed sniffing and is ready to store.
type validatedUpload struct {
	Upload
	info storage.MediaInfo
}

func (s *programService) validateUploads(in ProgramInput) (*validatedUpload, map[string]validatedUpload, error) {
	var cover *validatedUpload
	if in.Cover != nil {
		info, err := storage.ValidateMedia(in.Cover.Data, s.maxUploadBytes)
		if err != nil {
			return nil, nil, validationError("cover %q: %v", in.Cover.Name, err)
		}
		if info.Kind != domain.ContentImage {
			return nil, nil, validationError("cover %q must be an image", in.Cover.Name)
		}
		cover = &validatedUpload{Upload: *in.Cover, info: info}
	}
	files := make(map[string]validatedUpload, len(in.Files))
	for name, f := range in.Files {
		info, err := storage.ValidateMedia(f.Data, s.maxUploadBytes)
		if err != nil {
			return nil, nil, validationError("file %q: %v", name, err)
		}
		files[name] = validatedUpload{Upload: f, info: info}
	}
	return cover, files, nil
}

// store uploads one file. Failures are logged and reported as empty, the program is still created.
func (s *programService) store(ctx context.Context, prefix string, u validatedUpload) (url, key string) {
	if s.storage == nil {
		return "", ""
	}
	key = storage.ObjectKey(prefix, u.info)
	url, err := s.storage.PutObject(ctx, key, u.info.ContentType, u.Data)
	if err != nil {
		s.logger.Warn("media upload failed, skipping", zap.String("file", u.Name), zap.Error(err))
		return "", ""
	}
	return url, key
}

func (s *programService) create(ctx context.Context, program *domain.Program, in ProgramInput) (*ProgramDetail, error) {
	program.Title = strings.TrimSpace(in.Title)
	program.Description = strings.TrimSpace(in.Description)
	if program.Title == "" {
		return nil, ErrProgramTitleRequired
	}
	if len(in.Days) == 0 {
		return nil, ErrProgramDaysRequired
	}
	movementIDs := make([][][]primitive.ObjectID, len(in.Days))
	for i, d := range in.Days {
		movementIDs[i] = make([][]primitive.ObjectID, len(d.Steps))
		for j, st := range d.Steps {
			ids, err := parseObjectIDs(st.SelectedMovements)
			if err != nil {
				return nil, validationError("day %d step %d: invalid movement id", i+1, j+1)
			}
			movementIDs[i][j] = ids
		}
	}
	cover, files, err := s.validateUploads(in)
	if err != nil {
		return nil, err
	}

	program.Duration = in.Duration
	if program.Duration <= 0 {
		program.Duration = len(in.Days)
	}
	if cover != nil {
		program.CoverImage, program.CoverImageKey = s.store(ctx, "programs/covers", *cover)
	}
	programID, err := s.repos.Programs.Create(ctx, program)
	if err != nil {
		return nil, storageError("create program", err)
	}
	program.ID = programID

	detail := &ProgramDetail{Program: *program, Days: make([]DayDetail, 0, len(in.Days))}
	dayIDs := make([]primitive.ObjectID, 0, len(in.Days))
	for i, d := range in.Days {
		day := domain.ProgramDay{
			ProgramID:   programID,
			DayNumber:   d.DayNumber,
			Title:       strings.TrimSpace(d.Title),
			Description: strings.TrimSpace(d.Description),
		}
		if day.DayNumber <= 0 {
			day.DayNumber = i + 1
		}
		if day.Title == "" {
			day.Title = fmt.Sprintf("Day %d", day.DayNumber)
		}
		if day.ID, err = s.repos.Days.Create(ctx, &day); err != nil {
			return nil, storageError("create day", err)
		}
		dayIDs = append(dayIDs, day.ID)

		dayDetail := DayDetail{ProgramDay: day, Steps: make([]StepDetail, 0, len(d.Steps))}
		for j, st := range d.Steps {
			step := domain.Step{
				DayID:             day.ID,
				Order:             j + 1,
				Title:             strings.TrimSpace(st.Title),
				Description:       strings.TrimSpace(st.Description),
				Duration:          st.Duration,
				SelectedMovements: movementIDs[i][j],
			}
			if step.Title == "" {
				step.Title = fmt.Sprintf("Step %d", step.Order)
			}
			if step.Duration <= 0 {
				step.Duration = defaultStepDuration
			}
			if f, ok := files[st.VideoName]; ok && st.VideoName != "" {
				step.VideoURL, step.VideoKey = s.store(ctx, "programs/steps", f)
			}
			if step.ID, err = s.repos.Steps.Create(ctx, &step); err != nil {
				return nil, storageError("create step", err)
			}
			dayDetail.Steps = append(dayDetail.Steps, StepDetail{Step: step, Movements: []domain.Movement{}})
		}
		detail.Days = append(detail.Days, dayDetail)
	}

	if err := s.repos.Programs.SetDays(ctx, programID, dayIDs); err != nil {
		return nil, storageError("link days", err)
	}
	detail.DayIDs = dayIDs

	s.logger.Info("program created",
		zap.String("programId", programID.Hex()),
		zap.Bool("userCreated", program.IsUserCreated),
		zap.Int("days", len(dayIDs)))
	return detail, nil
}

func parseObjectIDs(hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	for _, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *programService) ListPrograms(ctx context.Context) ([]domain.Program, error) {
	programs, err := s.repos.Programs.List(ctx)
	if err != nil {
		return nil, storageError("list programs", err)
	}
	return programs, nil
}

// GetProgram loads a program with its days ordered by day number and steps by order.
func (s *programService) GetProgram(ctx context.Context, programID primitive.ObjectID) (*ProgramDetail, error) {
	program, err := s.repos.Programs.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProgramNotFound
		}
		return nil, storageError("load program", err)
	}
	days, err := s.repos.Days.GetByProgramID(ctx, programID)
	if err != nil {
		return nil, storageError("load days", err)
	}
	dayIDs := make([]primitive.ObjectID, len(days))
	for i, d := range days {
		dayIDs[i] = d.ID
	}

	var steps []domain.Step
	if len(dayIDs) > 0 {
		if steps, err = s.repos.Steps.GetByDayIDs(ctx, dayIDs); err != nil {
			return nil, storageError("load steps", err)
		}
	}

	var movementIDs []primitive.ObjectID
	seen := map[primitive.ObjectID]bool{}
	for _, st := range steps {
		for _, id := range st.SelectedMovements {
			if !seen[id] {
				seen[id] = true
				movementIDs = append(movementIDs, id)
			}
		}
	}
	movements := map[primitive.ObjectID]domain.Movement{}
	if len(movementIDs) > 0 {
		found, err := s.repos.Movements.GetByIDs(ctx, movementIDs)
		if err != nil {
			return nil, storageError("load movements", err)
		}
		for _, m := range found {
			movements[m.ID] = m
		}
	}

	stepsByDay := map[primitive.ObjectID][]StepDetail{}
	for _, st := range steps {
		sd := StepDetail{Step: st, Movements: []domain.Movement{}}
		for _, id := range st.SelectedMovements {
			if m, ok := movements[id]; ok {
				sd.Movements = append(sd.Movements, m)
			}
		}
		stepsByDay[st.DayID] = append(stepsByDay[st.DayID], sd)
	}

	detail := &ProgramDetail{Program: *program, Days: make([]DayDetail, len(days))}
	for i, d := range days {
		detail.Days[i] = DayDetail{ProgramDay: d, Steps: stepsByDay[d.ID]}
		if detail.Days[i].Steps == nil {
			detail.Days[i].Steps = []StepDetail{}
		}
	}
	return detail, nil
}

// ListMine returns admin programs plus the programs userID authored.
func (s *programService) ListMine(ctx context.Context, userID primitive.ObjectID) ([]domain.Program, error) {
	programs, err := s.repos.Programs.ListAdminAndCreatedBy(ctx, userID)
	if err != nil {
		return nil, storageError("list programs", err)
	}
	return programs, nil
}

func (s *programService) ListRegistered(ctx context.Context, userID primitive.ObjectID) ([]RegisteredProgram, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("load user", err)
	}

	type enrollment struct {
		kind     domain.EnrollmentKind
		progress domain.ProgramProgress
	}
	var enrollments []enrollment
	var ids []primitive.ObjectID
	for _, kind := range []domain.EnrollmentKind{domain.KindRegistered, domain.KindUserCreated} {
		for _, p := range *user.Enrollments(kind) {
			enrollments = append(enrollments, enrollment{kind: kind, progress: p})
			ids = append(ids, p.ProgramID)
		}
	}
	out := []RegisteredProgram{}
	if len(ids) == 0 {
		return out, nil
	}

	programs, err := s.repos.Programs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, storageError("list programs", err)
	}
	byID := make(map[primitive.ObjectID]domain.Program, len(programs))
	for _, p := range programs {
		byID[p.ID] = p
	}
	for _, e := range enrollments {
		program, ok := byID[e.progress.ProgramID]
		if !ok {
			continue // program deleted since enrollment
		}
		out = append(out, RegisteredProgram{
			Program:           program,
			Kind:              e.kind,
			IsCompleted:       e.progress.IsCompleted,
			CompletedManually: e.progress.CompletedManually,
		})
	}
	return out, nil
}
