package memory

import (
	"alcyxob/boxing-app/internal/domain"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func cloneUser(u domain.User) domain.User {
	u.Programs = cloneEnrollments(u.Programs)
	u.CreatedPrograms = cloneEnrollments(u.CreatedPrograms)
	return u
}

func cloneEnrollments(in []domain.ProgramProgress) []domain.ProgramProgress {
	if in == nil {
		return nil
	}
	out := make([]domain.ProgramProgress, len(in))
	for i, p := range in {
		p.Days = cloneDays(p.Days)
		if p.CompletedDays != nil {
			p.CompletedDays = append([]domain.CompletedDay{}, p.CompletedDays...)
		}
		out[i] = p
	}
	return out
}

func cloneDays(in []domain.DayProgress) []domain.DayProgress {
	if in == nil {
		return nil
	}
	out := make([]domain.DayProgress, len(in))
	for i, d := range in {
		d.CompletedAt = cloneTime(d.CompletedAt)
		d.NewDayLockedToDate = cloneTime(d.NewDayLockedToDate)
		out[i] = d
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneIDs(in []primitive.ObjectID) []primitive.ObjectID {
	if in == nil {
		return nil
	}
	return append([]primitive.ObjectID{}, in...)
}

func cloneProgram(p domain.Program) domain.Program {
	if p.CreatedBy != nil {
		id := *p.CreatedBy
		p.CreatedBy = &id
	}
	p.DayIDs = cloneIDs(p.DayIDs)
	return p
}

func cloneStep(s domain.Step) domain.Step {
	s.SelectedMovements = cloneIDs(s.SelectedMovements)
	return s
}

func cloneMovement(m domain.Movement) domain.Movement {
	if m.MovementContent != nil {
		m.MovementContent = append([]domain.MovementContent{}, m.MovementContent...)
	}
	if m.Media != nil {
		m.Media = append([]domain.Media{}, m.Media...)
	}
	return m
}
