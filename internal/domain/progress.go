package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DayUnlockDelay is how long after completing a day the next one stays locked.
const DayUnlockDelay = 24 * time.Hour

// EnrollmentKind selects which of the user's enrollment collections an operation works on.
type EnrollmentKind string

const (
	KindAny         EnrollmentKind = ""
	KindRegistered  EnrollmentKind = "registered"
	KindUserCreated EnrollmentKind = "userCreated"
)

// ProgramProgress is one enrollment of a user in a program.
type ProgramProgress struct {
	ProgramID    primitive.ObjectID `bson:"programId" json:"programId"`
	IsRegistered bool               `bson:"isRegistered" json:"isRegistered"`
	// IsCompleted is the stored program flag. It is set when every day has been completed
	// or when the program is completed manually.
	IsCompleted       bool           `bson:"isCompleted" json:"isCompleted"`
	CompletedManually bool           `bson:"completedManually" json:"completedManually"`
	Days              []DayProgress  `bson:"days" json:"days"`
	CompletedDays     []CompletedDay `bson:"completedDays" json:"completedDays"`
	EnrolledAt        time.Time      `bson:"enrolledAt" json:"enrolledAt"`
}

// DayProgress tracks a single program day for one enrollment.
type DayProgress struct {
	DayID              primitive.ObjectID `bson:"dayId" json:"dayId"`
	DayNumber          int                `bson:"dayNumber" json:"dayNumber"`
	IsCompleted        bool               `bson:"isCompleted" json:"isCompleted"`
	LastCompletedStep  int                `bson:"lastCompletedStep" json:"lastCompletedStep"`
	CompletedAt        *time.Time         `bson:"completedAt" json:"completedAt"`
	NewDayLockedToDate *time.Time         `bson:"newDayLockedToDate" json:"newDayLockedToDate"`
}

// CompletedDay is an entry of the append-only completion log.
type CompletedDay struct {
	DayID       primitive.ObjectID `bson:"dayId" json:"dayId"`
	DayNumber   int                `bson:"dayNumber" json:"dayNumber"`
	CompletedAt time.Time          `bson:"completedAt" json:"completedAt"`
}

// NewProgramProgress snapshots the program's days into a fresh, uncompleted enrollment.
func NewProgramProgress(programID primitive.ObjectID, days []ProgramDay, now time.Time) ProgramProgress {
	progress := ProgramProgress{
		ProgramID:     programID,
		IsRegistered:  true,
		Days:          make([]DayProgress, len(days)),
		CompletedDays: []CompletedDay{},
		EnrolledAt:    now,
	}
	for i, d := range days {
		progress.Days[i] = DayProgress{DayID: d.ID, DayNumber: d.DayNumber}
	}
	return progress
}

// FindDay returns the day progress for dayID, aliasing the element inside p.
func (p *ProgramProgress) FindDay(dayID primitive.ObjectID) *DayProgress {
	for i := range p.Days {
		if p.Days[i].DayID == dayID {
			return &p.Days[i]
		}
	}
	return nil
}

// Complete marks the day done at now and returns the log entry to append.
// It must only be called on a day that is not completed yet.
func (d *DayProgress) Complete(lastCompletedStep int, now time.Time) CompletedDay {
	completedAt := now
	unlock := now.Add(DayUnlockDelay)
	d.IsCompleted = true
	d.LastCompletedStep = lastCompletedStep
	d.CompletedAt = &completedAt
	d.NewDayLockedToDate = &unlock
	return CompletedDay{DayID: d.DayID, DayNumber: d.DayNumber, CompletedAt: completedAt}
}

// DistinctCompletedDays counts unique day IDs in the completion log, so duplicate
// log entries for the same day never inflate the count.
func (p *ProgramProgress) DistinctCompletedDays() int {
	seen := make(map[primitive.ObjectID]struct{}, len(p.CompletedDays))
	for _, cd := range p.CompletedDays {
		seen[cd.DayID] = struct{}{}
	}
	return len(seen)
}

// AllDaysCompleted reports whether the completion log covers totalDays distinct days.
func (p *ProgramProgress) AllDaysCompleted(totalDays int) bool {
	return totalDays > 0 && p.DistinctCompletedDays() == totalDays
}

// LastCompletion returns the most recent completion log entry by CompletedAt.
func (p *ProgramProgress) LastCompletion() (CompletedDay, bool) {
	var last CompletedDay
	found := false
	for _, cd := range p.CompletedDays {
		if !found || cd.CompletedAt.After(last.CompletedAt) {
			last = cd
			found = true
		}
	}
	return last, found
}

// IsDayAccessible evaluates the unlock gate for days[index]: the first day is always open,
// any later day opens once the previous day is completed and its lock date has passed.
func IsDayAccessible(days []DayProgress, index int, now time.Time) bool {
	if index < 0 || index >= len(days) {
		return false
	}
	if index == 0 {
		return true
	}
	prev := days[index-1]
	if !prev.IsCompleted || prev.NewDayLockedToDate == nil {
		return false
	}
	return !now.Before(*prev.NewDayLockedToDate)
}
