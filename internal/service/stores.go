package service

import (
	"context"
	"time"

	"habit-planner/internal/model"
)

// Store interfaces consumed by the services. The gorm repositories satisfy
// them; tests substitute in-memory fakes.

type TaskStore interface {
	Create(ctx context.Context, task *model.Task) error
	FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error)
	ListTemplates(ctx context.Context, userID uint, anchorNotAfter time.Time) ([]model.Task, error)
	FindInstance(ctx context.Context, userID, templateID uint, day time.Time) (*model.Task, error)
	CreateInstance(ctx context.Context, task *model.Task) error
	ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID, taskID uint) error
}

type HabitStore interface {
	Create(ctx context.Context, habit *model.Habit) error
	FindByID(ctx context.Context, userID, habitID uint) (*model.Habit, error)
	ListByUser(ctx context.Context, userID uint) ([]model.Habit, error)
	Save(ctx context.Context, habit *model.Habit) error
	SaveToggle(ctx context.Context, habit *model.Habit, added bool, day time.Time) error
	Delete(ctx context.Context, userID, habitID uint) error
}

type DayNoteStore interface {
	FindByDay(ctx context.Context, userID uint, day time.Time) (*model.DayNote, error)
	Upsert(ctx context.Context, note *model.DayNote) error
	DeleteByDay(ctx context.Context, userID uint, day time.Time) error
}
