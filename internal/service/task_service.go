package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// TaskInput represents data required to create a task or recurring template.
type TaskInput struct {
	Title       string
	Description string
	Date        time.Time
	Kind        model.TaskKind
	Quantity    *int
	Value       *float64
	Priority    string
	Tags        []string
	Duration    *int
	Repeat      *model.RepeatSpec
}

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks TaskStore
}

func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks}
}

// CreateTask validates and stores a one-off task or, when input.Repeat is
// set, a recurring template anchored at input.Date.
func (s *TaskService) CreateTask(ctx context.Context, user *model.User, input TaskInput) (*model.Task, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if input.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	kind := input.Kind
	if kind == "" {
		kind = model.KindBinary
	}
	priority := input.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}
	switch priority {
	case model.PriorityLow, model.PriorityMedium, model.PriorityHigh:
	default:
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}

	task := model.Task{
		UserID:      user.ID,
		Title:       input.Title,
		Description: input.Description,
		Date:        model.DayOf(input.Date),
		Kind:        kind,
		Quantity:    input.Quantity,
		Value:       input.Value,
		Priority:    priority,
		Tags:        model.TagList(input.Tags),
		Duration:    input.Duration,
	}

	if err := task.ValidateKind(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if input.Repeat != nil {
		spec := *input.Repeat
		if spec.Interval == 0 {
			spec.Interval = 1
		}
		if err := spec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRepeatSpec, err)
		}
		task.IsRecurring = true
		task.Repeat = spec
	}

	if err := s.tasks.Create(ctx, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *TaskService) GetTask(ctx context.Context, user *model.User, taskID uint) (*model.Task, error) {
	task, err := s.tasks.FindByID(ctx, user.ID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return task, nil
}

// ToggleTaskCompletion flips the completed flag of a one-off task or a
// materialized instance. Template rows are never completed themselves; only
// their instances are.
func (s *TaskService) ToggleTaskCompletion(ctx context.Context, user *model.User, taskID uint, now time.Time) (*model.Task, error) {
	task, err := s.GetTask(ctx, user, taskID)
	if err != nil {
		return nil, err
	}
	if task.IsRecurring {
		return nil, fmt.Errorf("%w: recurring template cannot be completed, complete a day's instance", ErrInvalidInput)
	}

	if task.Completed {
		task.Completed = false
		task.CompletedAt = nil
	} else {
		task.Completed = true
		completedAt := now
		task.CompletedAt = &completedAt
	}

	if err := s.tasks.Save(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// DeleteTask removes a task row. Deleting a recurring template leaves its
// already materialized instances in place.
func (s *TaskService) DeleteTask(ctx context.Context, user *model.User, taskID uint) error {
	if err := s.tasks.Delete(ctx, user.ID, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
