package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// HabitInput represents data required to create or update a habit.
type HabitInput struct {
	Name        string
	Description string
	Frequency   string
	TimeOfDay   string
	GoalType    string
	GoalTarget  *int
	GoalDate    *time.Time
}

// HabitService wraps habit CRUD and the completion toggle.
type HabitService struct {
	habits HabitStore
}

func NewHabitService(habits HabitStore) *HabitService {
	return &HabitService{habits: habits}
}

func (s *HabitService) CreateHabit(ctx context.Context, user *model.User, input HabitInput) (*model.Habit, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	habit := model.Habit{
		UserID:      user.ID,
		Name:        input.Name,
		Description: input.Description,
		Frequency:   defaultString(input.Frequency, model.HabitFreqDaily),
		TimeOfDay:   defaultString(input.TimeOfDay, model.TimeOfDayAnytime),
		GoalType:    defaultString(input.GoalType, model.GoalNone),
		Version:     1,
	}
	// A goal target only makes sense when a goal is set.
	if habit.GoalType != model.GoalNone {
		habit.GoalTarget = input.GoalTarget
		habit.GoalDate = input.GoalDate
	}

	if err := s.habits.Create(ctx, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

func (s *HabitService) GetHabit(ctx context.Context, user *model.User, habitID uint) (*model.Habit, error) {
	habit, err := s.habits.FindByID(ctx, user.ID, habitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) ListHabits(ctx context.Context, user *model.User) ([]model.Habit, error) {
	return s.habits.ListByUser(ctx, user.ID)
}

// UpdateHabit applies the non-empty fields of input to an existing habit.
func (s *HabitService) UpdateHabit(ctx context.Context, user *model.User, habitID uint, input HabitInput) (*model.Habit, error) {
	habit, err := s.GetHabit(ctx, user, habitID)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		habit.Name = input.Name
	}
	if input.Description != "" {
		habit.Description = input.Description
	}
	if input.Frequency != "" {
		habit.Frequency = input.Frequency
	}
	if input.TimeOfDay != "" {
		habit.TimeOfDay = input.TimeOfDay
	}
	if input.GoalType != "" {
		habit.GoalType = input.GoalType
		if input.GoalType == model.GoalNone {
			habit.GoalTarget = nil
			habit.GoalDate = nil
		} else {
			habit.GoalTarget = input.GoalTarget
			habit.GoalDate = input.GoalDate
		}
	}

	if err := s.habits.Save(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

func (s *HabitService) DeleteHabit(ctx context.Context, user *model.User, habitID uint) error {
	if err := s.habits.Delete(ctx, user.ID, habitID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// ToggleCompletion flips today's check-in for a habit and persists the
// recomputed streak state. A lost race against a concurrent toggle comes
// back as ErrConcurrentModification and can be retried by the caller.
func (s *HabitService) ToggleCompletion(ctx context.Context, user *model.User, habitID uint, today time.Time) (*model.Habit, error) {
	habit, err := s.GetHabit(ctx, user, habitID)
	if err != nil {
		return nil, err
	}

	added := habit.ToggleCompletion(today)

	if err := s.habits.SaveToggle(ctx, habit, added, today); err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConcurrentModification
		}
		return nil, err
	}
	return habit, nil
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
