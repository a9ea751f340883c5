package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// HabitRepository handles CRUD for habits and their completion history.
type HabitRepository struct {
	db *gorm.DB
}

func NewHabitRepository(db *gorm.DB) *HabitRepository {
	return &HabitRepository{db: db}
}

func (r *HabitRepository) Create(ctx context.Context, habit *model.Habit) error {
	if err := r.db.WithContext(ctx).Create(habit).Error; err != nil {
		return fmt.Errorf("create habit: %w", err)
	}
	return nil
}

func (r *HabitRepository) FindByID(ctx context.Context, userID, habitID uint) (*model.Habit, error) {
	var habit model.Habit
	err := r.db.WithContext(ctx).
		Preload("History").
		Where("user_id = ? AND id = ?", userID, habitID).
		First(&habit).Error
	if err != nil {
		return nil, err
	}
	return &habit, nil
}

func (r *HabitRepository) ListByUser(ctx context.Context, userID uint) ([]model.Habit, error) {
	var habits []model.Habit
	if err := r.db.WithContext(ctx).
		Preload("History").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("list habits: %w", err)
	}
	return habits, nil
}

func (r *HabitRepository) Save(ctx context.Context, habit *model.Habit) error {
	if err := r.db.WithContext(ctx).Omit("History").Save(habit).Error; err != nil {
		return fmt.Errorf("save habit: %w", err)
	}
	return nil
}

// SaveToggle persists a completion toggle computed by the model: the streak
// counters are written behind an optimistic version check, and the day's
// history row is inserted or deleted in the same transaction. A lost
// version race or a duplicate completion insert both come back as
// ErrVersionConflict so the caller can retry the whole toggle.
func (r *HabitRepository) SaveToggle(ctx context.Context, habit *model.Habit, added bool, day time.Time) error {
	prevVersion := habit.Version
	dayStart := model.DayOf(day)
	dayEnd := model.EndOfDay(day)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Habit{}).
			Where("id = ? AND user_id = ? AND version = ?", habit.ID, habit.UserID, prevVersion).
			Updates(map[string]interface{}{
				"current_streak": habit.CurrentStreak,
				"longest_streak": habit.LongestStreak,
				"completions":    habit.Completions,
				"version":        prevVersion + 1,
			})
		if res.Error != nil {
			return fmt.Errorf("update habit counters: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrVersionConflict
		}

		if added {
			entry := model.HabitCompletion{HabitID: habit.ID, Date: dayStart, Completed: true}
			if err := tx.Create(&entry).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return ErrVersionConflict
				}
				return fmt.Errorf("create completion: %w", err)
			}
		} else {
			if err := tx.Where("habit_id = ? AND date >= ? AND date <= ?",
				habit.ID, dayStart, dayEnd).
				Delete(&model.HabitCompletion{}).Error; err != nil {
				return fmt.Errorf("delete completion: %w", err)
			}
		}

		habit.Version = prevVersion + 1
		return nil
	})
}

// Delete removes a habit and, via the FK constraint, its history.
func (r *HabitRepository) Delete(ctx context.Context, userID, habitID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, habitID).Delete(&model.Habit{})
	if res.Error != nil {
		return fmt.Errorf("delete habit: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
