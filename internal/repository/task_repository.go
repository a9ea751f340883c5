package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// TaskRepository handles CRUD for tasks, templates and instances.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, userID, taskID uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// ListTemplates returns the user's recurring templates whose anchor date is
// not after the given cutoff.
func (r *TaskRepository) ListTemplates(ctx context.Context, userID uint, anchorNotAfter time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_recurring = ? AND date <= ?", userID, true, anchorNotAfter).
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return tasks, nil
}

// FindInstance looks up the materialized instance of a template on the
// given calendar day.
func (r *TaskRepository) FindInstance(ctx context.Context, userID, templateID uint, day time.Time) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND parent_task_id = ? AND date >= ? AND date <= ?",
			userID, templateID, model.DayOf(day), model.EndOfDay(day)).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateInstance inserts a materialized instance. A unique-index violation
// on (user_id, parent_task_id, date) means a concurrent caller got there
// first and is reported as ErrDuplicateInstance.
func (r *TaskRepository) CreateInstance(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateInstance
		}
		return fmt.Errorf("create instance: %w", err)
	}
	return nil
}

// ListByDateRange returns all tasks for the user dated within [start, end],
// newest first.
func (r *TaskRepository) ListByDateRange(ctx context.Context, userID uint, start, end time.Time) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Order("created_at DESC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks by range: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Save(task).Error; err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

// Delete removes a single task row. Deleting a template does not cascade to
// instances already materialized from it.
func (r *TaskRepository) Delete(ctx context.Context, userID, taskID uint) error {
	res := r.db.WithContext(ctx).Where("user_id = ? AND id = ?", userID, taskID).Delete(&model.Task{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
