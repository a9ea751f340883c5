package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// DayNoteRepository manages per-day free-text notes.
type DayNoteRepository struct {
	db *gorm.DB
}

func NewDayNoteRepository(db *gorm.DB) *DayNoteRepository {
	return &DayNoteRepository{db: db}
}

// FindByDay returns the user's note for the given calendar day, if any.
func (r *DayNoteRepository) FindByDay(ctx context.Context, userID uint, day time.Time) (*model.DayNote, error) {
	var note model.DayNote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, model.DayOf(day), model.EndOfDay(day)).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Upsert updates the existing note for the day or creates a new one keyed
// to the day's midnight. The unique index on (user_id, date) backstops
// concurrent creators.
func (r *DayNoteRepository) Upsert(ctx context.Context, note *model.DayNote) error {
	existing, err := r.FindByDay(ctx, note.UserID, note.Date)
	switch {
	case err == nil:
		existing.Note = note.Note
		existing.Reflection = note.Reflection
		if err := r.db.WithContext(ctx).Save(existing).Error; err != nil {
			return fmt.Errorf("update day note: %w", err)
		}
		*note = *existing
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		note.Date = model.DayOf(note.Date)
		if err := r.db.WithContext(ctx).Create(note).Error; err != nil {
			return fmt.Errorf("create day note: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("find day note: %w", err)
	}
}

func (r *DayNoteRepository) DeleteByDay(ctx context.Context, userID uint, day time.Time) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date <= ?", userID, model.DayOf(day), model.EndOfDay(day)).
		Delete(&model.DayNote{})
	if res.Error != nil {
		return fmt.Errorf("delete day note: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
