package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

// DayNoteService provides helpers around per-day notes.
type DayNoteService struct {
	notes DayNoteStore
}

func NewDayNoteService(notes DayNoteStore) *DayNoteService {
	return &DayNoteService{notes: notes}
}

// GetNote returns the note for a day, or nil when the day has none.
func (s *DayNoteService) GetNote(ctx context.Context, user *model.User, day time.Time) (*model.DayNote, error) {
	note, err := s.notes.FindByDay(ctx, user.ID, day)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return note, nil
}

// UpsertNote creates or updates the day's note.
func (s *DayNoteService) UpsertNote(ctx context.Context, user *model.User, day time.Time, text, reflection string) (*model.DayNote, error) {
	note := &model.DayNote{
		UserID:     user.ID,
		Date:       model.DayOf(day),
		Note:       text,
		Reflection: reflection,
	}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return nil, err
	}
	return note, nil
}

func (s *DayNoteService) DeleteNote(ctx context.Context, user *model.User, day time.Time) error {
	if err := s.notes.DeleteByDay(ctx, user.ID, day); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}
