package service

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// DayPlan is everything the planner knows about one calendar day.
type DayPlan struct {
	Date  time.Time
	Tasks []model.Task
	Note  *model.DayNote
}

// PlannerService materializes recurring templates into concrete task
// instances and assembles the per-day view.
type PlannerService struct {
	tasks TaskStore
	notes DayNoteStore
}

func NewPlannerService(tasks TaskStore, notes DayNoteStore) *PlannerService {
	return &PlannerService{tasks: tasks, notes: notes}
}

// MaterializeDay creates the missing instances of the user's recurring
// templates for the given day and returns only the newly created ones.
//
// The operation is idempotent: an instance is created once per
// (user, template, day). When a concurrent caller wins the insert race the
// unique index rejects the duplicate and the loss is swallowed here.
func (s *PlannerService) MaterializeDay(ctx context.Context, userID uint, day time.Time) ([]model.Task, error) {
	dayStart := model.DayOf(day)

	templates, err := s.tasks.ListTemplates(ctx, userID, model.EndOfDay(day))
	if err != nil {
		return nil, err
	}

	var created []model.Task
	for i := range templates {
		tmpl := &templates[i]

		if tmpl.Repeat.Expired(dayStart) {
			continue
		}
		if !tmpl.Repeat.Matches(dayStart, tmpl.Date) {
			continue
		}

		_, err := s.tasks.FindInstance(ctx, userID, tmpl.ID, dayStart)
		if err == nil {
			continue // already materialized
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		instance := tmpl.Instantiate(dayStart)
		if err := s.tasks.CreateInstance(ctx, instance); err != nil {
			if errors.Is(err, repository.ErrDuplicateInstance) {
				log.Printf("[info] instance of template %d for %s already created concurrently",
					tmpl.ID, dayStart.Format("2006-01-02"))
				continue
			}
			return nil, err
		}
		created = append(created, *instance)
	}

	return created, nil
}

// DayPlan materializes the day's instances and returns the full task list
// together with the day note. Materialization runs first so a fresh day's
// occurrences are part of the same read.
func (s *PlannerService) DayPlan(ctx context.Context, userID uint, day time.Time) (*DayPlan, error) {
	if _, err := s.MaterializeDay(ctx, userID, day); err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListByDateRange(ctx, userID, model.DayOf(day), model.EndOfDay(day))
	if err != nil {
		return nil, err
	}

	note, err := s.notes.FindByDay(ctx, userID, day)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &DayPlan{
		Date:  model.DayOf(day),
		Tasks: tasks,
		Note:  note,
	}, nil
}
