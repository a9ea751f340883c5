package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := NewDB("file:" + t.Name() + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCreateInstanceEnforcesUniqueness(t *testing.T) {
	db := testDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	tmpl := &model.Task{
		UserID:      1,
		Title:       "Stretch",
		Date:        day(2024, time.January, 1),
		Kind:        model.KindBinary,
		IsRecurring: true,
		Repeat:      model.RepeatSpec{Frequency: model.FreqDaily, Interval: 1},
	}
	if err := repo.Create(ctx, tmpl); err != nil {
		t.Fatalf("create template: %v", err)
	}

	target := day(2024, time.January, 2)
	first := tmpl.Instantiate(target)
	if err := repo.CreateInstance(ctx, first); err != nil {
		t.Fatalf("first instance: %v", err)
	}

	// A second insert for the same (user, template, day) must be rejected
	// by the unique index and reported as a duplicate.
	second := tmpl.Instantiate(target)
	if err := repo.CreateInstance(ctx, second); !errors.Is(err, ErrDuplicateInstance) {
		t.Fatalf("expected ErrDuplicateInstance, got %v", err)
	}

	found, err := repo.FindInstance(ctx, 1, tmpl.ID, target)
	if err != nil {
		t.Fatalf("find instance: %v", err)
	}
	if found.ID != first.ID {
		t.Fatalf("found instance %d, want %d", found.ID, first.ID)
	}

	// A different day is a different occurrence.
	third := tmpl.Instantiate(day(2024, time.January, 3))
	if err := repo.CreateInstance(ctx, third); err != nil {
		t.Fatalf("instance on another day: %v", err)
	}
}

func TestFindInstanceMissing(t *testing.T) {
	db := testDB(t)
	repo := NewTaskRepository(db)

	_, err := repo.FindInstance(context.Background(), 1, 99, day(2024, time.January, 2))
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListTemplatesFiltersByAnchor(t *testing.T) {
	db := testDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	early := &model.Task{UserID: 1, Title: "early", Date: day(2024, time.January, 1),
		Kind: model.KindBinary, IsRecurring: true,
		Repeat: model.RepeatSpec{Frequency: model.FreqDaily, Interval: 1}}
	late := &model.Task{UserID: 1, Title: "late", Date: day(2024, time.June, 1),
		Kind: model.KindBinary, IsRecurring: true,
		Repeat: model.RepeatSpec{Frequency: model.FreqDaily, Interval: 1}}
	oneOff := &model.Task{UserID: 1, Title: "one-off", Date: day(2024, time.January, 1), Kind: model.KindBinary}
	for _, task := range []*model.Task{early, late, oneOff} {
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	templates, err := repo.ListTemplates(ctx, 1, model.EndOfDay(day(2024, time.March, 1)))
	if err != nil {
		t.Fatalf("list templates: %v", err)
	}
	if len(templates) != 1 || templates[0].Title != "early" {
		t.Fatalf("expected only the early template, got %+v", templates)
	}
}

func TestHabitSaveToggleVersionConflict(t *testing.T) {
	db := testDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	habit := &model.Habit{UserID: 1, Name: "Meditation", Version: 1}
	if err := repo.Create(ctx, habit); err != nil {
		t.Fatalf("create habit: %v", err)
	}

	today := day(2024, time.March, 10)

	loaded, err := repo.FindByID(ctx, 1, habit.ID)
	if err != nil {
		t.Fatalf("find habit: %v", err)
	}
	stale, err := repo.FindByID(ctx, 1, habit.ID)
	if err != nil {
		t.Fatalf("find habit again: %v", err)
	}

	added := loaded.ToggleCompletion(today)
	if err := repo.SaveToggle(ctx, loaded, added, today); err != nil {
		t.Fatalf("first toggle save: %v", err)
	}

	// The second writer still holds the old version and must lose.
	added = stale.ToggleCompletion(today)
	if err := repo.SaveToggle(ctx, stale, added, today); !errors.Is(err, ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	final, err := repo.FindByID(ctx, 1, habit.ID)
	if err != nil {
		t.Fatalf("reload habit: %v", err)
	}
	if len(final.History) != 1 || final.Completions != 1 || final.CurrentStreak != 1 {
		t.Fatalf("state after conflicting toggles: %+v", final)
	}
}

func TestHabitToggleOffDeletesHistoryRow(t *testing.T) {
	db := testDB(t)
	repo := NewHabitRepository(db)
	ctx := context.Background()

	habit := &model.Habit{UserID: 1, Name: "Reading", Version: 1}
	if err := repo.Create(ctx, habit); err != nil {
		t.Fatalf("create habit: %v", err)
	}

	today := day(2024, time.March, 10)
	loaded, _ := repo.FindByID(ctx, 1, habit.ID)
	added := loaded.ToggleCompletion(today)
	if err := repo.SaveToggle(ctx, loaded, added, today); err != nil {
		t.Fatalf("toggle on: %v", err)
	}

	loaded, _ = repo.FindByID(ctx, 1, habit.ID)
	added = loaded.ToggleCompletion(today)
	if added {
		t.Fatalf("expected toggle off")
	}
	if err := repo.SaveToggle(ctx, loaded, added, today); err != nil {
		t.Fatalf("toggle off: %v", err)
	}

	final, _ := repo.FindByID(ctx, 1, habit.ID)
	if len(final.History) != 0 || final.Completions != 0 || final.CurrentStreak != 0 {
		t.Fatalf("state after toggle off: %+v", final)
	}
}

func TestDayNoteUpsertKeepsOneRowPerDay(t *testing.T) {
	db := testDB(t)
	repo := NewDayNoteRepository(db)
	ctx := context.Background()

	target := day(2024, time.May, 5)
	note := &model.DayNote{UserID: 1, Date: target, Note: "draft"}
	if err := repo.Upsert(ctx, note); err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	again := &model.DayNote{UserID: 1, Date: target, Note: "final", Reflection: "ok"}
	if err := repo.Upsert(ctx, again); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if again.ID != note.ID {
		t.Fatalf("upsert created a new row: %d vs %d", again.ID, note.ID)
	}

	found, err := repo.FindByDay(ctx, 1, target)
	if err != nil {
		t.Fatalf("find note: %v", err)
	}
	if found.Note != "final" || found.Reflection != "ok" {
		t.Fatalf("note not updated: %+v", found)
	}
}
