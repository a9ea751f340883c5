package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/model"
	"habit-planner/internal/repository"
)

// In-memory store fakes backing the service tests. They mimic the gorm
// repositories' contract: gorm.ErrRecordNotFound for misses,
// repository.ErrDuplicateInstance for occurrence collisions and
// repository.ErrVersionConflict for lost optimistic races.

type fakeTaskStore struct {
	mu     sync.Mutex
	nextID uint
	seq    int
	tasks  map[uint]model.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{nextID: 1, tasks: make(map[uint]model.Task)}
}

func (f *fakeTaskStore) put(task *model.Task) {
	task.ID = f.nextID
	f.nextID++
	f.seq++
	// Spread creation times so newest-first ordering is observable.
	task.CreatedAt = time.Date(2024, time.January, 1, 0, 0, f.seq, 0, time.Local)
	f.tasks[task.ID] = *task
}

func (f *fakeTaskStore) Create(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.put(task)
	return nil
}

func (f *fakeTaskStore) FindByID(_ context.Context, userID, taskID uint) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	out := task
	return &out, nil
}

func (f *fakeTaskStore) ListTemplates(_ context.Context, userID uint, anchorNotAfter time.Time) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, task := range f.tasks {
		if task.UserID == userID && task.IsRecurring && !task.Date.After(anchorNotAfter) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTaskStore) FindInstance(_ context.Context, userID, templateID uint, day time.Time) (*model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, task := range f.tasks {
		if task.UserID == userID && task.ParentTaskID != nil && *task.ParentTaskID == templateID &&
			model.SameDay(task.Date, day) {
			out := task
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeTaskStore) CreateInstance(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.tasks {
		if existing.UserID == task.UserID &&
			existing.ParentTaskID != nil && task.ParentTaskID != nil &&
			*existing.ParentTaskID == *task.ParentTaskID &&
			model.SameDay(existing.Date, task.Date) {
			return repository.ErrDuplicateInstance
		}
	}
	f.put(task)
	return nil
}

func (f *fakeTaskStore) ListByDateRange(_ context.Context, userID uint, start, end time.Time) ([]model.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Task
	for _, task := range f.tasks {
		if task.UserID == userID && !task.Date.Before(start) && !task.Date.After(end) {
			out = append(out, task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeTaskStore) Save(_ context.Context, task *model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[task.ID] = *task
	return nil
}

func (f *fakeTaskStore) Delete(_ context.Context, userID, taskID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	task, ok := f.tasks[taskID]
	if !ok || task.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.tasks, taskID)
	return nil
}

type fakeHabitStore struct {
	mu     sync.Mutex
	nextID uint
	habits map[uint]model.Habit

	// forceConflicts makes the next N SaveToggle calls lose the version race.
	forceConflicts int
}

func newFakeHabitStore() *fakeHabitStore {
	return &fakeHabitStore{nextID: 1, habits: make(map[uint]model.Habit)}
}

func (f *fakeHabitStore) Create(_ context.Context, habit *model.Habit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	habit.ID = f.nextID
	f.nextID++
	f.habits[habit.ID] = cloneHabit(*habit)
	return nil
}

func cloneHabit(h model.Habit) model.Habit {
	out := h
	out.History = append([]model.HabitCompletion(nil), h.History...)
	return out
}

func (f *fakeHabitStore) FindByID(_ context.Context, userID, habitID uint) (*model.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	habit, ok := f.habits[habitID]
	if !ok || habit.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	out := cloneHabit(habit)
	return &out, nil
}

func (f *fakeHabitStore) ListByUser(_ context.Context, userID uint) ([]model.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Habit
	for _, habit := range f.habits {
		if habit.UserID == userID {
			out = append(out, cloneHabit(habit))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeHabitStore) Save(_ context.Context, habit *model.Habit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := f.habits[habit.ID]
	history := stored.History
	updated := cloneHabit(*habit)
	updated.History = history
	f.habits[habit.ID] = updated
	return nil
}

func (f *fakeHabitStore) SaveToggle(_ context.Context, habit *model.Habit, added bool, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.forceConflicts > 0 {
		f.forceConflicts--
		return repository.ErrVersionConflict
	}

	stored, ok := f.habits[habit.ID]
	if !ok || stored.Version != habit.Version {
		return repository.ErrVersionConflict
	}
	if added {
		for _, e := range stored.History {
			if model.SameDay(e.Date, day) {
				return repository.ErrVersionConflict
			}
		}
	}

	habit.Version++
	f.habits[habit.ID] = cloneHabit(*habit)
	return nil
}

func (f *fakeHabitStore) Delete(_ context.Context, userID, habitID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	habit, ok := f.habits[habitID]
	if !ok || habit.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	delete(f.habits, habitID)
	return nil
}

type fakeNoteStore struct {
	mu    sync.Mutex
	notes map[uint][]model.DayNote
}

func newFakeNoteStore() *fakeNoteStore {
	return &fakeNoteStore{notes: make(map[uint][]model.DayNote)}
}

func (f *fakeNoteStore) FindByDay(_ context.Context, userID uint, day time.Time) (*model.DayNote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, note := range f.notes[userID] {
		if model.SameDay(note.Date, day) {
			out := note
			return &out, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeNoteStore) Upsert(_ context.Context, note *model.DayNote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notes := f.notes[note.UserID]
	for i, existing := range notes {
		if model.SameDay(existing.Date, note.Date) {
			notes[i].Note = note.Note
			notes[i].Reflection = note.Reflection
			*note = notes[i]
			return nil
		}
	}
	note.ID = uint(len(notes) + 1)
	note.Date = model.DayOf(note.Date)
	f.notes[note.UserID] = append(notes, *note)
	return nil
}

func (f *fakeNoteStore) DeleteByDay(_ context.Context, userID uint, day time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	notes := f.notes[userID]
	for i, existing := range notes {
		if model.SameDay(existing.Date, day) {
			f.notes[userID] = append(notes[:i], notes[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}
