package model

import (
	"sort"
	"time"
)

// Habit frequency and metadata enumerations.
const (
	HabitFreqDaily    = "daily"
	HabitFreqWeekdays = "weekdays"
	HabitFreqWeekly   = "weekly"

	TimeOfDayMorning   = "morning"
	TimeOfDayAfternoon = "afternoon"
	TimeOfDayEvening   = "evening"
	TimeOfDayAnytime   = "anytime"

	GoalNone    = "none"
	GoalMonthly = "monthly"
	GoalYearly  = "yearly"
	GoalCustom  = "custom"
)

// HabitCompletion is one day's check-in. The unique index on
// (habit_id, date) keeps at most one entry per calendar day.
type HabitCompletion struct {
	ID        uint      `gorm:"primaryKey"`
	HabitID   uint      `gorm:"index;index:idx_habit_completion_day,unique"`
	Date      time.Time `gorm:"index:idx_habit_completion_day,unique"`
	Completed bool      `gorm:"default:true"`
	CreatedAt time.Time
}

// Habit tracks a recurring personal commitment with streak counters derived
// from its completion history. Version guards concurrent toggles.
type Habit struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"index"`
	Name          string
	Description   string
	Frequency     string `gorm:"default:daily"`
	TimeOfDay     string `gorm:"default:anytime"`
	GoalType      string `gorm:"default:none"`
	GoalTarget    *int
	GoalDate      *time.Time
	CurrentStreak int `gorm:"default:0"`
	LongestStreak int `gorm:"default:0"`
	Completions   int `gorm:"default:0"`
	Version       int `gorm:"default:1"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	History []HabitCompletion `gorm:"foreignKey:HabitID;constraint:OnDelete:CASCADE"`
}

// CompletedOn reports whether the habit has a completion entry for the
// given calendar day.
func (h *Habit) CompletedOn(day time.Time) bool {
	for _, e := range h.History {
		if SameDay(e.Date, day) {
			return true
		}
	}
	return false
}

// ToggleCompletion flips today's check-in and updates the streak counters.
// It returns true when an entry was added and false when removed.
//
// Removing today's entry collapses the current streak to zero rather than
// recomputing it from yesterday backward; the longest streak is preserved.
// Adding an entry recomputes the current streak by walking back from today
// one day at a time until the first gap. The history slice is replaced, not
// mutated in place.
func (h *Habit) ToggleCompletion(today time.Time) bool {
	day := DayOf(today)

	existing := -1
	for i, e := range h.History {
		if SameDay(e.Date, day) {
			existing = i
			break
		}
	}

	if existing >= 0 {
		history := make([]HabitCompletion, 0, len(h.History)-1)
		history = append(history, h.History[:existing]...)
		history = append(history, h.History[existing+1:]...)
		h.History = history
		if h.Completions > 0 {
			h.Completions--
		}
		h.CurrentStreak = 0
		return false
	}

	history := make([]HabitCompletion, 0, len(h.History)+1)
	history = append(history, h.History...)
	history = append(history, HabitCompletion{HabitID: h.ID, Date: day, Completed: true})
	h.History = history
	h.Completions++

	sorted := make([]HabitCompletion, 0, len(history))
	for _, e := range history {
		if e.Completed {
			sorted = append(sorted, e)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	streak := 0
	cursor := day
	for _, e := range sorted {
		if !SameDay(e.Date, cursor) {
			break
		}
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	h.CurrentStreak = streak
	if streak > h.LongestStreak {
		h.LongestStreak = streak
	}
	return true
}
