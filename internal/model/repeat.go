package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Frequency enumerates supported recurrence frequencies.
type Frequency string

const (
	FreqDaily    Frequency = "daily"
	FreqWeekdays Frequency = "weekdays"
	FreqWeekly   Frequency = "weekly"
	FreqMonthly  Frequency = "monthly"
)

// WeekdaySet stores weekday indices (0 = Sunday … 6 = Saturday) as a
// comma-separated column value.
type WeekdaySet []int

func (s WeekdaySet) Contains(day int) bool {
	for _, d := range s {
		if d == day {
			return true
		}
	}
	return false
}

func (s WeekdaySet) Value() (driver.Value, error) {
	if len(s) == 0 {
		return nil, nil
	}
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ","), nil
}

func (s *WeekdaySet) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan weekday set: unsupported type %T", value)
	}
	if raw == "" {
		*s = nil
		return nil
	}
	parts := strings.Split(raw, ",")
	days := make(WeekdaySet, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("scan weekday set %q: %w", raw, err)
		}
		days = append(days, d)
	}
	*s = days
	return nil
}

// RepeatSpec describes how a recurring template produces occurrences.
// It is embedded into Task and only meaningful when IsRecurring is set.
type RepeatSpec struct {
	Frequency  Frequency  `gorm:"column:repeat_frequency"`
	Interval   int        `gorm:"column:repeat_interval;default:1"`
	EndDate    *time.Time `gorm:"column:repeat_end_date"`
	DaysOfWeek WeekdaySet `gorm:"column:repeat_days_of_week;type:text"`
}

// Validate checks the spec at construction time. Weekly specs must carry a
// non-empty day set; every spec needs a positive interval.
func (r RepeatSpec) Validate() error {
	if r.Interval < 1 {
		return fmt.Errorf("interval must be positive, got %d", r.Interval)
	}
	switch r.Frequency {
	case FreqDaily, FreqWeekdays, FreqMonthly:
		return nil
	case FreqWeekly:
		if len(r.DaysOfWeek) == 0 {
			return fmt.Errorf("weekly spec requires at least one day of week")
		}
		for _, d := range r.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("day of week %d out of range 0-6", d)
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown frequency %q", r.Frequency)
	}
}

// Matches reports whether the target day is an occurrence of this spec,
// measured from the anchor day. Both inputs are truncated to midnight.
// A target at or before the anchor never matches: recurrence only produces
// future occurrences.
func (r RepeatSpec) Matches(target, anchor time.Time) bool {
	target = DayOf(target)
	anchor = DayOf(anchor)
	if !target.After(anchor) {
		return false
	}

	interval := r.Interval
	if interval < 1 {
		interval = 1
	}
	daysSince := int(target.Sub(anchor).Hours() / 24)

	switch r.Frequency {
	case FreqDaily:
		return daysSince%interval == 0

	case FreqWeekdays:
		if wd := target.Weekday(); wd < time.Monday || wd > time.Friday {
			return false
		}
		// Count weekdays from the day after the anchor up to the target,
		// inclusive. Five weekdays make up one interval week.
		count := 0
		for d := anchor.AddDate(0, 0, 1); !d.After(target); d = d.AddDate(0, 0, 1) {
			if wd := d.Weekday(); wd >= time.Monday && wd <= time.Friday {
				count++
			}
		}
		return count > 0 && count%(interval*5) == 0

	case FreqWeekly:
		if !r.DaysOfWeek.Contains(int(target.Weekday())) {
			return false
		}
		weeksSince := daysSince / 7
		return weeksSince > 0 && weeksSince%interval == 0

	case FreqMonthly:
		if target.Day() != anchor.Day() {
			return false
		}
		monthsSince := (target.Year()-anchor.Year())*12 + int(target.Month()) - int(anchor.Month())
		return monthsSince > 0 && monthsSince%interval == 0
	}

	return false
}

// Expired reports whether the spec's end date lies before the given day.
func (r RepeatSpec) Expired(day time.Time) bool {
	return r.EndDate != nil && r.EndDate.Before(DayOf(day))
}
