package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TaskKind selects the completion payload a task carries.
type TaskKind string

const (
	KindBinary TaskKind = "binary" // done / not done
	KindCount  TaskKind = "count"  // done N times, quantity > 0
	KindValue  TaskKind = "value"  // numeric measurement
)

// Priority levels for tasks.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// TagList stores free-form tags as a comma-separated column value.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if len(t) == 0 {
		return nil, nil
	}
	return strings.Join(t, ","), nil
}

func (t *TagList) Scan(value interface{}) error {
	if value == nil {
		*t = nil
		return nil
	}
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan tag list: unsupported type %T", value)
	}
	if raw == "" {
		*t = nil
		return nil
	}
	*t = strings.Split(raw, ",")
	return nil
}

// Task is a single planner item. A row is either a recurring template
// (IsRecurring set, Date is the recurrence anchor, never completed itself),
// a materialized instance of a template (ParentTaskID set), or a plain
// one-off task. The composite unique index on (user_id, parent_task_id,
// date) guarantees at most one instance per template per calendar day.
type Task struct {
	ID              uint `gorm:"primaryKey"`
	UserID          uint `gorm:"index;index:idx_task_occurrence,unique"`
	Title           string
	Description     string
	Date            time.Time `gorm:"index;index:idx_task_occurrence,unique"`
	Kind            TaskKind  `gorm:"default:binary"`
	Quantity        *int
	Value           *float64
	Completed       bool `gorm:"default:false"`
	CompletedAt     *time.Time
	IsRecurring     bool       `gorm:"default:false;index"`
	Repeat          RepeatSpec `gorm:"embedded"`
	ParentTaskID    *uint      `gorm:"index;index:idx_task_occurrence,unique"`
	Priority        string     `gorm:"default:medium"`
	Tags            TagList    `gorm:"type:text"`
	ReminderEnabled bool       `gorm:"default:false"`
	ReminderTime    *time.Time
	Duration        *int // minutes
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// ValidateKind checks that the kind-specific payload is consistent:
// count tasks need a positive quantity, value tasks need a value, and
// binary tasks carry neither.
func (t *Task) ValidateKind() error {
	switch t.Kind {
	case KindBinary:
		if t.Quantity != nil || t.Value != nil {
			return fmt.Errorf("binary task carries no quantity or value")
		}
	case KindCount:
		if t.Quantity == nil || *t.Quantity <= 0 {
			return fmt.Errorf("count task requires a positive quantity")
		}
		if t.Value != nil {
			return fmt.Errorf("count task carries no value")
		}
	case KindValue:
		if t.Value == nil {
			return fmt.Errorf("value task requires a value")
		}
		if t.Quantity != nil {
			return fmt.Errorf("value task carries no quantity")
		}
	default:
		return fmt.Errorf("unknown task kind %q", t.Kind)
	}
	return nil
}

// Instantiate builds the concrete instance of a recurring template for the
// given day, copying the descriptive fields and resetting completion state.
func (t *Task) Instantiate(day time.Time) *Task {
	parentID := t.ID
	inst := &Task{
		UserID:          t.UserID,
		Title:           t.Title,
		Description:     t.Description,
		Date:            DayOf(day),
		Kind:            t.Kind,
		Completed:       false,
		IsRecurring:     false,
		ParentTaskID:    &parentID,
		Priority:        t.Priority,
		ReminderEnabled: t.ReminderEnabled,
		ReminderTime:    t.ReminderTime,
	}
	if t.Quantity != nil {
		q := *t.Quantity
		inst.Quantity = &q
	}
	if t.Value != nil {
		v := *t.Value
		inst.Value = &v
	}
	if t.Duration != nil {
		d := *t.Duration
		inst.Duration = &d
	}
	if len(t.Tags) > 0 {
		inst.Tags = append(TagList(nil), t.Tags...)
	}
	return inst
}

// Contribution returns how much a completed task adds toward a goal:
// 1 for binary, the quantity for count, the value for value tasks.
func (t *Task) Contribution() float64 {
	if !t.Completed {
		return 0
	}
	switch t.Kind {
	case KindBinary:
		return 1
	case KindCount:
		if t.Quantity != nil {
			return float64(*t.Quantity)
		}
	case KindValue:
		if t.Value != nil {
			return *t.Value
		}
	}
	return 0
}
