package model

import "time"

// DayNote holds free-text notes for one calendar day. The unique index on
// (user_id, date) keeps a single note per user per day.
type DayNote struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index:idx_user_day_note,unique"`
	Date       time.Time `gorm:"index:idx_user_day_note,unique"`
	Note       string
	Reflection string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
