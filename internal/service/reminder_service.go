package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"habit-planner/internal/model"
)

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	planner *PlannerService
	habits  HabitStore
}

func NewReminderService(planner *PlannerService, habits HabitStore) *ReminderService {
	return &ReminderService{planner: planner, habits: habits}
}

// DailySummary materializes today's plan for the user and renders it with
// the habit streaks as a Telegram HTML message.
func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	plan, err := s.planner.DayPlan(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	habits, err := s.habits.ListByUser(ctx, user.ID)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>План на день</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", plan.Date.Format("02.01.2006")))

	builder.WriteString("🔥 <b>Задачи</b>\n")
	if len(plan.Tasks) == 0 {
		builder.WriteString("— на сегодня задач нет\n")
	} else {
		for _, task := range plan.Tasks {
			builder.WriteString(formatTask(task))
		}
	}

	builder.WriteString("\n💪 <b>Привычки</b>\n")
	if len(habits) == 0 {
		builder.WriteString("— привычки пока не заведены\n")
	} else {
		for _, habit := range habits {
			builder.WriteString(formatHabit(habit, now))
		}
	}

	if plan.Note != nil && strings.TrimSpace(plan.Note.Note) != "" {
		builder.WriteString(fmt.Sprintf("\n📝 <b>Заметка дня</b>\n%s\n", escapeHTML(plan.Note.Note)))
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatTask(task model.Task) string {
	var sb strings.Builder

	icon := "⬜️"
	if task.Completed {
		icon = "✅"
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, escapeHTML(strings.TrimSpace(task.Title))))

	switch task.Kind {
	case model.KindCount:
		if task.Quantity != nil {
			sb.WriteString(fmt.Sprintf(" <i>(×%d)</i>", *task.Quantity))
		}
	case model.KindValue:
		if task.Value != nil {
			sb.WriteString(fmt.Sprintf(" <i>(%g)</i>", *task.Value))
		}
	}

	if task.Priority == model.PriorityHigh {
		sb.WriteString(" ❗")
	}
	if task.ParentTaskID != nil {
		sb.WriteString(" ♻️")
	}
	if task.Duration != nil {
		sb.WriteString(fmt.Sprintf(" · %d мин", *task.Duration))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func formatHabit(habit model.Habit, now time.Time) string {
	var sb strings.Builder

	icon := "⬜️"
	if habit.CompletedOn(now) {
		icon = "✅"
	}
	sb.WriteString(fmt.Sprintf("%s %s", icon, escapeHTML(strings.TrimSpace(habit.Name))))
	if habit.CurrentStreak > 0 {
		sb.WriteString(fmt.Sprintf(" — серия %d дн.", habit.CurrentStreak))
	}
	if habit.LongestStreak > habit.CurrentStreak {
		sb.WriteString(fmt.Sprintf(" (рекорд %d)", habit.LongestStreak))
	}

	sb.WriteByte('\n')
	return sb.String()
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}
