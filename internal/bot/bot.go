package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"habit-planner/internal/model"
	"habit-planner/internal/repository"
	"habit-planner/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageTitle
	stageDescription
	stageDate
	stageKind
	stageQuantity
	stageValue
	stageRepeat
	stageRepeatInterval
	stageRepeatDays
)

const (
	btnSkip   = "⏭️ Пропустить"
	btnCancel = "⏪ Отменить ввод"
)

var weekdayNames = [7]string{"вс", "пн", "вт", "ср", "чт", "пт", "сб"}

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

// Bot aggregates Telegram API with the planner services.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	taskSvc       *service.TaskService
	plannerSvc    *service.PlannerService
	habitSvc      *service.HabitService
	noteSvc       *service.DayNoteService
	reminderSvc   *service.ReminderService
	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(
	token string,
	userRepo *repository.UserRepository,
	taskSvc *service.TaskService,
	plannerSvc *service.PlannerService,
	habitSvc *service.HabitService,
	noteSvc *service.DayNoteService,
	reminderSvc *service.ReminderService,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		taskSvc:       taskSvc,
		plannerSvc:    plannerSvc,
		habitSvc:      habitSvc,
		noteSvc:       noteSvc,
		reminderSvc:   reminderSvc,
		conversations: make(map[int64]*conversationState),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
			continue
		}
		if err := b.handleMessage(ctx, update.Message); err != nil {
			log.Printf("handle message: %v", err)
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && strings.TrimSpace(msg.Text) == btnCancel {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог создания задачи отменён.")
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "Я пока не понял сообщение. Набери /newtask, чтобы добавить задачу, или /help для списка команд.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "today":
		return b.handleToday(ctx, msg, time.Now())
	case "day":
		return b.handleDay(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "complete":
		return b.handleComplete(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "habits":
		return b.handleHabits(ctx, msg)
	case "newhabit":
		return b.handleNewHabit(ctx, msg)
	case "habit":
		return b.handleToggleHabit(ctx, msg)
	case "note":
		return b.handleNote(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Диалог создания задачи отменён.")
	default:
		return b.sendText(msg.Chat.ID, "Команда не поддерживается. Загляни в /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "друг"
	}

	text := fmt.Sprintf(
		"👋 Привет, %s!\n<b>Я планировщик привычек: помогу не терять серии и не забывать задачи.</b>\n\nКоманды:\n"+
			"• /today — план на сегодня\n"+
			"• /newtask — добавить задачу (можно повторяющуюся)\n"+
			"• /complete &lt;id&gt; — отметить задачу выполненной\n"+
			"• /habits — привычки и серии\n"+
			"• /newhabit &lt;название&gt; — завести привычку\n"+
			"• /habit &lt;id&gt; — отметить привычку за сегодня\n"+
			"• /note &lt;текст&gt; — заметка дня\n"+
			"• /help — подсказки",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Подсказки</b>\n" +
		"• /today — задачи и заметка на сегодня (повторы подставятся сами)\n" +
		"• /day 2025-11-30 — план на конкретную дату\n" +
		"• /newtask — добавить задачу пошагово\n" +
		"• /complete &lt;id&gt; — отметить/снять выполнение задачи\n" +
		"• /delete &lt;id&gt; — удалить задачу (шаблон повторения — тоже)\n" +
		"• /habits — список привычек с сериями\n" +
		"• /newhabit Медитация — завести привычку\n" +
		"• /habit &lt;id&gt; — отметить или снять отметку за сегодня\n" +
		"• /note Сегодня получилось — записать заметку дня\n" +
		"• /report — дневная сводка\n" +
		"• /cancel — отменить текущий ввод"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleToday(ctx context.Context, msg *tgbotapi.Message, now time.Time) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendDayPlan(ctx, msg.Chat.ID, user, now)
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Укажи дату: /day 2025-11-30")
	}
	day, err := time.ParseInLocation("2006-01-02", args, time.Local)
	if err != nil {
		return b.sendText(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code>.")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendDayPlan(ctx, msg.Chat.ID, user, day)
}

func (b *Bot) sendDayPlan(ctx context.Context, chatID int64, user *model.User, day time.Time) error {
	plan, err := b.plannerSvc.DayPlan(ctx, user.ID, day)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Не удалось собрать план: %s", escape(err.Error())))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 <b>План на %s</b>\n\n", plan.Date.Format("02.01.2006")))

	if len(plan.Tasks) == 0 {
		sb.WriteString("— задач нет\n")
	}
	for _, task := range plan.Tasks {
		icon := "⬜️"
		if task.Completed {
			icon = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%d.</b> %s", icon, task.ID, escape(strings.TrimSpace(task.Title))))
		switch task.Kind {
		case model.KindCount:
			if task.Quantity != nil {
				sb.WriteString(fmt.Sprintf(" ×%d", *task.Quantity))
			}
		case model.KindValue:
			if task.Value != nil {
				sb.WriteString(fmt.Sprintf(" (%g)", *task.Value))
			}
		}
		if task.IsRecurring {
			sb.WriteString(" — 🔁 шаблон")
		} else if task.ParentTaskID != nil {
			sb.WriteString(" ♻️")
		}
		sb.WriteByte('\n')
	}

	if plan.Note != nil && strings.TrimSpace(plan.Note.Note) != "" {
		sb.WriteString(fmt.Sprintf("\n📝 %s\n", escape(plan.Note.Note)))
	}

	return b.sendText(chatID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleComplete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, ok := parseID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /complete 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.ToggleTaskCompletion(ctx, user, taskID, time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return b.sendText(msg.Chat.ID, "Задача не найдена.")
		case errors.Is(err, service.ErrInvalidInput):
			return b.sendText(msg.Chat.ID, "Это шаблон повторения — отмечай его дневные копии из /today.")
		default:
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
		}
	}

	if task.Completed {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Задача «%s» выполнена.", escape(task.Title)))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ Отметка с задачи «%s» снята.", escape(task.Title)))
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	taskID, ok := parseID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Укажи ID задачи: /delete 12")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if err := b.taskSvc.DeleteTask(ctx, user, taskID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(msg.Chat.ID, "Задача не найдена.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "🗑 Задача удалена. Уже созданные дневные копии остались в плане.")
}

func (b *Bot) handleHabits(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	habits, err := b.habitSvc.ListHabits(ctx, user)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось получить привычки: %s", escape(err.Error())))
	}
	if len(habits) == 0 {
		return b.sendText(msg.Chat.ID, "Привычек пока нет. Заведи первую: /newhabit Медитация")
	}

	now := time.Now()
	var sb strings.Builder
	sb.WriteString("💪 <b>Привычки</b>\n")
	for _, habit := range habits {
		icon := "⬜️"
		if habit.CompletedOn(now) {
			icon = "✅"
		}
		sb.WriteString(fmt.Sprintf("%s <b>%d.</b> %s — серия %d, рекорд %d, всего %d\n",
			icon, habit.ID, escape(habit.Name), habit.CurrentStreak, habit.LongestStreak, habit.Completions))
	}
	sb.WriteString("\nОтметить за сегодня: /habit <id>")
	return b.sendText(msg.Chat.ID, strings.TrimSpace(sb.String()))
}

func (b *Bot) handleNewHabit(ctx context.Context, msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.CommandArguments())
	if name == "" {
		return b.sendText(msg.Chat.ID, "Укажи название: /newhabit Медитация")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	habit, err := b.habitSvc.CreateHabit(ctx, user, service.HabitInput{Name: name})
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сохранить привычку: %s", escape(err.Error())))
	}

	log.Printf("[info] habit created id=%d user=%d", habit.ID, user.ID)
	return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ Привычка «%s» заведена (ID %d). Отмечай её командой /habit %d.",
		escape(habit.Name), habit.ID, habit.ID))
}

func (b *Bot) handleToggleHabit(ctx context.Context, msg *tgbotapi.Message) error {
	habitID, ok := parseID(msg.CommandArguments())
	if !ok {
		return b.sendText(msg.Chat.ID, "Укажи ID привычки: /habit 3")
	}

	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	habit, err := b.habitSvc.ToggleCompletion(ctx, user, habitID, time.Now())
	if errors.Is(err, service.ErrConcurrentModification) {
		// Somebody else just toggled the same habit; one retry is enough.
		habit, err = b.habitSvc.ToggleCompletion(ctx, user, habitID, time.Now())
	}
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return b.sendText(msg.Chat.ID, "Привычка не найдена.")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
	}

	if habit.CompletedOn(time.Now()) {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("✅ «%s» отмечена. Серия: %d дн. (рекорд %d).",
			escape(habit.Name), habit.CurrentStreak, habit.LongestStreak))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("↩️ Отметка с «%s» снята. Серия обнулена, рекорд %d сохранён.",
		escape(habit.Name), habit.LongestStreak))
}

func (b *Bot) handleNote(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		note, err := b.noteSvc.GetNote(ctx, user, time.Now())
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Ошибка: %s", escape(err.Error())))
		}
		if note == nil || strings.TrimSpace(note.Note) == "" {
			return b.sendText(msg.Chat.ID, "Заметки на сегодня нет. Добавь: /note Сегодня получилось")
		}
		return b.sendText(msg.Chat.ID, fmt.Sprintf("📝 %s", escape(note.Note)))
	}

	if _, err := b.noteSvc.UpsertNote(ctx, user, time.Now(), text, ""); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сохранить заметку: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "📝 Заметка дня сохранена.")
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.reminderSvc.DailySummary(ctx, *user, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Не удалось сформировать сводку: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	log.Printf("[info] start new task conversation user=%d", msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 Создаём новую задачу.\n<b>Шаг 1:</b> как её назвать?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Название не может быть пустым. Как назвать задачу?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "✏️ Добавь короткое описание (или нажми «Пропустить»).", skipKeyboard())
	case stageDescription:
		if !isSkipInput(text) {
			state.input.Description = text
		}
		state.stage = stageDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📅 На какую дату? Формат <code>2025-11-30</code> («Пропустить» = сегодня).", skipKeyboard())
	case stageDate:
		if isSkipInput(text) {
			state.input.Date = time.Now()
		} else {
			parsed, err := time.ParseInLocation("2006-01-02", text, time.Local)
			if err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Не могу распознать дату. Используй формат <code>2025-11-30</code> или «Пропустить».", skipKeyboard())
			}
			state.input.Date = parsed
		}
		state.stage = stageKind
		return b.sendWithReplyMarkup(msg.Chat.ID, "📐 Какого типа задача?", choiceKeyboard("обычная", "количество", "значение"))
	case stageKind:
		switch strings.ToLower(text) {
		case "обычная", "binary", "":
			state.input.Kind = model.KindBinary
			state.stage = stageRepeat
			return b.askRepeat(msg.Chat.ID)
		case "количество", "count":
			state.input.Kind = model.KindCount
			state.stage = stageQuantity
			return b.sendWithReplyMarkup(msg.Chat.ID, "🔢 Сколько раз? (целое число больше нуля)", cancelKeyboard())
		case "значение", "value":
			state.input.Kind = model.KindValue
			state.stage = stageValue
			return b.sendWithReplyMarkup(msg.Chat.ID, "📈 Какое значение записать? (число)", cancelKeyboard())
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Выбери один из вариантов.", choiceKeyboard("обычная", "количество", "значение"))
		}
	case stageQuantity:
		qty, err := strconv.Atoi(text)
		if err != nil || qty <= 0 {
			return b.sendText(msg.Chat.ID, "Количество должно быть целым числом больше нуля.")
		}
		state.input.Quantity = &qty
		state.stage = stageRepeat
		return b.askRepeat(msg.Chat.ID)
	case stageValue:
		val, err := strconv.ParseFloat(strings.ReplaceAll(text, ",", "."), 64)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Значение должно быть числом.")
		}
		state.input.Value = &val
		state.stage = stageRepeat
		return b.askRepeat(msg.Chat.ID)
	case stageRepeat:
		freq, repeats := parseFrequency(text)
		if !repeats {
			if strings.EqualFold(text, "нет") || isSkipInput(text) {
				err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
				b.clearConversation(msg.From.ID)
				return err
			}
			return b.askRepeat(msg.Chat.ID)
		}
		state.input.Repeat = &model.RepeatSpec{Frequency: freq, Interval: 1}
		state.stage = stageRepeatInterval
		return b.sendWithReplyMarkup(msg.Chat.ID, "🔁 С каким интервалом? 1 — каждый раз, 2 — через раз («Пропустить» = 1).", skipKeyboard())
	case stageRepeatInterval:
		if !isSkipInput(text) {
			interval, err := strconv.Atoi(text)
			if err != nil || interval < 1 {
				return b.sendText(msg.Chat.ID, "Интервал должен быть целым числом от 1.")
			}
			state.input.Repeat.Interval = interval
		}
		if state.input.Repeat.Frequency == model.FreqWeekly {
			state.stage = stageRepeatDays
			return b.sendWithReplyMarkup(msg.Chat.ID, "📆 По каким дням недели? Перечисли через запятую: пн,ср,пт", cancelKeyboard())
		}
		err := b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	case stageRepeatDays:
		days, err := parseWeekdays(text)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Не понял дни. Пример: пн,ср,пт")
		}
		state.input.Repeat.DaysOfWeek = days
		err = b.finishTaskCreation(ctx, msg.From, state.input, msg.Chat.ID)
		b.clearConversation(msg.From.ID)
		return err
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Диалог сброшен. Попробуй ещё раз через /newtask.")
	}
}

func (b *Bot) askRepeat(chatID int64) error {
	return b.sendWithReplyMarkup(chatID,
		"🔁 Повторять задачу?",
		choiceKeyboard("нет", "ежедневно", "по будням", "еженедельно", "ежемесячно"))
}

func (b *Bot) finishTaskCreation(ctx context.Context, from *tgbotapi.User, input service.TaskInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	task, err := b.taskSvc.CreateTask(ctx, user, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Не удалось сохранить задачу: %s", escape(err.Error())))
	}

	log.Printf("[info] task created id=%d user=%d recurring=%t", task.ID, user.ID, task.IsRecurring)

	var summary strings.Builder
	summary.WriteString("✅ <b>Задача сохранена</b>\n")
	summary.WriteString(fmt.Sprintf("• <b>ID:</b> %d\n", task.ID))
	summary.WriteString(fmt.Sprintf("• <b>Название:</b> %s\n", escape(task.Title)))
	if task.Description != "" {
		summary.WriteString(fmt.Sprintf("• <b>Описание:</b> %s\n", escape(task.Description)))
	}
	summary.WriteString(fmt.Sprintf("• <b>Дата:</b> %s\n", task.Date.Format("2006-01-02")))
	if task.IsRecurring {
		summary.WriteString(fmt.Sprintf("• <b>Повтор:</b> %s, интервал %d\n",
			frequencyLabel(task.Repeat.Frequency), task.Repeat.Interval))
	}

	return b.sendTextWithRemove(chatID, strings.TrimSpace(summary.String()))
}

// SendDailyReports sends a summary to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.userRepo.ListAll(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.reminderSvc.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func parseID(args string) (uint, bool) {
	raw := strings.TrimSpace(args)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func parseFrequency(text string) (model.Frequency, bool) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "ежедневно", "daily":
		return model.FreqDaily, true
	case "по будням", "будни", "weekdays":
		return model.FreqWeekdays, true
	case "еженедельно", "weekly":
		return model.FreqWeekly, true
	case "ежемесячно", "monthly":
		return model.FreqMonthly, true
	default:
		return "", false
	}
}

func frequencyLabel(freq model.Frequency) string {
	switch freq {
	case model.FreqDaily:
		return "ежедневно"
	case model.FreqWeekdays:
		return "по будням"
	case model.FreqWeekly:
		return "еженедельно"
	case model.FreqMonthly:
		return "ежемесячно"
	default:
		return string(freq)
	}
}

func parseWeekdays(text string) (model.WeekdaySet, error) {
	parts := strings.Split(text, ",")
	var days model.WeekdaySet
	for _, part := range parts {
		name := strings.ToLower(strings.TrimSpace(part))
		found := -1
		for i, label := range weekdayNames {
			if name == label {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if !days.Contains(found) {
			days = append(days, found)
		}
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("empty weekday list")
	}
	return days, nil
}

func isSkipInput(text string) bool {
	return text == btnSkip || strings.EqualFold(text, "пропустить") || text == "-"
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)),
	)
}

func choiceKeyboard(labels ...string) tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(labels)+1)
	for _, label := range labels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnCancel)))
	return tgbotapi.NewReplyKeyboard(rows...)
}

func escape(s string) string {
	return html.EscapeString(s)
}
