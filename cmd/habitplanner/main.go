package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"habit-planner/internal/bot"
	"habit-planner/internal/config"
	"habit-planner/internal/repository"
	"habit-planner/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	habitRepo := repository.NewHabitRepository(db)
	noteRepo := repository.NewDayNoteRepository(db)

	taskSvc := service.NewTaskService(taskRepo)
	plannerSvc := service.NewPlannerService(taskRepo, noteRepo)
	habitSvc := service.NewHabitService(habitRepo)
	noteSvc := service.NewDayNoteService(noteRepo)
	reminderSvc := service.NewReminderService(plannerSvc, habitRepo)

	planner, err := bot.New(cfg.TelegramToken, userRepo, taskSvc, plannerSvc, habitSvc, noteSvc, reminderSvc)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}

	scheduler := service.NewSchedulerService(time.Local)
	if _, err := scheduler.ScheduleDaily(cfg.ReportTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := planner.SendDailyReports(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("report: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule reports: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	log.Println("Habit planner bot started.")
	if err := planner.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
