package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/worker"
)

type Jobs interface {
	RefreshDirectory(ctx context.Context) error
	RemindStaleGroup(ctx context.Context) error
}

type TaskSubmitter interface {
	Submit(task worker.Task) bool
}

type Config struct {
	RefreshInterval time.Duration
	ReminderEnabled bool
	// ReminderTime is "HH:MM" in UTC.
	ReminderTime string
}

// Scheduler fires periodic jobs. Jobs never run on the gocron goroutines; they
// are submitted to the worker queue so registry access stays serialized.
type Scheduler struct {
	scheduler *gocron.Scheduler
	jobs      Jobs
	queue     TaskSubmitter
	cfg       Config
	logger    *slog.Logger
}

func NewScheduler(jobs Jobs, queue TaskSubmitter, cfg Config, logger *slog.Logger) *Scheduler {
	scheduler := gocron.NewScheduler(time.UTC)

	return &Scheduler{
		scheduler: scheduler,
		jobs:      jobs,
		queue:     queue,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Scheduler) Start() error {
	s.logger.Info("Запуск планировщика",
		"refresh_interval", s.cfg.RefreshInterval.String(),
		"reminder_enabled", s.cfg.ReminderEnabled,
		"reminder_time", s.cfg.ReminderTime,
	)

	if s.cfg.RefreshInterval > 0 {
		_, err := s.scheduler.Every(s.cfg.RefreshInterval).WaitForSchedule().Do(s.submit, "refresh_directory", s.jobs.RefreshDirectory)
		if err != nil {
			s.logger.Error("Ошибка при настройке обновления справочника", "error", err)
			return err
		}
	}

	if s.cfg.ReminderEnabled {
		_, err := s.scheduler.Every(1).Day().At(s.cfg.ReminderTime).Do(s.submit, "remind_stale_group", s.jobs.RemindStaleGroup)
		if err != nil {
			s.logger.Error("Ошибка при настройке напоминаний", "error", err, "time", s.cfg.ReminderTime)
			return err
		}
	}

	s.scheduler.StartAsync()

	return nil
}

func (s *Scheduler) Stop() {
	s.logger.Info("Остановка планировщика")
	s.scheduler.Stop()
}

func (s *Scheduler) submit(name string, job func(ctx context.Context) error) {
	s.logger.Debug("Плановая задача", "task", name)

	if !s.queue.Submit(worker.Task{Name: name, Run: job}) {
		s.logger.Warn("Плановая задача не поставлена в очередь", "task", name)
	}
}
