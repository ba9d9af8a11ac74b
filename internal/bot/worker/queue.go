// Package worker serializes every registry mutation onto a single goroutine.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
)

const defaultQueueSize = 256

// Task is one unit of work for the worker. Name is used in logs only.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

type Queue struct {
	tasks  chan Task
	logger *slog.Logger

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
}

func NewQueue(size int, logger *slog.Logger) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}

	return &Queue{
		tasks:  make(chan Task, size),
		logger: logger,
		timers: make(map[*time.Timer]struct{}),
	}
}

// Submit enqueues task without blocking. It returns false when the queue is
// full or already stopped.
func (q *Queue) Submit(task Task) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return false
	}

	select {
	case q.tasks <- task:
		metrics.QueueDepth.Set(float64(len(q.tasks)))
		return true
	default:
		q.logger.Warn("Очередь задач переполнена, задача отброшена", "task", task.Name)
		return false
	}
}

// Enqueue blocks until task is accepted or ctx is done.
func (q *Queue) Enqueue(ctx context.Context, task Task) error {
	select {
	case q.tasks <- task:
		metrics.QueueDepth.Set(float64(len(q.tasks)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Schedule submits task after delay. The task itself still runs on the worker.
func (q *Queue) Schedule(delay time.Duration, task Task) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped {
		return
	}

	var timer *time.Timer

	timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.timers, timer)
		q.mu.Unlock()

		if !q.Submit(task) {
			q.logger.Error("Не удалось поставить отложенную задачу в очередь", "task", task.Name)
		}
	})

	q.timers[timer] = struct{}{}

	q.logger.Debug("Задача отложена", "task", task.Name, "delay", delay.String())
}

// Pending returns the number of delayed tasks that have not fired yet.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.timers)
}

// Run executes tasks one at a time until ctx is cancelled. A task that is
// already running finishes first; tasks are never interrupted by shutdown.
func (q *Queue) Run(ctx context.Context) {
	q.logger.Info("Запуск обработчика очереди", "capacity", cap(q.tasks))

	taskCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			q.stop()
			return
		case task := <-q.tasks:
			metrics.QueueDepth.Set(float64(len(q.tasks)))
			q.execute(taskCtx, task)
		}
	}
}

func (q *Queue) execute(ctx context.Context, task Task) {
	start := time.Now()

	if err := task.Run(ctx); err != nil {
		q.logger.Error("Ошибка при выполнении задачи",
			"task", task.Name,
			"error", err,
			"duration", time.Since(start).String(),
		)

		return
	}

	q.logger.Debug("Задача выполнена", "task", task.Name, "duration", time.Since(start).String())
}

func (q *Queue) stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true

	for timer := range q.timers {
		timer.Stop()
	}

	q.timers = make(map[*time.Timer]struct{})

	q.logger.Info("Обработчик очереди остановлен", "dropped", len(q.tasks))
}
