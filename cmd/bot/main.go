package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/multierr"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/clients"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/directory"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/events"
	bothandler "github.com/central-university-dev/go-hhh-bot/internal/bot/handler"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/repository"
	botservice "github.com/central-university-dev/go-hhh-bot/internal/bot/service"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/telegram"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/worker"
	"github.com/central-university-dev/go-hhh-bot/internal/common/metrics"
	"github.com/central-university-dev/go-hhh-bot/internal/common/ratelimit"
	"github.com/central-university-dev/go-hhh-bot/internal/config"
	"github.com/central-university-dev/go-hhh-bot/internal/scheduler"
	"github.com/central-university-dev/go-hhh-bot/pkg"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка запуска бота: %v\n", err)
		os.Exit(1)
	}
}

//nolint:funlen // Длина функции обусловлена необходимостью последовательной инициализации всех компонентов.
func run() error {
	cfg := config.LoadConfig()

	appLogger := pkg.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(appLogger)

	if err := tgbotapi.SetLogger(pkg.NewBotLogger(appLogger)); err != nil {
		appLogger.Warn("Не удалось перенаправить логгер Telegram API", "error", err)
	}

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Некорректная конфигурация", "error", err)
		return err
	}

	mainAdmins, err := cfg.MainAdminIDs()
	if err != nil {
		appLogger.Error("Ошибка при разборе MAIN_ADMIN_IDS, список главных администраторов пуст", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := repository.NewFactory(cfg, appLogger).CreateStateStore(ctx)
	if err != nil {
		appLogger.Error("Ошибка при создании хранилища состояния", "error", err)
		return fmt.Errorf("ошибка создания хранилища состояния: %w", err)
	}

	st, err := botservice.Load(ctx, backend.Store, appLogger)
	if err != nil {
		_ = backend.Close()
		return fmt.Errorf("ошибка загрузки состояния: %w", err)
	}

	limiter := ratelimit.NewKeyedLimiter(cfg.TelegramChatRate, cfg.TelegramGlobalRate)
	go limiter.Run(ctx)

	// getUpdates holds the connection for up to a minute.
	telegramClient, err := clients.NewTelegramClient(cfg.TelegramBotToken, "",
		&http.Client{Timeout: cfg.ExternalRequestTimeout + time.Minute}, limiter, appLogger)
	if err != nil {
		_ = backend.Close()
		return err
	}

	if err := telegramClient.SetMyCommands(ctx, botservice.Commands()); err != nil {
		appLogger.Error("Ошибка при регистрации команд бота", "error", err)
	} else {
		appLogger.Info("Команды бота успешно зарегистрированы")
	}

	publisher := newPublisher(cfg, appLogger)

	dir := directory.NewService(
		directory.NewRenderer(),
		directory.NewReconciler(telegramClient, appLogger),
		publisher,
		appLogger,
	)

	queue := worker.NewQueue(cfg.WorkerQueueSize, appLogger)

	botService := botservice.NewBotService(st, telegramClient, dir, clients.NewImageClient(cfg, appLogger), queue,
		botservice.Options{
			Version:         cfg.AppVersion,
			MuteDuration:    cfg.MuteCooldown,
			KickBanDuration: cfg.KickBanDuration,
			ReminderAge:     time.Duration(cfg.ReminderAgeThresholdDays) * 24 * time.Hour,
		}, appLogger)

	middlewares := bothandler.NewMiddlewares(st, telegramClient, botService, botService, mainAdmins,
		cfg.MuteCooldown, appLogger)

	botHandler := bothandler.NewBotHandler(middlewares, bothandler.Routes(botService),
		bothandler.EventRoutes(botService), appLogger)

	queueDone := make(chan struct{})
	queueCtx, cancelQueue := context.WithCancel(context.WithoutCancel(ctx))

	go func() {
		defer close(queueDone)
		queue.Run(queueCtx)
	}()

	poller := telegram.NewPoller(telegramClient.Bot(), queue, botHandler, appLogger)
	poller.Start(ctx)

	jobs := scheduler.NewScheduler(botService, queue, scheduler.Config{
		RefreshInterval: cfg.DirectoryRefreshInterval,
		ReminderEnabled: cfg.ReminderEnabled,
		ReminderTime:    cfg.ReminderTime,
	}, appLogger)

	if err := jobs.Start(); err != nil {
		appLogger.Error("Ошибка при запуске планировщика", "error", err)
	}

	metricsServer := metrics.NewMetricsServer(cfg.MetricsPort, appLogger, map[string]metrics.HealthCheck{
		"state": backend.Ping,
	})

	go func() {
		if err := metricsServer.Start(ctx); err != nil {
			appLogger.Error("Ошибка сервера метрик", "error", err)
		}
	}()

	appLogger.Info("Бот запущен",
		"backend", backend.Name,
		"version", cfg.AppVersion,
		"main_admins", len(mainAdmins),
	)

	<-ctx.Done()
	appLogger.Info("Получен сигнал завершения")

	poller.Stop()
	jobs.Stop()

	cancelQueue()

	persistCtx, cancel := context.WithTimeout(context.Background(), 2*shutdownTimeout)
	defer cancel()

	err = multierr.Combine(
		st.PersistWhenDrained(persistCtx, queueDone, shutdownTimeout),
		publisher.Close(),
		backend.Close(),
	)
	if err != nil {
		appLogger.Error("Ошибки при остановке бота", "error", err)
		return err
	}

	appLogger.Info("Бот успешно остановлен")

	return nil
}

func newPublisher(cfg *config.Config, logger *slog.Logger) events.Publisher {
	if cfg.MessageTransport != config.TransportKafka {
		return events.NoopPublisher{}
	}

	logger.Info("События справочника публикуются в Kafka",
		"brokers", cfg.KafkaBrokers,
		"topic", cfg.TopicDirectoryChanges,
	)

	return events.NewKafkaPublisher(cfg.KafkaBrokerList(), cfg.TopicDirectoryChanges, logger)
}
