package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	Namespace = "hhh_bot"

	DirectorySubsystem = "directory"
	StateSubsystem     = "state"
	TelegramSubsystem  = "telegram"
)

// Исходящие HTTP запросы (генерация изображений и т.п.).
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of outbound HTTP requests",
		},
		[]string{"service", "method", "endpoint", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Outbound HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "endpoint"},
	)
)

// Обработка событий и команд.
var (
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "events_total",
			Help:      "Total number of inbound platform events by kind",
		},
		[]string{"kind"},
	)

	CommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "commands_total",
			Help:      "Total number of processed commands by outcome",
		},
		[]string{"command", "outcome"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "command_duration_seconds",
			Help:      "Command pipeline duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"command"},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "worker_queue_depth",
			Help:      "Number of tasks waiting for the worker",
		},
	)
)

// Справочник групп.
var (
	DirectoryOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: DirectorySubsystem,
			Name:      "operations_total",
			Help:      "Total number of directory message operations",
		},
		[]string{"operation", "status"},
	)

	DirectoryMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: DirectorySubsystem,
			Name:      "messages",
			Help:      "Number of published directory messages",
		},
	)

	RegisteredChats = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Subsystem: DirectorySubsystem,
			Name:      "registered_chats",
			Help:      "Number of chats in the registry",
		},
	)
)

// Хранилище состояния.
var (
	StateWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: StateSubsystem,
			Name:      "writes_total",
			Help:      "Total number of state writes by result",
		},
		[]string{"backend", "result"},
	)

	StateOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: StateSubsystem,
			Name:      "operation_duration_seconds",
			Help:      "State store operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)
)

// Telegram API.
var (
	TelegramRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Subsystem: TelegramSubsystem,
			Name:      "requests_total",
			Help:      "Total number of Telegram Bot API calls",
		},
		[]string{"method", "status"},
	)

	TelegramRateLimitWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Subsystem: TelegramSubsystem,
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the outbound rate limiter",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
	)
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RecordHTTPRequest(service, method, endpoint string, statusCode int, duration time.Duration) {
	status := StatusSuccess
	if statusCode == 0 || statusCode >= 400 {
		status = StatusError
	}

	HTTPRequestsTotal.WithLabelValues(service, method, endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(service, method, endpoint).Observe(duration.Seconds())
}

func RecordEvent(kind string) {
	EventsTotal.WithLabelValues(kind).Inc()
}

func RecordCommand(command, outcome string, duration time.Duration) {
	CommandsTotal.WithLabelValues(command, outcome).Inc()
	CommandDuration.WithLabelValues(command).Observe(duration.Seconds())
}

func RecordDirectoryOperation(operation, status string) {
	DirectoryOperationsTotal.WithLabelValues(operation, status).Inc()
}

func RecordStateWrite(backend, result string) {
	StateWritesTotal.WithLabelValues(backend, result).Inc()
}

func RecordStateOperation(backend, operation string, duration time.Duration) {
	StateOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

func RecordTelegramRequest(method string, err error) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
	}

	TelegramRequestsTotal.WithLabelValues(method, status).Inc()
}
