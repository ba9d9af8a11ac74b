package pkg

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

var botTokenRegex = regexp.MustCompile(`bot\d+:[A-Za-z0-9_-]{30,}`)

const maskedToken = "bot***:***"

// NewLogger builds the JSON logger every service writes to stdout. Bot tokens
// are masked in messages and attribute values.
func NewLogger(w io.Writer, level string) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)})
	return slog.New(NewTokenMaskHandler(handler))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func MaskToken(text string) string {
	return botTokenRegex.ReplaceAllString(text, maskedToken)
}

type TokenMaskHandler struct {
	handler slog.Handler
}

func NewTokenMaskHandler(handler slog.Handler) *TokenMaskHandler {
	return &TokenMaskHandler{handler: handler}
}

func (h *TokenMaskHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

func (h *TokenMaskHandler) Handle(ctx context.Context, record slog.Record) error {
	// The original record may be reused by slog, so attributes go onto a fresh one.
	masked := slog.NewRecord(record.Time, record.Level, MaskToken(record.Message), record.PC)

	record.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(maskAttr(a))
		return true
	})

	return h.handler.Handle(ctx, masked)
}

func (h *TokenMaskHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	masked := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		masked[i] = maskAttr(a)
	}

	return &TokenMaskHandler{handler: h.handler.WithAttrs(masked)}
}

func (h *TokenMaskHandler) WithGroup(name string) slog.Handler {
	return &TokenMaskHandler{handler: h.handler.WithGroup(name)}
}

func maskAttr(a slog.Attr) slog.Attr {
	return slog.Attr{Key: a.Key, Value: maskValue(a.Value)}
}

func maskValue(v slog.Value) slog.Value {
	switch v.Kind() {
	case slog.KindString:
		return slog.StringValue(MaskToken(v.String()))
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return slog.StringValue(MaskToken(err.Error()))
		}

		return v
	case slog.KindGroup:
		group := v.Group()
		masked := make([]slog.Attr, len(group))

		for i, a := range group {
			masked[i] = maskAttr(a)
		}

		return slog.GroupValue(masked...)
	default:
		return v
	}
}

// BotLogger routes go-telegram-bot-api's printf-style output into slog at
// debug level. Pass it to tgbotapi.SetLogger.
type BotLogger struct {
	logger *slog.Logger
}

func NewBotLogger(logger *slog.Logger) *BotLogger {
	return &BotLogger{logger: logger.With("component", "telegram-bot-api")}
}

func (l *BotLogger) Println(v ...interface{}) {
	l.logger.Debug(strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l *BotLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n"))
}
