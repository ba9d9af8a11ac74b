package handler

import (
	"context"
	"log/slog"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
	"github.com/central-university-dev/go-hhh-bot/internal/bot/service"
)

type BotHandler struct {
	commands map[string]HandlerFunc
	events   map[domain.EventKind]HandlerFunc
	fallback HandlerFunc
	logger   *slog.Logger
}

func NewBotHandler(mw *Middlewares, routes []Route, events map[domain.EventKind]EventRoute, logger *slog.Logger) *BotHandler {
	h := &BotHandler{
		commands: make(map[string]HandlerFunc, len(routes)),
		events:   make(map[domain.EventKind]HandlerFunc, len(events)),
		logger:   logger,
	}

	for _, route := range routes {
		h.commands[route.Command] = mw.CommandPipeline(route)
	}

	for kind, route := range events {
		h.events[kind] = mw.EventPipeline(route)
	}

	// Commands addressed to other bots still count as chat activity.
	h.fallback = mw.EventPipeline(EventRoute{Handler: noop, Backfill: true})

	return h
}

// Routes is the command table of the bot.
func Routes(svc *service.BotService) []Route {
	return []Route{
		{Command: "users", Privilege: domain.PrivilegeNone, Handler: svc.Users},
		{Command: "get_invite_link", Privilege: domain.PrivilegeNone, Handler: svc.GetInviteLink},
		{Command: "set_photo", Privilege: domain.PrivilegeNone, Handler: svc.SetPhoto},

		{Command: "delete_chat_by_id", Privilege: domain.PrivilegeMainAdmin, Handler: svc.DeleteChatByID},

		{Command: "delete_chat", Privilege: domain.PrivilegeChatAdmin, Handler: svc.DeleteChat},
		{Command: "get_data", Privilege: domain.PrivilegeChatAdmin, Handler: svc.GetData},
		{Command: "mute", Privilege: domain.PrivilegeChatAdmin, Handler: svc.Mute},
		{Command: "unmute", Privilege: domain.PrivilegeChatAdmin, Handler: svc.Unmute},
		{Command: "kick", Privilege: domain.PrivilegeChatAdmin, Handler: svc.Kick},
		{Command: "add_invite_link", Privilege: domain.PrivilegeChatAdmin, Handler: svc.AddInviteLink},
		{Command: "remove_invite_link", Privilege: domain.PrivilegeChatAdmin, Handler: svc.RemoveInviteLink},
		{Command: "renew_diff_message", Privilege: domain.PrivilegeChatAdmin, Handler: svc.RenewDirectory},
		{Command: "set_premium_users_only", Privilege: domain.PrivilegeChatAdmin, Handler: svc.SetPremiumUsersOnly},

		{Command: "status", Privilege: domain.PrivilegeNone, Handler: svc.Status},
		{Command: "server_time", Privilege: domain.PrivilegeNone, Handler: svc.ServerTime},
		{Command: "version", Privilege: domain.PrivilegeNone, Handler: svc.Version},
		{Command: "help", Privilege: domain.PrivilegeNone, Handler: svc.Help},
	}
}

func EventRoutes(svc *service.BotService) map[domain.EventKind]EventRoute {
	return map[domain.EventKind]EventRoute{
		domain.EventNewMembers:   {Handler: svc.NewMembers, Backfill: true},
		domain.EventLeftMember:   {Handler: svc.LeftMember},
		domain.EventNewTitle:     {Handler: svc.NewTitle, Backfill: true},
		domain.EventChatCreated:  {Handler: svc.ChatCreated, Backfill: true},
		domain.EventChatMigrated: {Handler: svc.Migrate},
		domain.EventMessage:      {Handler: svc.Message, Backfill: true},
	}
}

// HandleEvent runs on the worker goroutine.
func (h *BotHandler) HandleEvent(ctx context.Context, event *domain.Event) error {
	req := domain.NewRequest(event)

	if event.Kind == domain.EventCommand {
		if handle, ok := h.commands[event.Command.Name]; ok {
			h.logger.Info("Выполнение команды",
				"command", event.Command.Name,
				"chat_id", event.Chat.ID,
				"user_id", event.From.ID,
			)

			return handle(ctx, req)
		}

		h.logger.Debug("Неизвестная команда", "command", event.Command.Name, "chat_id", event.Chat.ID)

		event.Kind = domain.EventUnknownCommand

		return h.fallback(ctx, req)
	}

	if handle, ok := h.events[event.Kind]; ok {
		return handle(ctx, req)
	}

	return h.fallback(ctx, req)
}

func noop(context.Context, *domain.Request) error {
	return nil
}
