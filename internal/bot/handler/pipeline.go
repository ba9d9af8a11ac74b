// Package handler routes platform events through the command pipeline.
package handler

import (
	"context"

	"github.com/central-university-dev/go-hhh-bot/internal/bot/domain"
)

type HandlerFunc func(ctx context.Context, req *domain.Request) error

type Middleware func(next HandlerFunc) HandlerFunc

// Chain wraps h so that mws[0] runs first.
func Chain(h HandlerFunc, mws ...Middleware) HandlerFunc {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}

	return h
}

// Route binds a command name to its handler and the privilege it requires.
type Route struct {
	Command   string
	Privilege domain.Privilege
	Handler   HandlerFunc
}

// EventRoute handles a non-command event. Backfill enables the invite link
// backfill step, which needs the bot to still be in the chat.
type EventRoute struct {
	Handler  HandlerFunc
	Backfill bool
}
