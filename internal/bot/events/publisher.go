// Package events publishes directory changes to downstream consumers.
package events

import (
	"context"
	"time"
)

type ChangeKind string

const (
	ChangeAdded   ChangeKind = "added"
	ChangeRenamed ChangeKind = "renamed"
	ChangeRemoved ChangeKind = "removed"
)

type ChangeEvent struct {
	Kind       ChangeKind `json:"kind"`
	ChatID     int64      `json:"chatId"`
	Title      string     `json:"title"`
	NewTitle   string     `json:"newTitle,omitempty"`
	TotalChats int        `json:"totalChats"`
	OccurredAt time.Time  `json:"occurredAt"`
}

type Publisher interface {
	Publish(ctx context.Context, event ChangeEvent) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ChangeEvent) error { return nil }

func (NoopPublisher) Close() error { return nil }
