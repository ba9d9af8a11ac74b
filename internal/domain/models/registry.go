package models

import (
	"sort"
	"time"
)

const (
	MaxRecentChanges = 3

	DefaultDirectoryChannelID int64 = -1001473841450
)

// DirectoryState tracks what has been published into the directory channel.
type DirectoryState struct {
	MessageIDs      []int
	PinnedMessageID int
	RecentChanges   []string
	ChannelID       int64
}

// AddRecentChange prepends change and keeps at most MaxRecentChanges entries.
func (d *DirectoryState) AddRecentChange(change string) {
	changes := make([]string, 0, MaxRecentChanges)
	changes = append(changes, change)
	changes = append(changes, d.RecentChanges...)

	if len(changes) > MaxRecentChanges {
		changes = changes[:MaxRecentChanges]
	}

	d.RecentChanges = changes
}

// Registry owns every known chat. It is not safe for concurrent use; all access
// goes through the bot's single worker.
type Registry struct {
	chats     map[int64]*Chat
	Directory DirectoryState
}

func NewRegistry(channelID int64) *Registry {
	return &Registry{
		chats:     make(map[int64]*Chat),
		Directory: DirectoryState{ChannelID: channelID},
	}
}

func (r *Registry) Chat(id int64) (*Chat, bool) {
	c, ok := r.chats[id]
	return c, ok
}

// GetOrCreate returns the chat with the given ID, creating it when unseen.
func (r *Registry) GetOrCreate(id int64) (chat *Chat, created bool) {
	if c, ok := r.chats[id]; ok {
		return c, false
	}

	c := NewChat(id)
	r.chats[id] = c

	return c, true
}

// Put stores chat, replacing any record with the same ID.
func (r *Registry) Put(chat *Chat) {
	if r.chats == nil {
		r.chats = make(map[int64]*Chat)
	}

	r.chats[chat.ID] = chat
}

func (r *Registry) Delete(id int64) bool {
	if _, ok := r.chats[id]; !ok {
		return false
	}

	delete(r.chats, id)

	return true
}

// Migrate moves the chat stored under from to the key to. The record under to,
// if the pipeline already created one, contributes its members, its type and any
// field the old record lacks. Returns false when from is unknown.
func (r *Registry) Migrate(from, to int64) (*Chat, bool) {
	old, ok := r.chats[from]
	if !ok {
		return nil, false
	}

	if from == to {
		return old, true
	}

	moved := old.Clone()
	moved.ID = to

	if target, exists := r.chats[to]; exists {
		for _, u := range target.Users() {
			moved.AddUser(u)
		}

		if target.Type != ChatTypeUndefined {
			moved.Type = target.Type
		}

		if moved.Title == "" {
			moved.Title = target.Title
		}

		if moved.Description == "" {
			moved.Description = target.Description
		}

		if target.LastActivity.After(moved.LastActivity) {
			moved.LastActivity = target.LastActivity
		}
	}

	delete(r.chats, from)
	r.chats[to] = moved

	return moved, true
}

func (r *Registry) FindByTitle(title string) (*Chat, bool) {
	for _, c := range r.Chats() {
		if c.Title == title {
			return c, true
		}
	}

	return nil, false
}

// Chats returns every chat ordered by ID.
func (r *Registry) Chats() []*Chat {
	chats := make([]*Chat, 0, len(r.chats))
	for _, c := range r.chats {
		chats = append(chats, c)
	}

	sort.Slice(chats, func(i, j int) bool { return chats[i].ID < chats[j].ID })

	return chats
}

func (r *Registry) Len() int {
	return len(r.chats)
}

// StaleGroups returns non-private chats idle for longer than threshold, plus
// those whose activity was never recorded.
func (r *Registry) StaleGroups(now time.Time, threshold time.Duration) []*Chat {
	var stale []*Chat

	for _, c := range r.Chats() {
		if c.IsPrivate() {
			continue
		}

		if c.LastActivity.IsZero() || now.Sub(c.LastActivity) > threshold {
			stale = append(stale, c)
		}
	}

	return stale
}
