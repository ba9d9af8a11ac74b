package models

import "strconv"

const maxTrackedMessages = 100

// User is identified by ID only; renaming never creates a second record.
type User struct {
	ID    int64
	Name  string
	Muted bool

	// Message IDs seen during this session, never persisted.
	messages []int
}

func NewUser(id int64, name string) *User {
	return &User{ID: id, Name: name}
}

func (u *User) RecordMessage(messageID int) {
	u.messages = append(u.messages, messageID)
	if len(u.messages) > maxTrackedMessages {
		u.messages = u.messages[len(u.messages)-maxTrackedMessages:]
	}
}

func (u *User) Messages() []int {
	return append([]int(nil), u.messages...)
}

func (u *User) Equal(other *User) bool {
	return other != nil && u.ID == other.ID
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
