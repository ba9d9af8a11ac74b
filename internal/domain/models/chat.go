package models

import (
	"html"
	"sort"
	"strings"
	"time"
)

type ChatType string

const (
	ChatTypeUndefined  ChatType = ""
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
)

// ParseChatType maps unknown values (channels included) to ChatTypeUndefined.
func ParseChatType(s string) ChatType {
	switch ChatType(s) {
	case ChatTypePrivate, ChatTypeGroup, ChatTypeSupergroup:
		return ChatType(s)
	default:
		return ChatTypeUndefined
	}
}

// Chat is a group or private conversation known to the bot. Zero values of the
// optional fields mean "absent".
type Chat struct {
	ID               int64
	Title            string
	Type             ChatType
	InviteLink       string
	Description      string
	PinnedMessageID  int
	CreatedMessageID int
	LastActivity     time.Time
	PremiumUsersOnly bool

	users map[int64]*User
}

func NewChat(id int64) *Chat {
	return &Chat{
		ID:    id,
		users: make(map[int64]*User),
	}
}

func (c *Chat) IsGroup() bool {
	return c.Type == ChatTypeGroup || c.Type == ChatTypeSupergroup
}

func (c *Chat) IsPrivate() bool {
	return c.Type == ChatTypePrivate
}

func (c *Chat) Equal(other *Chat) bool {
	return other != nil && c.ID == other.ID
}

func (c *Chat) Touch(now time.Time) {
	c.LastActivity = now
}

// AddUser adds u or, when a user with the same ID is already a member, refreshes
// its name and returns the existing record.
func (c *Chat) AddUser(u *User) *User {
	if c.users == nil {
		c.users = make(map[int64]*User)
	}

	if existing, ok := c.users[u.ID]; ok {
		if u.Name != "" {
			existing.Name = u.Name
		}

		return existing
	}

	c.users[u.ID] = u

	return u
}

func (c *Chat) User(id int64) (*User, bool) {
	u, ok := c.users[id]
	return u, ok
}

// UserByName matches display names, ignoring a leading "@" and letter case.
func (c *Chat) UserByName(name string) (*User, bool) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")

	for _, u := range c.Users() {
		if strings.EqualFold(u.Name, name) {
			return u, true
		}
	}

	return nil, false
}

func (c *Chat) RemoveUser(id int64) bool {
	if _, ok := c.users[id]; !ok {
		return false
	}

	delete(c.users, id)

	return true
}

// Users returns members ordered by ID.
func (c *Chat) Users() []*User {
	users := make([]*User, 0, len(c.users))
	for _, u := range c.users {
		users = append(users, u)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users
}

func (c *Chat) UsersByName() []*User {
	users := c.Users()
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].Name) < strings.ToLower(users[j].Name)
	})

	return users
}

func (c *Chat) UserCount() int {
	return len(c.users)
}

// DirectoryEntry renders the chat as one entry of the directory message (HTML).
func (c *Chat) DirectoryEntry() string {
	if c.Title == "" {
		return ""
	}

	title := html.EscapeString(c.Title)
	if c.InviteLink == "" {
		return title
	}

	return `<a href="` + html.EscapeString(c.InviteLink) + `">` + title + `</a>`
}

// Clone returns a deep copy, users included.
func (c *Chat) Clone() *Chat {
	cp := *c
	cp.users = make(map[int64]*User, len(c.users))

	for id, u := range c.users {
		uc := *u
		uc.messages = append([]int(nil), u.messages...)
		cp.users[id] = &uc
	}

	return &cp
}

func (c *Chat) String() string {
	var b strings.Builder

	b.WriteString("ID: ")
	b.WriteString(formatInt(c.ID))
	b.WriteString("\nНазвание: ")
	b.WriteString(orDash(c.Title))
	b.WriteString("\nТип: ")
	b.WriteString(orDash(string(c.Type)))
	b.WriteString("\nСсылка-приглашение: ")
	b.WriteString(orDash(c.InviteLink))
	b.WriteString("\nПользователей: ")
	b.WriteString(formatInt(int64(len(c.users))))
	b.WriteString("\nТолько premium: ")

	if c.PremiumUsersOnly {
		b.WriteString("да")
	} else {
		b.WriteString("нет")
	}

	if !c.LastActivity.IsZero() {
		b.WriteString("\nПоследняя активность: ")
		b.WriteString(c.LastActivity.Format(time.RFC3339))
	}

	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}
