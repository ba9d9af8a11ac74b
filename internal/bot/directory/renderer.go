// Package directory keeps the public list of groups in the directory channel in
// sync with the registry.
package directory

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const (
	// MessageLimit is Telegram's hard limit for a text message.
	MessageLimit = 4096

	entrySeparator = " | "
	suffixRule     = "========"
)

type Renderer struct {
	limit int
}

func NewRenderer() *Renderer {
	return &Renderer{limit: MessageLimit}
}

// NewRendererWithLimit is used by tests to exercise message splitting.
func NewRendererWithLimit(limit int) *Renderer {
	return &Renderer{limit: limit}
}

// Listed returns the chats that appear in the directory, in display order:
// titled non-private chats sorted by case-folded title, ties broken by ID.
func Listed(reg *models.Registry) []*models.Chat {
	var chats []*models.Chat

	for _, c := range reg.Chats() {
		if c.Title == "" || c.IsPrivate() {
			continue
		}

		chats = append(chats, c)
	}

	sort.SliceStable(chats, func(i, j int) bool {
		a, b := strings.ToLower(chats[i].Title), strings.ToLower(chats[j].Title)
		if a != b {
			return a < b
		}

		return chats[i].ID < chats[j].ID
	})

	return chats
}

// Render produces the bodies of the directory messages. Chats sharing a first
// letter form one line; lines are packed into messages that always stay below
// the limit. The result has at least one element.
func (r *Renderer) Render(reg *models.Registry, prefix, suffix string) []string {
	var (
		messages []string
		buf      strings.Builder
	)

	flush := func() {
		if buf.Len() > 0 {
			messages = append(messages, buf.String())
			buf.Reset()
		}
	}

	appendBlock := func(block string) {
		if textLength(buf.String())+textLength(block) >= r.limit {
			flush()
		}

		buf.WriteString(block)
	}

	if prefix != "" {
		appendBlock(truncate(prefix, r.limit-2) + "\n")
	}

	for _, line := range r.lines(Listed(reg)) {
		appendBlock(line)
	}

	if suffix != "" {
		appendBlock(truncate(suffix, r.limit-1))
	}

	flush()

	if len(messages) == 0 {
		messages = append(messages, "")
	}

	return messages
}

// lines groups consecutive chats by their first letter. A line that alone
// would reach the limit is split between entries.
func (r *Renderer) lines(chats []*models.Chat) []string {
	var (
		lines   []string
		entries []string
		current rune
	)

	emit := func() {
		if len(entries) == 0 {
			return
		}

		lines = append(lines, r.splitLine(entries)...)
		entries = entries[:0]
	}

	for _, c := range chats {
		initial := firstLetter(c.Title)
		if len(entries) > 0 && initial != current {
			emit()
		}

		current = initial
		entries = append(entries, c.DirectoryEntry())
	}

	emit()

	return lines
}

func (r *Renderer) splitLine(entries []string) []string {
	var (
		out  []string
		line strings.Builder
	)

	for _, entry := range entries {
		entry = truncate(entry, r.limit-2)

		if line.Len() > 0 && textLength(line.String())+len(entrySeparator)+textLength(entry)+1 >= r.limit {
			out = append(out, line.String()+"\n")
			line.Reset()
		}

		if line.Len() > 0 {
			line.WriteString(entrySeparator)
		}

		line.WriteString(entry)
	}

	if line.Len() > 0 {
		out = append(out, line.String()+"\n")
	}

	return out
}

func firstLetter(title string) rune {
	r, _ := utf8.DecodeRuneInString(title)
	return unicode.ToLower(r)
}

// textLength counts UTF-16 code units, the unit Telegram applies its limit in.
func textLength(s string) int {
	n := 0

	for _, r := range s {
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
	}

	return n
}

func truncate(s string, limit int) string {
	if textLength(s) <= limit {
		return s
	}

	n := 0

	for i, r := range s {
		w := 1
		if r >= 0x10000 {
			w = 2
		}

		if n+w > limit {
			return s[:i]
		}

		n += w
	}

	return s
}
