package models

import "strings"

type Command struct {
	Name string
	Args []string
	Raw  string
}

// ParseCommand splits "/name@bot arg1 arg2" into its parts. Returns false for
// text that is not a command.
func ParseCommand(text string) (Command, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Command{}, false
	}

	name := strings.TrimPrefix(fields[0], "/")
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}

	if name == "" {
		return Command{}, false
	}

	return Command{
		Name: strings.ToLower(name),
		Args: fields[1:],
		Raw:  text,
	}, true
}

// Arg returns the i-th argument or "".
func (c Command) Arg(i int) string {
	if i < 0 || i >= len(c.Args) {
		return ""
	}

	return c.Args[i]
}

// Rest joins the arguments starting at i.
func (c Command) Rest(i int) string {
	if i >= len(c.Args) {
		return ""
	}

	return strings.Join(c.Args[i:], " ")
}

// Outcome reports whether a group-only operation ran.
type Outcome int

const (
	OutcomeExecuted Outcome = iota
	OutcomeSkipped
)

func (o Outcome) String() string {
	if o == OutcomeSkipped {
		return "skipped"
	}

	return "executed"
}

// GroupOnly runs fn only for group chats.
func GroupOnly(chat *Chat, fn func() error) (Outcome, error) {
	if chat == nil || !chat.IsGroup() {
		return OutcomeSkipped, nil
	}

	return OutcomeExecuted, fn()
}
