// Package state converts the chat registry to and from its persisted JSON document.
package state

import (
	"bytes"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/central-university-dev/go-hhh-bot/internal/domain/models"
)

const (
	fieldChats            = "chats"
	fieldGroupMessageID   = "group_message_id"
	fieldRecentChanges    = "recent_changes"
	fieldChannelID        = "hhh_id"
	fieldPinnedMessageID  = "pinned_message_id"
	fieldID               = "id"
	fieldTitle            = "title"
	fieldType             = "type"
	fieldInviteLink       = "invite_link"
	fieldDescription      = "description"
	fieldCreatedMessageID = "created_message_id"
	fieldLastEvent        = "last_chat_event_isotime"
	fieldPremiumOnly      = "premium_users_only"
	fieldUsers            = "users"
	fieldName             = "name"
	fieldMuted            = "muted"
)

// Encode serializes the registry. Chats and users are written in ID order so
// the same registry always yields the same bytes.
func Encode(reg *models.Registry) []byte {
	var e jx.Encoder

	e.ObjStart()

	e.FieldStart(fieldChats)
	e.ArrStart()

	for _, c := range reg.Chats() {
		encodeChat(&e, c)
	}

	e.ArrEnd()

	e.FieldStart(fieldGroupMessageID)
	e.ArrStart()

	for _, id := range reg.Directory.MessageIDs {
		e.Int(id)
	}

	e.ArrEnd()

	e.FieldStart(fieldRecentChanges)
	e.ArrStart()

	for _, change := range reg.Directory.RecentChanges {
		e.Str(change)
	}

	e.ArrEnd()

	e.FieldStart(fieldChannelID)
	e.Int64(reg.Directory.ChannelID)

	e.FieldStart(fieldPinnedMessageID)
	optInt(&e, reg.Directory.PinnedMessageID)

	e.ObjEnd()

	return e.Bytes()
}

// EncodeChat serializes a single chat the way it appears inside the document.
func EncodeChat(c *models.Chat) []byte {
	var e jx.Encoder

	encodeChat(&e, c)

	return e.Bytes()
}

func encodeChat(e *jx.Encoder, c *models.Chat) {
	e.ObjStart()

	e.FieldStart(fieldID)
	e.Int64(c.ID)

	e.FieldStart(fieldTitle)
	optStr(e, c.Title)

	e.FieldStart(fieldType)
	e.Str(string(c.Type))

	e.FieldStart(fieldInviteLink)
	optStr(e, c.InviteLink)

	e.FieldStart(fieldDescription)
	optStr(e, c.Description)

	e.FieldStart(fieldPinnedMessageID)
	optInt(e, c.PinnedMessageID)

	e.FieldStart(fieldCreatedMessageID)
	optInt(e, c.CreatedMessageID)

	e.FieldStart(fieldLastEvent)

	if c.LastActivity.IsZero() {
		e.Null()
	} else {
		e.Str(c.LastActivity.Format(time.RFC3339Nano))
	}

	e.FieldStart(fieldPremiumOnly)
	e.Bool(c.PremiumUsersOnly)

	e.FieldStart(fieldUsers)
	e.ArrStart()

	for _, u := range c.Users() {
		e.ObjStart()
		e.FieldStart(fieldID)
		e.Int64(u.ID)
		e.FieldStart(fieldName)
		e.Str(u.Name)
		e.FieldStart(fieldMuted)
		e.Bool(u.Muted)
		e.ObjEnd()
	}

	e.ArrEnd()

	e.ObjEnd()
}

func optStr(e *jx.Encoder, s string) {
	if s == "" {
		e.Null()
		return
	}

	e.Str(s)
}

func optInt(e *jx.Encoder, v int) {
	if v == 0 {
		e.Null()
		return
	}

	e.Int(v)
}

type decodedChat struct {
	chat         *models.Chat
	stringIDForm bool
}

// Decode parses a state document. Chat entries without a usable ID are logged
// and skipped. Entries whose ID was stored as a string are dropped when an
// entry with the same integer ID exists, otherwise they are kept with the
// converted ID. An empty document yields an empty registry.
func Decode(data []byte, defaultChannelID int64, logger *slog.Logger) (*models.Registry, error) {
	reg := models.NewRegistry(defaultChannelID)

	if len(bytes.TrimSpace(data)) == 0 {
		return reg, nil
	}

	var rawChats []jx.Raw

	d := jx.DecodeBytes(data)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case fieldChats:
			if d.Next() == jx.Null {
				return d.Null()
			}

			return d.Arr(func(d *jx.Decoder) error {
				raw, err := d.Raw()
				if err != nil {
					return err
				}

				rawChats = append(rawChats, append(jx.Raw(nil), raw...))

				return nil
			})
		case fieldGroupMessageID:
			ids, err := decodeMessageIDs(d)
			if err != nil {
				return errors.Wrap(err, fieldGroupMessageID)
			}

			reg.Directory.MessageIDs = ids

			return nil
		case fieldRecentChanges:
			changes, err := decodeStrings(d)
			if err != nil {
				return errors.Wrap(err, fieldRecentChanges)
			}

			if len(changes) > models.MaxRecentChanges {
				changes = changes[:models.MaxRecentChanges]
			}

			reg.Directory.RecentChanges = changes

			return nil
		case fieldChannelID:
			id, ok, err := decodeID(d)
			if err != nil {
				return errors.Wrap(err, fieldChannelID)
			}

			if ok {
				reg.Directory.ChannelID = id
			}

			return nil
		case fieldPinnedMessageID:
			id, _, err := decodeID(d)
			if err != nil {
				return errors.Wrap(err, fieldPinnedMessageID)
			}

			reg.Directory.PinnedMessageID = int(id)

			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return nil, errors.Wrap(err, "разбор документа состояния")
	}

	decoded := make([]decodedChat, 0, len(rawChats))

	for i, raw := range rawChats {
		chat, stringID, err := decodeChat(jx.DecodeBytes(raw))
		if err != nil {
			logger.Error("Пропуск некорректной записи чата",
				"index", i,
				"error", err,
			)

			continue
		}

		decoded = append(decoded, decodedChat{chat: chat, stringIDForm: stringID})
	}

	for _, dc := range decoded {
		if dc.stringIDForm {
			continue
		}

		if _, exists := reg.Chat(dc.chat.ID); exists {
			logger.Warn("Пропуск повторяющейся записи чата", "chat_id", dc.chat.ID)
			continue
		}

		reg.Put(dc.chat)
	}

	for _, dc := range decoded {
		if !dc.stringIDForm {
			continue
		}

		if _, exists := reg.Chat(dc.chat.ID); exists {
			logger.Info("Удалена устаревшая запись чата со строковым ID",
				"chat_id", dc.chat.ID,
				"title", dc.chat.Title,
			)

			continue
		}

		reg.Put(dc.chat)
	}

	return reg, nil
}

var errMissingID = errors.New("отсутствует идентификатор")

func decodeChat(d *jx.Decoder) (*models.Chat, bool, error) {
	var (
		id       int64
		hasID    bool
		stringID bool
	)

	chat := models.NewChat(0)

	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error

		switch key {
		case fieldID:
			stringID = d.Next() == jx.String
			id, hasID, err = decodeID(d)
		case fieldTitle:
			chat.Title, err = decodeOptStr(d)
		case fieldType:
			var s string

			s, err = decodeOptStr(d)
			chat.Type = models.ParseChatType(s)
		case fieldInviteLink:
			chat.InviteLink, err = decodeOptStr(d)
		case fieldDescription:
			chat.Description, err = decodeOptStr(d)
		case fieldPinnedMessageID:
			var v int64

			v, _, err = decodeID(d)
			chat.PinnedMessageID = int(v)
		case fieldCreatedMessageID:
			var v int64

			v, _, err = decodeID(d)
			chat.CreatedMessageID = int(v)
		case fieldLastEvent:
			var s string

			s, err = decodeOptStr(d)
			if err == nil && s != "" {
				chat.LastActivity, err = ParseTime(s)
			}
		case fieldPremiumOnly:
			chat.PremiumUsersOnly, err = decodeOptBool(d)
		case fieldUsers:
			err = decodeUsers(d, chat)
		default:
			err = d.Skip()
		}

		if err != nil {
			return errors.Wrap(err, key)
		}

		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if !hasID {
		return nil, false, errMissingID
	}

	chat.ID = id

	return chat, stringID, nil
}

func decodeUsers(d *jx.Decoder, chat *models.Chat) error {
	if d.Next() == jx.Null {
		return d.Null()
	}

	return d.Arr(func(d *jx.Decoder) error {
		var (
			user  models.User
			hasID bool
		)

		err := d.Obj(func(d *jx.Decoder, key string) error {
			var err error

			switch key {
			case fieldID:
				user.ID, hasID, err = decodeID(d)
			case fieldName:
				user.Name, err = decodeOptStr(d)
			case fieldMuted:
				user.Muted, err = decodeOptBool(d)
			default:
				err = d.Skip()
			}

			return err
		})
		if err != nil {
			return err
		}

		if hasID {
			chat.AddUser(&user)
		}

		return nil
	})
}

// decodeID accepts integers, numeric strings and null. ok is false when the
// value does not hold a usable integer.
func decodeID(d *jx.Decoder) (id int64, ok bool, err error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return 0, false, err
		}

		v, err := n.Int64()
		if err != nil {
			return 0, false, nil //nolint:nilerr // нецелое число считается отсутствующим ID
		}

		return v, true, nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, false, err
		}

		v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return 0, false, nil //nolint:nilerr // "None" и подобные значения
		}

		return v, true, nil
	case jx.Null:
		return 0, false, d.Null()
	default:
		return 0, false, d.Skip()
	}
}

// decodeMessageIDs accepts a list of IDs or the legacy single string form.
func decodeMessageIDs(d *jx.Decoder) ([]int, error) {
	switch d.Next() {
	case jx.Array:
		var ids []int

		err := d.Arr(func(d *jx.Decoder) error {
			id, ok, err := decodeID(d)
			if err != nil {
				return err
			}

			if ok {
				ids = append(ids, int(id))
			}

			return nil
		})

		return ids, err
	default:
		id, ok, err := decodeID(d)
		if err != nil || !ok {
			return nil, err
		}

		return []int{int(id)}, nil
	}
}

func decodeStrings(d *jx.Decoder) ([]string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}

	var out []string

	err := d.Arr(func(d *jx.Decoder) error {
		s, err := decodeOptStr(d)
		if err != nil {
			return err
		}

		out = append(out, s)

		return nil
	})

	return out, err
}

func decodeOptStr(d *jx.Decoder) (string, error) {
	switch d.Next() {
	case jx.String:
		return d.Str()
	case jx.Null:
		return "", d.Null()
	default:
		raw, err := d.Raw()
		if err != nil {
			return "", err
		}

		return string(raw), nil
	}
}

func decodeOptBool(d *jx.Decoder) (bool, error) {
	switch d.Next() {
	case jx.Bool:
		return d.Bool()
	case jx.Null:
		return false, d.Null()
	default:
		return false, d.Skip()
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
}

// ParseTime understands RFC 3339 timestamps and the offset-less ISO form older
// documents were written with; the latter is read in local time.
func ParseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, errors.Errorf("неизвестный формат времени: %q", s)
}
