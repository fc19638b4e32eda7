package model

import (
	"errors"

	"github.com/goccy/go-json"

	"github.com/matheus3301/waha-client/internal/jid"
)

// ErrMissingID is returned for records that cannot be addressed.
var ErrMissingID = errors.New("record has no id")

// Chat is the canonical conversation record. It is built once when a
// gateway snapshot is ingested; nothing downstream re-probes raw fields.
type Chat struct {
	ID          string
	Name        string
	UnreadCount int
	IsGroup     bool
	Timestamp   int64
	LastMessage *LastMessage
}

// LastMessage summarizes the newest message of a chat.
type LastMessage struct {
	ID        string
	Body      string
	Timestamp int64
	FromMe    bool
	HasMedia  bool
	Ack       *AckLevel
}

type wireChat struct {
	ID          flexID         `json:"id"`
	Name        string         `json:"name"`
	UnreadCount optInt         `json:"unreadCount"`
	Unread      optInt         `json:"unread"`
	IsGroup     optBool        `json:"isGroup"`
	Timestamp   optInt         `json:"timestamp"`
	ConvTS      optInt         `json:"conversationTimestamp"`
	LastMessage *wireMessage   `json:"lastMessage"`
	Inner       *wireInnerChat `json:"_chat"`
}

type wireInnerChat struct {
	ID          flexID  `json:"id"`
	Name        string  `json:"name"`
	UnreadCount optInt  `json:"unreadCount"`
	Unread      optInt  `json:"unread"`
	IsGroup     optBool `json:"isGroup"`
}

// normalize resolves every multi-location field in a fixed order; the
// first present value wins:
//
//	id:      id, _chat.id
//	name:    name, _chat.name, local part of id
//	unread:  unreadCount, unread, _chat.unreadCount, _chat.unread, 0
//	isGroup: _chat.isGroup, isGroup, id on the group server
func (w *wireChat) normalize() (Chat, error) {
	inner := w.Inner
	if inner == nil {
		inner = &wireInnerChat{}
	}

	id := string(w.ID)
	if id == "" {
		id = string(inner.ID)
	}
	if id == "" {
		return Chat{}, ErrMissingID
	}

	c := Chat{ID: id, Name: w.Name}
	if c.Name == "" {
		c.Name = inner.Name
	}
	if c.Name == "" {
		c.Name = jid.LocalPart(id)
	}

	unread, _ := firstInt(w.UnreadCount, w.Unread, inner.UnreadCount, inner.Unread)
	c.UnreadCount = max(int(unread), 0)

	if g, ok := firstBool(inner.IsGroup, w.IsGroup); ok {
		c.IsGroup = g
	} else {
		c.IsGroup = jid.IsGroup(id)
	}

	if w.LastMessage != nil {
		m := w.LastMessage.normalize()
		c.LastMessage = &LastMessage{
			ID:        m.ID,
			Body:      m.Body,
			Timestamp: m.Timestamp,
			FromMe:    m.FromMe,
			HasMedia:  m.HasMedia,
			Ack:       m.Ack,
		}
	}
	if ts, ok := firstInt(w.Timestamp, w.ConvTS); ok {
		c.Timestamp = ts
	} else if c.LastMessage != nil {
		c.Timestamp = c.LastMessage.Timestamp
	}
	return c, nil
}

// DecodeChat parses one chat object (a chat.update payload or a list entry).
func DecodeChat(data []byte) (Chat, error) {
	var w wireChat
	if err := json.Unmarshal(data, &w); err != nil {
		return Chat{}, err
	}
	return w.normalize()
}

// DecodeChats parses a chat list snapshot. Entries that fail to parse or
// have no id are skipped and counted.
func DecodeChats(data []byte) (chats []Chat, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}
	chats = make([]Chat, 0, len(raw))
	for _, r := range raw {
		c, err := DecodeChat(r)
		if err != nil {
			skipped++
			continue
		}
		chats = append(chats, c)
	}
	return chats, skipped, nil
}
