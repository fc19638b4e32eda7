package conversation

import (
	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/view"
)

// Classify picks the list style of a chat.
func Classify(c model.Chat, active bool) view.Class {
	switch {
	case active:
		return view.ClassActive
	case c.IsGroup && c.UnreadCount > 0:
		return view.ClassGroupUnread
	case c.IsGroup:
		return view.ClassGroupRead
	case c.UnreadCount > 0:
		return view.ClassUnread
	case c.LastMessage == nil:
		return view.ClassNone
	case c.LastMessage.FromMe:
		return view.ClassSent
	}
	return view.ClassReceived
}

// ChatItem converts a chat for the conversation list.
func ChatItem(c model.Chat, active bool) view.ChatItem {
	item := view.ChatItem{
		ID:        c.ID,
		Name:      c.Name,
		Unread:    c.UnreadCount,
		IsGroup:   c.IsGroup,
		Active:    active,
		Class:     Classify(c, active),
		Timestamp: c.Timestamp,
	}
	if lm := c.LastMessage; lm != nil {
		item.Preview = lm.Body
		if item.Preview == "" && lm.HasMedia {
			item.Preview = "[media]"
		}
		item.AckMark = view.AckMark(lm.Ack, lm.FromMe)
		if item.Timestamp == 0 {
			item.Timestamp = lm.Timestamp
		}
	}
	return item
}

func chatItems(chats []model.Chat, current string) []view.ChatItem {
	items := make([]view.ChatItem, 0, len(chats))
	for _, c := range chats {
		items = append(items, ChatItem(c, c.ID == current))
	}
	return items
}
