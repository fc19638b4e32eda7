package view

import (
	"time"

	"github.com/matheus3301/waha-client/internal/model"
)

// Placeholder texts shown instead of a message list.
const (
	NoMessagesText  = "No messages yet"
	LoadFailedText  = "Could not load messages"
	EmptyBodyText   = "[message without content]"
	GroupMemberText = "Group member"
	UnknownText     = "Unknown"
)

// Class is the chat list styling bucket.
type Class string

const (
	ClassNone        Class = ""
	ClassActive      Class = "active"
	ClassGroupUnread Class = "group-unread"
	ClassGroupRead   Class = "group-read"
	ClassUnread      Class = "unread"
	ClassSent        Class = "sent"
	ClassReceived    Class = "received"
)

// ChatItem is one row of the conversation list.
type ChatItem struct {
	ID        string
	Name      string
	Unread    int
	IsGroup   bool
	Active    bool
	Class     Class
	Preview   string
	Timestamp int64
	AckMark   string
}

// MessageItem is one rendered message.
type MessageItem struct {
	ID        string
	Body      string
	Timestamp int64
	FromMe    bool
	// Sender is set only for incoming group messages with known metadata.
	Sender  string
	Media   *model.Media
	Ack     *model.AckLevel
	AckMark string
	// Empty marks a message with neither text nor media.
	Empty bool
}

// MessageList is the content of the open conversation. Failed means the
// history could not be fetched and LoadFailedText should be shown.
type MessageList struct {
	ConversationID string
	Title          string
	IsGroup        bool
	Items          []MessageItem
	Failed         bool
}

// Placeholder returns the text to show instead of Items, or "".
func (l MessageList) Placeholder() string {
	switch {
	case l.Failed:
		return LoadFailedText
	case len(l.Items) == 0:
		return NoMessagesText
	}
	return ""
}

// AckMark renders the delivery tick for own messages.
func AckMark(level *model.AckLevel, fromMe bool) string {
	if !fromMe || level == nil {
		return ""
	}
	switch *level {
	case model.AckSent:
		return "✓"
	case model.AckDelivered:
		return "✓✓"
	case model.AckRead, model.AckPlayed:
		return "✓✓ read"
	case model.AckError:
		return "!"
	}
	return ""
}

// ClockTime formats an epoch-seconds timestamp as local HH:MM, or "".
func ClockTime(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).Local().Format("15:04")
}
