package conversation

import (
	"github.com/matheus3301/waha-client/internal/jid"
	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/view"
)

// AttributeSender names the author of an incoming group message. It returns
// "" when no sender line should be shown: outgoing messages, direct chats,
// and conversations whose metadata is unknown.
func AttributeSender(m model.Message, meta *model.Chat) string {
	if meta == nil || !meta.IsGroup || m.FromMe {
		return ""
	}
	s := m.Sender
	for _, name := range []string{
		s.ContactPushName,
		s.ContactName,
		s.AuthorPushName,
		s.AuthorName,
		s.NotifyName,
		s.FromName,
	} {
		if name != "" {
			return name
		}
	}
	if s.ID == "" {
		return view.UnknownText
	}
	if number, ok := jid.PhoneNumber(s.ID); ok {
		return number
	}
	return view.GroupMemberText
}
