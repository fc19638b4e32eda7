// Package console is a line-oriented Presenter for wahactl watch. It prints
// human-readable lines, or one JSON object per line when JSON is set.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/mdp/qrterminal/v3"

	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/qrtext"
	"github.com/matheus3301/waha-client/internal/status"
	"github.com/matheus3301/waha-client/internal/view"
)

// Printer writes presenter output to w.
type Printer struct {
	w    io.Writer
	json bool
	now  func() time.Time

	mu   sync.Mutex
	conv string
	seen map[string]struct{}
}

var _ view.Presenter = (*Printer)(nil)

// New returns a Printer. With asJSON every call becomes one JSON line.
func New(w io.Writer, asJSON bool) *Printer {
	return &Printer{w: w, json: asJSON, now: time.Now, seen: make(map[string]struct{})}
}

type record struct {
	Type    string             `json:"type"`
	Time    string             `json:"time"`
	Level   string             `json:"level,omitempty"`
	Message string             `json:"message,omitempty"`
	Session *status.Info       `json:"session,omitempty"`
	Chats   []view.ChatItem    `json:"chats,omitempty"`
	Chat    string             `json:"chat,omitempty"`
	Items   []view.MessageItem `json:"messages,omitempty"`
	QR      string             `json:"qr,omitempty"`
}

func (p *Printer) emit(r record, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	stamp := p.now()
	if p.json {
		r.Time = stamp.Format(time.RFC3339)
		data, err := json.Marshal(r)
		if err != nil {
			return
		}
		_, _ = fmt.Fprintf(p.w, "%s\n", data)
		return
	}
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		_, _ = fmt.Fprintf(p.w, "%s %s\n", stamp.Format("15:04:05"), line)
	}
}

// RenderConversationList prints a summary and the chats with unread messages.
func (p *Printer) RenderConversationList(items []view.ChatItem) {
	unread := 0
	var b strings.Builder
	for _, c := range items {
		if c.Unread == 0 {
			continue
		}
		unread++
		fmt.Fprintf(&b, "\n  %-30s %3d unread  %s", c.Name, c.Unread, c.Preview)
	}
	text := fmt.Sprintf("chats: %d, %d with unread messages", len(items), unread) + b.String()
	p.emit(record{Type: "chats", Chats: items}, text)
}

// RenderMessages prints the messages of list not printed before. Switching
// conversations prints the whole list.
func (p *Printer) RenderMessages(list view.MessageList) {
	p.mu.Lock()
	if list.ConversationID != p.conv {
		p.conv = list.ConversationID
		p.seen = make(map[string]struct{})
	}
	var fresh []view.MessageItem
	for _, m := range list.Items {
		if _, ok := p.seen[m.ID]; ok {
			continue
		}
		p.seen[m.ID] = struct{}{}
		fresh = append(fresh, m)
	}
	p.mu.Unlock()

	if list.ConversationID == "" {
		return
	}
	if ph := list.Placeholder(); ph != "" {
		p.emit(record{Type: "messages", Chat: list.ConversationID, Message: ph}, fmt.Sprintf("[%s] %s", title(list), ph))
		return
	}
	if len(fresh) == 0 {
		return
	}
	var b strings.Builder
	for _, m := range fresh {
		fmt.Fprintf(&b, "[%s] %s %s: %s", title(list), view.ClockTime(m.Timestamp), who(m), body(m))
		if m.AckMark != "" {
			fmt.Fprintf(&b, " %s", m.AckMark)
		}
		b.WriteString("\n")
	}
	p.emit(record{Type: "messages", Chat: list.ConversationID, Items: fresh}, b.String())
}

// ShowQRImage prints the QR. Raw codes go through qrterminal, gateway PNGs
// are sampled back into modules.
func (p *Printer) ShowQRImage(qr model.QRImage) {
	if p.json {
		p.emit(record{Type: "qr", QR: qr.Code}, "")
		return
	}
	var b strings.Builder
	b.WriteString("scan with WhatsApp > Linked devices:\n")
	if qr.Code != "" {
		qrterminal.GenerateHalfBlock(qr.Code, qrterminal.L, &b)
	} else {
		art, err := qrtext.Render(qr, "  ")
		if err != nil {
			b.WriteString("QR could not be rendered: " + err.Error())
		}
		b.WriteString(art)
	}
	p.emit(record{Type: "qr"}, b.String())
}

// ShowLoggedIn implements view.Presenter.
func (p *Printer) ShowLoggedIn() {
	p.emit(record{Type: "logged_in"}, "linked")
}

// ShowLoggedOut implements view.Presenter.
func (p *Printer) ShowLoggedOut() {
	p.emit(record{Type: "logged_out"}, "not linked")
}

// ShowSessionInfo implements view.Presenter.
func (p *Printer) ShowSessionInfo(info status.Info) {
	text := fmt.Sprintf("session %s: %s (user %s, engine %s)", info.Name, info.Status, info.User(), info.EngineLabel())
	p.emit(record{Type: "session", Session: &info}, text)
}

// Notify implements view.Presenter.
func (p *Printer) Notify(msg string, level view.Level) {
	p.emit(record{Type: "notify", Level: level.String(), Message: msg}, fmt.Sprintf("%s: %s", level, msg))
}

func title(l view.MessageList) string {
	if l.Title != "" {
		return l.Title
	}
	return l.ConversationID
}

func who(m view.MessageItem) string {
	switch {
	case m.FromMe:
		return "you"
	case m.Sender != "":
		return m.Sender
	}
	return "them"
}

func body(m view.MessageItem) string {
	switch {
	case m.Empty:
		return view.EmptyBodyText
	case m.Body == "" && m.Media != nil:
		return "[media]"
	}
	return strings.Join(strings.Fields(m.Body), " ")
}
