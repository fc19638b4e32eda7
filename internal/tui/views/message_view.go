package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/tui/ui"
	"github.com/matheus3301/waha-client/internal/view"
)

// MessageView displays the open conversation.
type MessageView struct {
	*tview.TextView
	theme *ui.Theme
	id    string
}

// NewMessageView creates a new message view.
func NewMessageView(theme *ui.Theme) *MessageView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	tv.SetBorder(true).SetTitle(" Messages ")
	tv.SetBorderColor(theme.BorderColor)
	tv.SetTitleColor(theme.TitleColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)

	return &MessageView{TextView: tv, theme: theme}
}

// ConversationID is the id of the rendered conversation.
func (mv *MessageView) ConversationID() string {
	return mv.id
}

// Update renders list oldest first and scrolls to the newest message.
func (mv *MessageView) Update(list view.MessageList) {
	mv.id = list.ConversationID
	title := list.Title
	if title == "" {
		title = list.ConversationID
	}
	if title == "" {
		title = "Messages"
	}
	mv.SetTitle(" " + oneLine(title) + " ")

	mv.SetText(mv.render(list))
	mv.ScrollToEnd()
}

// Reset clears the view when no conversation is open.
func (mv *MessageView) Reset() {
	mv.id = ""
	mv.SetTitle(" Messages ")
	mv.Clear()
}

func (mv *MessageView) render(list view.MessageList) string {
	muted := ui.Tag(mv.theme.MutedColor)
	if p := list.Placeholder(); p != "" {
		return fmt.Sprintf("\n[%s]%s[-]", muted, p)
	}

	var b strings.Builder
	for _, m := range list.Items {
		who := "You"
		color := ui.Tag(mv.theme.OwnMessageColor)
		if !m.FromMe {
			who = m.Sender
			color = ui.Tag(mv.theme.SenderColor)
		}

		fmt.Fprintf(&b, "[%s]%s[-]", muted, view.ClockTime(m.Timestamp))
		if who != "" {
			fmt.Fprintf(&b, " [%s::b]%s[-:-:-]", color, display(who))
		}
		if m.AckMark != "" {
			fmt.Fprintf(&b, " [%s]%s[-]", muted, m.AckMark)
		}
		b.WriteString("\n")

		switch {
		case m.Empty:
			fmt.Fprintf(&b, "[%s::i]%s[-:-:-]\n", muted, display(view.EmptyBodyText))
		default:
			if m.Media != nil {
				fmt.Fprintf(&b, "[%s]%s[-]\n", muted, display(mediaLabel(m)))
			}
			if m.Body != "" {
				b.WriteString(display(m.Body))
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func mediaLabel(m view.MessageItem) string {
	label := "attachment"
	if m.Media.Filename != "" {
		label += " " + m.Media.Filename
	}
	if m.Media.MimeType != "" {
		label += " (" + m.Media.MimeType + ")"
	}
	return label
}
