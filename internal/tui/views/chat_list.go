package views

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/tui/ui"
	"github.com/matheus3301/waha-client/internal/view"
)

// ChatList is the conversation table.
type ChatList struct {
	*tview.Table
	theme *ui.Theme
	chats []view.ChatItem
	now   func() time.Time
}

// NewChatList creates a new chat list table.
func NewChatList(theme *ui.Theme) *ChatList {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetBorders(false)
	table.SetBorder(true).SetTitle(" Chats ")
	table.SetBorderColor(theme.BorderColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))

	return &ChatList{Table: table, theme: theme, now: time.Now}
}

// Update replaces the rows, keeping the cursor on the same chat if it is
// still listed.
func (cl *ChatList) Update(chats []view.ChatItem) {
	keep := cl.SelectedChat()
	cl.chats = chats
	cl.Clear()

	header := []string{" Name", " Last message", " Time"}
	for i, h := range header {
		cl.SetCell(0, i, tview.NewTableCell(h).
			SetSelectable(false).
			SetTextColor(cl.theme.TableHeaderFg))
	}

	sel := 1
	for i, c := range chats {
		row := i + 1
		if c.ID == keep {
			sel = row
		}
		color := cl.theme.ClassColor(c.Class)

		name := oneLine(c.Name)
		if c.IsGroup {
			name = "# " + name
		}
		if c.Unread > 0 {
			name = fmt.Sprintf("%s (%d)", name, c.Unread)
		}

		preview := oneLine(c.Preview)
		if c.AckMark != "" {
			preview = c.AckMark + " " + preview
		}

		cl.SetCell(row, 0, tview.NewTableCell(" "+name).SetTextColor(color).SetMaxWidth(30).SetExpansion(1))
		cl.SetCell(row, 1, tview.NewTableCell(" "+preview).SetTextColor(color).SetMaxWidth(50).SetExpansion(2))
		cl.SetCell(row, 2, tview.NewTableCell(" "+cl.stamp(c.Timestamp)).SetTextColor(cl.theme.MutedColor).SetMaxWidth(8))
	}
	if len(chats) > 0 {
		cl.Select(sel, 0)
	}
	cl.SetTitle(fmt.Sprintf(" Chats [%s](%d)[-] ", ui.Tag(cl.theme.CounterColor), len(chats)))
}

// SelectedChat returns the id of the chat under the cursor.
func (cl *ChatList) SelectedChat() string {
	row, _ := cl.GetSelection()
	idx := row - 1
	if idx >= 0 && idx < len(cl.chats) {
		return cl.chats[idx].ID
	}
	return ""
}

// Chat returns the listed item with id.
func (cl *ChatList) Chat(id string) (view.ChatItem, bool) {
	for _, c := range cl.chats {
		if c.ID == id {
			return c, true
		}
	}
	return view.ChatItem{}, false
}

// stamp shows the clock for today and the date otherwise. ts is seconds.
func (cl *ChatList) stamp(ts int64) string {
	if ts == 0 {
		return ""
	}
	t := time.Unix(ts, 0)
	now := cl.now()
	if t.Year() == now.Year() && t.YearDay() == now.YearDay() {
		return view.ClockTime(ts)
	}
	return t.Format("01/02")
}
