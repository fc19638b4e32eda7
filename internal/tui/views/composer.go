package views

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/tui/ui"
)

// Composer is the text input for sending messages.
type Composer struct {
	*tview.InputField
	onSend   func(text string)
	onCancel func()
}

// NewComposer creates a new message composer.
func NewComposer(theme *ui.Theme) *Composer {
	input := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0).
		SetPlaceholder("press i to write a message")
	input.SetBackgroundColor(theme.BgColor)
	input.SetFieldBackgroundColor(theme.BgColor)
	input.SetFieldTextColor(theme.FgColor)
	input.SetLabelColor(theme.MenuKeyColor)

	c := &Composer{InputField: input}

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			text := c.GetText()
			if strings.TrimSpace(text) == "" || c.onSend == nil {
				return
			}
			c.onSend(text)
			c.SetText("")
		case tcell.KeyEscape:
			if c.onCancel != nil {
				c.onCancel()
			}
		}
	})

	return c
}

// SetOnSend sets the callback when a message is sent.
func (c *Composer) SetOnSend(fn func(text string)) {
	c.onSend = fn
}

// SetOnCancel sets the callback when Esc leaves the composer. Typed text
// is kept.
func (c *Composer) SetOnCancel(fn func()) {
	c.onCancel = fn
}
