package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/status"
)

// SessionInfo displays the session panel.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
	phone string
	info  status.Info
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetBorderPadding(0, 0, 1, 1)

	return &SessionInfo{
		TextView: tv,
		theme:    theme,
	}
}

// SetPhone updates the configured identity.
func (si *SessionInfo) SetPhone(phone string) {
	si.phone = phone
	si.render()
}

// Update renders a fresh session snapshot.
func (si *SessionInfo) Update(info status.Info) {
	si.info = info
	si.render()
}

func (si *SessionInfo) render() {
	si.Clear()

	fg := Tag(si.theme.FgColor)
	val := Tag(si.theme.CounterColor)

	or := func(s string) string {
		if s == "" {
			return "-"
		}
		return tview.Escape(s)
	}

	_, _ = fmt.Fprintf(si,
		"[%s::b]Session:[-:-:-] [%s]%s[-]  "+
			"[%s::b]Phone:[-:-:-] [%s]%s[-]  "+
			"[%s::b]Status:[-:-:-] [%s]%s[-]  "+
			"[%s::b]User:[-:-:-] [%s]%s[-]  "+
			"[%s::b]Engine:[-:-:-] [%s]%s[-]",
		fg, val, or(si.info.Name),
		fg, val, or(si.phone),
		fg, val, or(string(si.info.Status)),
		fg, val, tview.Escape(si.info.User()),
		fg, val, tview.Escape(si.info.EngineLabel()),
	)
}
