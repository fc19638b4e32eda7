package views

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/status"
	"github.com/matheus3301/waha-client/internal/tui/ui"
)

// StatusBar displays the session name, gateway status and link state.
type StatusBar struct {
	*tview.TextView
	theme    *ui.Theme
	session  string
	status   status.Status
	loggedIn bool
	now      func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, now: time.Now}
}

// SetSession updates the session name display.
func (sb *StatusBar) SetSession(name string) {
	sb.session = name
	sb.render()
}

// SetStatus updates the gateway status display.
func (sb *StatusBar) SetStatus(s status.Status) {
	sb.status = s
	sb.render()
}

// SetLoggedIn toggles the link indicator.
func (sb *StatusBar) SetLoggedIn(v bool) {
	sb.loggedIn = v
	sb.render()
}

func (sb *StatusBar) render() {
	sb.Clear()

	link := fmt.Sprintf("[%s]unlinked[-]", ui.Tag(sb.theme.FlashWarnColor))
	if sb.loggedIn {
		link = fmt.Sprintf("[%s]linked[-]", ui.Tag(sb.theme.FlashOKColor))
	}
	st := string(sb.status)
	if st == "" {
		st = "UNKNOWN"
	}

	_, _ = fmt.Fprintf(sb, " [::b]%s[-:-:-] | %s | %s | %s",
		tview.Escape(sb.session), st, link, sb.now().Format("15:04"))
}

// Tick redraws the clock.
func (sb *StatusBar) Tick() {
	sb.render()
}
