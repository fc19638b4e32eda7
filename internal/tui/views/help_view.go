package views

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/tui/ui"
)

// HelpEntry is one line of the help page.
type HelpEntry struct {
	Key         string
	Description string
}

// HelpSection groups entries under a heading.
type HelpSection struct {
	Title   string
	Entries []HelpEntry
}

// HelpView displays key binding and command reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme, sections []HelpSection) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.SetText(hv.render(sections))
	return hv
}

func (hv *HelpView) render(sections []HelpSection) string {
	kc := ui.Tag(hv.theme.MenuKeyColor)

	width := 0
	for _, s := range sections {
		for _, e := range s.Entries {
			width = max(width, len(e.Key))
		}
	}

	var b strings.Builder
	for _, s := range sections {
		fmt.Fprintf(&b, "\n  [::b]%s[-:-:-]\n\n", s.Title)
		for _, e := range s.Entries {
			pad := strings.Repeat(" ", width-len(e.Key))
			fmt.Fprintf(&b, "  [%s]%s[-]%s  %s\n", kc, tview.Escape(e.Key), pad, e.Description)
		}
	}
	return b.String()
}
