package ui

import (
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const historySize = 50

// Prompt is the ':' command bar. It completes command names and recalls
// earlier commands with Ctrl-P / Ctrl-N.
type Prompt struct {
	*tview.InputField

	names    []string
	history  []string
	cursor   int
	onSubmit func(text string)
	onCancel func()
}

// NewPrompt builds the bar. names are the command names offered for
// completion.
func NewPrompt(theme *Theme, names []string) *Prompt {
	p := &Prompt{
		InputField: tview.NewInputField().SetLabel(":"),
		names:      append([]string(nil), names...),
	}
	sort.Strings(p.names)

	p.SetBorder(true).
		SetTitle(" Command ").
		SetBorderColor(theme.PromptBorderColor).
		SetBackgroundColor(theme.BgColor)
	p.SetFieldBackgroundColor(theme.BgColor).
		SetFieldTextColor(theme.FgColor).
		SetLabelColor(theme.MenuKeyColor)

	p.SetAutocompleteFunc(p.complete)
	p.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		switch ev.Key() {
		case tcell.KeyCtrlP:
			p.SetText(p.recall(-1))
			return nil
		case tcell.KeyCtrlN:
			p.SetText(p.recall(1))
			return nil
		}
		return ev
	})
	p.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter && key != tcell.KeyEscape {
			return
		}
		text := strings.TrimSpace(p.GetText())
		p.SetText("")
		p.cursor = len(p.history)
		if key == tcell.KeyEscape {
			if p.onCancel != nil {
				p.onCancel()
			}
			return
		}
		if text == "" {
			return
		}
		p.record(text)
		if p.onSubmit != nil {
			p.onSubmit(text)
		}
	})
	return p
}

// SetOnSubmit sets the callback for an entered command.
func (p *Prompt) SetOnSubmit(fn func(text string)) { p.onSubmit = fn }

// SetOnCancel sets the callback for Esc.
func (p *Prompt) SetOnCancel(fn func()) { p.onCancel = fn }

// History returns submitted commands, oldest first.
func (p *Prompt) History() []string {
	return append([]string(nil), p.history...)
}

// complete offers command names while the first word is being typed.
func (p *Prompt) complete(text string) []string {
	text = strings.TrimPrefix(text, ":")
	if text == "" || strings.ContainsRune(text, ' ') {
		return nil
	}
	var out []string
	for _, n := range p.names {
		if strings.HasPrefix(n, text) && n != text {
			out = append(out, n)
		}
	}
	return out
}

func (p *Prompt) record(text string) {
	if n := len(p.history); n == 0 || p.history[n-1] != text {
		p.history = append(p.history, text)
		if len(p.history) > historySize {
			p.history = p.history[len(p.history)-historySize:]
		}
	}
	p.cursor = len(p.history)
}

// recall moves through history; stepping past the newest entry yields "".
func (p *Prompt) recall(step int) string {
	p.cursor += step
	if p.cursor < 0 {
		p.cursor = 0
	}
	if p.cursor >= len(p.history) {
		p.cursor = len(p.history)
		return ""
	}
	return p.history[p.cursor]
}
