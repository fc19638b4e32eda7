package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"github.com/stretchr/testify/assert"
)

func TestPromptCompletesFirstWord(t *testing.T) {
	p := NewPrompt(DefaultTheme(), []string{"start", "stop", "status", "send"})

	assert.Equal(t, []string{"start", "status"}, p.complete("sta"))
	assert.Equal(t, []string{"send", "start", "status", "stop"}, p.complete(":s"))
	assert.Empty(t, p.complete("stop"))
	assert.Empty(t, p.complete("send hi"))
	assert.Empty(t, p.complete(""))
}

func TestPromptHistory(t *testing.T) {
	p := NewPrompt(DefaultTheme(), nil)
	p.record("create")
	p.record("start")
	p.record("start")

	assert.Equal(t, []string{"create", "start"}, p.History())
	assert.Equal(t, "start", p.recall(-1))
	assert.Equal(t, "create", p.recall(-1))
	assert.Equal(t, "create", p.recall(-1))
	assert.Equal(t, "start", p.recall(1))
	assert.Equal(t, "", p.recall(1))
}

func TestPromptSubmitTrimsAndRecords(t *testing.T) {
	p := NewPrompt(DefaultTheme(), nil)
	var got []string
	cancelled := false
	p.SetOnSubmit(func(text string) { got = append(got, text) })
	p.SetOnCancel(func() { cancelled = true })

	handle := p.InputHandler()
	p.SetText("  qr ")
	handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	p.SetText("   ")
	handle(tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), func(tview.Primitive) {})
	p.SetText("draft")
	handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), func(tview.Primitive) {})

	assert.Equal(t, []string{"qr"}, got)
	assert.True(t, cancelled)
	assert.Empty(t, p.GetText())
	assert.Equal(t, []string{"qr"}, p.History())
}
