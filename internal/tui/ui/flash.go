package ui

import (
	"fmt"
	"sync"
	"time"

	"github.com/rivo/tview"

	"github.com/matheus3301/waha-client/internal/view"
)

// FlashMessage is a notification with a level and expiry.
type FlashMessage struct {
	Text    string
	Level   view.Level
	Expires time.Time
}

// FlashModel holds the current notification. Errors stay up longer.
type FlashModel struct {
	mu      sync.RWMutex
	current FlashMessage
	now     func() time.Time
}

// NewFlashModel creates an empty flash model.
func NewFlashModel() *FlashModel {
	return &FlashModel{now: time.Now}
}

// Duration is how long a notification of level l stays visible.
func Duration(l view.Level) time.Duration {
	switch l {
	case view.LevelError:
		return 10 * time.Second
	case view.LevelWarning:
		return 8 * time.Second
	}
	return 5 * time.Second
}

// Set replaces the current notification.
func (f *FlashModel) Set(msg string, level view.Level) FlashMessage {
	fm := FlashMessage{Text: msg, Level: level, Expires: f.now().Add(Duration(level))}
	f.mu.Lock()
	f.current = fm
	f.mu.Unlock()
	return fm
}

// Current returns the visible notification, or nil once it expired.
func (f *FlashModel) Current() *FlashMessage {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.current.Text == "" || f.now().After(f.current.Expires) {
		return nil
	}
	m := f.current
	return &m
}

// FlashBar displays the current notification.
type FlashBar struct {
	*tview.TextView
	theme *Theme
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(theme.BgColor)

	return &FlashBar{
		TextView: tv,
		theme:    theme,
	}
}

// Update renders msg, or clears the bar when msg is nil.
func (fb *FlashBar) Update(msg *FlashMessage) {
	fb.Clear()
	if msg == nil {
		return
	}
	_, _ = fmt.Fprintf(fb, " [%s]%s[-]", Tag(fb.theme.LevelColor(msg.Level)), tview.Escape(msg.Text))
}
