// Package view defines what the client core asks of a user interface.
// The terminal UI and the console printer both implement Presenter.
package view

import (
	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/status"
)

// Level grades a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return "info"
}

// Presenter renders core state. Implementations must be safe to call from
// any goroutine.
type Presenter interface {
	RenderConversationList(items []ChatItem)
	RenderMessages(list MessageList)
	ShowQRImage(qr model.QRImage)
	ShowLoggedIn()
	ShowLoggedOut()
	ShowSessionInfo(info status.Info)
	Notify(msg string, level Level)
}
