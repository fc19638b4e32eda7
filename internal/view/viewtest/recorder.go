// Package viewtest provides a Presenter that records calls for tests.
package viewtest

import (
	"sync"

	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/status"
	"github.com/matheus3301/waha-client/internal/view"
)

// Notification is one recorded Notify call.
type Notification struct {
	Msg   string
	Level view.Level
}

// Recorder implements view.Presenter and keeps every call.
type Recorder struct {
	mu            sync.Mutex
	Calls         []string
	ChatLists     [][]view.ChatItem
	MessageLists  []view.MessageList
	QRs           []model.QRImage
	Sessions      []status.Info
	Notifications []Notification
}

var _ view.Presenter = (*Recorder)(nil)

func (r *Recorder) record(call string) {
	r.Calls = append(r.Calls, call)
}

func (r *Recorder) RenderConversationList(items []view.ChatItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("chats")
	r.ChatLists = append(r.ChatLists, items)
}

func (r *Recorder) RenderMessages(list view.MessageList) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("messages")
	r.MessageLists = append(r.MessageLists, list)
}

func (r *Recorder) ShowQRImage(qr model.QRImage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("qr")
	r.QRs = append(r.QRs, qr)
}

func (r *Recorder) ShowLoggedIn() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("logged_in")
}

func (r *Recorder) ShowLoggedOut() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("logged_out")
}

func (r *Recorder) ShowSessionInfo(info status.Info) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("session")
	r.Sessions = append(r.Sessions, info)
}

func (r *Recorder) Notify(msg string, level view.Level) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.record("notify")
	r.Notifications = append(r.Notifications, Notification{Msg: msg, Level: level})
}

// LastMessages returns the most recent RenderMessages argument.
func (r *Recorder) LastMessages() (view.MessageList, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.MessageLists) == 0 {
		return view.MessageList{}, false
	}
	return r.MessageLists[len(r.MessageLists)-1], true
}

// LastChats returns the most recent RenderConversationList argument.
func (r *Recorder) LastChats() ([]view.ChatItem, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ChatLists) == 0 {
		return nil, false
	}
	return r.ChatLists[len(r.ChatLists)-1], true
}

// CallLog returns a copy of the call names in order.
func (r *Recorder) CallLog() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.Calls...)
}

// Levels returns the levels of every notification.
func (r *Recorder) Levels() []view.Level {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]view.Level, 0, len(r.Notifications))
	for _, n := range r.Notifications {
		out = append(out, n.Level)
	}
	return out
}
