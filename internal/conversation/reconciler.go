// Package conversation keeps the open conversation consistent with gateway
// history and live events, and builds what the presenter renders.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/view"
)

var (
	ErrNoConversation = errors.New("no conversation selected")
	ErrEmptyText      = errors.New("message text is empty")
)

// API is the part of the gateway the reconciler reads and writes.
type API interface {
	ListChats(ctx context.Context) ([]model.Chat, error)
	ListMessages(ctx context.Context, chatID string, limit int) ([]model.Message, error)
	SendText(ctx context.Context, chatID, text string) error
}

// Options tune a Reconciler.
type Options struct {
	MessageLimit int
	Logger       *zap.Logger
}

const defaultMessageLimit = 40

// Reconciler owns the selected conversation, its metadata snapshot and its
// message buffer. All methods are safe for concurrent use; the presenter is
// always called without the lock held.
type Reconciler struct {
	api       API
	presenter view.Presenter
	limit     int
	logger    *zap.Logger

	mu      sync.Mutex
	current string
	meta    *model.Chat
	buffer  []model.Message
	failed  bool
	chats   []model.Chat
}

// New creates a Reconciler.
func New(api API, presenter view.Presenter, opts Options) (*Reconciler, error) {
	if api == nil {
		return nil, errors.New("conversation: nil api")
	}
	if presenter == nil {
		return nil, errors.New("conversation: nil presenter")
	}
	if opts.MessageLimit <= 0 {
		opts.MessageLimit = defaultMessageLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Reconciler{
		api:       api,
		presenter: presenter,
		limit:     opts.MessageLimit,
		logger:    opts.Logger,
	}, nil
}

// Current returns the selected conversation id and a copy of its metadata.
func (r *Reconciler) Current() (string, *model.Chat) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.meta == nil {
		return r.current, nil
	}
	meta := *r.meta
	return r.current, &meta
}

// Buffer returns a copy of the open conversation's messages.
func (r *Reconciler) Buffer() []model.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.Message(nil), r.buffer...)
}

// Select opens a conversation: it snapshots the chat metadata, loads the
// recent history and renders it. A result that arrives after the user moved
// on to another conversation is dropped.
func (r *Reconciler) Select(ctx context.Context, id string) error {
	if id == "" {
		return ErrNoConversation
	}
	r.mu.Lock()
	r.current = id
	r.meta = nil
	r.buffer = nil
	r.failed = false
	r.mu.Unlock()

	logger := r.logger.With(zap.String("chat_id", id))

	chats, err := r.api.ListChats(ctx)
	if err != nil {
		logger.Warn("chat metadata unavailable, sender attribution disabled", zap.Error(err))
	} else {
		r.mu.Lock()
		if r.current == id {
			r.chats = chats
			r.meta = findChat(chats, id)
		}
		items := chatItems(r.chats, r.current)
		r.mu.Unlock()
		r.presenter.RenderConversationList(items)
	}

	msgs, err := r.api.ListMessages(ctx, id, r.limit)

	r.mu.Lock()
	if r.current != id {
		now := r.current
		r.mu.Unlock()
		logger.Debug("discarding stale history", zap.String("current", now))
		return nil
	}
	if err != nil {
		r.buffer = nil
		r.failed = true
		list := r.listLocked()
		r.mu.Unlock()
		logger.Error("load history", zap.Error(err))
		r.presenter.RenderMessages(list)
		return fmt.Errorf("load messages for %s: %w", id, err)
	}
	r.buffer = sortAndDedupe(msgs)
	list := r.listLocked()
	r.mu.Unlock()

	logger.Debug("history loaded", zap.Int("messages", len(list.Items)))
	r.presenter.RenderMessages(list)
	return nil
}

// Clear drops the selection, e.g. after a logout.
func (r *Reconciler) Clear() {
	r.mu.Lock()
	r.current = ""
	r.meta = nil
	r.buffer = nil
	r.failed = false
	r.chats = nil
	r.mu.Unlock()
}

// MergeMessage applies a live message. Messages from the open conversation
// are appended, or replace an earlier copy with the same id. The chat list
// is refreshed either way.
func (r *Reconciler) MergeMessage(ctx context.Context, m model.Message) {
	r.mu.Lock()
	matched := r.current != "" && m.From == r.current
	var list view.MessageList
	if matched {
		r.buffer = upsert(r.buffer, m)
		r.failed = false
		list = r.listLocked()
	}
	r.mu.Unlock()

	if matched {
		r.presenter.RenderMessages(list)
	}
	if err := r.RefreshChats(ctx); err != nil {
		r.logger.Warn("refresh chats after message", zap.Error(err))
	}
}

// ApplyAck updates the delivery level of a buffered message and reports
// whether it was found.
func (r *Reconciler) ApplyAck(a model.AckEvent) bool {
	r.mu.Lock()
	found := false
	for i := range r.buffer {
		if r.buffer[i].ID == a.MessageID {
			level := a.Level
			r.buffer[i].Ack = &level
			found = true
			break
		}
	}
	var list view.MessageList
	if found {
		list = r.listLocked()
	}
	r.mu.Unlock()

	if found {
		r.presenter.RenderMessages(list)
	}
	return found
}

// RefreshChats fetches the chat list and renders it. On failure the
// previous list stays on screen.
func (r *Reconciler) RefreshChats(ctx context.Context) error {
	chats, err := r.api.ListChats(ctx)
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}
	r.mu.Lock()
	r.chats = chats
	items := chatItems(chats, r.current)
	r.mu.Unlock()
	r.presenter.RenderConversationList(items)
	return nil
}

// Send posts a text message to the open conversation.
func (r *Reconciler) Send(ctx context.Context, text string) error {
	r.mu.Lock()
	id := r.current
	r.mu.Unlock()
	if id == "" {
		return ErrNoConversation
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}
	if err := r.api.SendText(ctx, id, text); err != nil {
		return fmt.Errorf("send to %s: %w", id, err)
	}
	return nil
}

// listLocked builds the render list. Callers hold r.mu.
func (r *Reconciler) listLocked() view.MessageList {
	list := view.MessageList{ConversationID: r.current, Failed: r.failed}
	if r.meta != nil {
		list.Title = r.meta.Name
		list.IsGroup = r.meta.IsGroup
	}
	list.Items = make([]view.MessageItem, 0, len(r.buffer))
	for _, m := range r.buffer {
		item := MessageItem(m, r.meta)
		if item.Empty {
			r.logger.Warn("message without content",
				zap.String("msg_id", m.ID),
				zap.String("type", m.Type),
				zap.Bool("has_media", m.HasMedia))
		}
		list.Items = append(list.Items, item)
	}
	return list
}

// MessageItem converts a message for rendering. meta is the open
// conversation's metadata and may be nil.
func MessageItem(m model.Message, meta *model.Chat) view.MessageItem {
	return view.MessageItem{
		ID:        m.ID,
		Body:      m.Body,
		Timestamp: m.Timestamp,
		FromMe:    m.FromMe,
		Sender:    AttributeSender(m, meta),
		Media:     m.Media,
		Ack:       m.Ack,
		AckMark:   view.AckMark(m.Ack, m.FromMe),
		Empty:     m.IsEmpty(),
	}
}

// sortAndDedupe orders messages by ascending timestamp, keeping arrival
// order for ties, and drops repeated ids after the first.
func sortAndDedupe(msgs []model.Message) []model.Message {
	out := make([]model.Message, 0, len(msgs))
	seen := make(map[string]struct{}, len(msgs))
	for _, m := range msgs {
		if m.ID != "" {
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func upsert(buf []model.Message, m model.Message) []model.Message {
	if m.ID != "" {
		for i := range buf {
			if buf[i].ID == m.ID {
				buf[i] = m
				return buf
			}
		}
	}
	return append(buf, m)
}

func findChat(chats []model.Chat, id string) *model.Chat {
	for i := range chats {
		if chats[i].ID == id {
			c := chats[i]
			return &c
		}
	}
	return nil
}
