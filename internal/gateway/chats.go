package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/model"
)

// DefaultMessageLimit is the history page size.
const DefaultMessageLimit = 40

// ListChats fetches the chat overview and normalizes it.
func (c *Client) ListChats(ctx context.Context) ([]model.Chat, error) {
	path := "/" + url.PathEscape(c.session) + "/chats/overview"
	data, _, err := c.roundTrip(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	chats, skipped, err := model.DecodeChats(data)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, Path: path, StatusCode: http.StatusOK,
			Message: "unexpected chat list shape", Body: data, Err: err}
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed chats", zap.Int("count", skipped))
	}
	return chats, nil
}

// ListMessages fetches the newest messages of a chat. limit <= 0 uses
// DefaultMessageLimit. Order is whatever the gateway returns.
func (c *Client) ListMessages(ctx context.Context, chatID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	path := fmt.Sprintf("/%s/chats/%s/messages?limit=%s",
		url.PathEscape(c.session), url.PathEscape(chatID), strconv.Itoa(limit))
	data, _, err := c.roundTrip(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	msgs, skipped, err := model.DecodeMessages(data)
	if err != nil {
		return nil, &RequestError{Method: http.MethodGet, Path: path, StatusCode: http.StatusOK,
			Message: "unexpected message list shape", Body: data, Err: err}
	}
	if skipped > 0 {
		c.logger.Warn("skipped malformed messages", zap.String("chat", chatID), zap.Int("count", skipped))
	}
	return msgs, nil
}

type sendTextRequest struct {
	ChatID  string `json:"chatId"`
	Text    string `json:"text"`
	Session string `json:"session"`
}

// SendText sends a text message to chatID.
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	return c.Post(ctx, "/sendText", sendTextRequest{ChatID: chatID, Text: text, Session: c.session}, nil)
}
