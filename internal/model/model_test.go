package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeChatUnreadLookupOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want int
	}{
		{"top-level unreadCount", `{"id":"a@c.us","unreadCount":2,"unread":9}`, 2},
		{"top-level unread", `{"id":"a@c.us","unread":4,"_chat":{"unreadCount":9}}`, 4},
		{"nested unreadCount", `{"id":"a@c.us","_chat":{"unreadCount":5,"unread":9}}`, 5},
		{"nested unread only", `{"id":"a@c.us","_chat":{"unread":3}}`, 3},
		{"zero is present", `{"id":"a@c.us","unreadCount":0,"_chat":{"unread":3}}`, 0},
		{"null is absent", `{"id":"a@c.us","unreadCount":null,"_chat":{"unread":3}}`, 3},
		{"missing everywhere", `{"id":"a@c.us"}`, 0},
		{"float truncated", `{"id":"a@c.us","unreadCount":2.9}`, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeChat([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.UnreadCount)
		})
	}
}

func TestDecodeChatGroupLookupOrder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"nested wins", `{"id":"a@c.us","isGroup":false,"_chat":{"isGroup":true}}`, true},
		{"top-level", `{"id":"a@c.us","isGroup":true}`, true},
		{"nested false wins over server", `{"id":"x@g.us","_chat":{"isGroup":false}}`, false},
		{"inferred from group server", `{"id":"120363@g.us"}`, true},
		{"default false", `{"id":"a@c.us"}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := DecodeChat([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.IsGroup)
		})
	}
}

func TestDecodeChatIDAndName(t *testing.T) {
	c, err := DecodeChat([]byte(`{"id":{"_serialized":"5511999999999@c.us","user":"5511999999999"}}`))
	require.NoError(t, err)
	assert.Equal(t, "5511999999999@c.us", c.ID)
	assert.Equal(t, "5511999999999", c.Name, "name falls back to local part")

	c, err = DecodeChat([]byte(`{"_chat":{"id":{"user":"42","server":"g.us"},"name":"Team"}}`))
	require.NoError(t, err)
	assert.Equal(t, "42@g.us", c.ID)
	assert.Equal(t, "Team", c.Name)

	_, err = DecodeChat([]byte(`{"name":"ghost"}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestDecodeChatLastMessage(t *testing.T) {
	c, err := DecodeChat([]byte(`{"id":"a@c.us","lastMessage":{"id":"m1","body":"hi","timestamp":1700000000,"fromMe":true,"ack":3}}`))
	require.NoError(t, err)
	require.NotNil(t, c.LastMessage)
	assert.Equal(t, "hi", c.LastMessage.Body)
	assert.True(t, c.LastMessage.FromMe)
	require.NotNil(t, c.LastMessage.Ack)
	assert.Equal(t, AckRead, *c.LastMessage.Ack)
	assert.Equal(t, int64(1700000000), c.Timestamp, "chat timestamp falls back to last message")
}

func TestDecodeChatsSkipsBadEntries(t *testing.T) {
	chats, skipped, err := DecodeChats([]byte(`[{"id":"a@c.us"},{"name":"no id"},42,{"id":"b@g.us"}]`))
	require.NoError(t, err)
	assert.Equal(t, 2, skipped)
	require.Len(t, chats, 2)
	assert.Equal(t, "a@c.us", chats[0].ID)
	assert.Equal(t, "b@g.us", chats[1].ID)

	_, _, err = DecodeChats([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestDecodeMessage(t *testing.T) {
	m, err := DecodeMessage([]byte(`{
		"id": "true_a@c.us_ABC",
		"from": "120363@g.us",
		"to": "me@c.us",
		"text": "fallback text",
		"timestamp": 1700000001.7,
		"hasMedia": true,
		"media": {"url": "http://x/f.jpg", "mimetype": "image/jpeg", "filename": "f.jpg"},
		"participant": "5511999999999@c.us",
		"author": {"pushName": "Ana", "name": "Ana Maria"},
		"contact": {"pushName": "Ana C"},
		"_data": {"notifyName": "Aninha"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "true_a@c.us_ABC", m.ID)
	assert.Equal(t, "120363@g.us", m.From)
	assert.Equal(t, "fallback text", m.Body)
	assert.Equal(t, int64(1700000001), m.Timestamp)
	require.NotNil(t, m.Media)
	assert.Equal(t, "image/jpeg", m.Media.MimeType)
	assert.Nil(t, m.Ack, "absent ack stays nil")
	assert.Equal(t, Sender{
		ContactPushName: "Ana C",
		AuthorPushName:  "Ana",
		AuthorName:      "Ana Maria",
		NotifyName:      "Aninha",
		ID:              "5511999999999@c.us",
	}, m.Sender)
	assert.False(t, m.IsEmpty())
}

func TestDecodeMessageSenderIDOrder(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"from":"g@g.us","participant":"p@c.us","author":"a@c.us"}`))
	require.NoError(t, err)
	assert.Equal(t, "a@c.us", m.Sender.ID)

	m, err = DecodeMessage([]byte(`{"from":"5511999999999@c.us"}`))
	require.NoError(t, err)
	assert.Equal(t, "5511999999999@c.us", m.Sender.ID)
}

func TestMessageIsEmpty(t *testing.T) {
	m, err := DecodeMessage([]byte(`{"id":"x","hasMedia":true,"media":{"url":""}}`))
	require.NoError(t, err)
	assert.Nil(t, m.Media, "media without url is not fetchable")
	assert.True(t, m.IsEmpty())

	m, err = DecodeMessage([]byte(`{"id":"x","hasMedia":false,"media":{"url":"http://x"}}`))
	require.NoError(t, err)
	assert.True(t, m.IsEmpty(), "media is ignored unless hasMedia")
}

func TestDecodeMessagesSkipsBadEntries(t *testing.T) {
	msgs, skipped, err := DecodeMessages([]byte(`[{"id":"a","timestamp":"12"},"junk",{"id":"b"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, skipped)
	require.Len(t, msgs, 2)
	assert.Equal(t, int64(12), msgs[0].Timestamp)
}

func TestDecodeAck(t *testing.T) {
	a, err := DecodeAck([]byte(`{"id":"m1","from":"a@c.us","ack":2}`))
	require.NoError(t, err)
	assert.Equal(t, AckEvent{MessageID: "m1", ChatID: "a@c.us", Level: AckDelivered}, a)

	a, err = DecodeAck([]byte(`{"id":"m1","to":"b@c.us","ack":-1}`))
	require.NoError(t, err)
	assert.Equal(t, "b@c.us", a.ChatID)
	assert.Equal(t, AckError, a.Level)

	_, err = DecodeAck([]byte(`{"ack":2}`))
	assert.ErrorIs(t, err, ErrMissingID)
}

func TestAckLevelString(t *testing.T) {
	assert.Equal(t, "READ", AckRead.String())
	assert.Equal(t, "UNKNOWN", AckLevel(9).String())
}
