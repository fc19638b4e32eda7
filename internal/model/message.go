package model

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Message is a single chat message as the client renders it.
type Message struct {
	ID        string
	From      string
	To        string
	Body      string
	Type      string
	Timestamp int64 // epoch seconds
	FromMe    bool
	HasMedia  bool
	Media     *Media
	Ack       *AckLevel
	Sender    Sender
}

// Media describes an attachment that can be fetched by URL.
type Media struct {
	URL      string
	MimeType string
	Filename string
}

// Sender holds every name hint the gateway may attach to a message. ID is
// the raw sender id: a string author, else participant, else from.
type Sender struct {
	ContactPushName string
	ContactName     string
	AuthorPushName  string
	AuthorName      string
	NotifyName      string
	FromName        string
	ID              string
}

// IsEmpty reports a message with neither text nor a fetchable attachment.
func (m Message) IsEmpty() bool {
	return m.Body == "" && m.Media == nil
}

type wireMessage struct {
	ID          flexID          `json:"id"`
	From        flexID          `json:"from"`
	To          flexID          `json:"to"`
	Body        string          `json:"body"`
	Text        string          `json:"text"`
	Type        string          `json:"type"`
	Timestamp   optInt          `json:"timestamp"`
	FromMe      bool            `json:"fromMe"`
	HasMedia    bool            `json:"hasMedia"`
	Media       *wireMedia      `json:"media"`
	Ack         optInt          `json:"ack"`
	Participant flexID          `json:"participant"`
	Author      json.RawMessage `json:"author"`
	Contact     *wireContact    `json:"contact"`
	NotifyName  string          `json:"notifyName"`
	FromName    string          `json:"fromName"`
	Data        *struct {
		NotifyName string `json:"notifyName"`
	} `json:"_data"`
}

type wireMedia struct {
	URL      string `json:"url"`
	MimeType string `json:"mimetype"`
	Filename string `json:"filename"`
}

type wireContact struct {
	PushName string `json:"pushName"`
	Name     string `json:"name"`
}

func (w *wireMessage) normalize() Message {
	m := Message{
		ID:        string(w.ID),
		From:      string(w.From),
		To:        string(w.To),
		Body:      w.Body,
		Type:      w.Type,
		Timestamp: w.Timestamp.v,
		FromMe:    w.FromMe,
		HasMedia:  w.HasMedia,
	}
	if m.Body == "" {
		m.Body = w.Text
	}
	if w.HasMedia && w.Media != nil && w.Media.URL != "" {
		m.Media = &Media{URL: w.Media.URL, MimeType: w.Media.MimeType, Filename: w.Media.Filename}
	}
	if w.Ack.ok {
		a := AckLevel(w.Ack.v)
		m.Ack = &a
	}

	s := Sender{NotifyName: w.NotifyName, FromName: w.FromName}
	if s.NotifyName == "" && w.Data != nil {
		s.NotifyName = w.Data.NotifyName
	}
	if w.Contact != nil {
		s.ContactPushName = w.Contact.PushName
		s.ContactName = w.Contact.Name
	}
	author := bytes.TrimSpace(w.Author)
	if len(author) > 0 {
		switch author[0] {
		case '"':
			_ = json.Unmarshal(author, &s.ID)
		case '{':
			var a struct {
				ID       flexID `json:"id"`
				PushName string `json:"pushName"`
				Name     string `json:"name"`
			}
			if json.Unmarshal(author, &a) == nil {
				s.AuthorPushName = a.PushName
				s.AuthorName = a.Name
				s.ID = string(a.ID)
			}
		}
	}
	if s.ID == "" {
		s.ID = string(w.Participant)
	}
	if s.ID == "" {
		s.ID = m.From
	}
	m.Sender = s
	return m
}

// DecodeMessage parses one message object (a push payload or a history entry).
func DecodeMessage(data []byte) (Message, error) {
	var w wireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		return Message{}, err
	}
	return w.normalize(), nil
}

// DecodeMessages parses a history snapshot. Entries that fail to parse are
// skipped and counted.
func DecodeMessages(data []byte) (msgs []Message, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}
	msgs = make([]Message, 0, len(raw))
	for _, r := range raw {
		m, err := DecodeMessage(r)
		if err != nil {
			skipped++
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, skipped, nil
}
