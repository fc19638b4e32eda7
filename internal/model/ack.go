package model

import "github.com/goccy/go-json"

// AckLevel is the delivery confirmation tier of an outbound message.
// The gateway may also report -1 (error) and 4 (played); both are carried
// through unchanged.
type AckLevel int

const (
	AckError     AckLevel = -1
	AckNone      AckLevel = 0
	AckSent      AckLevel = 1
	AckDelivered AckLevel = 2
	AckRead      AckLevel = 3
	AckPlayed    AckLevel = 4
)

func (a AckLevel) String() string {
	switch a {
	case AckError:
		return "ERROR"
	case AckNone:
		return "PENDING"
	case AckSent:
		return "SERVER"
	case AckDelivered:
		return "DEVICE"
	case AckRead:
		return "READ"
	case AckPlayed:
		return "PLAYED"
	}
	return "UNKNOWN"
}

// AckEvent reports a new ack level for one message.
type AckEvent struct {
	MessageID string
	ChatID    string
	Level     AckLevel
}

type wireAck struct {
	ID   flexID `json:"id"`
	From flexID `json:"from"`
	To   flexID `json:"to"`
	Ack  optInt `json:"ack"`
}

// DecodeAck parses a message.ack payload.
func DecodeAck(data []byte) (AckEvent, error) {
	var w wireAck
	if err := json.Unmarshal(data, &w); err != nil {
		return AckEvent{}, err
	}
	if w.ID == "" {
		return AckEvent{}, ErrMissingID
	}
	chat := string(w.From)
	if chat == "" {
		chat = string(w.To)
	}
	return AckEvent{MessageID: string(w.ID), ChatID: chat, Level: AckLevel(w.Ack.v)}, nil
}
