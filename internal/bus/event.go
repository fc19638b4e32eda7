package bus

import "time"

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds shared between packages.
const (
	KindStatusChanged = "session.status_changed"
	KindIdentitySet   = "session.identity_set"
	// KindWebhookPrefix prefixes every gateway webhook republished by the bridge,
	// e.g. "webhook.message".
	KindWebhookPrefix = "webhook."
	KindChannelOpen   = "channel.open"
	KindChannelClosed = "channel.closed"
)
