package bus

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case evt := <-ch:
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func assertQuiet(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case evt := <-ch:
		t.Fatalf("unexpected event %q", evt.Kind)
	case <-time.After(30 * time.Millisecond):
	}
}

func TestPrefixRouting(t *testing.T) {
	b := New()
	sessions, unsubS := b.Subscribe("session.", 4)
	defer unsubS()
	hooks, unsubW := b.Subscribe(KindWebhookPrefix, 4)
	defer unsubW()
	all, unsubA := b.Subscribe("", 4)
	defer unsubA()

	b.Emit(KindStatusChanged, "WORKING")
	b.Emit(KindWebhookPrefix+"message", []byte(`{}`))

	assert.Equal(t, KindStatusChanged, receive(t, sessions).Kind)
	assertQuiet(t, sessions)

	assert.Equal(t, "webhook.message", receive(t, hooks).Kind)
	assertQuiet(t, hooks)

	assert.Equal(t, KindStatusChanged, receive(t, all).Kind)
	assert.Equal(t, "webhook.message", receive(t, all).Kind)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("channel.", 2)
	unsub()
	unsub()

	b.Emit(KindChannelOpen, nil)
	assertQuiet(t, ch)
	assert.Zero(t, b.Subscribers())
}

func TestFullSubscriberIsSkipped(t *testing.T) {
	b := New()
	slow, unsubSlow := b.Subscribe("", 1)
	defer unsubSlow()
	fast, unsubFast := b.Subscribe("", 8)
	defer unsubFast()

	b.Emit("x.one", nil)
	b.Emit("x.two", nil)

	assert.Equal(t, "x.one", receive(t, slow).Kind)
	assertQuiet(t, slow)
	assert.Equal(t, "x.one", receive(t, fast).Kind)
	assert.Equal(t, "x.two", receive(t, fast).Kind)
	assert.EqualValues(t, 1, b.Dropped())
}

func TestEmitStampsTime(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(KindIdentitySet, 1)
	defer unsub()

	before := time.Now()
	b.Emit(KindIdentitySet, "5511999999999")

	evt := receive(t, ch)
	assert.False(t, evt.Timestamp.Before(before))
	assert.Equal(t, "5511999999999", evt.Payload)
}

func TestEmitOnNilBus(t *testing.T) {
	var b *Bus
	assert.NotPanics(t, func() { b.Emit(KindChannelClosed, nil) })
}

func TestListenUntilCancelled(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan string, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		b.Listen(ctx, "session.", 4, func(evt Event) { got <- evt.Kind })
	}()

	require.Eventually(t, func() bool { return b.Subscribers() == 1 }, time.Second, 5*time.Millisecond)
	b.Emit(KindIdentitySet, "1")
	assert.Equal(t, KindIdentitySet, <-got)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after cancel")
	}
	assert.Zero(t, b.Subscribers())
}
