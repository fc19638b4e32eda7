package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFakeAdvanceFiresDueTimers(t *testing.T) {
	c := NewFake()
	var fired []string
	c.AfterFunc(5*time.Second, func() { fired = append(fired, "five") })
	c.AfterFunc(time.Second, func() { fired = append(fired, "one") })

	c.Advance(4 * time.Second)
	assert.Equal(t, []string{"one"}, fired)
	assert.Equal(t, 1, c.Pending())

	c.Advance(time.Second)
	assert.Equal(t, []string{"one", "five"}, fired)
	assert.Equal(t, 0, c.Pending())
}

func TestFakeStop(t *testing.T) {
	c := NewFake()
	called := false
	tm := c.AfterFunc(time.Second, func() { called = true })
	assert.True(t, tm.Stop())
	assert.False(t, tm.Stop())
	c.Advance(time.Minute)
	assert.False(t, called)
}

func TestFakeSleepAdvances(t *testing.T) {
	c := NewFake()
	start := c.Now()
	assert.NoError(t, c.Sleep(context.Background(), 2*time.Second))
	assert.Equal(t, 2*time.Second, c.Now().Sub(start))
	assert.Equal(t, []time.Duration{2 * time.Second}, c.Slept())
}

func TestRealSleepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Real{}.Sleep(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}
