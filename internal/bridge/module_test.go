package bridge

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"

	"github.com/matheus3301/waha-client/internal/config"
	"github.com/matheus3301/waha-client/internal/lock"
	"github.com/matheus3301/waha-client/internal/session"
)

func TestBridgeLifecycle(t *testing.T) {
	// Use a short path to stay under the Unix socket path limit.
	home, err := os.MkdirTemp("/tmp", "waha-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(home) })
	t.Setenv("WAHA_CLIENT_HOME", home)

	cfg := config.Default()
	cfg.Bridge.Host = "127.0.0.1"
	cfg.Bridge.Port = 0
	cfg.Log.Level = "error"

	app := fxtest.New(t, Module(Params{SessionName: "test", Config: cfg}))
	app.RequireStart()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	st, err := Probe(ctx, session.HealthSocketPath("test"))
	require.NoError(t, err)
	assert.Equal(t, "SERVING", st)

	_, err = lock.Acquire(session.Dir("test"), lock.Owner{Binary: Binary})
	var held *lock.LockHeldError
	require.ErrorAs(t, err, &held, "a second bridge must not start")
	assert.Equal(t, Binary, held.Owner.Binary)
	assert.Regexp(t, `^127\.0\.0\.1:\d+$`, held.Owner.Addr)
	assert.NotContains(t, held.Owner.Addr, ":0")

	app.RequireStop()

	_, err = os.Stat(session.HealthSocketPath("test"))
	assert.True(t, os.IsNotExist(err), "socket removed on stop")
	_, err = os.Stat(session.BridgeDBPath("test"))
	assert.NoError(t, err)
}
