package lock

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireRecordsOwner(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, Owner{Binary: "wahabridge"})
	require.NoError(t, err)
	defer func() { _ = l.Release() }()

	assert.Equal(t, filepath.Join(dir, FileName), l.Path())

	o, err := Inspect(dir)
	require.NoError(t, err)
	assert.Equal(t, os.Getpid(), o.PID)
	assert.Equal(t, "wahabridge", o.Binary)
	assert.False(t, o.Started.IsZero())
	assert.Empty(t, o.Addr)

	require.NoError(t, l.SetAddr("127.0.0.1:8001"))
	o, err = Inspect(dir)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8001", o.Addr)
	assert.Equal(t, l.Owner(), o)
}

func TestDoubleAcquireFails(t *testing.T) {
	dir := t.TempDir()

	l1, err := Acquire(dir, Owner{Binary: "wahabridge", Addr: "0.0.0.0:8001"})
	require.NoError(t, err)
	defer func() { _ = l1.Release() }()

	_, err = Acquire(dir, Owner{Binary: "wahabridge"})
	require.Error(t, err)

	var held *LockHeldError
	require.True(t, errors.As(err, &held), "got %T: %v", err, err)
	assert.Equal(t, os.Getpid(), held.Owner.PID)
	assert.Equal(t, "0.0.0.0:8001", held.Owner.Addr)
	assert.Contains(t, held.Error(), "0.0.0.0:8001")
}

func TestReleaseRemovesFile(t *testing.T) {
	dir := t.TempDir()

	l, err := Acquire(dir, Owner{})
	require.NoError(t, err)
	require.NoError(t, l.Release())
	require.NoError(t, l.Release())
	assert.Error(t, l.SetAddr("x"))

	_, err = Inspect(dir)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	// The lock is free again.
	l2, err := Acquire(dir, Owner{})
	require.NoError(t, err)
	assert.NoError(t, l2.Release())
}

func TestReleaseNil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
	assert.Empty(t, l.Path())
	assert.Equal(t, Owner{}, l.Owner())
}
