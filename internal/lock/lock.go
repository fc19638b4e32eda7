// Package lock guarantees a single bridge per session with an flock on a
// file in the session directory. The file also describes its owner.
package lock

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/goccy/go-json"
)

// FileName is the lock file created inside the session directory.
const FileName = "bridge.lock"

// Owner describes the process holding the lock.
type Owner struct {
	PID     int       `json:"pid"`
	Binary  string    `json:"binary"`
	Addr    string    `json:"addr,omitempty"`
	Started time.Time `json:"started"`
}

// LockHeldError is returned when another wahabridge already serves the session.
type LockHeldError struct {
	Owner Owner
	Path  string
}

func (e *LockHeldError) Error() string {
	if e.Owner.Addr != "" {
		return fmt.Sprintf("bridge already running for this session: %s (PID %d) on %s, lock %s",
			e.Owner.Binary, e.Owner.PID, e.Owner.Addr, e.Path)
	}
	return fmt.Sprintf("bridge already running for this session: lock held by PID %d (%s)", e.Owner.PID, e.Path)
}

// Lock is an acquired session lock.
type Lock struct {
	file  *os.File
	path  string
	owner Owner
}

// Acquire takes an exclusive, non-blocking flock in sessionDir and records
// owner. PID and Started are filled in. A held lock yields *LockHeldError
// describing the current holder.
func Acquire(sessionDir string, owner Owner) (*Lock, error) {
	lockPath := filepath.Join(sessionDir, FileName)

	if err := os.MkdirAll(sessionDir, 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		_ = f.Close()
		held, _ := Inspect(sessionDir)
		return nil, &LockHeldError{Owner: held, Path: lockPath}
	}

	owner.PID = os.Getpid()
	owner.Started = time.Now().UTC().Truncate(time.Second)
	l := &Lock{file: f, path: lockPath, owner: owner}
	if err := l.write(); err != nil {
		_ = f.Close()
		return nil, err
	}
	return l, nil
}

// Inspect reads the owner record in sessionDir without locking. A missing
// file yields fs.ErrNotExist.
func Inspect(sessionDir string) (Owner, error) {
	var o Owner
	data, err := os.ReadFile(filepath.Join(sessionDir, FileName))
	if err != nil {
		return o, err
	}
	if len(data) == 0 {
		return o, fs.ErrNotExist
	}
	if err := json.Unmarshal(data, &o); err != nil {
		return o, fmt.Errorf("parse lock file: %w", err)
	}
	return o, nil
}

// SetAddr records the address the owner listens on.
func (l *Lock) SetAddr(addr string) error {
	if l == nil || l.file == nil {
		return errors.New("lock released")
	}
	l.owner.Addr = addr
	return l.write()
}

func (l *Lock) write() error {
	data, err := json.Marshal(l.owner)
	if err != nil {
		return err
	}
	if err := l.file.Truncate(0); err != nil {
		return err
	}
	_, err = l.file.WriteAt(append(data, '\n'), 0)
	return err
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Owner returns what the lock file records.
func (l *Lock) Owner() Owner {
	if l == nil {
		return Owner{}
	}
	return l.owner
}

// Release removes the file and drops the lock. Safe to call on a nil or
// already released Lock.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}
