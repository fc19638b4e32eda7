package status

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bus"
	"github.com/matheus3301/waha-client/internal/clock"
	"github.com/matheus3301/waha-client/internal/model"
)

// DefaultSettleDelay is how long to wait after starting a session before
// asking for its QR.
const DefaultSettleDelay = 2 * time.Second

// Gateway is the part of the request layer the tracker drives.
type Gateway interface {
	GetSession(ctx context.Context) (Info, error)
	ListSessions(ctx context.Context) ([]Info, error)
	CreateSession(ctx context.Context, identity string) error
	ConfigureWebhooks(ctx context.Context) error
	StartSession(ctx context.Context) error
	StopSession(ctx context.Context) error
	LogoutSession(ctx context.Context) error
	DeleteSession(ctx context.Context) error
	QR(ctx context.Context) (model.QRImage, error)
}

// Options configures a Tracker.
type Options struct {
	SettleDelay time.Duration
	Clock       clock.Clock
	Bus         *bus.Bus
	Logger      *zap.Logger
}

// Tracker holds the last known session status. It never polls; callers
// run CheckStatus after each status-changing operation.
type Tracker struct {
	gw     Gateway
	settle time.Duration
	clock  clock.Clock
	bus    *bus.Bus
	logger *zap.Logger

	mu      sync.RWMutex
	current Info
}

// NewTracker creates a tracker that starts out STOPPED.
func NewTracker(gw Gateway, opts Options) (*Tracker, error) {
	if gw == nil {
		return nil, errors.New("status: gateway is required")
	}
	t := &Tracker{
		gw:      gw,
		settle:  opts.SettleDelay,
		clock:   opts.Clock,
		bus:     opts.Bus,
		logger:  opts.Logger,
		current: Info{Status: Stopped},
	}
	if t.settle <= 0 {
		t.settle = DefaultSettleDelay
	}
	if t.clock == nil {
		t.clock = clock.Real{}
	}
	if t.logger == nil {
		t.logger = zap.NewNop()
	}
	return t, nil
}

// Current returns the last known session snapshot.
func (t *Tracker) Current() Info {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}

// CheckStatus queries the gateway and replaces the current snapshot.
// A missing session is reported as STOPPED without error. Any other
// failure moves the snapshot to ERROR and is returned.
func (t *Tracker) CheckStatus(ctx context.Context) (Info, error) {
	info, _, err := t.query(ctx)
	if err != nil {
		t.set(Info{Name: t.Current().Name, Status: Error})
		return t.Current(), err
	}
	t.set(info)
	return info, nil
}

// query fetches the session; absent reports a 404.
func (t *Tracker) query(ctx context.Context) (info Info, absent bool, err error) {
	info, err = t.gw.GetSession(ctx)
	if httpStatus(err) == http.StatusNotFound {
		return Info{Name: t.Current().Name, Status: Stopped}, true, nil
	}
	if err != nil {
		return Info{}, false, err
	}
	return info, false, nil
}

// GenerateQR returns the pairing QR, creating or starting the session as
// needed. It returns nil, nil when the session is already logged in.
//
//	absent            create (starts it), settle, fetch
//	FAILED / empty    create; start if it already existed; settle, fetch
//	STOPPED           start, settle, fetch
//	anything else     fetch
func (t *Tracker) GenerateQR(ctx context.Context, identity string) (*model.QRImage, error) {
	info, absent, err := t.query(ctx)
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}
	t.set(info)

	if info.Status.LoggedIn() {
		return nil, nil
	}

	switch {
	case absent:
		if _, err := t.Create(ctx, identity); err != nil {
			return nil, err
		}
		if err := t.clock.Sleep(ctx, t.settle); err != nil {
			return nil, err
		}
	case info.Status == Failed || info.Status == "":
		existed, err := t.Create(ctx, identity)
		if err != nil {
			return nil, err
		}
		if existed {
			if err := t.gw.StartSession(ctx); err != nil {
				return nil, fmt.Errorf("start session: %w", err)
			}
		}
		if err := t.clock.Sleep(ctx, t.settle); err != nil {
			return nil, err
		}
	case info.Status == Stopped:
		if err := t.gw.StartSession(ctx); err != nil {
			return nil, fmt.Errorf("start session: %w", err)
		}
		if err := t.clock.Sleep(ctx, t.settle); err != nil {
			return nil, err
		}
	}

	qr, err := t.gw.QR(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch QR: %w", err)
	}
	return &qr, nil
}

// Create creates the session for identity. When the gateway reports it
// already exists (422) the webhook config is updated instead and existed
// is true.
func (t *Tracker) Create(ctx context.Context, identity string) (existed bool, err error) {
	err = t.gw.CreateSession(ctx, identity)
	if httpStatus(err) == http.StatusUnprocessableEntity {
		t.logger.Info("session exists, updating webhooks")
		if err := t.gw.ConfigureWebhooks(ctx); err != nil {
			return true, fmt.Errorf("update session config: %w", err)
		}
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("create session: %w", err)
	}
	return false, nil
}

// Start reconfigures webhooks, then starts the session. A webhook failure
// is logged only.
func (t *Tracker) Start(ctx context.Context) error {
	if err := t.gw.ConfigureWebhooks(ctx); err != nil {
		t.logger.Warn("configure webhooks failed", zap.Error(err))
	}
	if err := t.gw.StartSession(ctx); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	return nil
}

// Stop stops the session.
func (t *Tracker) Stop(ctx context.Context) error {
	if err := t.gw.StopSession(ctx); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}
	return nil
}

// Logout unpairs the session.
func (t *Tracker) Logout(ctx context.Context) error {
	if err := t.gw.LogoutSession(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// Delete removes the session.
func (t *Tracker) Delete(ctx context.Context) error {
	if err := t.gw.DeleteSession(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// List returns every session on the gateway.
func (t *Tracker) List(ctx context.Context) ([]Info, error) {
	return t.gw.ListSessions(ctx)
}

// set replaces the snapshot and publishes a change event when the status
// moved. The gateway is authoritative, so unexpected moves are logged and
// applied anyway.
func (t *Tracker) set(info Info) {
	t.mu.Lock()
	from := t.current.Status
	t.current = info
	t.mu.Unlock()

	if from == info.Status {
		return
	}
	if !Expected(from, info.Status) {
		t.logger.Warn("unexpected session transition",
			zap.String("from", string(from)), zap.String("to", string(info.Status)))
	}
	t.logger.Info("session status changed",
		zap.String("from", string(from)), zap.String("to", string(info.Status)))
	t.bus.Emit(bus.KindStatusChanged, Change{From: from, To: info.Status, Info: info})
}

func httpStatus(err error) int {
	var coded interface{ HTTPStatus() int }
	if errors.As(err, &coded) {
		return coded.HTTPStatus()
	}
	return 0
}
