// Package app is the client controller. It routes push events and user
// actions to the session tracker, the transport channel and the
// conversation reconciler, and reports outcomes to the presenter.
package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bus"
	"github.com/matheus3301/waha-client/internal/dispatch"
	"github.com/matheus3301/waha-client/internal/model"
	"github.com/matheus3301/waha-client/internal/status"
	"github.com/matheus3301/waha-client/internal/store"
	"github.com/matheus3301/waha-client/internal/view"
)

// ErrNoIdentity is returned by actions that need a phone number before one
// was set.
var ErrNoIdentity = errors.New("no phone number configured")

var identityRegexp = regexp.MustCompile(`^[1-9]\d{7,14}$`)

// Tracker is the session state the controller drives.
type Tracker interface {
	Current() status.Info
	CheckStatus(ctx context.Context) (status.Info, error)
	GenerateQR(ctx context.Context, identity string) (*model.QRImage, error)
	Create(ctx context.Context, identity string) (existed bool, err error)
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Logout(ctx context.Context) error
	Delete(ctx context.Context) error
	List(ctx context.Context) ([]status.Info, error)
}

// Channel is the push transport.
type Channel interface {
	Open(identity string, h dispatch.Handlers)
	IsOpen() bool
	Shutdown()
}

// Conversations is the reconciler surface the controller uses.
type Conversations interface {
	Select(ctx context.Context, id string) error
	MergeMessage(ctx context.Context, m model.Message)
	ApplyAck(a model.AckEvent) bool
	RefreshChats(ctx context.Context) error
	Send(ctx context.Context, text string) error
	Clear()
}

// IdentityStore persists small client settings. *store.DB satisfies it.
type IdentityStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
}

// Deps are the collaborators of an App. All but Bus and Logger are
// required.
type Deps struct {
	Tracker       Tracker
	Channel       Channel
	Conversations Conversations
	Presenter     view.Presenter
	Identity      IdentityStore
	Bus           *bus.Bus
	Logger        *zap.Logger
}

// App is the client controller.
type App struct {
	tracker   Tracker
	channel   Channel
	convs     Conversations
	presenter view.Presenter
	settings  IdentityStore
	bus       *bus.Bus
	logger    *zap.Logger

	mu       sync.Mutex
	ctx      context.Context
	identity string
}

// New checks deps and returns an App.
func New(d Deps) (*App, error) {
	switch {
	case d.Tracker == nil:
		return nil, errors.New("app: tracker is required")
	case d.Channel == nil:
		return nil, errors.New("app: channel is required")
	case d.Conversations == nil:
		return nil, errors.New("app: conversations are required")
	case d.Presenter == nil:
		return nil, errors.New("app: presenter is required")
	case d.Identity == nil:
		return nil, errors.New("app: identity store is required")
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &App{
		tracker:   d.Tracker,
		channel:   d.Channel,
		convs:     d.Conversations,
		presenter: d.Presenter,
		settings:  d.Identity,
		bus:       d.Bus,
		logger:    d.Logger,
		ctx:       context.Background(),
	}, nil
}

// Boot restores the saved identity, opens the push channel when one is
// known and runs a first status check. ctx bounds work started by push
// events for the lifetime of the App.
func (a *App) Boot(ctx context.Context) error {
	a.mu.Lock()
	a.ctx = ctx
	a.mu.Unlock()

	identity, err := a.Restore()
	if err != nil {
		a.logger.Error("load identity", zap.Error(err))
	}

	if identity == "" {
		a.presenter.ShowLoggedOut()
		a.presenter.Notify("Set your phone number to begin", view.LevelInfo)
		return nil
	}
	a.logger.Info("identity restored", zap.String("phone", identity))
	a.openChannel()
	_, err = a.CheckStatus(ctx)
	return err
}

// Restore loads the saved phone number without touching the channel or
// the presenter. One-shot commands use it instead of Boot.
func (a *App) Restore() (string, error) {
	identity, err := a.settings.Get(store.KeyIdentity)
	if err != nil {
		return "", err
	}
	a.mu.Lock()
	a.identity = identity
	a.mu.Unlock()
	return identity, nil
}

// Shutdown stops the push channel for good.
func (a *App) Shutdown() {
	a.channel.Shutdown()
}

// Identity returns the configured phone number.
func (a *App) Identity() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.identity
}

// SetIdentity validates and persists the phone number and opens the push
// channel for it.
func (a *App) SetIdentity(phone string) error {
	phone = normalizeIdentity(phone)
	if !identityRegexp.MatchString(phone) {
		return a.fail("save phone number", fmt.Errorf("%q is not a phone number", phone))
	}
	if err := a.settings.Set(store.KeyIdentity, phone); err != nil {
		return a.fail("save phone number", err)
	}
	a.mu.Lock()
	a.identity = phone
	a.mu.Unlock()
	a.bus.Emit(bus.KindIdentitySet, phone)
	a.presenter.Notify("Phone number saved", view.LevelSuccess)
	a.openChannel()
	return nil
}

// CheckStatus refreshes the session snapshot and moves the interface to
// the matching screen.
func (a *App) CheckStatus(ctx context.Context) (status.Info, error) {
	info, err := a.tracker.CheckStatus(ctx)
	a.presenter.ShowSessionInfo(info)
	if err != nil {
		return info, a.fail("check status", err)
	}
	switch {
	case info.Status.LoggedIn():
		a.presenter.ShowLoggedIn()
		a.openChannel()
		a.refresh(ctx)
	case info.Status == status.ScanQRCode:
		a.presenter.ShowLoggedOut()
		a.openChannel()
		qr, err := a.tracker.GenerateQR(ctx, a.Identity())
		switch {
		case err != nil:
			a.logger.Warn("fetch qr", zap.Error(err))
		case qr != nil:
			a.presenter.ShowQRImage(*qr)
		}
	default:
		a.presenter.ShowLoggedOut()
	}
	return info, nil
}

// CreateSession creates the gateway session for the configured identity.
func (a *App) CreateSession(ctx context.Context) error {
	identity, err := a.requireIdentity("create session")
	if err != nil {
		return err
	}
	existed, err := a.tracker.Create(ctx, identity)
	if err != nil {
		return a.fail("create session", err)
	}
	if existed {
		a.presenter.Notify("Session already exists; webhooks updated", view.LevelInfo)
	} else {
		a.presenter.Notify("Session created", view.LevelSuccess)
	}
	a.openChannel()
	_, err = a.CheckStatus(ctx)
	return err
}

// StartSession starts the gateway session.
func (a *App) StartSession(ctx context.Context) error {
	if err := a.tracker.Start(ctx); err != nil {
		return a.fail("start session", err)
	}
	a.presenter.Notify("Session starting", view.LevelSuccess)
	a.openChannel()
	_, err := a.CheckStatus(ctx)
	return err
}

// StopSession stops the gateway session.
func (a *App) StopSession(ctx context.Context) error {
	if err := a.tracker.Stop(ctx); err != nil {
		return a.fail("stop session", err)
	}
	a.presenter.Notify("Session stopped", view.LevelSuccess)
	_, err := a.CheckStatus(ctx)
	return err
}

// Logout unpairs the account and clears the open conversation.
func (a *App) Logout(ctx context.Context) error {
	if err := a.tracker.Logout(ctx); err != nil {
		return a.fail("logout", err)
	}
	a.convs.Clear()
	a.presenter.Notify("Logged out", view.LevelSuccess)
	_, err := a.CheckStatus(ctx)
	return err
}

// DeleteSession removes the gateway session.
func (a *App) DeleteSession(ctx context.Context) error {
	if err := a.tracker.Delete(ctx); err != nil {
		return a.fail("delete session", err)
	}
	a.convs.Clear()
	a.presenter.Notify("Session deleted", view.LevelSuccess)
	_, err := a.CheckStatus(ctx)
	return err
}

// GenerateQR shows the pairing QR, creating or starting the session first
// when needed.
func (a *App) GenerateQR(ctx context.Context) error {
	identity, err := a.requireIdentity("generate qr")
	if err != nil {
		return err
	}
	a.openChannel()
	qr, err := a.tracker.GenerateQR(ctx, identity)
	a.presenter.ShowSessionInfo(a.tracker.Current())
	if err != nil {
		return a.fail("generate qr", err)
	}
	if qr == nil {
		a.presenter.Notify("Already logged in", view.LevelInfo)
		a.presenter.ShowLoggedIn()
		a.refresh(ctx)
		return nil
	}
	a.presenter.ShowQRImage(*qr)
	return nil
}

// Sessions lists every session known to the gateway.
func (a *App) Sessions(ctx context.Context) ([]status.Info, error) {
	infos, err := a.tracker.List(ctx)
	if err != nil {
		return nil, a.fail("list sessions", err)
	}
	return infos, nil
}

// Refresh reloads the conversation list.
func (a *App) Refresh(ctx context.Context) error {
	if err := a.convs.RefreshChats(ctx); err != nil {
		return a.fail("refresh chats", err)
	}
	return nil
}

// SelectConversation opens a conversation.
func (a *App) SelectConversation(ctx context.Context, id string) error {
	if err := a.convs.Select(ctx, id); err != nil {
		return a.fail("open conversation", err)
	}
	return nil
}

// Send posts text to the open conversation.
func (a *App) Send(ctx context.Context, text string) error {
	if err := a.convs.Send(ctx, text); err != nil {
		return a.fail("send message", err)
	}
	return nil
}

func (a *App) requireIdentity(action string) (string, error) {
	identity := a.Identity()
	if identity == "" {
		return "", a.fail(action, ErrNoIdentity)
	}
	return identity, nil
}

func (a *App) fail(action string, err error) error {
	a.logger.Error(action+" failed", zap.Error(err))
	a.presenter.Notify(fmt.Sprintf("%s: %v", capitalize(action), err), view.LevelError)
	return fmt.Errorf("%s: %w", action, err)
}

func (a *App) refresh(ctx context.Context) {
	if err := a.convs.RefreshChats(ctx); err != nil {
		a.logger.Warn("refresh chats", zap.Error(err))
	}
}

func (a *App) openChannel() {
	identity := a.Identity()
	if identity == "" {
		return
	}
	a.channel.Open(identity, a.Handlers())
}

func (a *App) baseContext() context.Context {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ctx
}

func normalizeIdentity(phone string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
