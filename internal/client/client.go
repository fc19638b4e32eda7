// Package client assembles the controller stack for one session: gateway
// requests, status tracking, the push channel and the conversation view
// model, bound to a presenter.
package client

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/app"
	"github.com/matheus3301/waha-client/internal/bus"
	"github.com/matheus3301/waha-client/internal/channel"
	"github.com/matheus3301/waha-client/internal/config"
	"github.com/matheus3301/waha-client/internal/conversation"
	"github.com/matheus3301/waha-client/internal/gateway"
	"github.com/matheus3301/waha-client/internal/session"
	"github.com/matheus3301/waha-client/internal/status"
	"github.com/matheus3301/waha-client/internal/store"
	"github.com/matheus3301/waha-client/internal/view"
)

// Stack is a wired client for one session.
type Stack struct {
	Bus           *bus.Bus
	Gateway       *gateway.Client
	Tracker       *status.Tracker
	Channel       *channel.Channel
	Conversations *conversation.Reconciler
	App           *app.App
	DB            *store.DB

	logger *zap.Logger
}

// Options tweaks Build. DBPath defaults to the session's client database.
type Options struct {
	DBPath string
	Logger *zap.Logger
}

// Build wires a Stack for sessionName from cfg. Call Close when done.
func Build(cfg *config.Config, sessionName string, presenter view.Presenter, opts Options) (*Stack, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		if err := session.EnsureDir(sessionName); err != nil {
			return nil, fmt.Errorf("create session dir: %w", err)
		}
		dbPath = session.ClientDBPath(sessionName)
	}

	b := bus.New()

	gw, err := gateway.New(cfg.Gateway.BaseURL, sessionName,
		gateway.WithAPIKey(cfg.Gateway.APIKey),
		gateway.WithTimeout(cfg.Gateway.Timeout.Duration),
		gateway.WithWebhook(WebhookTarget(cfg)),
		gateway.WithLogger(logger.Named("gateway")),
	)
	if err != nil {
		return nil, err
	}

	tracker, err := status.NewTracker(gw, status.Options{
		SettleDelay: cfg.Session.QRSettleDelay.Duration,
		Bus:         b,
		Logger:      logger.Named("status"),
	})
	if err != nil {
		return nil, err
	}

	ch, err := channel.New(channel.Options{
		URL:            cfg.Gateway.WSURL,
		ReconnectDelay: cfg.Channel.ReconnectDelay.Duration,
		Bus:            b,
		Logger:         logger.Named("channel"),
	})
	if err != nil {
		return nil, err
	}

	convs, err := conversation.New(gw, presenter, conversation.Options{
		MessageLimit: cfg.Session.MessageLimit,
		Logger:       logger.Named("conversation"),
	})
	if err != nil {
		return nil, err
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open client store: %w", err)
	}

	a, err := app.New(app.Deps{
		Tracker:       tracker,
		Channel:       ch,
		Conversations: convs,
		Presenter:     presenter,
		Identity:      db,
		Bus:           b,
		Logger:        logger.Named("app"),
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Stack{
		Bus:           b,
		Gateway:       gw,
		Tracker:       tracker,
		Channel:       ch,
		Conversations: convs,
		App:           a,
		DB:            db,
		logger:        logger,
	}, nil
}

// WebhookTarget is where sessions created by this client deliver events.
// The signing secret is only sent when the bridge verifies it.
func WebhookTarget(cfg *config.Config) gateway.WebhookTarget {
	t := gateway.WebhookTarget{URL: cfg.Session.WebhookURL}
	if cfg.Bridge.WebhookHMAC {
		t.Secret = cfg.Bridge.WebhookSecret
	}
	return t
}

// Journal logs every bus event at debug level until ctx ends.
func (s *Stack) Journal(ctx context.Context) {
	go s.Bus.Listen(ctx, "", 64, func(evt bus.Event) {
		s.logger.Debug("event", zap.String("kind", evt.Kind), zap.Any("payload", evt.Payload))
	})
}

// Close shuts the controller down and closes the store.
func (s *Stack) Close() error {
	s.App.Shutdown()
	return s.DB.Close()
}
