package bridge

import (
	"context"
	"net"
	"net/http"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/matheus3301/waha-client/internal/bus"
	"github.com/matheus3301/waha-client/internal/config"
	"github.com/matheus3301/waha-client/internal/lock"
	"github.com/matheus3301/waha-client/internal/logging"
	"github.com/matheus3301/waha-client/internal/session"
	"github.com/matheus3301/waha-client/internal/store"
)

// Binary is the bridge executable name used for its log file.
const Binary = "wahabridge"

// Params holds the resolved configuration passed to the fx module.
type Params struct {
	SessionName string
	Config      *config.Config
	ConfigPath  string // watched for secret changes; empty disables reload
	SocketPath  string // optional override for testing; empty = use default
}

// Module returns the fx module for the bridge, composing all providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("bridge",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideLock,
			provideStore,
			provideSettings,
			provideHealth,
			provideServer,
			NewProxy,
			NewWebhookHandler,
			NewHub,
			provideFavorites,
			NewRouter,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	if err := session.EnsureDir(p.SessionName); err != nil {
		return nil, err
	}
	return logging.New(session.LogPath(p.SessionName, Binary), p.SessionName, Binary, logging.Options{
		Level:   p.Config.Log.Level,
		Console: true,
	})
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	logger.Info("acquiring session lock", zap.String("session", p.SessionName))
	l, err := lock.Acquire(session.Dir(p.SessionName), lock.Owner{Binary: Binary})
	if err != nil {
		return nil, err
	}
	logger.Info("session lock acquired", zap.String("path", l.Path()))
	return l, nil
}

// provideStore depends on the lock so two bridges never migrate the same file.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := session.BridgeDBPath(p.SessionName)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	schema := db.Schema()
	logger.Info("store schema",
		zap.Uint("version", schema.Version),
		zap.Bool("upgraded", schema.Upgraded))
	logger.Info("store initialized", zap.String("path", dbPath))
	return db, nil
}

func provideSettings(p Params) (*Settings, error) {
	return NewSettings(p.Config.Bridge)
}

func provideFavorites(db *store.DB, logger *zap.Logger) *Favorites {
	return NewFavorites(db, logger)
}

func provideHealth(p Params, _ *lock.Lock, logger *zap.Logger) (*HealthServer, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = session.HealthSocketPath(p.SessionName)
	}
	return NewHealthServer(socketPath, logger)
}

func provideServer(p Params, handler http.Handler, logger *zap.Logger) *Server {
	addr := net.JoinHostPort(p.Config.Bridge.Host, strconv.Itoa(p.Config.Bridge.Port))
	return NewServer(addr, handler, logger)
}

func registerLifecycle(lc fx.Lifecycle, p Params, srv *Server, hs *HealthServer, hub *Hub, settings *Settings, db *store.DB, lk *lock.Lock, logger *zap.Logger) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			go hub.Run(ctx)

			go func() {
				if err := hs.Start(); err != nil {
					logger.Error("health server error", zap.Error(err))
				}
			}()

			if err := srv.Start(); err != nil {
				cancel()
				return err
			}
			if err := lk.SetAddr(srv.Addr()); err != nil {
				logger.Warn("record bridge address", zap.Error(err))
			}

			if p.ConfigPath != "" {
				go func() {
					err := config.Watch(ctx, p.ConfigPath, logger, func(cfg *config.Config) {
						if err := settings.Update(cfg.Bridge); err != nil {
							logger.Warn("ignoring bridge config", zap.Error(err))
						}
					})
					if err != nil {
						logger.Warn("config watch disabled", zap.Error(err))
					}
				}()
			}

			hs.SetServing(true)
			logger.Info("bridge ready", zap.String("session", p.SessionName))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			hs.SetServing(false)
			if cancel != nil {
				cancel()
			}
			if err := srv.Stop(ctx); err != nil {
				logger.Warn("http shutdown", zap.Error(err))
			}
			hub.Close()
			hs.Stop()
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("bridge stopped")
			return nil
		},
	})
}
