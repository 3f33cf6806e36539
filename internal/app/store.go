package app

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/redis"
	"github.com/MrSnakeDoc/shelf/internal/scheduler"
	"github.com/MrSnakeDoc/shelf/internal/state"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/shelf/internal/store/redis"
	"github.com/MrSnakeDoc/shelf/internal/store/remote"
	"github.com/MrSnakeDoc/shelf/internal/store/sqlite"
)

// OpenStore opens the backend selected by SHELF_STORE_BACKEND.
func OpenStore(ctx context.Context, cfg *config.Config, log logger.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("memory store selected, bookmarks are lost on exit")
		return memory.NewStore(), nil

	case config.BackendRedis:
		client, err := redis.Connect(ctx, redis.OptionsFromConfig(cfg), log)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return redisstore.NewStore(client), nil

	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		log.Info("sqlite store opened", logger.String("path", cfg.SQLitePath))
		return st, nil

	case config.BackendRemote:
		opts := []remote.Option{remote.WithTimeout(cfg.RemoteTimeout)}
		if cfg.RemoteToken != "" {
			opts = append(opts, remote.WithToken(cfg.RemoteToken))
		}
		if cfg.IdentityMode == config.IdentityHeader {
			opts = append(opts, remote.WithOwnerHeader(cfg.IdentityHeader))
		}
		return remote.New(cfg.RemoteURL, opts...)

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// Session is what the CLI and TUI drive: one owner's sync state over an
// open store, plus its refresher.
type Session struct {
	Owner     string
	State     *state.State
	Refresher *scheduler.Refresher

	store store.Store
}

// NewSession opens the store and binds a sync state to it. SHELF_OWNER
// must be set.
func NewSession(ctx context.Context, cfg *config.Config, log logger.Logger) (*Session, error) {
	if cfg.Owner == "" {
		return nil, fmt.Errorf("no owner configured, set SHELF_OWNER")
	}

	st, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return newSession(st, cfg.Owner, cfg, log), nil
}

func newSession(st store.Store, owner string, cfg *config.Config, log logger.Logger) *Session {
	s := state.New(st, log)
	return &Session{
		Owner:     owner,
		State:     s,
		Refresher: scheduler.NewRefresher(s, func() string { return owner }, log, cfg.RefreshInterval),
		store:     st,
	}
}

// Load fills the state for the session owner.
func (s *Session) Load(ctx context.Context) error {
	return s.State.Load(ctx, s.Owner)
}

// Close stops the refresher and closes the store.
func (s *Session) Close() error {
	s.Refresher.Stop()
	return s.store.Close()
}
