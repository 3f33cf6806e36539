package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/httpserver"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/identity"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/utils"
	"github.com/MrSnakeDoc/shelf/internal/version"
)

// App is the `shelf serve` process: the HTTP API over one store.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	server *httpserver.Server
	store  store.Store
}

// New opens the store and identity provider and builds the HTTP server.
// The remote backend is rejected: a server cannot proxy another server.
func New(ctx context.Context, cfg *config.Config, loggerClient logger.Logger) (*App, error) {
	if cfg.StoreBackend == config.BackendRemote {
		return nil, fmt.Errorf("store backend %q is for clients only, pick memory, redis or sqlite to serve", cfg.StoreBackend)
	}

	// Fail fast if the store is unavailable
	st, err := OpenStore(ctx, cfg, loggerClient)
	if err != nil {
		return nil, err
	}

	provider, err := NewIdentity(ctx, cfg)
	if err != nil {
		utils.CloseLogged(st, "store", loggerClient)
		return nil, err
	}
	loggerClient.Info("identity provider ready", logger.String("mode", cfg.IdentityMode))

	d := deps.Deps{
		Logger:          loggerClient,
		StartTime:       time.Now(),
		Version:         version.Version,
		Commit:          version.Commit,
		BuildDate:       version.BuildDate,
		GoVersion:       version.GoVersion,
		TimeNow:         time.Now,
		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Store:           st,
		Backend:         cfg.StoreBackend,
		Identity:        provider,
		IdentityMode:    cfg.IdentityMode,
	}

	return &App{
		cfg:    cfg,
		logger: loggerClient,
		server: httpserver.New(cfg, loggerClient, d),
		store:  st,
	}, nil
}

// Run serves until ctx is done or the listener fails, then shuts down
// gracefully and closes the store.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting shelf %s on %s (store=%s)", version.Version, a.cfg.ListenPort, a.cfg.StoreBackend)
	a.logger.Info(version.String())

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		utils.CloseLogged(a.store, "store", a.logger)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		utils.CloseLogged(a.store, "store", a.logger)
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if err := a.store.Close(); err != nil {
		a.logger.Warnf("failed to close store: %v", err)
	} else {
		a.logger.Info("✅ Store closed cleanly")
	}

	a.logger.Info("✅ shelf stopped cleanly")
	return nil
}

// NewIdentity builds the provider selected by SHELF_IDENTITY_MODE.
func NewIdentity(ctx context.Context, cfg *config.Config) (identity.Provider, error) {
	switch cfg.IdentityMode {
	case config.IdentityHeader:
		return identity.NewHeaderProvider(cfg.IdentityHeader), nil
	case config.IdentityOIDC:
		return identity.NewOIDCProvider(ctx, cfg.OIDCIssuer, cfg.OIDCClientID)
	default:
		return nil, fmt.Errorf("unknown identity mode %q", cfg.IdentityMode)
	}
}
