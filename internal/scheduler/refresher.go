package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// Loader reloads the bookmark list of an owner.
type Loader interface {
	Load(ctx context.Context, ownerID string) error
}

// Refresher re-runs Load periodically and on manual triggers.
type Refresher struct {
	loader   Loader
	owner    func() string
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	trigger  chan struct{}

	mu       sync.Mutex
	onResult func(error)
}

// NewRefresher creates a refresher. owner is read on every refresh. An
// interval of 0 disables the ticker; manual triggers still work.
func NewRefresher(loader Loader, owner func() string, log logger.Logger, interval time.Duration) *Refresher {
	return &Refresher{
		loader:   loader,
		owner:    owner,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		trigger:  make(chan struct{}, 1),
	}
}

// OnResult registers fn to receive the outcome of every refresh.
func (r *Refresher) OnResult(fn func(error)) {
	r.mu.Lock()
	r.onResult = fn
	r.mu.Unlock()
}

// Trigger requests a refresh. It returns false when one is already queued.
func (r *Refresher) Trigger() bool {
	select {
	case r.trigger <- struct{}{}:
		return true
	default:
		r.logger.Debug("refresh already in progress")
		return false
	}
}

// Start refreshes once, then keeps refreshing in the background until Stop
// or ctx is done. Failures are logged and never stop the loop.
func (r *Refresher) Start(ctx context.Context) {
	var tick <-chan time.Time
	var ticker *time.Ticker
	if r.interval > 0 {
		ticker = time.NewTicker(r.interval)
		tick = ticker.C
	}

	go func() {
		if ticker != nil {
			defer ticker.Stop()
		}

		r.refresh(ctx)
		for {
			select {
			case <-tick:
				r.refresh(ctx)
			case <-r.trigger:
				r.logger.Info("manual refresh triggered")
				r.refresh(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the background loop. Safe to call more than once.
func (r *Refresher) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// Refresh runs one Load for the current owner. The loader reports its own
// failures, so they are only traced here.
func (r *Refresher) Refresh(ctx context.Context) error {
	owner := r.owner()
	err := r.loader.Load(ctx, owner)
	if err != nil {
		r.logger.Debug("refresh failed",
			logger.Owner(owner),
			logger.Error(err))
	}
	return err
}

func (r *Refresher) refresh(ctx context.Context) {
	err := r.Refresh(ctx)

	r.mu.Lock()
	fn := r.onResult
	r.mu.Unlock()
	if fn != nil {
		fn(err)
	}
}
