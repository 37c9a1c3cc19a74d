// Package banner keeps the list of active homepage banners and rotates the
// one currently shown.
package banner

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/domain"
)

// DefaultInterval is how long each banner stays current.
const DefaultInterval = 5 * time.Second

// refreshEvery is the number of rotations between reloads of the banner list.
const refreshEvery = 12

type lister interface {
	ListActive(ctx context.Context) ([]domain.Banner, error)
}

// Rotator is safe for concurrent use. Run drives it; readers call Snapshot.
type Rotator struct {
	repo     lister
	interval time.Duration
	logger   *zap.Logger

	mu      sync.RWMutex
	banners []domain.Banner
	index   int
	ticks   int
}

func NewRotator(repo lister, interval time.Duration, logger *zap.Logger) *Rotator {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Rotator{repo: repo, interval: interval, logger: logger}
}

// Refresh reloads the banner list. The current index is kept when still in range.
func (r *Rotator) Refresh(ctx context.Context) error {
	banners, err := r.repo.ListActive(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.banners = banners
	if r.index >= len(banners) {
		r.index = 0
	}
	r.mu.Unlock()
	return nil
}

// Advance moves to the next banner, wrapping around. With fewer than two
// banners it does nothing.
func (r *Rotator) Advance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.banners) < 2 {
		return
	}
	r.index = (r.index + 1) % len(r.banners)
}

// Run rotates until ctx is cancelled.
func (r *Rotator) Run(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		r.logger.Warn("load banners", zap.Error(err))
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("banner rotation stopped")
			return
		case <-ticker.C:
			r.Advance()
			r.ticks++
			if r.ticks%refreshEvery == 0 {
				if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
					r.logger.Warn("refresh banners", zap.Error(err))
				}
			}
		}
	}
}

// Snapshot returns the active banners and the index of the current one.
func (r *Rotator) Snapshot() ([]domain.Banner, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Banner, len(r.banners))
	copy(out, r.banners)
	return out, r.index
}

func (r *Rotator) Current() (domain.Banner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.banners) == 0 {
		return domain.Banner{}, false
	}
	return r.banners[r.index], true
}
