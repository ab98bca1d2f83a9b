package ownership

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mysterylink/button-server/internal/adapter"
	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/store"
)

// Watcher periodically checks which ownership is active and logs the
// transition when the button frees up or changes hands. Expiry itself needs
// no action: active status is computed from expires_at at query time, so a
// missed tick never extends anybody's ownership.
type Watcher struct {
	store    store.Store
	clock    adapter.Clock
	interval time.Duration

	// lastActiveID is the ownership seen on the previous tick, empty when the
	// button was free
	lastActiveID string
}

// NewWatcher creates an expiry watcher polling at the given interval
func NewWatcher(s store.Store, clock adapter.Clock, interval time.Duration) *Watcher {
	return &Watcher{store: s, clock: clock, interval: interval}
}

// Run polls until the context is canceled
func (w *Watcher) Run(ctx context.Context) {
	logger.Info("ownership watcher started", zap.Duration("interval", w.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("ownership watcher stopped")
			return
		case <-w.clock.After(w.interval):
			w.tick(ctx)
		}
	}
}

// tick runs one check. Exported through Run only; tests call it directly.
func (w *Watcher) tick(ctx context.Context) {
	active, err := w.store.GetActiveOwnership(ctx, w.clock.Now())
	if err != nil {
		logger.Error(err, zap.String("message", "ownership watcher query failed"))
		return
	}

	currentID := ""
	if active != nil {
		currentID = active.Ownership.ID
	}
	if currentID == w.lastActiveID {
		return
	}

	switch {
	case currentID == "":
		logger.Info("ownership expired, button is free",
			zap.String("previous_ownership_id", w.lastActiveID))
	case w.lastActiveID == "":
		logger.Info("button is now owned",
			zap.String("ownership_id", currentID),
			zap.String("owner", active.Ownership.OwnerAddress))
	default:
		logger.Info("button changed hands",
			zap.String("previous_ownership_id", w.lastActiveID),
			zap.String("ownership_id", currentID),
			zap.String("owner", active.Ownership.OwnerAddress))
	}
	w.lastActiveID = currentID
}
