package scheduler

import (
	"context"
	"time"

	"github.com/soundlink/conductor/internal/logger"
	"github.com/soundlink/conductor/internal/node"
)

// HealthWatcher periodically sweeps the pool and reconnects links that fell
// out of CONNECTED. Reconnection happens in place: the link keeps its
// identity, and a callback lets the orchestrator resume the sessions the link
// owns once it is back.
type HealthWatcher struct {
	pool          *node.Pool
	logger        logger.Logger
	interval      time.Duration
	onReconnect   func(ctx context.Context, l *node.Link)
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewHealthWatcher creates a watcher. onReconnect may be nil; manualTrigger
// may be nil when no manual sweep is needed.
func NewHealthWatcher(
	pool *node.Pool,
	log logger.Logger,
	interval time.Duration,
	onReconnect func(ctx context.Context, l *node.Link),
	manualTrigger chan struct{},
) *HealthWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &HealthWatcher{
		pool:          pool,
		logger:        log,
		interval:      interval,
		onReconnect:   onReconnect,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs an immediate sweep, then keeps sweeping on the interval until
// Stop is called or the context ends.
func (hw *HealthWatcher) Start(ctx context.Context) {
	hw.Sweep(ctx)

	ticker := time.NewTicker(hw.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hw.Sweep(ctx)
			case <-hw.manualTrigger:
				hw.logger.Info("manual health sweep triggered")
				hw.Sweep(ctx)
			case <-hw.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the watcher.
func (hw *HealthWatcher) Stop() {
	close(hw.stopCh)
}

// Sweep reconnects every link currently RECONNECTING or DISCONNECTED.
func (hw *HealthWatcher) Sweep(ctx context.Context) {
	for _, l := range hw.pool.Links() {
		switch l.Status() {
		case node.StatusReconnecting, node.StatusDisconnected:
		default:
			continue
		}

		hw.logger.Info("reconnecting node",
			logger.String("node", l.ID()),
			logger.String("status", l.Status().String()))

		if err := l.Connect(ctx); err != nil {
			hw.logger.Warn("node reconnect failed",
				logger.String("node", l.ID()),
				logger.Error(err))
			continue
		}
		if hw.onReconnect != nil {
			hw.onReconnect(ctx, l)
		}
	}
}
