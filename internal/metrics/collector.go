package metrics

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Collector periodically refreshes gauge metrics that are derived from
// database state rather than recorded at call sites.
type Collector struct {
	db       *gorm.DB
	interval time.Duration
	refresh  func(ctx context.Context) error
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewCollector builds a collector. refresh may be nil when only the
// connection pool gauges are wanted.
func NewCollector(db *gorm.DB, interval time.Duration, refresh func(ctx context.Context) error) *Collector {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Collector{
		db:       db,
		interval: interval,
		refresh:  refresh,
		done:     make(chan struct{}),
	}
}

// Start launches the background collection loop.
func (c *Collector) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.collect(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.collect(ctx)
			}
		}
	}()

	logrus.WithField("interval", c.interval).Info("metrics collector started")
}

// Stop cancels the loop and waits for it to exit.
func (c *Collector) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
	<-c.done
	logrus.Info("metrics collector stopped")
}

func (c *Collector) collect(ctx context.Context) {
	if err := UpdateDatabaseConnections(c.db); err != nil {
		logrus.WithError(err).Warn("failed to collect database connection metrics")
	}
	if c.refresh != nil {
		if err := c.refresh(ctx); err != nil {
			logrus.WithError(err).Warn("failed to refresh derived metrics")
		}
	}
}
