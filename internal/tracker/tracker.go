// Package tracker records link visits in the background after a redirect has
// been served. Recording is best effort: failures are logged and counted but
// never reach the visitor.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vadimbarashkov/golinks/internal/entity"
)

const (
	resultRecorded = "recorded"
	resultFailed   = "failed"
	resultDropped  = "dropped"
)

var visitsTracked = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "golinks_visits_tracked_total",
		Help: "Number of visit tracking attempts by result",
	},
	[]string{"result"},
)

type visitRecorder interface {
	Record(ctx context.Context, visit entity.Visit) error
}

type Config struct {
	PoolSize int
	Timeout  time.Duration
}

type Tracker struct {
	pool     *ants.Pool
	recorder visitRecorder
	timeout  time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

func New(recorder visitRecorder, cfg Config, logger *slog.Logger) (*Tracker, error) {
	const op = "tracker.New"

	if cfg.PoolSize < 1 {
		cfg.PoolSize = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	pool, err := ants.NewPool(cfg.PoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create worker pool: %w", op, err)
	}

	return &Tracker{
		pool:     pool,
		recorder: recorder,
		timeout:  cfg.Timeout,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// Track schedules a visit of link. It never blocks on the store; when every
// worker is busy the visit is dropped.
func (t *Tracker) Track(link *entity.Link, referrer string) {
	visit := entity.Visit{
		LinkID:    link.ID,
		VisitedAt: t.now().UTC(),
		Owner:     link.Owner,
	}
	if referrer != "" {
		visit.Referrer = &referrer
	}

	err := t.pool.Submit(func() {
		t.record(visit)
	})
	if err != nil {
		visitsTracked.WithLabelValues(resultDropped).Inc()
		t.logger.Warn("visit dropped",
			slog.Int64("link_id", visit.LinkID),
			slog.Any("err", err),
		)
	}
}

func (t *Tracker) record(visit entity.Visit) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.recorder.Record(ctx, visit); err != nil {
		visitsTracked.WithLabelValues(resultFailed).Inc()
		t.logger.Error("failed to record visit",
			slog.Int64("link_id", visit.LinkID),
			slog.Any("err", err),
		)
		return
	}

	visitsTracked.WithLabelValues(resultRecorded).Inc()
}

// Close waits up to timeout for scheduled visits to be recorded.
func (t *Tracker) Close(timeout time.Duration) error {
	const op = "tracker.Tracker.Close"

	if err := t.pool.ReleaseTimeout(timeout); err != nil {
		if errors.Is(err, ants.ErrTimeout) {
			return fmt.Errorf("%s: pending visits not recorded: %w", op, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
