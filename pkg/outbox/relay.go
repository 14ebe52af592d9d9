package outbox

import (
	"context"
	"log/slog"
	"time"
)

// Store is the persistence side of the outbox: batch locking with a lease so
// that a crashed relay's rows become eligible again, plus terminal marking.
type Store interface {
	LockBatch(ctx context.Context, relayID string, batchSize int, lease time.Duration) ([]Event, error)
	MarkSent(ctx context.Context, ids []int64) error
	MarkFailed(ctx context.Context, id int64, errMsg string) error
}

type Config struct {
	BatchSize int
	Interval  time.Duration
	Lease     time.Duration
}

func (c Config) withDefaults() Config {
	if c.BatchSize <= 0 {
		c.BatchSize = 100
	}
	if c.Interval <= 0 {
		c.Interval = 500 * time.Millisecond
	}
	if c.Lease <= 0 {
		c.Lease = 5 * time.Second
	}
	return c
}

// Relay polls the store and pushes pending events through the dispatcher.
type Relay struct {
	log      *slog.Logger
	store    Store
	dispatch *Dispatcher
	relayID  string
	cfg      Config
}

func NewRelay(log *slog.Logger, store Store, dispatch *Dispatcher, relayID string, cfg Config) *Relay {
	return &Relay{
		log:      log,
		store:    store,
		dispatch: dispatch,
		relayID:  relayID,
		cfg:      cfg.withDefaults(),
	}
}

func (r *Relay) Run(ctx context.Context) error {
	t := time.NewTicker(r.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("relay stopping", "relay_id", r.relayID)
			return nil
		case <-t.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	events, err := r.store.LockBatch(ctx, r.relayID, r.cfg.BatchSize, r.cfg.Lease)
	if err != nil {
		r.log.Error("relay lock batch error", "err", err)
		return
	}
	if len(events) == 0 {
		return
	}

	sent := make([]int64, 0, len(events))
	for _, e := range events {
		if err := r.dispatch.Dispatch(ctx, e); err != nil {
			if mfErr := r.store.MarkFailed(ctx, e.ID, err.Error()); mfErr != nil {
				r.log.Error("relay mark failed error", "event_id", e.ID, "err", mfErr)
			}
			continue
		}
		sent = append(sent, e.ID)
	}
	if len(sent) > 0 {
		if err := r.store.MarkSent(ctx, sent); err != nil {
			r.log.Error("relay mark sent error", "err", err)
		}
	}
}
