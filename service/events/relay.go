// Package events delivers committed outbox records to Kafka.
package events

import (
	"context"
	"log/slog"
	"time"

	"bookstore/repository/outbox"
	"bookstore/util/kafka"
)

const (
	publishTimeout = 5 * time.Second
	flushBatch     = 100
)

type OutboxRepo interface {
	MarkSent(ctx context.Context, id int64) error
	FetchPending(ctx context.Context, limit int) ([]outbox.Record, error)
}

// Relay publishes a record right after its transaction commits and sweeps
// whatever is still pending on an interval.
type Relay struct {
	w   kafka.MessageWriter
	r   OutboxRepo
	log *slog.Logger
}

func NewRelay(w kafka.MessageWriter, r OutboxRepo, log *slog.Logger) *Relay {
	if log == nil {
		log = slog.Default()
	}
	return &Relay{w: w, r: r, log: log}
}

// Publish never fails the caller; an undelivered record stays pending for the
// next sweep.
func (rl *Relay) Publish(ctx context.Context, rec outbox.Record) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := rl.send(ctx, rec); err != nil {
		rl.log.Warn("event publish failed", "event_id", rec.EventID, "topic", rec.Topic, "err", err)
	}
}

func (rl *Relay) send(ctx context.Context, rec outbox.Record) error {
	if err := kafka.PublishRaw(ctx, rl.w, rec.Key, rec.Payload); err != nil {
		return err
	}
	return rl.r.MarkSent(ctx, rec.ID)
}

// Flush sends up to one batch of pending records and reports how many went out.
func (rl *Relay) Flush(ctx context.Context) (int, error) {
	pending, err := rl.r.FetchPending(ctx, flushBatch)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, rec := range pending {
		if err := rl.send(ctx, rec); err != nil {
			// keep order: stop at the first failure
			return sent, err
		}
		sent++
	}
	return sent, nil
}

// Run flushes every interval until ctx is done.
func (rl *Relay) Run(ctx context.Context, every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := rl.Flush(ctx)
			if err != nil {
				rl.log.Warn("outbox sweep failed", "sent", n, "err", err)
			} else if n > 0 {
				rl.log.Info("outbox sweep", "sent", n)
			}
		}
	}
}
