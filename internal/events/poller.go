package events

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultPollInterval = time.Second
	DefaultBatchSize    = 100
)

// OutboxPoller moves events from the outbox to a Publisher.
type OutboxPoller struct {
	outbox    *Outbox
	publisher Publisher
	logger    *slog.Logger
	tick      time.Duration
	batchSize int
	timeout   time.Duration
}

func NewOutboxPoller(outbox *Outbox, publisher Publisher, logger *slog.Logger) *OutboxPoller {
	return &OutboxPoller{
		outbox:    outbox,
		publisher: publisher,
		logger:    logger,
		tick:      DefaultPollInterval,
		batchSize: DefaultBatchSize,
		timeout:   5 * time.Second,
	}
}

// Run publishes pending events on every tick until ctx is done.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.ProcessPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// ProcessPending publishes one batch. On the first failure the failed event
// and the rest of the batch go back to the outbox, so order is kept.
func (p *OutboxPoller) ProcessPending(ctx context.Context) int {
	batch := p.outbox.Drain(p.batchSize)

	for i, event := range batch {
		publishCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.publisher.Publish(publishCtx, event)
		cancel()
		if err != nil {
			p.logger.ErrorContext(ctx, "failed to publish event",
				"event_id", event.ID, "event_type", event.Type, "error", err)
			p.outbox.Requeue(batch[i:]...)
			return i
		}
	}
	return len(batch)
}
