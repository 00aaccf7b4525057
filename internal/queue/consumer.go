package queue

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/knowbot/knowbot/internal/storage"
)

// Indexer records successful saves for reporting. The processing path
// never reads these rows back.
type Indexer interface {
	IndexSaved(ctx context.Context, rec *storage.Record, backend, handle string) error
}

// Consumer drains the queue into storage. Delivery is at most once: a
// failed write is logged with its message context and the record is
// dropped, with no retry.
type Consumer struct {
	queue     *Queue
	primary   storage.Backend
	secondary storage.Backend
	indexer   Indexer
	log       *slog.Logger
}

// NewConsumer wires the queue to its back ends. secondary and indexer may
// be nil.
func NewConsumer(q *Queue, primary, secondary storage.Backend, indexer Indexer, log *slog.Logger) *Consumer {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Consumer{
		queue:     q,
		primary:   primary,
		secondary: secondary,
		indexer:   indexer,
		log:       log.With("component", "queue.consumer"),
	}
}

// Run processes records until the context is canceled or the queue is
// closed and drained.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.InfoContext(ctx, "Storage consumer started", "primary", c.primary.Name())

	for {
		rec, err := c.queue.Get(ctx)
		if err != nil {
			if errors.Is(err, ErrClosed) {
				c.log.InfoContext(ctx, "Queue closed, consumer stopping")
				return nil
			}
			if dropped := c.queue.Len(); dropped > 0 {
				c.log.WarnContext(ctx, "Consumer stopping with unsaved records", "dropped", dropped)
			}
			return err
		}
		c.store(ctx, rec)
	}
}

func (c *Consumer) store(ctx context.Context, rec *storage.Record) {
	c.saveTo(ctx, c.primary, rec)
	if c.secondary != nil {
		c.saveTo(ctx, c.secondary, rec)
	}
}

// saveTo writes one record to one back end. The returned handle is
// indexed for /stats and /export, then discarded.
func (c *Consumer) saveTo(ctx context.Context, backend storage.Backend, rec *storage.Record) {
	handle, err := backend.Save(ctx, rec)
	if err != nil {
		c.log.ErrorContext(ctx, "Storage write failed, dropping record",
			"backend", backend.Name(),
			"user_id", rec.UserID,
			"message_id", rec.MessageID,
			"category", rec.Category,
			"error", err)
		return
	}

	c.log.InfoContext(ctx, "Record stored",
		"backend", backend.Name(),
		"handle", handle,
		"message_id", rec.MessageID,
		"category", rec.Category)

	if c.indexer != nil {
		if err := c.indexer.IndexSaved(ctx, rec, backend.Name(), handle); err != nil {
			c.log.WarnContext(ctx, "Failed to index stored record",
				"backend", backend.Name(), "message_id", rec.MessageID, "error", err)
		}
	}
}
