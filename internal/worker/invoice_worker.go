package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/flicky/aqua-storefront/internal/kv"
	"github.com/flicky/aqua-storefront/internal/model"
)

const (
	idempotencyTTL    = 24 * time.Hour
	orderWaitLimit    = 30 * time.Second
	defaultRetryDelay = 2 * time.Second
)

// OrderSource looks up orders as currently known to the store.
type OrderSource interface {
	Order(id string) (model.Order, bool)
}

// Archiver writes an order's invoice document into dir.
type Archiver interface {
	Save(dir string, order model.Order) (string, error)
}

var errOrderNotFound = errors.New("order not found")

type outcome int

const (
	ack outcome = iota
	requeue
	deadLetter
)

// InvoiceWorker archives an invoice PDF for every placed order. Each order is
// archived at most once per idempotency window.
type InvoiceWorker struct {
	channel    *amqp.Channel
	orders     OrderSource
	archiver   Archiver
	kv         kv.Store
	archiveDir string
	log        *slog.Logger
	done       chan struct{}
	now        func() time.Time
	retryDelay time.Duration
}

func NewInvoiceWorker(ch *amqp.Channel, orders OrderSource, archiver Archiver, kvs kv.Store, archiveDir string, log *slog.Logger) *InvoiceWorker {
	return &InvoiceWorker{
		channel:    ch,
		orders:     orders,
		archiver:   archiver,
		kv:         kvs,
		archiveDir: archiveDir,
		log:        log,
		done:       make(chan struct{}),
		now:        time.Now,
		retryDelay: defaultRetryDelay,
	}
}

func (w *InvoiceWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("invoice worker started")
	return nil
}

func (w *InvoiceWorker) Stop() { close(w.done) }

func (w *InvoiceWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	switch w.handle(ctx, msg.Body, msg.Timestamp) {
	case ack:
		_ = msg.Ack(false)
	case requeue:
		w.backoff(ctx)
		_ = msg.Nack(false, true)
	case deadLetter:
		_ = msg.Nack(false, false) // → DLQ
	}
}

// backoff holds a message for retryDelay before it is requeued, so an order
// still waiting on the change feed is retried a handful of times instead of
// in a tight loop.
func (w *InvoiceWorker) backoff(ctx context.Context) {
	t := time.NewTimer(w.retryDelay)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	case <-w.done:
	}
}

// handle archives one order. An order the store has not seen yet is requeued
// while the message is young, since remote orders arrive through the change feed.
func (w *InvoiceWorker) handle(ctx context.Context, body []byte, sent time.Time) outcome {
	var orderMsg model.OrderMessage
	if err := json.Unmarshal(body, &orderMsg); err != nil || orderMsg.OrderID == "" {
		w.log.Error("unmarshal order message", "error", err)
		return deadLetter
	}

	log := w.log.With("order_id", orderMsg.OrderID)

	idempotencyKey := "invoice_archived:" + orderMsg.OrderID
	exists, err := w.kv.Exists(ctx, idempotencyKey)
	if err != nil {
		log.Error("check idempotency key", "error", err)
		return requeue
	}
	if exists {
		log.Info("invoice already archived, skipping")
		return ack
	}

	path, err := w.archive(orderMsg.OrderID)
	if err != nil {
		if errors.Is(err, errOrderNotFound) && !sent.IsZero() && w.now().Sub(sent) < orderWaitLimit {
			log.Debug("order not synced yet, requeueing")
			return requeue
		}
		log.Error("archive invoice failed", "error", err)
		return deadLetter
	}

	if err := w.kv.Set(ctx, idempotencyKey, "1", idempotencyTTL); err != nil {
		log.Error("set idempotency key", "error", err)
	}

	log.Info("invoice archived", "path", path)
	return ack
}

func (w *InvoiceWorker) archive(orderID string) (string, error) {
	order, ok := w.orders.Order(orderID)
	if !ok {
		return "", fmt.Errorf("%w: %s", errOrderNotFound, orderID)
	}
	path, err := w.archiver.Save(w.archiveDir, order)
	if err != nil {
		return "", fmt.Errorf("save invoice: %w", err)
	}
	return path, nil
}
