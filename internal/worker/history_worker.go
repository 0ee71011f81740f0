package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"docqa/internal/model"
)

type MessageWriter interface {
	Create(message *model.Message) error
}

// HistoryWorker drains the history queue into MySQL. Messages that cannot
// be decoded or stored are dropped rather than requeued.
type HistoryWorker struct {
	conn      *amqp.Connection
	repo      MessageWriter
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewHistoryWorker(conn *amqp.Connection, repo MessageWriter, queueName string, logger *slog.Logger) *HistoryWorker {
	return &HistoryWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		logger:    logger.With("component", "history_worker", "queue", queueName),
	}
}

func (w *HistoryWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	ch, err := w.conn.Channel()
	if err != nil {
		return fmt.Errorf("open worker channel failed: %w", err)
	}
	if _, err := ch.QueueDeclare(w.queueName, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}
	if err := ch.Qos(16, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("set worker qos failed: %w", err)
	}
	deliveries, err := ch.Consume(w.queueName, "", false, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()
		w.consume(workerCtx, deliveries)
	}()

	w.logger.Info("history worker started")
	return nil
}

func (w *HistoryWorker) consume(ctx context.Context, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				w.logger.Warn("delivery channel closed")
				return
			}
			w.handle(d)
		}
	}
}

func (w *HistoryWorker) handle(d amqp.Delivery) {
	var msg model.Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		w.logger.Error("decode history message failed", "error", err)
		_ = d.Nack(false, false)
		return
	}
	if err := w.repo.Create(&msg); err != nil {
		w.logger.Error("persist history message failed", "session_id", msg.SessionID, "error", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func (w *HistoryWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
