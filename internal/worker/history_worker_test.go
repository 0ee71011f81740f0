package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/model"
)

type recordingAck struct {
	acked  int
	nacked int
}

func (a *recordingAck) Ack(uint64, bool) error {
	a.acked++
	return nil
}

func (a *recordingAck) Nack(uint64, bool, bool) error {
	a.nacked++
	return nil
}

func (a *recordingAck) Reject(uint64, bool) error {
	a.nacked++
	return nil
}

type memoryWriter struct {
	stored []model.Message
	err    error
}

func (m *memoryWriter) Create(msg *model.Message) error {
	if m.err != nil {
		return m.err
	}
	m.stored = append(m.stored, *msg)
	return nil
}

func newTestWorker(repo MessageWriter) *HistoryWorker {
	return NewHistoryWorker(nil, repo, "test.history", slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func delivery(t *testing.T, ack amqp.Acknowledger, v any) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestHandle_PersistsAndAcks(t *testing.T) {
	repo := &memoryWriter{}
	w := newTestWorker(repo)
	ack := &recordingAck{}

	w.handle(delivery(t, ack, model.Message{SessionID: "a.pdf", Role: model.RoleUser, Content: "q"}))

	require.Len(t, repo.stored, 1)
	assert.Equal(t, "a.pdf", repo.stored[0].SessionID)
	assert.Equal(t, 1, ack.acked)
	assert.Zero(t, ack.nacked)
}

func TestHandle_BadPayloadNacks(t *testing.T) {
	repo := &memoryWriter{}
	w := newTestWorker(repo)
	ack := &recordingAck{}

	w.handle(amqp.Delivery{Acknowledger: ack, Body: []byte("{not json")})

	assert.Empty(t, repo.stored)
	assert.Equal(t, 1, ack.nacked)
	assert.Zero(t, ack.acked)
}

func TestHandle_StoreFailureNacks(t *testing.T) {
	w := newTestWorker(&memoryWriter{err: errors.New("db down")})
	ack := &recordingAck{}

	w.handle(delivery(t, ack, model.Message{SessionID: "a.pdf"}))
	assert.Equal(t, 1, ack.nacked)
}

func TestConsume_StopsOnClosedChannelAndCancel(t *testing.T) {
	repo := &memoryWriter{}
	w := newTestWorker(repo)
	ack := &recordingAck{}

	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- delivery(t, ack, model.Message{SessionID: "a.pdf", Content: "one"})
	deliveries <- delivery(t, ack, model.Message{SessionID: "a.pdf", Content: "two"})
	close(deliveries)

	w.consume(context.Background(), deliveries)
	assert.Len(t, repo.stored, 2)
	assert.Equal(t, 2, ack.acked)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	w.consume(ctx, make(chan amqp.Delivery))
}
