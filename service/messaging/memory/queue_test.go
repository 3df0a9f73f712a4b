package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type testPayload struct {
	ID      string
	Message string
}

func TestQueue_PublishConsume(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 10 * time.Millisecond
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	payload := testPayload{ID: "task-1", Message: "generate proposal"}

	err := queue.Publish(ctx, &payload)
	assert.NoError(t, err)
	assert.Equal(t, 1, queue.Size())

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, 0, queue.Size())
	assert.Equal(t, payload.ID, message.T().ID)

	assert.NoError(t, message.Ack())
	assert.Error(t, message.Ack(), "double ack should error")
}

func TestQueue_NackRequeues(t *testing.T) {
	config := DefaultConfig()
	config.RetryDelay = 5 * time.Millisecond
	config.MaxRetries = 1
	queue := NewQueue[testPayload](config)

	ctx := context.Background()
	assert.NoError(t, queue.Publish(ctx, &testPayload{ID: "task-2"}))

	message, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.NoError(t, message.Nack(assert.AnError))

	// first retry is requeued
	retried, err := queue.Consume(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "task-2", retried.T().ID)

	// second failure exhausts retries and lands in the DLQ
	assert.NoError(t, retried.Nack(assert.AnError))
	assert.Eventually(t, func() bool { return queue.DLQSize() == 1 }, time.Second, 5*time.Millisecond)
}

func TestQueue_ConsumeHonorsContext(t *testing.T) {
	queue := NewQueue[testPayload](DefaultConfig())
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := queue.Consume(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
