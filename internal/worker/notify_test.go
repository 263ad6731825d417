package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

type flakyNotifier struct{ err error }

func (f *flakyNotifier) Send(context.Context, string, string) (services.Receipt, error) {
	return services.Receipt{Provider: "fake"}, f.err
}

type captured struct {
	key string
	n   models.Notification
}

type capturePublisher struct {
	out []captured
	err error
}

func (c *capturePublisher) PublishJSON(_ context.Context, key string, v any) error {
	if c.err != nil {
		return c.err
	}
	c.out = append(c.out, captured{key: key, n: v.(models.Notification)})
	return nil
}

func body(t *testing.T, n models.Notification) []byte {
	t.Helper()
	b, err := json.Marshal(n)
	require.NoError(t, err)
	return b
}

func TestHandle(t *testing.T) {
	ctx := context.Background()
	msg := models.Notification{AppointmentID: "a1", Kind: services.KindConfirmed, To: "+1", Message: "hi", Attempt: 1}

	t.Run("delivered", func(t *testing.T) {
		pub := &capturePublisher{}
		w := New(Config{MaxAttempts: 3}, &flakyNotifier{}, pub)
		assert.Equal(t, delivered, w.handle(ctx, body(t, msg)))
		assert.Empty(t, pub.out)
	})

	t.Run("retried with next attempt", func(t *testing.T) {
		pub := &capturePublisher{}
		w := New(Config{MaxAttempts: 3}, &flakyNotifier{err: errors.New("down")}, pub)
		assert.Equal(t, retried, w.handle(ctx, body(t, msg)))
		require.Len(t, pub.out, 1)
		assert.Equal(t, "notify.sms.confirmed", pub.out[0].key)
		assert.Equal(t, 2, pub.out[0].n.Attempt)
	})

	t.Run("dead-lettered at max attempts", func(t *testing.T) {
		pub := &capturePublisher{}
		last := msg
		last.Attempt = 3
		w := New(Config{MaxAttempts: 3}, &flakyNotifier{err: errors.New("down")}, pub)
		assert.Equal(t, deadLettered, w.handle(ctx, body(t, last)))
		assert.Empty(t, pub.out)
	})

	t.Run("malformed", func(t *testing.T) {
		w := New(Config{MaxAttempts: 3}, &flakyNotifier{}, &capturePublisher{})
		assert.Equal(t, deadLettered, w.handle(ctx, []byte("{not json")))
		assert.Equal(t, deadLettered, w.handle(ctx, body(t, models.Notification{Kind: "x"})))
	})

	t.Run("requeued when republish fails", func(t *testing.T) {
		w := New(Config{MaxAttempts: 3}, &flakyNotifier{err: errors.New("down")}, &capturePublisher{err: errors.New("closed")})
		assert.Equal(t, requeued, w.handle(ctx, body(t, msg)))
	})
}

type ack struct {
	acked, nacked, requeue bool
}

func (a *ack) Ack(uint64, bool) error { a.acked = true; return nil }
func (a *ack) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}
func (a *ack) Reject(_ uint64, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func TestRunAcksAndDeadLetters(t *testing.T) {
	w := New(Config{MaxAttempts: 1}, &flakyNotifier{err: errors.New("down")}, &capturePublisher{})
	msgs := make(chan amqp.Delivery, 1)
	a := &ack{}
	msgs <- amqp.Delivery{Acknowledger: a, DeliveryTag: 1, Body: body(t, models.Notification{Kind: "submitted", To: "+1", Message: "hi"})}
	close(msgs)

	err := w.Run(context.Background(), msgs)
	assert.Error(t, err)
	assert.False(t, a.acked)
	assert.True(t, a.nacked)
	assert.False(t, a.requeue)
}

func TestRunStopsOnCancel(t *testing.T) {
	w := New(Config{MaxAttempts: 1}, &flakyNotifier{}, &capturePublisher{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.NoError(t, w.Run(ctx, make(chan amqp.Delivery)))
}
