package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/harentsoaR/clinic-api/internal/models"
)

// Dispatcher hands a notification off after the triggering write has been
// committed. It never reports failure to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, n models.Notification)
}

// DirectDispatcher delivers in a background goroutine with bounded retry
// and linear backoff.
type DirectDispatcher struct {
	notifier    Notifier
	maxAttempts int
	delay       time.Duration

	wg sync.WaitGroup
}

func NewDirectDispatcher(n Notifier, maxAttempts int, delay time.Duration) *DirectDispatcher {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &DirectDispatcher{notifier: n, maxAttempts: maxAttempts, delay: delay}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, n models.Notification) {
	// the request context ends with the response
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		_ = d.deliver(ctx, n)
	}()
}

// Wait blocks until every in-flight delivery has finished.
func (d *DirectDispatcher) Wait() { d.wg.Wait() }

func (d *DirectDispatcher) deliver(ctx context.Context, n models.Notification) error {
	var err error
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		var r Receipt
		r, err = d.notifier.Send(ctx, n.To, n.Message)
		if err == nil {
			log.Printf("[notify] sent kind=%s appointment=%s provider=%s", n.Kind, n.AppointmentID, r.Provider)
			return nil
		}
		log.Printf("[notify] attempt %d/%d kind=%s appointment=%s: %v", attempt, d.maxAttempts, n.Kind, n.AppointmentID, err)
		if attempt < d.maxAttempts {
			time.Sleep(d.delay * time.Duration(attempt))
		}
	}
	err = fmt.Errorf("%w: kind=%s appointment=%s after %d attempts: %v",
		models.ErrNotificationDeliveryFailed, n.Kind, n.AppointmentID, d.maxAttempts, err)
	log.Printf("[notify] dropped: %v", err)
	return err
}

// Publisher is the part of mq.Publisher the queue dispatcher needs.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// RoutingKey is the topic a notification of kind is published under.
func RoutingKey(kind string) string { return "notify.sms." + kind }

// QueueDispatcher publishes to RabbitMQ and leaves delivery and retry to the
// notifier worker.
type QueueDispatcher struct {
	pub     Publisher
	timeout time.Duration
}

func NewQueueDispatcher(pub Publisher) *QueueDispatcher {
	return &QueueDispatcher{pub: pub, timeout: 5 * time.Second}
}

func (q *QueueDispatcher) Dispatch(ctx context.Context, n models.Notification) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()
	if n.Attempt == 0 {
		n.Attempt = 1
	}
	if err := q.pub.PublishJSON(ctx, RoutingKey(n.Kind), n); err != nil {
		log.Printf("[notify] %v", fmt.Errorf("%w: publish kind=%s appointment=%s: %v",
			models.ErrNotificationDeliveryFailed, n.Kind, n.AppointmentID, err))
		return
	}
	log.Printf("[notify] queued kind=%s appointment=%s", n.Kind, n.AppointmentID)
}
