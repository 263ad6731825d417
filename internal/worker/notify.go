// Package worker consumes queued notifications and delivers them as SMS.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

type outcome int

const (
	delivered outcome = iota
	retried
	deadLettered
	requeued
)

type Config struct {
	MaxAttempts int
	RetryDelay  time.Duration
}

type Worker struct {
	cfg      Config
	notifier services.Notifier
	pub      services.Publisher
}

// New returns a worker that sends through n and republishes failed
// messages through pub until cfg.MaxAttempts is reached.
func New(cfg Config, n services.Notifier, pub services.Publisher) *Worker {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Worker{cfg: cfg, notifier: n, pub: pub}
}

func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			switch w.handle(ctx, d.Body) {
			case delivered, retried:
				_ = d.Ack(false)
			case deadLettered:
				_ = d.Nack(false, false)
			case requeued:
				_ = d.Nack(false, true)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, body []byte) outcome {
	var n models.Notification
	if err := json.Unmarshal(body, &n); err != nil || n.To == "" || n.Message == "" {
		log.Printf("[notifier] malformed message, dead-lettering: %s", body)
		return deadLettered
	}
	if n.Attempt < 1 {
		n.Attempt = 1
	}

	r, err := w.notifier.Send(ctx, n.To, n.Message)
	if err == nil {
		log.Printf("[notifier] sent kind=%s appointment=%s provider=%s attempt=%d", n.Kind, n.AppointmentID, r.Provider, n.Attempt)
		return delivered
	}
	if n.Attempt >= w.cfg.MaxAttempts {
		log.Printf("[notifier] %v", fmt.Errorf("%w: kind=%s appointment=%s after %d attempts: %v",
			models.ErrNotificationDeliveryFailed, n.Kind, n.AppointmentID, n.Attempt, err))
		return deadLettered
	}

	log.Printf("[notifier] attempt %d/%d kind=%s appointment=%s: %v", n.Attempt, w.cfg.MaxAttempts, n.Kind, n.AppointmentID, err)
	if w.cfg.RetryDelay > 0 {
		select {
		case <-ctx.Done():
			return requeued
		case <-time.After(w.cfg.RetryDelay * time.Duration(n.Attempt)):
		}
	}
	n.Attempt++
	if err := w.pub.PublishJSON(ctx, services.RoutingKey(n.Kind), n); err != nil {
		log.Printf("[notifier] republish failed, requeueing: %v", err)
		return requeued
	}
	return retried
}
