// Package mq wraps the RabbitMQ topic exchange used for notifications.
package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrNacked means the broker refused a confirmed publish.
var ErrNacked = errors.New("mq: publish not confirmed by broker")

type publishChannel interface {
	PublishWithDeferredConfirmWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) (*amqp.DeferredConfirmation, error)
	IsClosed() bool
	Close() error
}

type session struct {
	conn io.Closer
	ch   publishChannel
}

func (s *session) close() {
	_ = s.ch.Close()
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

// Publisher publishes with confirms and redials on the next publish after
// the broker drops the connection.
type Publisher struct {
	mu       sync.Mutex
	url      string
	exchange string
	dial     func(url, exchange string) (*session, error)
	sess     *session
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	p := &Publisher{url: url, exchange: exchange, dial: dialSession}
	s, err := p.dial(url, exchange)
	if err != nil {
		return nil, err
	}
	p.sess = s
	return p, nil
}

func dialSession(url, exchange string) (*session, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := declareExchange(ch, exchange); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("enable confirms: %w", err)
	}
	return &session{conn: conn, ch: ch}, nil
}

// PublishJSON sends v as a persistent JSON message under key and waits for
// the broker's confirm.
func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	// amqp channels are not safe for concurrent publishing
	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publish(ctx, key, b)
	if errors.Is(err, amqp.ErrClosed) {
		log.Printf("[mq] channel closed, redialing: %v", err)
		p.drop()
		err = p.publish(ctx, key, b)
	}
	return err
}

func (p *Publisher) publish(ctx context.Context, key string, body []byte) error {
	if p.sess == nil || p.sess.ch.IsClosed() {
		p.drop()
		s, err := p.dial(p.url, p.exchange)
		if err != nil {
			return err
		}
		p.sess = s
	}
	dc, err := p.sess.ch.PublishWithDeferredConfirmWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	})
	if err != nil {
		return err
	}
	if dc == nil {
		return nil
	}
	acked, err := dc.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrNacked
	}
	return nil
}

func (p *Publisher) drop() {
	if p.sess != nil {
		p.sess.close()
		p.sess = nil
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drop()
	return nil
}

func declareExchange(ch *amqp.Channel, name string) error {
	if err := ch.ExchangeDeclare(name, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", name, err)
	}
	return nil
}
