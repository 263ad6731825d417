// Command notifier consumes queued appointment notifications and sends them
// as SMS.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harentsoaR/clinic-api/internal/bootstrap"
	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/mq"
	"github.com/harentsoaR/clinic-api/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cons *mq.Consumer
	for {
		cons, err = mq.NewConsumer(mq.ConsumerConfig{
			URL:      cfg.RabbitURL,
			Exchange: cfg.NotifyExchange,
			Queue:    cfg.NotifyQueue,
			Bindings: []string{"notify.sms.*"},
			DLX:      cfg.NotifyDLX,
			DLQ:      cfg.NotifyDLQ,
			Prefetch: 16,
			Tag:      "clinic-notifier",
		})
		if err == nil {
			break
		}
		log.Printf("[notifier] connect failed: %v; retry in 2s", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(2 * time.Second):
		}
	}
	defer cons.Close()

	pub, err := mq.NewPublisher(cfg.RabbitURL, cfg.NotifyExchange)
	if err != nil {
		log.Fatalf("[notifier] publisher: %v", err)
	}
	defer pub.Close()

	msgs, err := cons.Deliveries(ctx)
	if err != nil {
		log.Fatalf("[notifier] consume: %v", err)
	}

	w := worker.New(worker.Config{
		MaxAttempts: cfg.NotifyMaxAttempts,
		RetryDelay:  cfg.NotifyRetryDelay,
	}, bootstrap.NewNotifier(cfg), pub)

	log.Printf("[notifier] started. queue=%s exchange=%s dlq=%s", cfg.NotifyQueue, cfg.NotifyExchange, cfg.NotifyDLQ)
	if err := w.Run(ctx, msgs); err != nil {
		log.Printf("[notifier] run: %v", err)
	}
	log.Println("[notifier] stopped")
}
