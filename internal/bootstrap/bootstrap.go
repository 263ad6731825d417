// Package bootstrap builds the store and SMS provider selected by config.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/services"
	"github.com/harentsoaR/clinic-api/internal/store"
	"github.com/harentsoaR/clinic-api/internal/store/memstore"
	"github.com/harentsoaR/clinic-api/internal/store/mongostore"
	"github.com/harentsoaR/clinic-api/internal/store/postgres"
)

func OpenStore(ctx context.Context, cfg config.App) (store.Store, error) {
	switch cfg.StoreDriver {
	case "postgres":
		st, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Println("[store] connected to postgres")
		return st, nil
	case "mongo":
		st, err := mongostore.Open(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		log.Printf("[store] connected to mongo database %s", cfg.MongoDatabase)
		return st, nil
	case "memory":
		log.Println("[store] using in-memory store, data is lost on exit")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

func NewNotifier(cfg config.App) services.Notifier {
	if cfg.SMSProvider == "textbelt" {
		if cfg.TextbeltAPIKey == "" {
			log.Println("[sms] TEXTBELT_API_KEY is not set, textbelt will reject messages")
		}
		return services.NewTextbeltNotifier(cfg.TextbeltURL, cfg.TextbeltAPIKey, nil)
	}
	return services.NewConsoleNotifier()
}
