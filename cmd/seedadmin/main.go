// Command seedadmin creates the admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD, or resets its password when it already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/harentsoaR/clinic-api/internal/bootstrap"
	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AdminPassword == "" {
		log.Fatal("ADMIN_PASSWORD is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer st.Close(ctx)

	users := services.NewUserService(st, []byte(cfg.JWTSecret), cfg.JWTTTL)
	created, err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		log.Fatalf("seed admin: %v", err)
	}
	if created {
		log.Printf("Admin %s created", cfg.AdminEmail)
		return
	}
	log.Printf("Admin %s already exists, password reset", cfg.AdminEmail)
}
