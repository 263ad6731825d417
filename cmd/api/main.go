package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harentsoaR/clinic-api/internal/bootstrap"
	"github.com/harentsoaR/clinic-api/internal/config"
	"github.com/harentsoaR/clinic-api/internal/handlers"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/mq"
	"github.com/harentsoaR/clinic-api/internal/obs"
	"github.com/harentsoaR/clinic-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("CLINIC_TZ: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := obs.InitTracer(ctx, "clinic-api", cfg.OTLPEndpoint)
	if err != nil {
		log.Fatalf("tracing: %v", err)
	}

	st, err := bootstrap.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store: %v", err)
	}

	notifier := bootstrap.NewNotifier(cfg)
	var (
		dispatcher services.Dispatcher
		direct     *services.DirectDispatcher
		publisher  *mq.Publisher
	)
	switch cfg.NotifyMode {
	case "queue":
		publisher, err = mq.NewPublisher(cfg.RabbitURL, cfg.NotifyExchange)
		if err != nil {
			log.Fatalf("rabbitmq: %v", err)
		}
		dispatcher = services.NewQueueDispatcher(publisher)
		log.Printf("[notify] publishing to exchange %s", cfg.NotifyExchange)
	default:
		direct = services.NewDirectDispatcher(notifier, cfg.NotifyMaxAttempts, cfg.NotifyRetryDelay)
		dispatcher = direct
	}

	reports, err := services.NewReportService(st, cfg.UploadDir)
	if err != nil {
		log.Fatalf("reports: %v", err)
	}
	h := handlers.NewHandler(st,
		services.NewUserService(st, []byte(cfg.JWTSecret), cfg.JWTTTL),
		services.NewSlotService(st, loc),
		services.NewWorkflow(st, dispatcher),
		reports,
		notifier,
		cfg.MaxUploadMB<<20,
	)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Sweep(ctx, time.Minute, 3*time.Minute)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handlers.NewRouter(h, handlers.RouterConfig{
			JWTSecret:    []byte(cfg.JWTSecret),
			AllowOrigins: cfg.CORSAllowOrigins,
			UploadDir:    cfg.UploadDir,
			Limiter:      limiter,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s (store=%s, notify=%s)", cfg.Port, cfg.StoreDriver, cfg.NotifyMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if direct != nil {
		direct.Wait()
	}
	if publisher != nil {
		_ = publisher.Close()
	}
	if err := st.Close(shutdownCtx); err != nil {
		log.Printf("store close: %v", err)
	}
	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Printf("tracer shutdown: %v", err)
	}
	log.Println("Server exited")
}
