package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-pos-backend/internal/auth"
	"github.com/ariefcatur/go-pos-backend/internal/config"
	"github.com/ariefcatur/go-pos-backend/internal/events"
	"github.com/ariefcatur/go-pos-backend/internal/httpx"
	kafkax "github.com/ariefcatur/go-pos-backend/internal/kafka"
	"github.com/ariefcatur/go-pos-backend/internal/kitchen"
	"github.com/ariefcatur/go-pos-backend/internal/loyalty"
	"github.com/ariefcatur/go-pos-backend/internal/postgres"
	"github.com/ariefcatur/go-pos-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := cfg.Logger(cfg.ServiceName)
	slog.SetDefault(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("db migrate", "err", err)
		os.Exit(1)
	}

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producers, one per topic
	loyaltyProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicLoyaltyPointsChanged, 1024)
	loyaltyProd.Start(ctx)
	kitchenProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicKitchenOrderChanged, 1024)
	kitchenProd.Start(ctx)

	loyaltySvc := loyalty.NewService(
		&loyalty.Repo{DB: db},
		redisx.NewIdempotencyStore(rdb),
		events.NewKafkaPublisher(loyaltyProd, cfg.ServiceName),
		log.With("module", "loyalty"),
	)
	kitchenSvc := kitchen.NewService(
		&kitchen.Repo{DB: db},
		events.NewKafkaPublisher(kitchenProd, cfg.ServiceName),
		kitchen.QREncoder{},
		log.With("module", "kitchen"),
	)

	router := httpx.NewRouter(
		httpx.RouterConfig{CORSOrigins: cfg.CORSOrigins, Verifier: auth.NewVerifier(cfg.JWTSecret)},
		&httpx.KitchenHandler{Service: kitchenSvc, TicketBaseURL: cfg.TicketBaseURL},
		&httpx.LoyaltyHandler{Service: loyaltySvc},
	)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	loyaltyProd.Close()
	kitchenProd.Close()
	loyaltyProd.WaitClosed()
	kitchenProd.WaitClosed()
	cancel()
}
