package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ariefcatur/go-pos-backend/internal/audit"
	"github.com/ariefcatur/go-pos-backend/internal/config"
	"github.com/ariefcatur/go-pos-backend/internal/events"
	kafkax "github.com/ariefcatur/go-pos-backend/internal/kafka"
	"github.com/ariefcatur/go-pos-backend/internal/postgres"
	"github.com/ariefcatur/go-pos-backend/internal/redisx"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	service := cfg.ServiceName + "-ledger-audit"
	log := cfg.Logger(service)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// drift reports
	driftProd := kafkax.NewProducer(cfg.KafkaBrokers, events.TopicLoyaltyLedgerDrift, 256)
	driftProd.Start(ctx)

	svc := &audit.Service{
		Ledger: &audit.Repo{DB: db},
		Dedup:  redisx.NewDeduper(rdb, "ledger-audit"),
		Events: events.NewKafkaPublisher(driftProd, service),
		Log:    log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.AuditGroup, events.TopicLoyaltyPointsChanged, cfg.AuditWorkers)
	consDone := make(chan struct{})
	go func() {
		defer close(consDone)
		log.Info("ledger audit consumer started",
			"group", cfg.AuditGroup, "topic", events.TopicLoyaltyPointsChanged, "workers", cfg.AuditWorkers)
		if err := cons.Start(ctx, svc.HandlePointsChanged); err != nil {
			log.Error("consumer exit", "err", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	// workers may still publish drift until Start returns
	<-consDone
	driftProd.Close()
	driftProd.WaitClosed()
}
