package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gaida-lisongo/server-batis-nexus/internal/config"
	"github.com/gaida-lisongo/server-batis-nexus/internal/handler"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/cache"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/database"
	"github.com/gaida-lisongo/server-batis-nexus/internal/infrastructure/mq"
	"github.com/gaida-lisongo/server-batis-nexus/internal/job"
	"github.com/gaida-lisongo/server-batis-nexus/pkg/idgen"
)

func main() {
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	idgen.Init(1)

	db, err := database.Init(&cfg.MySQL)
	if err != nil {
		log.Fatalf("init mysql: %v", err)
	}

	redisClient, err := cache.Init(&cfg.Redis)
	if err != nil {
		log.Fatalf("init redis: %v", err)
	}

	producer, err := mq.NewProducer(&cfg.Kafka)
	if err != nil {
		log.Fatalf("init kafka producer: %v", err)
	}
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outboxSender := job.NewOutboxSender(db, producer, cfg)
	go outboxSender.Start(ctx)

	rechargeTimeoutJob := job.NewRechargeTimeoutJob(db, redisClient, cfg)
	go rechargeTimeoutJob.Start(ctx)

	router := handler.SetupRouter(db, cfg)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("listening on :%d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}

	log.Println("server stopped")
}
