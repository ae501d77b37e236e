package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"receiver-power-backend/config"
	"receiver-power-backend/internal/api"
	"receiver-power-backend/internal/bridge"
	"receiver-power-backend/internal/db"
	"receiver-power-backend/internal/model"
	"receiver-power-backend/internal/notification"
	"receiver-power-backend/internal/power"
	"receiver-power-backend/internal/store"

	"github.com/SherClockHolmes/webpush-go"
)

func main() {
	// Setup logger
	logger := log.New(os.Stdout, "receiverd ", log.LstdFlags)

	// Load configuration
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml" // Default path for local development
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	if cfg.Bridge.BaseURL == "" {
		logger.Fatalf("bridge.base_url must be configured")
	}

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	// Initialize database
	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	appStore := store.NewGormStore(gormDB)

	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	workerPool.Start(ctx)

	// Both tracker callbacks run on the tracker's serialized path, and the
	// raw-state callback always fires before the on/off one, so the
	// transition captured here is the one that caused the flip.
	var lastTransition power.Transition
	tracker := power.NewTracker(
		func(t power.Transition) {
			lastTransition = t
			logger.Printf("power state changed: %s -> %s", t.Previous, t.Current)
			if err := appStore.RecordTransition(ctx, model.PowerTransition{
				Previous:   t.Previous.String(),
				Current:    t.Current.String(),
				PoweredOn:  t.Current.IsOn(),
				ObservedAt: t.ObservedAt,
			}); err != nil {
				logger.Printf("failed to persist power transition: %v", err)
			}
		},
		func(prevOn, curOn bool) {
			workerPool.Dispatch(notification.PowerChange{
				On:    curOn,
				State: lastTransition.Current.String(),
			})
		},
	)

	engine := power.NewEngine(bridge.NewClient(&cfg.Bridge), tracker)
	poller := power.NewPoller(engine, cfg.Poll.StableInterval, cfg.Poll.TransitionalInterval)
	engine.SetRearm(poller.Rearm)

	if cfg.Poll.Enabled {
		go poller.Run(ctx)
	} else {
		logger.Println("poller is disabled; power state is only sampled on demand")
	}

	// Initialize router
	router := api.NewRouter(&cfg.Server, engine, appStore, &webpushOptions)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Start the server in a goroutine
	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	// Setup signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	// Block until a signal is received.
	<-stop
	logger.Println("Shutdown signal received, stopping services...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}

	logger.Println("Server gracefully stopped")
}
