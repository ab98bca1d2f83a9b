package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mysterylink/button-server/internal/adapter"
	"github.com/mysterylink/button-server/internal/api/server"
	"github.com/mysterylink/button-server/internal/chain"
	"github.com/mysterylink/button-server/internal/config"
	"github.com/mysterylink/button-server/internal/domain"
	"github.com/mysterylink/button-server/internal/logger"
	"github.com/mysterylink/button-server/internal/messaging"
	"github.com/mysterylink/button-server/internal/ownership"
	"github.com/mysterylink/button-server/internal/payment"
	natsprovider "github.com/mysterylink/button-server/internal/providers/nats"
	"github.com/mysterylink/button-server/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadAPIConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "button-api",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting button server")

	// Connect to database
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Configure connection pool
	if err := store.ConfigureConnectionPool(db, cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns, cfg.Database.ConnMaxLifetime, cfg.Database.ConnMaxIdleTime); err != nil {
		logger.Fatal("Failed to configure connection pool", zap.Error(err))
	}

	// Apply schema migrations
	if err := store.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("dbname", cfg.Database.DBName),
	)

	dataStore := store.NewPGStore(db)

	// Connect to the Ethereum node
	ethClient, err := adapter.NewEthClientDialer().Dial(ctx, cfg.Ethereum.RPCURL)
	if err != nil {
		logger.Fatal("Failed to connect to Ethereum node", zap.Error(err))
	}
	defer ethClient.Close()
	logger.Info("Connected to Ethereum node")

	observer := chain.NewObserver(ethClient, chain.Config{
		MaxAttempts:       cfg.Observer.MaxAttempts,
		BaseDelay:         cfg.Observer.BaseDelay,
		BackoffMultiplier: cfg.Observer.BackoffMultiplier,
		MaxElapsedTime:    cfg.Observer.MaxElapsedTime,
	})

	// Payment rules
	minimumAmount, err := cfg.Payment.MinimumAmountWei()
	if err != nil {
		logger.Fatal("Invalid minimum amount", zap.Error(err))
	}
	costPerHour, err := cfg.Payment.CostPerHourWei()
	if err != nil {
		logger.Fatal("Invalid cost per hour", zap.Error(err))
	}
	validator, err := payment.NewValidator(domain.PaymentScheme(cfg.Payment.Scheme), payment.ValidatorConfig{
		RecipientAddress: cfg.Payment.RecipientAddress,
		TokenAddress:     cfg.Payment.TokenAddress,
		MinimumAmount:    minimumAmount,
		Decimals:         cfg.Payment.TokenDecimals,
	})
	if err != nil {
		logger.Fatal("Failed to build payment validator", zap.Error(err))
	}
	calculator := payment.NewDurationCalculator(costPerHour, cfg.Payment.MinimumDurationSeconds, cfg.Payment.TokenDecimals)

	// Event fan-out. The hub always serves local SSE clients; with the NATS
	// backend the service publishes to NATS and a bridge feeds the hub so
	// every instance sees every event.
	hub := messaging.NewHub()
	defer hub.Close()

	var publisher messaging.Publisher = hub
	if cfg.Messaging.Backend == "nats" {
		natsCfg := natsprovider.Config{
			URL:            cfg.Messaging.NATS.URL,
			SubjectPrefix:  cfg.Messaging.NATS.SubjectPrefix,
			MaxReconnects:  cfg.Messaging.NATS.MaxReconnects,
			ReconnectWait:  cfg.Messaging.NATS.ReconnectWait,
			ConnectionName: cfg.Messaging.NATS.ConnectionName,
		}
		natsPublisher, err := natsprovider.NewPublisher(natsCfg)
		if err != nil {
			logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer natsPublisher.Close()

		bridge, err := natsprovider.NewBridge(natsCfg, hub)
		if err != nil {
			logger.Fatal("Failed to start NATS bridge", zap.Error(err))
		}
		defer bridge.Close()

		publisher = natsPublisher
		logger.Info("Connected to NATS", zap.String("url", cfg.Messaging.NATS.URL))
	}

	clock := adapter.NewClock()
	service := ownership.NewService(dataStore, observer, validator, calculator, publisher, clock, cfg.Payment.GlobalTxUniqueness)

	// Start the expiry watcher
	watcher := ownership.NewWatcher(dataStore, clock, cfg.Watcher.Interval)
	go watcher.Run(ctx)

	// Create and start server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}, service, hub)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Button server stopped")
}
