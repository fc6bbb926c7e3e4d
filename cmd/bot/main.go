package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alpaca-trade-bot-go/internal/alpaca"
	"alpaca-trade-bot-go/internal/config"
	"alpaca-trade-bot-go/internal/logger"
	"alpaca-trade-bot-go/internal/trader"
	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format, cfg.Logger.File)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Initialize Alpaca REST client and verify connectivity
	client := alpaca.NewClient(&cfg.Alpaca, log)
	account, err := client.GetAccount()
	if err != nil {
		log.Fatal("Failed to connect to Alpaca API", zap.Error(err))
	}
	log.Info("Successfully connected to Alpaca API",
		zap.String("account_status", account.Status))

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Initialize and run the bot controller
	controller := trader.NewController(client, log, trader.ParamsFromConfig(&cfg.Trading))

	apiServer := trader.NewAPIServer(controller, cfg.Server.Port, log)
	apiServer.Start()

	controller.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := apiServer.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop API server", zap.Error(err))
	}

	log.Info("Bot has been shut down.")
}
