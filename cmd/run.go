package cmd

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"beansbot/bot"
	"beansbot/config"
	"beansbot/database"
	"beansbot/events"
	"beansbot/metrics"
	"beansbot/repository"
	"beansbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting beansbot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Println("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()

	// Initialize unit of work factory
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	// Initialize services. The house plays under the bot's own nick.
	log.Println("Initializing services...")
	ledgerService := service.NewLedgerService(uowFactory)
	cooldowns := service.NewCooldownStore()
	slotsService := service.NewSlotsService(uowFactory, cooldowns, eventBus, cfg.IRCNick,
		rand.NewSource(time.Now().UnixNano()))
	triviaService := service.NewTriviaService(uowFactory, cfg.IRCNick)
	log.Println("Services initialized successfully")

	// Metrics server is optional
	if cfg.MetricsPort != "" {
		metrics.Subscribe(eventBus)
		metrics.StartServer(cfg.MetricsPort, func(ctx context.Context) error {
			return db.Ping(ctx)
		})
		log.Printf("Metrics server listening on :%s", cfg.MetricsPort)
	}

	// Initialize IRC bot
	log.Println("Initializing IRC bot...")
	botConfig := bot.Config{
		Server:     cfg.IRCServer,
		Port:       cfg.IRCPort,
		Nick:       cfg.IRCNick,
		Channels:   cfg.IRCChannels,
		TLS:        cfg.IRCTLS,
		AdminNicks: cfg.AdminNicks,
	}
	ircBot, err := bot.New(botConfig, ledgerService, slotsService, triviaService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize IRC bot: %w", err)
	}

	log.Printf("Bot is running in %s mode...", cfg.Environment)
	runErr := ircBot.Run(ctx)

	// Cleanup resources
	log.Println("Shutting down bot...")
	if err := ircBot.Close(); err != nil {
		log.Printf("Error closing IRC bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Println("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}
