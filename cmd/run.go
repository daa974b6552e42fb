package cmd

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"parley/bot"
	"parley/config"
	"parley/database"
	"parley/events"
	"parley/gpt"
	"parley/repository"
	"parley/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting parley bot...")

	cfg := config.Get()

	// Bot configuration is validated at load time; a broken config file
	// stops the process before it serves any traffic.
	botConfig, err := config.LoadBot(cfg.BotConfigFile)
	if err != nil {
		return fmt.Errorf("failed to load bot config: %w", err)
	}
	customKeys, err := config.LoadCustomAPIKeys(cfg.CustomAPIKeysFile)
	if err != nil {
		return fmt.Errorf("failed to load custom API keys: %w", err)
	}
	log.WithFields(log.Fields{
		"models":        len(botConfig.Models),
		"personalities": len(botConfig.Personalities),
		"oneOffs":       len(botConfig.OneOffs),
		"customKeys":    len(customKeys),
	}).Info("Bot configuration loaded")

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()

	allowanceRepo := repository.NewAllowanceRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	allowanceTx := repository.NewAllowanceTxRunner(db)

	gptClient := gpt.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIAPIURL, customKeys)

	allowanceService := service.NewAllowanceService(allowanceRepo, allowanceTx, eventBus, botConfig, customKeys)
	conversationService := service.NewConversationService(conversationRepo)
	settingsService := service.NewSettingsService(settingsRepo, botConfig)
	queryService := service.NewQueryService(allowanceService, conversationService, settingsService, gptClient, eventBus, botConfig)

	// Audit log of every priced completion.
	eventBus.Subscribe(events.EventTypeSpending, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.SpendingEvent); ok {
			log.WithFields(log.Fields{
				"userID":       e.UserID,
				"model":        e.Model,
				"cost":         e.Cost,
				"inputTokens":  e.InputTokens,
				"outputTokens": e.OutputTokens,
				"unlimited":    e.Unlimited,
			}).Info("Completion spending recorded")
		}
	})

	log.Info("Initializing Discord bot...")
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	}, botConfig, queryService, allowanceService, settingsService, conversationService, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	log.Info("Discord bot initialized")

	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	log.Info("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}
