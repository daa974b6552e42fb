package config

import (
	"fmt"
	"os"
	"sync"
)

// Config holds all process-level configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Completion API configuration
	OpenAIAPIKey string
	OpenAIAPIURL string // optional override of the completions endpoint

	// Bot configuration files
	BotConfigFile     string
	CustomAPIKeysFile string // optional

	// Environment
	Environment string // "development" or "production"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	config := &Config{
		// Discord
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// Completion API
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OpenAIAPIURL: os.Getenv("OPENAI_API_URL"),

		// Config files
		BotConfigFile:     os.Getenv("BOT_CONFIG_FILE"),
		CustomAPIKeysFile: os.Getenv("CUSTOM_API_KEYS_FILE"),

		// Environment
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if config.BotConfigFile == "" {
		config.BotConfigFile = "config.yaml"
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is required")
		}
	}

	return config, nil
}
