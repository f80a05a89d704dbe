package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration
type Config struct {
	// IRC configuration
	IRCServer   string
	IRCPort     int
	IRCNick     string
	IRCChannels []string
	IRCTLS      bool

	// Database configuration
	DatabaseURL string

	// Nicks allowed to mint beans with ++N
	AdminNicks []string

	// Metrics HTTP server port, empty disables the server
	MetricsPort string

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
		IRCServer:   os.Getenv("IRC_SERVER"),
		IRCPort:     6667,
		IRCNick:     os.Getenv("IRC_NICK"),
		IRCTLS:      os.Getenv("IRC_TLS") == "true",
		DatabaseURL: os.Getenv("DATABASE_URL"),
		MetricsPort: os.Getenv("METRICS_PORT"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	if port := os.Getenv("IRC_PORT"); port != "" {
		if parsedPort, err := strconv.Atoi(port); err == nil {
			config.IRCPort = parsedPort
		}
	}
	if config.IRCTLS && os.Getenv("IRC_PORT") == "" {
		config.IRCPort = 6697
	}

	config.IRCChannels = splitList(os.Getenv("IRC_CHANNELS"))
	config.AdminNicks = splitList(os.Getenv("ADMIN_NICKS"))

	if config.IRCNick == "" {
		config.IRCNick = "beansbot"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.IRCServer == "" {
			return nil, fmt.Errorf("IRC_SERVER is required")
		}
		if len(config.IRCChannels) == 0 {
			return nil, fmt.Errorf("IRC_CHANNELS is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
