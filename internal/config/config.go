/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables (with an
 * optional .env file for local development), providing a centralized way to
 * manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration management.
 */

package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers the server can run against.
const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

// Config holds all the configuration variables for the ledger service.
type Config struct {
	ServerPort              string `mapstructure:"SERVER_PORT"`
	StoreDriver             string `mapstructure:"STORE_DRIVER"`
	DatabaseURL             string `mapstructure:"DATABASE_URL"`
	RabbitMQURL             string `mapstructure:"RABBITMQ_URL"`
	DashboardEventExchange  string `mapstructure:"DASHBOARD_EVENT_EXCHANGE"`
	RecentTransactionsLimit int    `mapstructure:"RECENT_TRANSACTIONS_LIMIT"`
	SimulatorEnabled        bool   `mapstructure:"SIMULATOR_ENABLED"`
	SimulatorSchedule       string `mapstructure:"SIMULATOR_SCHEDULE"`
	CORSAllowedOrigins      string `mapstructure:"CORS_ALLOWED_ORIGINS"`
}

// AllowedOrigins splits the comma-separated CORS origin list.
func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(c.CORSAllowedOrigins, ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// LoadConfig reads configuration from environment variables, with an optional
// .env file in the given path for local development.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("STORE_DRIVER", StorePostgres)
	viper.SetDefault("DASHBOARD_EVENT_EXCHANGE", "coreledger.events")
	viper.SetDefault("RECENT_TRANSACTIONS_LIMIT", 10)
	viper.SetDefault("SIMULATOR_ENABLED", false)
	viper.SetDefault("SIMULATOR_SCHEDULE", "@every 30s")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")

	// Bind environment variables explicitly to ensure they appear in Unmarshal.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("STORE_DRIVER")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("DASHBOARD_EVENT_EXCHANGE")
	_ = viper.BindEnv("RECENT_TRANSACTIONS_LIMIT")
	_ = viper.BindEnv("SIMULATOR_ENABLED")
	_ = viper.BindEnv("SIMULATOR_SCHEDULE")
	_ = viper.BindEnv("CORS_ALLOWED_ORIGINS")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	config.StoreDriver = strings.ToLower(strings.TrimSpace(config.StoreDriver))
	switch config.StoreDriver {
	case StorePostgres, StoreMemory:
	case "":
		config.StoreDriver = StorePostgres
	default:
		return config, fmt.Errorf("unknown STORE_DRIVER %q (want %q or %q)", config.StoreDriver, StorePostgres, StoreMemory)
	}

	if config.RecentTransactionsLimit <= 0 {
		config.RecentTransactionsLimit = 10
	}
	if strings.TrimSpace(config.SimulatorSchedule) == "" {
		config.SimulatorSchedule = "@every 30s"
	}

	return
}
