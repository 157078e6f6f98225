// Package config loads the server configuration from environment variables,
// with a .env file honored for local development.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	MQTT      MQTTConfig
	Fleet     FleetConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port     string
	LogLevel string // debug, info, warn, error
}

// MongoConfig holds document store configuration.
type MongoConfig struct {
	URI      string
	Database string
}

// MQTTConfig holds the realtime fan-out configuration. An empty BrokerURL
// disables the fan-out entirely.
type MQTTConfig struct {
	BrokerURL   string
	ClientID    string
	TopicPrefix string
}

// FleetConfig holds the route and capacity parameters of the fleet. The two
// towns are display names for the outbound and inbound legs.
type FleetConfig struct {
	SeatCapacity  int
	RouteOutbound string
	RouteInbound  string
}

// RateLimitConfig holds per-client request limiting configuration.
type RateLimitConfig struct {
	Requests      int
	WindowSeconds int
}

// Load reads configuration from the environment, loading a .env file first
// when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getEnv("PORT", "8080"),
			LogLevel: getEnv("LOG_LEVEL", "info"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DATABASE", "louage"),
		},
		MQTT: MQTTConfig{
			BrokerURL:   getEnv("MQTT_BROKER", ""),
			ClientID:    getEnv("MQTT_CLIENT_ID", "louage-backend"),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "louage"),
		},
		Fleet: FleetConfig{
			SeatCapacity:  getEnvAsInt("SEAT_CAPACITY", 8),
			RouteOutbound: getEnv("ROUTE_OUTBOUND", "Tunis"),
			RouteInbound:  getEnv("ROUTE_INBOUND", "Jelma"),
		},
		RateLimit: RateLimitConfig{
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration invariants.
func (c *Config) Validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("MONGO_URI is required")
	}
	if c.Fleet.SeatCapacity < 1 {
		return fmt.Errorf("SEAT_CAPACITY must be at least 1")
	}
	if c.RateLimit.Requests < 1 || c.RateLimit.WindowSeconds < 1 {
		return fmt.Errorf("rate limit requests and window must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.WithField("key", key).Warnf("invalid integer value, using default %d", defaultValue)
		return defaultValue
	}
	return value
}
