package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisGeoDB    int    `mapstructure:"REDIS_GEO_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Google Maps API key (geocoding + directions).
	GoogleAPIKey string `mapstructure:"GOOGLE_API_KEY"`

	// Fleet tracker API (live vehicle positions).
	FleetAPIBaseURL string `mapstructure:"FLEET_API_BASE_URL"`
	FleetAPIKey     string `mapstructure:"FLEET_API_KEY"`

	// Suggestion engine tuning.
	SuggestWorkers         int `mapstructure:"SUGGEST_WORKERS"`
	SuggestTravelTimeoutMs int `mapstructure:"SUGGEST_TRAVEL_TIMEOUT_MS"`
	SuggestDeadlineMs      int `mapstructure:"SUGGEST_DEADLINE_MS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_GEO_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("GOOGLE_API_KEY", "")
	viper.SetDefault("FLEET_API_BASE_URL", "")
	viper.SetDefault("FLEET_API_KEY", "")
	viper.SetDefault("SUGGEST_WORKERS", 6)
	viper.SetDefault("SUGGEST_TRAVEL_TIMEOUT_MS", 1500)
	viper.SetDefault("SUGGEST_DEADLINE_MS", 5000)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
