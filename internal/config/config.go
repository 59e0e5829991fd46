/**
 * @description
 * This file handles configuration management for the finance service. It
 * loads settings from environment variables, providing defaults for the cron
 * schedule and server address.
 */
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the finance service.
type Config struct {
	DatabaseURL            string `mapstructure:"DATABASE_URL"`
	ServerPort             string `mapstructure:"FINANCE_SERVICE_PORT"`
	NotificationServiceURL string `mapstructure:"NOTIFICATION_SERVICE_URL"`
	InternalAPIKey         string `mapstructure:"INTERNAL_API_KEY"`
	RabbitMQURL            string `mapstructure:"RABBITMQ_URL"`
	DailyBatchSchedule     string `mapstructure:"DAILY_BATCH_SCHEDULE"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	viper.SetDefault("FINANCE_SERVICE_PORT", "8087")
	viper.SetDefault("DAILY_BATCH_SCHEDULE", "0 6 * * *") // At 06:00 every day.
	viper.AutomaticEnv()

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("FINANCE_SERVICE_PORT")
	_ = viper.BindEnv("NOTIFICATION_SERVICE_URL")
	_ = viper.BindEnv("INTERNAL_API_KEY")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("DAILY_BATCH_SCHEDULE")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL must be set")
	}
	if config.InternalAPIKey == "" {
		return nil, fmt.Errorf("INTERNAL_API_KEY must be set")
	}

	return &config, nil
}
