package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application. Values are read from
// environment variables by viper.
type Config struct {
	WebhookURL     string        // notification target; empty disables delivery
	APIKey         string        // credential for outbound webhooks, required
	Port           string        // HTTP listen port
	SweepInterval  time.Duration // auction expiry polling period
	WebhookTimeout time.Duration // per-listener delivery timeout
}

// Load reads configuration from environment variables. A missing credential
// is an error; the caller treats it as fatal.
func Load() (Config, error) {
	// Defaults for non-sensitive config
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("SWEEP_INTERVAL", "30s")
	viper.SetDefault("WEBHOOK_TIMEOUT", "5s")
	viper.SetDefault("VOICE_WEBHOOK_URL", "")
	viper.SetDefault("VOICE_API_KEY", "")

	viper.AutomaticEnv()

	cfg := Config{
		WebhookURL:     viper.GetString("VOICE_WEBHOOK_URL"),
		APIKey:         viper.GetString("VOICE_API_KEY"),
		Port:           viper.GetString("PORT"),
		SweepInterval:  viper.GetDuration("SWEEP_INTERVAL"),
		WebhookTimeout: viper.GetDuration("WEBHOOK_TIMEOUT"),
	}

	if cfg.APIKey == "" {
		return Config{}, fmt.Errorf("VOICE_API_KEY environment variable is required")
	}
	return cfg, nil
}
