// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
	Port      string `env:"PORT" envDefault:"5000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Auth
	JWTSecret    string   `env:"JWT_SECRET"`
	AdminWallets []string `env:"ADMIN_WALLETS" envSeparator:","`

	// Reward payout signer service
	PayoutURL       string `env:"PAYOUT_URL"`
	PayoutAPIKey    string `env:"PAYOUT_API_KEY"`
	RewardAmountWei string `env:"REWARD_AMOUNT_WEI" envDefault:"10000000000000000"`

	// Socket limits
	MaxClientsPerRoom int `env:"MAX_CLIENTS_PER_ROOM" envDefault:"100"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if len(cfg.JWTSecret) < 16 {
		return nil, fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if cfg.PayoutURL == "" {
		return nil, fmt.Errorf("PAYOUT_URL is required")
	}
	if cfg.MaxClientsPerRoom <= 0 {
		return nil, fmt.Errorf("MAX_CLIENTS_PER_ROOM must be positive")
	}

	// Wallet comparisons are case-insensitive everywhere.
	for i, w := range cfg.AdminWallets {
		cfg.AdminWallets[i] = strings.ToLower(strings.TrimSpace(w))
	}

	return cfg, nil
}

// IsAdminWallet reports whether the wallet is in the configured admin list.
func (c *Config) IsAdminWallet(wallet string) bool {
	wallet = strings.ToLower(wallet)
	for _, w := range c.AdminWallets {
		if w == wallet {
			return true
		}
	}
	return false
}
