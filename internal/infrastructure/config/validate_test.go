package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Environment:   Development,
		Server:        ServerConfig{Port: 8080},
		Auth:          AuthConfig{JWTSecret: "secret"},
		Kafka:         KafkaConfig{Brokers: []string{"localhost:9092"}},
		Notifications: NotificationsConfig{Driver: "log"},
		Ledger:        LedgerConfig{MaxCASRetries: 3, DefaultListLimit: 50, MaxListLimit: 500},
		Streak: StreakConfig{
			Timezone:           "Asia/Ho_Chi_Minh",
			FreezeWindowDays:   1,
			FreezeEarnInterval: 7,
			MaxFreezes:         2,
			FreezePrice:        50,
		},
		Withdrawal: WithdrawalConfig{
			GemToVNDRate:    "200",
			PlatformFeeRate: "0.30",
			MinBalance:      1000,
			MinAmount:       1000,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 0 }, wantErr: "invalid server port"},
		{name: "missing secret", mutate: func(c *Config) { c.Auth.JWTSecret = "" }, wantErr: "jwtSecret is required"},
		{
			name: "short production secret",
			mutate: func(c *Config) {
				c.Environment = Production
			},
			wantErr: "at least 32 bytes",
		},
		{name: "unknown driver", mutate: func(c *Config) { c.Notifications.Driver = "smtp" }, wantErr: "unsupported notifications driver"},
		{
			name: "kafka without brokers",
			mutate: func(c *Config) {
				c.Notifications.Driver = "kafka"
				c.Kafka.Brokers = nil
			},
			wantErr: "kafka.brokers is required",
		},
		{name: "negative cas retries", mutate: func(c *Config) { c.Ledger.MaxCASRetries = -1 }, wantErr: "maxCasRetries"},
		{name: "list limits inverted", mutate: func(c *Config) { c.Ledger.MaxListLimit = 10 }, wantErr: "invalid ledger list limits"},
		{name: "unknown timezone", mutate: func(c *Config) { c.Streak.Timezone = "Mars/Olympus" }, wantErr: "invalid streak.timezone"},
		{name: "zero freeze window", mutate: func(c *Config) { c.Streak.FreezeWindowDays = 0 }, wantErr: "freezeWindowDays"},
		{name: "free freeze", mutate: func(c *Config) { c.Streak.FreezePrice = 0 }, wantErr: "freezePrice"},
		{name: "bad rate", mutate: func(c *Config) { c.Withdrawal.GemToVNDRate = "abc" }, wantErr: "gemToVndRate"},
		{name: "fee of one", mutate: func(c *Config) { c.Withdrawal.PlatformFeeRate = "1" }, wantErr: "platformFeeRate"},
		{name: "zero minimum", mutate: func(c *Config) { c.Withdrawal.MinAmount = 0 }, wantErr: "withdrawal minimums"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			if assert.Error(t, err) {
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
