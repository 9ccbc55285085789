package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Validate checks the settings the application cannot start without
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("auth.jwtSecret is required")
	}
	if c.Environment == Production && len(c.Auth.JWTSecret) < 32 {
		return errors.New("auth.jwtSecret must be at least 32 bytes in production")
	}

	switch c.Notifications.Driver {
	case "log", "redis", "kafka":
	default:
		return fmt.Errorf("unsupported notifications driver: %s", c.Notifications.Driver)
	}
	if c.Notifications.Driver == "kafka" && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required for the kafka notifications driver")
	}

	if c.Ledger.MaxCASRetries < 0 {
		return fmt.Errorf("ledger.maxCasRetries must be non-negative, got: %d", c.Ledger.MaxCASRetries)
	}
	if c.Ledger.DefaultListLimit <= 0 || c.Ledger.MaxListLimit < c.Ledger.DefaultListLimit {
		return fmt.Errorf("invalid ledger list limits: default %d, max %d", c.Ledger.DefaultListLimit, c.Ledger.MaxListLimit)
	}

	if _, err := time.LoadLocation(c.Streak.Timezone); err != nil {
		return fmt.Errorf("invalid streak.timezone %q: %w", c.Streak.Timezone, err)
	}
	if c.Streak.FreezeWindowDays < 1 {
		return fmt.Errorf("streak.freezeWindowDays must be at least 1, got: %d", c.Streak.FreezeWindowDays)
	}
	if c.Streak.FreezeEarnInterval < 0 || c.Streak.MaxFreezes < 0 {
		return errors.New("streak freeze settings must be non-negative")
	}
	if c.Streak.FreezePrice <= 0 {
		return fmt.Errorf("streak.freezePrice must be positive, got: %d", c.Streak.FreezePrice)
	}

	rate, err := decimal.NewFromString(c.Withdrawal.GemToVNDRate)
	if err != nil || !rate.IsPositive() {
		return fmt.Errorf("invalid withdrawal.gemToVndRate: %q", c.Withdrawal.GemToVNDRate)
	}
	fee, err := decimal.NewFromString(c.Withdrawal.PlatformFeeRate)
	if err != nil || fee.IsNegative() || fee.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("invalid withdrawal.platformFeeRate: %q", c.Withdrawal.PlatformFeeRate)
	}
	if c.Withdrawal.MinAmount <= 0 || c.Withdrawal.MinBalance < 0 {
		return errors.New("withdrawal minimums must be positive")
	}

	return nil
}
