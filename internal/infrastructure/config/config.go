package config

import "time"

// Config holds all configuration for the application
type Config struct {
	Environment   string              `mapstructure:"environment"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Logger        LoggerConfig        `mapstructure:"logger"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Ledger        LedgerConfig        `mapstructure:"ledger"`
	Streak        StreakConfig        `mapstructure:"streak"`
	Achievements  AchievementsConfig  `mapstructure:"achievements"`
	Withdrawal    WithdrawalConfig    `mapstructure:"withdrawal"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	ReadTimeout       time.Duration `mapstructure:"readTimeout"`       // seconds
	WriteTimeout      time.Duration `mapstructure:"writeTimeout"`      // seconds
	IdleTimeout       time.Duration `mapstructure:"idleTimeout"`       // seconds
	ReadHeaderTimeout time.Duration `mapstructure:"readHeaderTimeout"` // seconds
	ShutdownTimeout   time.Duration `mapstructure:"shutdownTimeout"`   // seconds
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            string        `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	SSLMode         string        `mapstructure:"sslMode"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"` // minutes
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"` // minutes
	QueryTimeout    time.Duration `mapstructure:"queryTimeout"`    // seconds
	SlowThreshold   time.Duration `mapstructure:"slowThresholdMs"` // milliseconds
	LogLevel        string        `mapstructure:"logLevel"`
	RetryAttempts   int           `mapstructure:"retryAttempts"`
	RetryDelay      time.Duration `mapstructure:"retryDelay"` // seconds
	Isolation       string        `mapstructure:"isolation"`
	TxMaxRetries    int           `mapstructure:"txMaxRetries"`
	AutoMigrate     bool          `mapstructure:"autoMigrate"`
	SeedCatalog     bool          `mapstructure:"seedCatalog"`
}

// LoggerConfig contains logger settings
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"timeFormat"`
	CallerInfo bool   `mapstructure:"callerInfo"`
}

// AuthConfig contains bearer token settings
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret"`
	Issuer    string `mapstructure:"issuer"`
	AdminRole string `mapstructure:"adminRole"`
}

// RedisConfig contains Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig contains Kafka producer settings
type KafkaConfig struct {
	Brokers      []string      `mapstructure:"brokers"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"` // seconds
}

// NotificationsConfig selects and tunes the notification dispatcher
type NotificationsConfig struct {
	Driver  string        `mapstructure:"driver"` // log, redis or kafka
	Channel string        `mapstructure:"channel"`
	Timeout time.Duration `mapstructure:"timeoutMs"` // milliseconds
}

// LedgerConfig contains balance engine settings
type LedgerConfig struct {
	MaxCASRetries    int `mapstructure:"maxCasRetries"`
	DefaultListLimit int `mapstructure:"defaultListLimit"`
	MaxListLimit     int `mapstructure:"maxListLimit"`
}

// StreakConfig contains streak and freeze settings
type StreakConfig struct {
	Timezone           string `mapstructure:"timezone"`
	FreezeWindowDays   int    `mapstructure:"freezeWindowDays"`
	FreezeEarnInterval int    `mapstructure:"freezeEarnInterval"`
	MaxFreezes         int    `mapstructure:"maxFreezes"`
	FreezePrice        int64  `mapstructure:"freezePrice"`
}

// AchievementsConfig contains achievement settings
type AchievementsConfig struct {
	RewardGems bool `mapstructure:"rewardGems"`
}

// WithdrawalConfig contains payout settings. Rates are decimal strings.
type WithdrawalConfig struct {
	GemToVNDRate     string `mapstructure:"gemToVndRate"`
	PlatformFeeRate  string `mapstructure:"platformFeeRate"`
	MinBalance       int64  `mapstructure:"minBalance"`
	MinAmount        int64  `mapstructure:"minAmount"`
	DefaultListLimit int    `mapstructure:"defaultListLimit"`
}

// MetricsConfig contains Prometheus settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
