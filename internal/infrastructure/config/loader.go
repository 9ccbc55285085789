package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environment constants
const (
	Development = "development"
	Production  = "production"
	Test        = "test"
)

// envPrefix prefixes every environment override
const envPrefix = "GL"

// ConfigPaths defines the paths to look for config files
var ConfigPaths = []string{
	"./configs",
	"../configs",
	"../../configs",
}

// DotEnvPaths defines the paths to look for .env files
var DotEnvPaths = []string{
	".env",
	"../.env",
	"../../.env",
	"./configs/.env",
	"../configs/.env",
	"../../configs/.env",
}

// errNoDotEnv is returned when no .env file exists in the search paths
var errNoDotEnv = errors.New("no .env file found in search paths")

// LoadConfig loads configuration from file based on the environment
func LoadConfig() (*Config, error) {
	// Load environment variables from .env file first
	if err := loadDotEnvFile(); err != nil && !errors.Is(err, errNoDotEnv) {
		fmt.Fprintln(os.Stderr, "Warning: Could not load .env file:", err)
	}

	env := getEnvironment()

	v := viper.New()
	v.SetConfigName(env)
	v.SetConfigType("yaml")

	for _, path := range ConfigPaths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Warning: no %s config file found, using defaults and environment\n", env)
	}

	// Set environment variables to override config
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	processEnvOverrides(v)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	config.Environment = env

	processDurations(&config)

	return &config, nil
}

// loadDotEnvFile loads the first .env file found in the search paths
func loadDotEnvFile() error {
	var lastError error

	for _, path := range DotEnvPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			lastError = err
			continue
		}
		return nil
	}

	if lastError != nil {
		return fmt.Errorf("could not load any .env file: %w", lastError)
	}

	return errNoDotEnv
}

// setDefaults sets default values for non-critical configuration
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.readTimeout", 15)       // seconds
	v.SetDefault("server.writeTimeout", 15)      // seconds
	v.SetDefault("server.idleTimeout", 60)       // seconds
	v.SetDefault("server.readHeaderTimeout", 10) // seconds
	v.SetDefault("server.shutdownTimeout", 10)   // seconds

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 5)   // minutes
	v.SetDefault("database.connMaxIdleTime", 5)   // minutes
	v.SetDefault("database.queryTimeout", 10)     // seconds
	v.SetDefault("database.slowThresholdMs", 200) // milliseconds
	v.SetDefault("database.logLevel", "warn")
	v.SetDefault("database.retryAttempts", 3)
	v.SetDefault("database.retryDelay", 1) // seconds
	v.SetDefault("database.isolation", "serializable")
	v.SetDefault("database.txMaxRetries", 5)
	v.SetDefault("database.autoMigrate", true)
	v.SetDefault("database.seedCatalog", true)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.callerInfo", true)

	v.SetDefault("auth.issuer", "gem-ledger")
	v.SetDefault("auth.adminRole", "admin")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.writeTimeout", 5) // seconds

	v.SetDefault("notifications.driver", "log")
	v.SetDefault("notifications.channel", "notifications")
	v.SetDefault("notifications.timeoutMs", 2000) // milliseconds

	v.SetDefault("ledger.maxCasRetries", 3)
	v.SetDefault("ledger.defaultListLimit", 50)
	v.SetDefault("ledger.maxListLimit", 500)

	v.SetDefault("streak.timezone", "Asia/Ho_Chi_Minh")
	v.SetDefault("streak.freezeWindowDays", 1)
	v.SetDefault("streak.freezeEarnInterval", 7)
	v.SetDefault("streak.maxFreezes", 2)
	v.SetDefault("streak.freezePrice", 50)

	v.SetDefault("achievements.rewardGems", true)

	v.SetDefault("withdrawal.gemToVndRate", "200")
	v.SetDefault("withdrawal.platformFeeRate", "0.30")
	v.SetDefault("withdrawal.minBalance", 1000)
	v.SetDefault("withdrawal.minAmount", 1000)
	v.SetDefault("withdrawal.defaultListLimit", 20)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// getEnvironment determines the environment to use based on GL_ENV environment variable
func getEnvironment() string {
	env := os.Getenv(envPrefix + "_ENV")
	if env == "" {
		env = Development
	}
	return strings.ToLower(env)
}

// processEnvOverrides maps the flat environment names operators use onto config keys.
// Environment variables win over file values.
func processEnvOverrides(v *viper.Viper) {
	stringOverrides := map[string]string{
		"GL_DB_DRIVER":            "database.driver",
		"GL_DB_HOST":              "database.host",
		"GL_DB_PORT":              "database.port",
		"GL_DB_USERNAME":          "database.username",
		"GL_DB_PASSWORD":          "database.password",
		"GL_DB_NAME":              "database.database",
		"GL_DB_SSL_MODE":          "database.sslMode",
		"GL_DB_ISOLATION":         "database.isolation",
		"GL_SERVER_HOST":          "server.host",
		"GL_LOGGER_LEVEL":         "logger.level",
		"GL_JWT_SECRET":           "auth.jwtSecret",
		"GL_REDIS_ADDR":           "redis.addr",
		"GL_REDIS_PASSWORD":       "redis.password",
		"GL_NOTIFICATIONS_DRIVER": "notifications.driver",
		"GL_STREAK_TIMEZONE":      "streak.timezone",
	}
	for env, key := range stringOverrides {
		if value := os.Getenv(env); value != "" {
			v.Set(key, value)
		}
	}

	intOverrides := map[string]string{
		"GL_SERVER_PORT":                  "server.port",
		"GL_DB_MAX_OPEN_CONNS":            "database.maxOpenConns",
		"GL_DB_MAX_IDLE_CONNS":            "database.maxIdleConns",
		"GL_DB_CONN_MAX_LIFETIME_MINUTES": "database.connMaxLifetime",
		"GL_DB_QUERY_TIMEOUT_SECONDS":     "database.queryTimeout",
		"GL_DB_RETRY_ATTEMPTS":            "database.retryAttempts",
		"GL_LEDGER_MAX_CAS_RETRIES":       "ledger.maxCasRetries",
	}
	for env, key := range intOverrides {
		if value := getEnvInt(env, -1); value >= 0 {
			v.Set(key, value)
		}
	}

	if brokers := os.Getenv("GL_KAFKA_BROKERS"); brokers != "" {
		v.Set("kafka.brokers", strings.Split(brokers, ","))
	}
}

// getEnvInt reads an environment variable as int
func getEnvInt(name string, defaultVal int) int {
	valStr := os.Getenv(name)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

// processDurations converts time.Duration fields from their raw values to actual durations
func processDurations(config *Config) {
	config.Server.ReadTimeout = config.Server.ReadTimeout * time.Second
	config.Server.WriteTimeout = config.Server.WriteTimeout * time.Second
	config.Server.IdleTimeout = config.Server.IdleTimeout * time.Second
	config.Server.ReadHeaderTimeout = config.Server.ReadHeaderTimeout * time.Second
	config.Server.ShutdownTimeout = config.Server.ShutdownTimeout * time.Second

	config.Database.ConnMaxLifetime = config.Database.ConnMaxLifetime * time.Minute
	config.Database.ConnMaxIdleTime = config.Database.ConnMaxIdleTime * time.Minute
	config.Database.QueryTimeout = config.Database.QueryTimeout * time.Second
	config.Database.SlowThreshold = config.Database.SlowThreshold * time.Millisecond
	config.Database.RetryDelay = config.Database.RetryDelay * time.Second

	config.Kafka.WriteTimeout = config.Kafka.WriteTimeout * time.Second
	config.Notifications.Timeout = config.Notifications.Timeout * time.Millisecond
}
