package config

import (
	"errors"
	"fmt"
	"math/big"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/mysterylink/button-server/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug     bool   `mapstructure:"debug"`
	SentryDSN string `mapstructure:"sentry_dsn"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // in seconds
	WriteTimeout int    `mapstructure:"write_timeout"` // in seconds
	IdleTimeout  int    `mapstructure:"idle_timeout"`  // in seconds
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// EthereumConfig holds Ethereum node configuration
type EthereumConfig struct {
	RPCURL string `mapstructure:"rpc_url"`
}

// PaymentConfig holds payment verification configuration.
// All amounts are decimal strings in the currency's smallest unit.
type PaymentConfig struct {
	// Scheme selects the validation scheme: "native" or "erc20"
	Scheme string `mapstructure:"scheme"`
	// RecipientAddress is the address payments must be sent to
	RecipientAddress string `mapstructure:"recipient_address"`
	// TokenAddress is the ERC-20 contract address (erc20 scheme only)
	TokenAddress string `mapstructure:"token_address"`
	// TokenDecimals is the display precision of the payment currency
	TokenDecimals int `mapstructure:"token_decimals"`
	// CostPerHour is the price of one hour of ownership, smallest unit
	CostPerHour string `mapstructure:"cost_per_hour"`
	// MinimumAmount is the smallest accepted payment, smallest unit
	MinimumAmount string `mapstructure:"minimum_amount"`
	// MinimumDurationSeconds is the floor below which a purchase is rejected
	MinimumDurationSeconds int64 `mapstructure:"minimum_duration_seconds"`
	// GlobalTxUniqueness extends the replay pre-check across both ownerships
	// and legacy link submissions
	GlobalTxUniqueness bool `mapstructure:"global_tx_uniqueness"`
}

// ObserverConfig holds the chain observer's retry policy
type ObserverConfig struct {
	MaxAttempts       uint64        `mapstructure:"max_attempts"`
	BaseDelay         time.Duration `mapstructure:"base_delay"`
	BackoffMultiplier float64       `mapstructure:"backoff_multiplier"`
	MaxElapsedTime    time.Duration `mapstructure:"max_elapsed_time"`
}

// NATSConfig holds NATS connection configuration
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// MessagingConfig holds event fan-out configuration
type MessagingConfig struct {
	// Backend selects the event publisher: "memory" or "nats"
	Backend string     `mapstructure:"backend"`
	NATS    NATSConfig `mapstructure:"nats"`
}

// WatcherConfig holds the ownership expiry watcher configuration
type WatcherConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

// APIConfig holds configuration for the API server
type APIConfig struct {
	BaseConfig `mapstructure:",squash"`
	Server     ServerConfig    `mapstructure:"server"`
	Database   DatabaseConfig  `mapstructure:"database"`
	Ethereum   EthereumConfig  `mapstructure:"ethereum"`
	Payment    PaymentConfig   `mapstructure:"payment"`
	Observer   ObserverConfig  `mapstructure:"observer"`
	Messaging  MessagingConfig `mapstructure:"messaging"`
	Watcher    WatcherConfig   `mapstructure:"watcher"`
}

// LoadAPIConfig loads configuration for the API server
func LoadAPIConfig(configFile string, envPath string) (*APIConfig, error) {
	v := configureViper("api", configFile, envPath)

	// Set defaults
	v.SetDefault("debug", false)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	// Write timeout must exceed the observer's retry budget: a purchase
	// request can legitimately block for the full ~60s while the node
	// indexes the transaction.
	v.SetDefault("server.write_timeout", 90)
	v.SetDefault("server.idle_timeout", 120)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("payment.scheme", "native")
	v.SetDefault("payment.token_decimals", 18)
	v.SetDefault("payment.cost_per_hour", "10000000000000") // 0.00001 ETH
	v.SetDefault("payment.minimum_amount", "10000000000000")
	v.SetDefault("payment.minimum_duration_seconds", 60)
	v.SetDefault("payment.global_tx_uniqueness", false)
	v.SetDefault("observer.max_attempts", 20)
	v.SetDefault("observer.base_delay", "2s")
	v.SetDefault("observer.backoff_multiplier", 1.2)
	v.SetDefault("observer.max_elapsed_time", "60s")
	v.SetDefault("messaging.backend", "memory")
	v.SetDefault("messaging.nats.subject_prefix", "button.events")
	v.SetDefault("messaging.nats.max_reconnects", 10)
	v.SetDefault("messaging.nats.reconnect_wait", "2s")
	v.SetDefault("messaging.nats.connection_name", "button-api")
	v.SetDefault("watcher.interval", "60s")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// Config file not found, use environment variables
		} else {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg APIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate fails closed on any missing or malformed value that could misroute
// payments. The service never falls back to defaults for these.
func (c *APIConfig) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Ethereum.RPCURL == "" {
		return errors.New("ethereum.rpc_url is required")
	}
	if c.Payment.RecipientAddress == "" {
		return errors.New("payment.recipient_address is required")
	}
	if !domain.IsValidAddress(c.Payment.RecipientAddress) {
		return fmt.Errorf("payment.recipient_address is not a valid address: %s", c.Payment.RecipientAddress)
	}
	scheme := domain.PaymentScheme(c.Payment.Scheme)
	if !scheme.Valid() {
		return fmt.Errorf("payment.scheme must be %q or %q, got %q",
			domain.PaymentSchemeNative, domain.PaymentSchemeERC20, c.Payment.Scheme)
	}
	if scheme == domain.PaymentSchemeERC20 {
		if c.Payment.TokenAddress == "" {
			return errors.New("payment.token_address is required for the erc20 scheme")
		}
		if !domain.IsValidAddress(c.Payment.TokenAddress) {
			return fmt.Errorf("payment.token_address is not a valid address: %s", c.Payment.TokenAddress)
		}
	}
	if _, err := c.Payment.CostPerHourWei(); err != nil {
		return err
	}
	if _, err := c.Payment.MinimumAmountWei(); err != nil {
		return err
	}
	if c.Payment.MinimumDurationSeconds <= 0 {
		return errors.New("payment.minimum_duration_seconds must be positive")
	}
	if c.Observer.MaxAttempts == 0 {
		return errors.New("observer.max_attempts must be positive")
	}
	if c.Messaging.Backend != "memory" && c.Messaging.Backend != "nats" {
		return fmt.Errorf("messaging.backend must be \"memory\" or \"nats\", got %q", c.Messaging.Backend)
	}
	if c.Messaging.Backend == "nats" && c.Messaging.NATS.URL == "" {
		return errors.New("messaging.nats.url is required for the nats backend")
	}
	return nil
}

// CostPerHourWei parses the configured cost per hour into a big integer
func (c *PaymentConfig) CostPerHourWei() (*big.Int, error) {
	return parseAmount("payment.cost_per_hour", c.CostPerHour)
}

// MinimumAmountWei parses the configured minimum payment into a big integer
func (c *PaymentConfig) MinimumAmountWei() (*big.Int, error) {
	return parseAmount("payment.minimum_amount", c.MinimumAmount)
}

func parseAmount(key, value string) (*big.Int, error) {
	if value == "" {
		return nil, fmt.Errorf("%s is required", key)
	}
	amount, ok := new(big.Int).SetString(value, 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer, got %q", key, value)
	}
	return amount, nil
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	// Load environment variables
	loadEnv(envPath, service)

	// Set config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	// Set environment variables
	v.SetEnvPrefix("BUTTON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Explicitly bind all environment variables
	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars explicitly binds all possible environment variables
// This is required for viper to map env vars to config struct fields when no config file exists
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		// Server
		"server.host",
		"server.port",
		"server.read_timeout",
		"server.write_timeout",
		"server.idle_timeout",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// Ethereum
		"ethereum.rpc_url",
		// Payment
		"payment.scheme",
		"payment.recipient_address",
		"payment.token_address",
		"payment.token_decimals",
		"payment.cost_per_hour",
		"payment.minimum_amount",
		"payment.minimum_duration_seconds",
		"payment.global_tx_uniqueness",
		// Observer
		"observer.max_attempts",
		"observer.base_delay",
		"observer.backoff_multiplier",
		"observer.max_elapsed_time",
		// Messaging
		"messaging.backend",
		"messaging.nats.url",
		"messaging.nats.subject_prefix",
		"messaging.nats.max_reconnects",
		"messaging.nats.reconnect_wait",
		"messaging.nats.connection_name",
		// Watcher
		"watcher.interval",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads environment variables from the config directory
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		candidate := filepath.Join(envPath, envFile)
		_ = godotenv.Overload(candidate) // Overload lets later files override earlier ones
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}
