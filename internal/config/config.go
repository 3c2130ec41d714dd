package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/billcraft/billcraft/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig   `validate:"required"`
	Billing    BillingConfig    `validate:"required"`
	Webhook    WebhookConfig    `validate:"required"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address string `validate:"required"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Host                   string
	Port                   int
	User                   string
	Password               string
	DBName                 string
	SSLMode                string
	MaxOpenConns           int
	MaxIdleConns           int
	ConnMaxLifetimeMinutes int
}

// BillingConfig carries billing policy knobs.
type BillingConfig struct {
	// PaymentTermDays is the number of days between issue date and due date.
	PaymentTermDays int `validate:"required,min=1"`
	// DashboardCacheTTLSeconds bounds staleness of dashboard aggregates.
	DashboardCacheTTLSeconds int
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	// Modify config paths to ensure config.yaml is found
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/billcraft")

	// Set up environment variables support
	v.SetEnvPrefix("BILLCRAFT")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	// Read config file if exists
	if err := v.ReadInConfig(); err != nil {
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.ApplyDefaults()

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Webhook.Validate()
}

// ApplyDefaults fills in values that are safe to assume when the config
// file or environment leaves them unset.
func (c *Configuration) ApplyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Deployment.Mode == "" {
		c.Deployment.Mode = types.ModeLocal
	}
	if c.Logging.Level == "" {
		c.Logging.Level = types.LogLevelInfo
	}
	if c.Billing.PaymentTermDays == 0 {
		c.Billing.PaymentTermDays = 15
	}
	if c.Billing.DashboardCacheTTLSeconds == 0 {
		c.Billing.DashboardCacheTTLSeconds = 30
	}
	if c.Webhook.Topic == "" {
		c.Webhook.Topic = "webhook_events"
	}
	if c.Webhook.PubSub == "" {
		c.Webhook.PubSub = types.MemoryPubSub
	}
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or tests without a config file
func GetDefaultConfig() *Configuration {
	cfg := &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
	}
	cfg.ApplyDefaults()
	return cfg
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
