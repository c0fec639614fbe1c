package config

import (
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds the application settings.
type Config struct {
	AppPort            string        `validate:"required"`
	DataDir            string        `validate:"required"`
	DatabaseName       string        `validate:"required"`
	PreferencesBackend string        `validate:"oneof=sqlite memory"`
	PreferencesName    string        `validate:"required_if=PreferencesBackend sqlite"`
	NativePlatform     bool
	BcryptCost         int           `validate:"min=4,max=31"`
	OperationTimeout   time.Duration `validate:"gt=0"`
	RabbitMQURL        string
	RabbitMQQueue      string `validate:"required_with=RabbitMQURL"`
}

// DatabasePath is the location of the catalog database file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.DataDir, c.DatabaseName)
}

// PreferencesPath is the location of the key-value store file.
func (c Config) PreferencesPath() string {
	return filepath.Join(c.DataDir, c.PreferencesName)
}

// BrokerEnabled reports whether account events go to RabbitMQ.
func (c Config) BrokerEnabled() bool {
	return c.RabbitMQURL != ""
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("DATABASE_NAME", "coffeestock.db")
	v.SetDefault("PREFERENCES_BACKEND", "sqlite")
	v.SetDefault("PREFERENCES_NAME", "preferences.db")
	v.SetDefault("NATIVE_PLATFORM", true)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("OPERATION_TIMEOUT", "10s")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("RABBITMQ_QUEUE", "account_events")
}

// Load reads configuration from environment variables and an optional
// coffeestock.(yaml|json|toml) file in the working directory.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("coffeestock")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		log.Printf("Using config file %s", v.ConfigFileUsed())
	}

	return FromViper(v)
}

// FromViper builds and validates a Config from v.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:            v.GetString("APP_PORT"),
		DataDir:            v.GetString("DATA_DIR"),
		DatabaseName:       v.GetString("DATABASE_NAME"),
		PreferencesBackend: v.GetString("PREFERENCES_BACKEND"),
		PreferencesName:    v.GetString("PREFERENCES_NAME"),
		NativePlatform:     v.GetBool("NATIVE_PLATFORM"),
		BcryptCost:         v.GetInt("BCRYPT_COST"),
		OperationTimeout:   v.GetDuration("OPERATION_TIMEOUT"),
		RabbitMQURL:        v.GetString("RABBITMQ_URL"),
		RabbitMQQueue:      v.GetString("RABBITMQ_QUEUE"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
