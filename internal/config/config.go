// Package config loads process settings from the environment.
package config

import (
	"fmt"
	"runtime"
	"time"

	"usersvc/internal/database"
	"usersvc/internal/security"

	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	AppPort         string
	DBDriver        string
	DatabaseDSN     string
	MongoURI        string
	MongoDatabase   string
	RabbitMQURL     string
	ConsumeEvents   bool
	BcryptCost      int
	HashConcurrency int
	RequestTimeout  time.Duration
	LogLevel        string
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DB_DRIVER", database.DriverSQLite)
	v.SetDefault("DATABASE_DSN", "users.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "users")
	v.SetDefault("RABBITMQ_URL", "") // empty disables event publishing
	// The local consumer acks every message on user_events.
	v.SetDefault("EVENTS_CONSUME", false)
	v.SetDefault("BCRYPT_COST", security.MinCost)
	v.SetDefault("HASH_CONCURRENCY", runtime.NumCPU())
	v.SetDefault("REQUEST_TIMEOUT", 5*time.Second)
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads configuration from the environment, and from the file named by
// CONFIG_FILE when it is set.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.AutomaticEnv()

	if file := v.GetString("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:         v.GetString("APP_PORT"),
		DBDriver:        v.GetString("DB_DRIVER"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		RabbitMQURL:     v.GetString("RABBITMQ_URL"),
		ConsumeEvents:   v.GetBool("EVENTS_CONSUME"),
		BcryptCost:      v.GetInt("BCRYPT_COST"),
		HashConcurrency: v.GetInt("HASH_CONCURRENCY"),
		RequestTimeout:  v.GetDuration("REQUEST_TIMEOUT"),
		LogLevel:        v.GetString("LOG_LEVEL"),
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.DBDriver {
	case database.DriverPostgres, database.DriverSQLite, database.DriverMongo, database.DriverMemory:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return fmt.Errorf("APP_PORT must not be empty")
	}
	if c.BcryptCost < security.MinCost {
		return fmt.Errorf("BCRYPT_COST must be at least %d", security.MinCost)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}
