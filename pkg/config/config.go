package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const DefaultStoragePath = "carts.db"

type HTTPConfig struct {
	Env  string `mapstructure:"env"`
	Port int    `mapstructure:"port"`
}

type StorageConfig struct {
	Path        string `mapstructure:"path"`
	BusyTimeout int    `mapstructure:"busy_timeout_ms"`
}

type ProductConfig struct {
	Id          int     `mapstructure:"id"`
	Name        string  `mapstructure:"name"`
	Description string  `mapstructure:"description"`
	Price       float64 `mapstructure:"price"`
}

type CatalogConfig struct {
	Products []ProductConfig `mapstructure:"products"`
}

type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Storage StorageConfig `mapstructure:"storage"`
	Catalog CatalogConfig `mapstructure:"catalog"`
}

// Load reads config.yaml from CONFIG_PATH (or the working directory). A
// missing file is not an error: defaults and environment variables such as
// STORAGE_PATH or HTTP_PORT are enough to start.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Error loading .env file, %s\n", err)
		return nil, err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetDefault("http.env", EnvLocal)
	v.SetDefault("http.port", 8080)
	v.SetDefault("storage.path", DefaultStoragePath)
	v.SetDefault("storage.busy_timeout_ms", 5000)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("Error reading config file, %s\n", err)
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Printf("Unable to decode into struct, %v\n", err)
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Storage.Path == "" {
		return errors.New("config: storage.path must not be empty")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("config: invalid http.port %d", c.HTTP.Port)
	}
	switch c.HTTP.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("config: unknown http.env %q", c.HTTP.Env)
	}

	return nil
}

// StorageDSN is the modernc sqlite data source for the configured file.
// Transactions start with BEGIN IMMEDIATE so a cart read inside a write
// transaction already holds the write lock.
func (c *Config) StorageDSN() string {
	return fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_txlock=immediate", c.Storage.Path, c.Storage.BusyTimeout)
}
