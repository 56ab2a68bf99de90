package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string         `yaml:"env" env:"ENV" env-default:"local"`
	LogFile    string         `yaml:"log_file" env:"LOG_FILE"`
	Parish     string         `yaml:"parish" env:"PARISH"`
	Storage    Storage        `yaml:"storage"`
	Redis      Redis          `yaml:"redis"`
	Cache      Cache          `yaml:"cache"`
	Lock       Lock           `yaml:"lock"`
	Scoring    map[string]int `yaml:"scoring"`
	HTTPServer `yaml:"http_server"`
}

type Storage struct {
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env:"STORAGE_DSN" env-required:"true"`
}

// Redis is optional. With an empty address the cache and locks stay in process.
type Redis struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Cache struct {
	TTL  time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
	Size int           `yaml:"size" env:"CACHE_SIZE" env-default:"1024"`
}

type Lock struct {
	TTL time.Duration `yaml:"ttl" env:"LOCK_TTL" env-default:"10s"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	Timeout         time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"15s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// MustLoad reads the file named by CONFIG_PATH and exits on failure.
func MustLoad() *Config {
	cfg, err := Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

// Load reads the YAML config at path, falling back to ./config/local.yaml.
// A .env file in the working directory is loaded first when present so its
// variables can override file values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	if path == "" {
		path = defaultConfigPath
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	return &cfg, nil
}
