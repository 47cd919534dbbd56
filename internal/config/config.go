package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/larriantoniy/tg_group_joiner/internal/domain"
)

const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

type AppConfig struct {
	Env     string `yaml:"env" env:"APP_ENV"`
	BaseDir string `yaml:"base_dir" env:"BASE_DIR"`
	// дефолтные ApiID/ApiHash, если у аккаунта свои не сохранены
	ApiID   int32  `yaml:"api_id" env:"TELEGRAM_API_ID"`
	ApiHash string `yaml:"api_hash" env:"TELEGRAM_API_HASH"`

	LinksFile       string `yaml:"links_file" env:"LINKS_FILE"`
	ResultsDir      string `yaml:"results_dir" env:"RESULTS_DIR"`
	DatabasePath    string `yaml:"database_path" env:"DATABASE_PATH"`
	SaveFailedLinks bool   `yaml:"save_failed_links" env:"SAVE_FAILED_LINKS"`

	Pacing      PacingConfig      `yaml:"pacing" env-prefix:"PACING_"`
	Credentials CredentialsConfig `yaml:"credentials" env-prefix:"CREDENTIALS_"`
}

type PacingConfig struct {
	IntervalSeconds     float64 `yaml:"interval_seconds" env:"INTERVAL_SECONDS"`
	Randomize           bool    `yaml:"randomize" env:"RANDOMIZE"`
	FloodWaitMultiplier float64 `yaml:"flood_wait_multiplier" env:"FLOOD_WAIT_MULTIPLIER"`
	MaxRetryAttempts    int     `yaml:"max_retry_attempts" env:"MAX_RETRY_ATTEMPTS"`
}

type CredentialsConfig struct {
	Backend       string `yaml:"backend" env:"BACKEND"`
	RedisAddr     string `yaml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string `yaml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int    `yaml:"redis_db" env:"REDIS_DB"`
	RedisPrefix   string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

// Defaults: значения по умолчанию, YAML и env накладываются поверх.
func Defaults() AppConfig {
	return AppConfig{
		Env:             "prod",
		BaseDir:         "./sessions",
		LinksFile:       "links.txt",
		ResultsDir:      "results",
		DatabasePath:    "./data/joiner.db",
		SaveFailedLinks: true,
		Pacing: PacingConfig{
			IntervalSeconds:     300,
			Randomize:           true,
			FloodWaitMultiplier: 1.5,
		},
		Credentials: CredentialsConfig{
			Backend:     BackendFile,
			RedisAddr:   "localhost:6379",
			RedisPrefix: "joiner",
		},
	}
}

// Load читает YAML (если путь задан) и переопределяет значениями из окружения.
func Load(path string) (*AppConfig, error) {
	cfg := Defaults()

	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("ошибка загрузки конфига %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("ошибка чтения окружения: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.BaseDir == "" {
		return fmt.Errorf("base_dir должен быть задан")
	}
	switch c.Credentials.Backend {
	case BackendFile, BackendRedis:
	default:
		return fmt.Errorf("unknown credentials backend %q", c.Credentials.Backend)
	}
	if c.Pacing.MaxRetryAttempts < 0 {
		return fmt.Errorf("max_retry_attempts must be >= 0")
	}
	return c.Policy().Validate()
}

func (c *AppConfig) Policy() domain.PacingPolicy {
	return domain.PacingPolicy{
		BaseIntervalSeconds: c.Pacing.IntervalSeconds,
		JitterEnabled:       c.Pacing.Randomize,
		FloodWaitMultiplier: c.Pacing.FloodWaitMultiplier,
	}
}

// ConfigPath: флаг > CONFIG_PATH > пусто (только env).
func ConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CONFIG_PATH")
}
