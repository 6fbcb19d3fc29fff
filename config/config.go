package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix     = "MARATHON_"
	EnvConfigFile = "MARATHON_CONFIG"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)

type Config struct {
	// Input путь к CSV (можно .gz, .zip, .lz4)
	Input     string `koanf:"input"`
	Delimiter string `koanf:"delimiter" validate:"omitempty,len=1"`
	Encoding  string `koanf:"encoding" validate:"required"`

	// DbDsn и DbTable включают чтение из таблицы вместо файла
	DbDsn   string `koanf:"db_dsn"`
	DbTable string `koanf:"db_table" validate:"required_with=DbDsn"`

	OutputDir string `koanf:"output_dir"`
	Addr      string `koanf:"addr" validate:"required_if=Serve true"`
	Serve     bool   `koanf:"serve"`
	TgToken   string `koanf:"tg_token"`

	TopN                int `koanf:"top_n" validate:"gt=0"`
	PopulationThreshold int `koanf:"population_threshold" validate:"gte=0"`
	PageSize            int `koanf:"page_size" validate:"gt=0,lte=500"`
	YearFrom            int `koanf:"year_from" validate:"gte=0"`
	YearTo              int `koanf:"year_to" validate:"omitempty,gtefield=YearFrom"`

	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
}

// New возвращает конфигурацию по умолчанию
func New() *Config {
	return &Config{
		Input:               "berlin_marathon_1974_2023.csv",
		Encoding:            "utf-8",
		OutputDir:           "output",
		Addr:                ":8005",
		TopN:                50,
		PopulationThreshold: 1000,
		PageSize:            10,
		YearFrom:            1974,
		YearTo:              2023,
		LogLevel:            "info",
	}
}

var (
	config *Config
	once   sync.Once
)

// GetConfig возвращает singleton экземпляр конфигурации
func GetConfig() *Config {
	once.Do(func() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("Error loading .env file: %v", err)
		}
		cfg, err := Load()
		if err != nil {
			log.Fatalf("Error loading config: %v", err)
		}
		config = cfg
	})
	return config
}

// Load layers defaults, an optional YAML file from MARATHON_CONFIG and
// MARATHON_* environment variables, then validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %v", ErrLoadConfig, err)
	}

	cfg := New()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Input == "" && c.DbDsn == "" {
		return fmt.Errorf("%w: input or db_dsn must be set", ErrInvalidConfig)
	}
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// UseDatabase reports whether results are read from a SQL table.
func (c *Config) UseDatabase() bool {
	return c.DbDsn != ""
}
