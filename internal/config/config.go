package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shaiso/Rucioflow/internal/retry"
)

// Config — конфигурация процесса. Читается из окружения один раз
// при старте и дальше не меняется.
type Config struct {
	// CatalogURL — адрес каталога. Обязателен.
	CatalogURL string

	// Account — учётная запись каталога. Обязательна.
	Account string

	// Token — auth-токен каталога.
	Token string

	// DefaultRSE — RSE по умолчанию для регистрации реплик.
	DefaultRSE string

	// DefaultScope — scope по умолчанию для dataset'ов и файлов.
	DefaultScope string

	// Workers — максимум одновременных вызовов каталога.
	Workers int

	// RequestTimeout — таймаут одного HTTP-запроса к каталогу.
	RequestTimeout time.Duration

	// Retry — политика повторов для вызовов каталога.
	Retry retry.Policy
}

// Load читает конфигурацию из окружения.
//
// Переменные:
//
//	RUCIO_CATALOG_URL      адрес каталога (обязательна)
//	RUCIO_ACCOUNT          учётная запись (обязательна)
//	RUCIO_TOKEN            auth-токен
//	RUCIO_DEFAULT_RSE      RSE по умолчанию
//	RUCIO_DEFAULT_SCOPE    scope по умолчанию
//	RUCIO_WORKERS          параллелизм batch-операций (default: 8)
//	RUCIO_REQUEST_TIMEOUT  таймаут запроса (default: 30s)
//	RUCIO_MAX_ATTEMPTS     попыток на вызов (default: 3)
//	RUCIO_RETRY_BASE_DELAY задержка перед вторым вызовом (default: 1s)
//	RUCIO_RETRY_MAX_DELAY  потолок задержки (default: 30s)
func Load() (Config, error) {
	cfg := Config{
		CatalogURL:   os.Getenv("RUCIO_CATALOG_URL"),
		Account:      os.Getenv("RUCIO_ACCOUNT"),
		Token:        os.Getenv("RUCIO_TOKEN"),
		DefaultRSE:   os.Getenv("RUCIO_DEFAULT_RSE"),
		DefaultScope: os.Getenv("RUCIO_DEFAULT_SCOPE"),
	}

	var err error
	if cfg.Workers, err = envInt("RUCIO_WORKERS", 8); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = envDuration("RUCIO_REQUEST_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.Retry.MaxAttempts, err = envInt("RUCIO_MAX_ATTEMPTS", 0); err != nil {
		return Config{}, err
	}
	if cfg.Retry.BaseDelay, err = envDuration("RUCIO_RETRY_BASE_DELAY", 0); err != nil {
		return Config{}, err
	}
	if cfg.Retry.MaxDelay, err = envDuration("RUCIO_RETRY_MAX_DELAY", 0); err != nil {
		return Config{}, err
	}
	cfg.Retry = cfg.Retry.WithDefaults()

	return cfg, cfg.Validate()
}

// Validate проверяет обязательные поля и диапазоны.
func (c Config) Validate() error {
	if c.CatalogURL == "" {
		return fmt.Errorf("RUCIO_CATALOG_URL is required")
	}
	if c.Account == "" {
		return fmt.Errorf("RUCIO_ACCOUNT is required")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("RUCIO_WORKERS must be positive, got %d", c.Workers)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("RUCIO_REQUEST_TIMEOUT must be positive, got %v", c.RequestTimeout)
	}
	return nil
}

func envInt(name string, fallback int) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", name, v)
	}
	return n, nil
}

func envDuration(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", name, v)
	}
	return d, nil
}
