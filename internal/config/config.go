// Package config предоставляет функциональность для управления конфигурацией экспортера.
// Поддерживает загрузку настроек из файла (JSON или YAML), флагов командной строки
// и переменных окружения. Приоритет: окружение, затем флаги, затем файл.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr              = "[::]:9742"
	DefaultCacheSeconds      = 30
	DefaultAPIBaseURL        = "https://api.nature.global"
	DefaultAPITimeoutSeconds = 10
	DefaultLogLevel          = "info"
)

var (
	ErrMissingToken = errors.New("missing API token")
	ErrInvalidAddr  = errors.New("invalid bind address")
)

// Config содержит все параметры конфигурации экспортера.
type Config struct {
	// Addr задает адрес и порт HTTP-сервера (например, "[::]:9742").
	Addr string `env:"BIND" json:"bind" yaml:"bind"`

	// Token содержит OAuth-токен Nature Remo API.
	Token string `env:"OAUTH_TOKEN" json:"oauth_token" yaml:"oauth_token"`

	// TokenFile указывает путь к файлу с токеном. Используется, если Token пуст.
	TokenFile string `env:"OAUTH_TOKEN_FILE" json:"oauth_token_file" yaml:"oauth_token_file"`

	// CacheSeconds определяет окно кэша в секундах: чаще этого API не опрашивается.
	CacheSeconds int `env:"CACHE_INVALIDATION_SECONDS" json:"cache_invalidation_seconds" yaml:"cache_invalidation_seconds"`

	APIBaseURL        string `env:"API_BASE_URL" json:"api_base_url" yaml:"api_base_url"`
	APITimeoutSeconds int    `env:"API_TIMEOUT_SECONDS" json:"api_timeout_seconds" yaml:"api_timeout_seconds"`

	// AuditFile указывает путь к файлу аудита циклов обновления. Пусто - аудит в файл отключен.
	AuditFile string `env:"AUDIT_FILE" json:"audit_file" yaml:"audit_file"`

	// AuditURL задает адрес, на который отправляются события аудита. Пусто - отправка отключена.
	AuditURL string `env:"AUDIT_URL" json:"audit_url" yaml:"audit_url"`

	LogLevel string `env:"LOG_LEVEL" json:"log_level" yaml:"log_level"`

	ConfigFilePath string `env:"CONFIG" json:"-" yaml:"-"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() Config {
	return Config{
		Addr:              DefaultAddr,
		CacheSeconds:      DefaultCacheSeconds,
		APIBaseURL:        DefaultAPIBaseURL,
		APITimeoutSeconds: DefaultAPITimeoutSeconds,
		LogLevel:          DefaultLogLevel,
	}
}

// CacheWindow возвращает окно кэша.
func (c Config) CacheWindow() time.Duration {
	return time.Duration(c.CacheSeconds) * time.Second
}

// APITimeout возвращает таймаут HTTP-клиента API.
func (c Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

// GetConfig загружает конфигурацию из аргументов процесса и окружения.
//
// Поддерживаемые флаги:
//
//	-a: адрес сервера (по умолчанию "[::]:9742")
//	-t: токен API
//	-token-file: путь к файлу с токеном
//	-c: окно кэша в секундах (по умолчанию 30)
//	-api: адрес API (по умолчанию "https://api.nature.global")
//	-api-timeout: таймаут запросов к API в секундах (по умолчанию 10)
//	-audit: путь к файлу аудита
//	-audit-url: адрес для отправки событий аудита
//	-log-level: уровень логирования (по умолчанию "info")
//	-config: путь к файлу конфигурации
//
// Соответствующие переменные окружения:
//
//	BIND, OAUTH_TOKEN, OAUTH_TOKEN_FILE, CACHE_INVALIDATION_SECONDS,
//	API_BASE_URL, API_TIMEOUT_SECONDS, AUDIT_FILE, AUDIT_URL, LOG_LEVEL, CONFIG
func GetConfig() (Config, error) {
	return Load(os.Args[1:], env.ToMap(os.Environ()))
}

// Load собирает конфигурацию из args и переменных окружения environ,
// читает токен из файла при необходимости и проверяет результат.
func Load(args []string, environ map[string]string) (Config, error) {
	if environ == nil {
		environ = map[string]string{}
	}

	fs := flag.NewFlagSet("remo-exporter", flag.ContinueOnError)

	var flags Config
	fs.StringVar(&flags.Addr, "a", DefaultAddr, "HTTP server address")
	fs.StringVar(&flags.Token, "t", "", "Nature Remo API token")
	fs.StringVar(&flags.TokenFile, "token-file", "", "path to file with API token")
	fs.IntVar(&flags.CacheSeconds, "c", DefaultCacheSeconds, "cache invalidation interval in seconds")
	fs.StringVar(&flags.APIBaseURL, "api", DefaultAPIBaseURL, "Nature Remo API base url")
	fs.IntVar(&flags.APITimeoutSeconds, "api-timeout", DefaultAPITimeoutSeconds, "API request timeout in seconds")
	fs.StringVar(&flags.AuditFile, "audit", "", "refresh audit file path")
	fs.StringVar(&flags.AuditURL, "audit-url", "", "refresh audit endpoint url")
	fs.StringVar(&flags.LogLevel, "log-level", DefaultLogLevel, "log level")
	fs.StringVar(&flags.ConfigFilePath, "config", "", "path to config file (json or yaml)")

	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("failed to parse flags: %w", err)
	}

	cfg := Default()

	configPath := getConfigPath(flags.ConfigFilePath, environ["CONFIG"])
	if configPath != "" {
		if err := loadFile(configPath, &cfg); err != nil {
			return Config{}, err
		}
		cfg.ConfigFilePath = configPath
	}

	fs.Visit(func(f *flag.Flag) {
		applyFlag(&cfg, &flags, f.Name)
	})

	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("ошибка парсинга ENV: %w", err)
	}

	if err := cfg.resolveToken(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры.
func (c Config) Validate() error {
	if c.Token == "" {
		return ErrMissingToken
	}
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidAddr, c.Addr, err)
	}
	if c.CacheSeconds < 0 {
		return fmt.Errorf("cache invalidation seconds must not be negative, got %d", c.CacheSeconds)
	}
	if c.APITimeoutSeconds <= 0 {
		return fmt.Errorf("api timeout must be positive, got %d", c.APITimeoutSeconds)
	}
	return nil
}

// resolveToken читает токен из TokenFile, если он не задан напрямую.
func (c *Config) resolveToken() error {
	if c.Token != "" || c.TokenFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to read token file %s: %w", c.TokenFile, err)
	}
	c.Token = strings.TrimSpace(string(data))
	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyFlag переносит в cfg значение явно заданного флага.
func applyFlag(cfg, flags *Config, name string) {
	switch name {
	case "a":
		cfg.Addr = flags.Addr
	case "t":
		cfg.Token = flags.Token
	case "token-file":
		cfg.TokenFile = flags.TokenFile
	case "c":
		cfg.CacheSeconds = flags.CacheSeconds
	case "api":
		cfg.APIBaseURL = flags.APIBaseURL
	case "api-timeout":
		cfg.APITimeoutSeconds = flags.APITimeoutSeconds
	case "audit":
		cfg.AuditFile = flags.AuditFile
	case "audit-url":
		cfg.AuditURL = flags.AuditURL
	case "log-level":
		cfg.LogLevel = flags.LogLevel
	}
}

func getConfigPath(flagValue, envValue string) string {
	if envValue != "" {
		return envValue
	}
	return flagValue
}
