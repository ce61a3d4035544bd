// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Repository RepositoryConfig `mapstructure:"repository"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimit       int           `mapstructure:"rate_limit"` // запросов в минуту с одного IP, 0 - без лимита
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

type DatabaseConfig struct {
	URI            string        `mapstructure:"uri"`
	Scheme         string        `mapstructure:"scheme"`
	Host           string        `mapstructure:"host"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	Collection     string        `mapstructure:"collection"`
	PostgresURL    string        `mapstructure:"postgres_url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

type RepositoryConfig struct {
	Type string `mapstructure:"type"` // "mongo", "postgres" или "inmemory"
}

const (
	RepositoryMongo    = "mongo"
	RepositoryPostgres = "postgres"
	RepositoryInMemory = "inmemory"
)

// переменные окружения, которые понимает сервис
var envBindings = map[string]string{
	"server.host":              "HOST",
	"server.port":              "PORT",
	"server.request_timeout":   "REQUEST_TIMEOUT",
	"server.shutdown_timeout":  "SHUTDOWN_TIMEOUT",
	"server.rate_limit":        "RATE_LIMIT",
	"server.cors_origins":      "CORS_ORIGINS",
	"database.uri":             "DB_URI",
	"database.scheme":          "DB_SCHEME",
	"database.host":            "DB_HOST",
	"database.user":            "DB_USER",
	"database.password":        "DB_PASSWORD",
	"database.name":            "DB_NAME",
	"database.collection":      "DB_COLLECTION",
	"database.postgres_url":    "DATABASE_URL",
	"database.connect_timeout": "DB_CONNECT_TIMEOUT",
	"logging.development":      "LOG_DEVELOPMENT",
	"repository.type":          "REPOSITORY_TYPE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.rate_limit", 100)
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.scheme", "mongodb")
	v.SetDefault("database.host", "localhost:27017")
	v.SetDefault("database.name", "WorkingTitle")
	v.SetDefault("database.collection", "todos-list")
	v.SetDefault("database.connect_timeout", 30*time.Second)

	v.SetDefault("logging.development", false)
	v.SetDefault("repository.type", RepositoryMongo)
}

// Load читает config.yml из переданных каталогов (по умолчанию текущий),
// затем накладывает переменные окружения. Файл необязателен.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("привязка переменной %s: %w", env, err)
		}
	}

	if len(paths) == 0 {
		paths = []string{"."}
	}
	v.SetConfigName("config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("ошибка парсинга config.yml: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("разбор конфигурации: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryMongo, RepositoryInMemory:
	case RepositoryPostgres:
		if c.Database.PostgresURL == "" {
			return errors.New("для repository.type=postgres нужен database.postgres_url")
		}
	default:
		return fmt.Errorf("неизвестный тип репозитория %q", c.Repository.Type)
	}

	if c.Server.Port == "" {
		return errors.New("не задан порт сервера")
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("неверное значение rate_limit: %d", c.Server.RateLimit)
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

// MongoURI собирает строку подключения из DB_USER/DB_PASSWORD/DB_HOST,
// если полный URI не задан явно
func (d DatabaseConfig) MongoURI() string {
	if d.URI != "" {
		return d.URI
	}

	u := url.URL{
		Scheme:   d.Scheme,
		Host:     d.Host,
		Path:     "/",
		RawQuery: "retryWrites=true&w=majority",
	}
	if d.User != "" {
		u.User = url.UserPassword(d.User, d.Password)
	}
	return u.String()
}
