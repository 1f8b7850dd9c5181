package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug      bool       `yaml:"debug" env:"DEBUG"`
	Limiter    Limiter    `yaml:"limiter"`
	Server     Server     `yaml:"server"`
	DB         DB         `yaml:"db"`
	Auth       Auth       `yaml:"auth"`
	SMTPServer SMTPServer `yaml:"smtp_server"`
	Mailer     Mailer     `yaml:"mailer"`
	Titles     Titles     `yaml:"titles"`
	Pagination Pagination `yaml:"pagination"`
	BgTasks    BgTasks    `yaml:"bg_tasks"`
}

type Limiter struct {
	Enabled bool    `yaml:"enabled" env:"LIMITER_ENABLED"`
	Rps     float64 `yaml:"rps" env-default:"20"`
	Burst   int     `yaml:"burst" env-default:"5"`
}

type Server struct {
	Port string `yaml:"port" env:"SERVER_PORT" env-default:"8000"`
	Host string `yaml:"host" env:"SERVER_HOST" env-default:"localhost"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env-default:"5s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"20s"`
}

type DB struct {
	Dsn             string        `yaml:"dsn" env:"DB_DSN" env-required:"true"`
	MaxConns        int           `yaml:"max_conns" env-default:"25"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env-default:"10m"`
	AutoMigrate     bool          `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE"`
}

// Confirmation codes are stored in a varchar(16) column.
const (
	MinConfirmationCodeLength = 4
	MaxConfirmationCodeLength = 16
)

type Auth struct {
	AppSecret              string        `yaml:"app_secret" env:"APP_SECRET" env-required:"true"`
	AccessTokenTTL         time.Duration `yaml:"access_token_ttl" env-default:"24h"`
	ConfirmationCodeTTL    time.Duration `yaml:"confirmation_code_ttl" env-default:"300s"`
	ConfirmationCodeLength int           `yaml:"confirmation_code_length" env-default:"6"`
}

type SMTPServer struct {
	Host     string        `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     int           `yaml:"port" env:"SMTP_PORT" env-default:"25"`
	Username string        `yaml:"username" env:"SMTP_USERNAME"`
	Password string        `yaml:"password" env:"SMTP_PASSWORD"`
	Sender   string        `yaml:"sender" env:"SMTP_SENDER" env-default:"YaMDb <no-reply@yamdb.local>"`
	Timeout  time.Duration `yaml:"timeout" env-default:"5s"`
	// When set, mail goes through the HTTP API at ApiURL instead of SMTP.
	ApiToken string `yaml:"api_token" env:"MAIL_API_TOKEN"`
	ApiURL   string `yaml:"api_url" env:"MAIL_API_URL"`
}

type Mailer struct {
	Async bool `yaml:"async" env:"MAILER_ASYNC"`
}

type Titles struct {
	MinYear int32 `yaml:"min_year" env-default:"0"`
}

type Pagination struct {
	DefaultPageSize int `yaml:"default_page_size" env-default:"10"`
	MaxPageSize     int `yaml:"max_page_size" env-default:"100"`
}

type BgTasks struct {
	MaxWorkers   int `yaml:"max_workers" env-default:"4"`
	MaxQueueSize int `yaml:"max_queue_size" env-default:"100"`
}

// MustLoad reads the yaml file at configPath, overlaying environment variables.
// A .env file in the working directory is loaded first when present.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}
	if n := cfg.Auth.ConfirmationCodeLength; n < MinConfirmationCodeLength || n > MaxConfirmationCodeLength {
		return nil, fmt.Errorf(
			"auth.confirmation_code_length must be between %d and %d, got %d",
			MinConfirmationCodeLength, MaxConfirmationCodeLength, n,
		)
	}
	return &cfg, nil
}
