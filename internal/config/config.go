package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env             string `yaml:"env" validate:"oneof=dev stage prod"`
	ShortCodeLength int    `yaml:"short_code_length" validate:"gte=2,lte=64"`
	Log             `yaml:"log"`
	HTTPServer      `yaml:"http_server"`
	Postgres        `yaml:"postgres"`
	Embedding       `yaml:"embedding"`
	Search          `yaml:"search"`
	Analytics       `yaml:"analytics"`
	Tracker         `yaml:"tracker"`
	Cache           `yaml:"cache"`
	Redirect        `yaml:"redirect"`
}

type Log struct {
	Level string `yaml:"level" validate:"oneof=debug info warn error"`
	// File additionally writes logs to a rotated file when set.
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

var defaultLog = Log{
	Level:      "info",
	MaxSizeMB:  100,
	MaxBackups: 3,
	MaxAgeDays: 28,
}

type HTTPServer struct {
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes"`
	CertFile        string        `yaml:"cert_file"`
	KeyFile         string        `yaml:"key_file"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

var defaultHTTPServer = HTTPServer{
	Port:            8080,
	ReadTimeout:     5 * time.Second,
	WriteTimeout:    30 * time.Second,
	IdleTimeout:     time.Minute,
	ShutdownTimeout: 10 * time.Second,
	MaxHeaderBytes:  1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	MigrationsPath  string        `yaml:"migrations_path"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	MigrationsPath:  "file://migrations",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type Embedding struct {
	Host       string `yaml:"host"`
	Model      string `yaml:"model"`
	Token      string `yaml:"token"`
	Dimensions int    `yaml:"dimensions" validate:"gte=1"`
}

var defaultEmbedding = Embedding{
	Host:       "http://localhost:11434/v1",
	Model:      "all-minilm",
	Dimensions: 384,
}

type Search struct {
	MinSimilarity float64 `yaml:"min_similarity" validate:"gte=-1,lte=1"`
	TopK          int     `yaml:"top_k" validate:"gte=1"`
}

var defaultSearch = Search{
	MinSimilarity: 0.2,
	TopK:          10,
}

type Analytics struct {
	RisingWindow time.Duration `yaml:"rising_window" validate:"gt=0"`
	RisingMax    int           `yaml:"rising_max" validate:"gte=0"`
}

var defaultAnalytics = Analytics{
	RisingWindow: 30 * 24 * time.Hour,
	RisingMax:    5,
}

type Tracker struct {
	PoolSize        int           `yaml:"pool_size" validate:"gte=1"`
	Timeout         time.Duration `yaml:"timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

var defaultTracker = Tracker{
	PoolSize:        16,
	Timeout:         5 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}

type Cache struct {
	// RedisURL enables alias resolution caching when set.
	RedisURL string        `yaml:"redis_url"`
	TTL      time.Duration `yaml:"ttl" validate:"gt=0"`
}

var defaultCache = Cache{
	TTL: 10 * time.Minute,
}

type Redirect struct {
	FallbackPath string `yaml:"fallback_path"`
}

var defaultRedirect = Redirect{
	FallbackPath: "/-/search",
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(&cfg); err != nil {
		return nil, fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ShortCodeLength = 7
	cfg.Log = defaultLog
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.Embedding = defaultEmbedding
	cfg.Search = defaultSearch
	cfg.Analytics = defaultAnalytics
	cfg.Tracker = defaultTracker
	cfg.Cache = defaultCache
	cfg.Redirect = defaultRedirect
}
