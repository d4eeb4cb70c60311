package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"SignalDesk/internal/cache"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/model"
)

// EnvPrefix prefixes every environment override, e.g. SIGNALDESK_LOG_LEVEL.
// The unprefixed name (LOG_LEVEL, TELEGRAM_BOT_TOKEN ...) is accepted too.
const EnvPrefix = "SIGNALDESK"

// Config holds all application configuration.
type Config struct {
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
	} `yaml:"log"`
	Tickers    []string                `yaml:"tickers" default:"[\"AAPL\",\"TSLA\",\"NVDA\"]" validate:"dive,required"`
	Timeframes []model.TimeframeConfig `yaml:"timeframes" validate:"dive"`
	DataSource DataSourceConfig        `yaml:"data_source"`
	Scanner    ScannerConfig           `yaml:"scanner"`
	News       NewsConfig              `yaml:"news"`
	Cache      CacheConfig             `yaml:"cache"`
	Dashboard  DashboardConfig         `yaml:"dashboard"`
	Schedule   ScheduleConfig          `yaml:"schedule"`
	Telegram   TelegramConfig          `yaml:"telegram"`
}

type DataSourceConfig struct {
	UserAgent    string        `yaml:"user_agent" default:"Mozilla/5.0"`
	Timeout      time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
	RequestDelay time.Duration `yaml:"request_delay" default:"300ms" validate:"gte=0"`
	Proxy        string        `yaml:"proxy" validate:"omitempty,url"`
}

type ScannerConfig struct {
	Count    int     `yaml:"count" default:"100" validate:"gt=0,lte=250"`
	MaxPrice float64 `yaml:"max_price" default:"50" validate:"gte=0"`
	Enrich   bool    `yaml:"enrich" default:"true"`
	Top      int     `yaml:"top" default:"3" validate:"gt=0"`
	RVOLDays int     `yaml:"rvol_days" default:"10" validate:"gt=0"`
}

type NewsConfig struct {
	Enabled bool `yaml:"enabled" default:"true"`
	Limit   int  `yaml:"limit" default:"5" validate:"gt=0,lte=20"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend" default:"memory" validate:"oneof=none memory sqlite redis"`
	TTL        time.Duration `yaml:"ttl" default:"60s" validate:"gte=0"`
	GainersTTL time.Duration `yaml:"gainers_ttl" default:"300s" validate:"gte=0"`
	SQLitePath string        `yaml:"sqlite_path" default:"data/cache.db"`
	Redis      struct {
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db" validate:"gte=0"`
		Prefix   string `yaml:"prefix" default:"signaldesk:"`
	} `yaml:"redis"`
}

type DashboardConfig struct {
	Addr string `yaml:"addr" default:":8080" validate:"required"`
}

type ScheduleConfig struct {
	Cron       string `yaml:"cron" default:"0 */5 9-16 * * 1-5" validate:"required"`
	UseGappers bool   `yaml:"use_gappers"`
	RunOnStart bool   `yaml:"run_on_start"`
}

type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// envOverrides lists the settings that may come from the environment.
// Unset variables leave the file value alone.
type envOverrides struct {
	LogLevel      *string        `envconfig:"LOG_LEVEL"`
	LogFormat     *string        `envconfig:"LOG_FORMAT"`
	Tickers       []string       `envconfig:"TICKERS"`
	Proxy         *string        `envconfig:"PROXY"`
	RequestDelay  *time.Duration `envconfig:"REQUEST_DELAY"`
	CacheBackend  *string        `envconfig:"CACHE_BACKEND"`
	SQLitePath    *string        `envconfig:"SQLITE_PATH"`
	RedisAddr     *string        `envconfig:"REDIS_ADDR"`
	RedisPassword *string        `envconfig:"REDIS_PASSWORD"`
	DashboardAddr *string        `envconfig:"DASHBOARD_ADDR"`
	Cron          *string        `envconfig:"CRON"`
	RunOnStart    *bool          `envconfig:"RUN_ON_START"`
	BotToken      *string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID        *string        `envconfig:"TELEGRAM_CHAT_ID"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	if err := defaults.Set(cfg); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("environment overrides: %w", err)
	}
	if len(cfg.Timeframes) == 0 {
		cfg.Timeframes = model.DefaultTimeframes()
	}
	for i, s := range cfg.Tickers {
		cfg.Tickers[i] = strings.ToUpper(strings.TrimSpace(s))
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return err
	}
	setString(&c.Log.Level, env.LogLevel)
	setString(&c.Log.Format, env.LogFormat)
	if len(env.Tickers) > 0 {
		c.Tickers = env.Tickers
	}
	setString(&c.DataSource.Proxy, env.Proxy)
	if env.RequestDelay != nil {
		c.DataSource.RequestDelay = *env.RequestDelay
	}
	setString(&c.Cache.Backend, env.CacheBackend)
	setString(&c.Cache.SQLitePath, env.SQLitePath)
	setString(&c.Cache.Redis.Addr, env.RedisAddr)
	setString(&c.Cache.Redis.Password, env.RedisPassword)
	setString(&c.Dashboard.Addr, env.DashboardAddr)
	setString(&c.Schedule.Cron, env.Cron)
	if env.RunOnStart != nil {
		c.Schedule.RunOnStart = *env.RunOnStart
	}
	setString(&c.Telegram.BotToken, env.BotToken)
	setString(&c.Telegram.ChatID, env.ChatID)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidateTelegram checks the settings needed by the watch command.
func (c *Config) ValidateTelegram() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// HTTPOptions returns the client settings for the data source.
func (d DataSourceConfig) HTTPOptions() collector.HTTPOptions {
	return collector.HTTPOptions{UserAgent: d.UserAgent, Timeout: d.Timeout, Proxy: d.Proxy}
}

// StoreConfig returns the cache backend settings.
func (c CacheConfig) StoreConfig() cache.Config {
	return cache.Config{
		Backend:    c.Backend,
		SQLitePath: c.SQLitePath,
		Redis: cache.RedisConfig{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Prefix:   c.Redis.Prefix,
		},
	}
}

// Options returns the cache freshness windows.
func (c CacheConfig) Options() collector.CacheOptions {
	return collector.CacheOptions{TTL: c.TTL, GainersTTL: c.GainersTTL}
}

// ScanOptions returns the gappers scan settings.
func (c *Config) ScanOptions() collector.ScanOptions {
	return collector.ScanOptions{
		Count:    c.Scanner.Count,
		MaxPrice: c.Scanner.MaxPrice,
		Enrich:   c.Scanner.Enrich,
		RVOLDays: c.Scanner.RVOLDays,
		Delay:    c.DataSource.RequestDelay,
	}
}
