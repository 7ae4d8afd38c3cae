package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string            `yaml:"environment" default:"development" validate:"required"`
	Log         LogConfig         `yaml:"log"`
	Server      ServerConfig      `yaml:"server"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Gateway     GatewayConfig     `yaml:"gateway"`
	Predictions PredictionsConfig `yaml:"predictions"`
	Watchdog    WatchdogConfig    `yaml:"watchdog"`
	Ledger      LedgerConfig      `yaml:"ledger"`
	Cache       CacheConfig       `yaml:"cache"`
	Kafka       KafkaConfig       `yaml:"kafka"`
	RateLimit   RateLimitConfig   `yaml:"ratelimit"`
	WS          WSConfig          `yaml:"ws"`
}

type LogConfig struct {
	Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" default:"console" validate:"oneof=json console"`
	Output string `yaml:"output" default:"stdout"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8090" validate:"gte=1,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	AllowOrigins    []string      `yaml:"allow_origins"`
}

type MetricsConfig struct {
	Enabled       bool          `yaml:"enabled" default:"true"`
	SlowThreshold time.Duration `yaml:"slow_threshold" default:"500ms"`
}

// GatewayConfig points at the remote prediction service.
type GatewayConfig struct {
	BaseURL string        `yaml:"base_url" default:"http://localhost:8000/api" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" default:"10s" validate:"gt=0"`
}

type PredictionsConfig struct {
	AnalysisWindow int  `yaml:"analysis_window" default:"30" validate:"gte=5"`
	LatestDraws    int  `yaml:"latest_draws" default:"10" validate:"gte=1,lte=100"`
	Dashboard      bool `yaml:"dashboard" default:"true"`
	DashboardTopN  int  `yaml:"dashboard_top_n" default:"5" validate:"gte=1"`
}

type WatchdogConfig struct {
	Enabled  bool          `yaml:"enabled" default:"true"`
	Interval time.Duration `yaml:"interval" default:"30s" validate:"gt=0"`
}

type LedgerConfig struct {
	PageSize int `yaml:"page_size" default:"50" validate:"gte=1,lte=200"`
}

type CacheConfig struct {
	DrawTTL time.Duration `yaml:"draw_ttl" default:"10m"`
	Redis   RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr" default:"localhost:6379" validate:"required_if=Enabled true"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"bingopulse"`
}

// KafkaConfig configures the optional change-event sink.
type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"bingopulse.events"`
	RequiredAcks int           `yaml:"required_acks" default:"1"`
	Compression  string        `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
	Async        bool          `yaml:"async" default:"true"`
}

type RateLimitConfig struct {
	RefreshPerSecond float64 `yaml:"refresh_per_second" default:"0.2" validate:"gt=0"`
	RefreshBurst     int     `yaml:"refresh_burst" default:"2" validate:"gte=1"`
}

// WSConfig sizes the per-client push buffer of the event hub.
type WSConfig struct {
	SendBuffer int `yaml:"send_buffer" default:"64" validate:"gte=1"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return &c, nil
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("GATEWAY_BASE_URL"); ok && v != "" {
		c.Gateway.BaseURL = strings.TrimRight(v, "/")
	}
	if v, ok := lookup("GATEWAY_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GATEWAY_TIMEOUT: %w", err)
		}
		c.Gateway.Timeout = d
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok && v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v, ok := lookup("KAFKA_TOPIC"); ok && v != "" {
		c.Kafka.Topic = v
	}
	if v, ok := lookup("REDIS_ADDR"); ok && v != "" {
		c.Cache.Redis.Addr = v
		c.Cache.Redis.Enabled = true
	}
	if v, ok := lookup("ANALYSIS_WINDOW"); ok && v != "" {
		var w int
		if _, err := fmt.Sscanf(v, "%d", &w); err != nil {
			return fmt.Errorf("ANALYSIS_WINDOW: %w", err)
		}
		c.Predictions.AnalysisWindow = w
	}
	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%s failed on %q (%s)", fe.Namespace(), fe.Tag(), fe.Param())
		}
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}
