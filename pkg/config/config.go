package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"ScalpSignal/internal/domain/models"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// PopularSymbols is the default symbol list offered to the user.
var PopularSymbols = []string{
	"BTCUSDT", "ETHUSDT", "BNBUSDT", "SOLUSDT", "XRPUSDT",
	"ADAUSDT", "DOGEUSDT", "DOTUSDT", "MATICUSDT", "LTCUSDT",
	"AVAXUSDT", "LINKUSDT", "ATOMUSDT", "UNIUSDT", "TRXUSDT",
}

// DefaultEndpoints are the public Bybit REST hosts.
var DefaultEndpoints = []models.Endpoint{
	{Name: "Bybit Main", URL: "https://api.bybit.com"},
	{Name: "Bybit Bytick", URL: "https://api.bytick.com"},
	{Name: "Bybit Testnet", URL: "https://api-testnet.bybit.com"},
}

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format string `yaml:"format" default:"console" validate:"oneof=console json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
	Exchange struct {
		Endpoints       []models.Endpoint `yaml:"endpoints" validate:"dive"`
		DefaultEndpoint string            `yaml:"default_endpoint"`
		Category        string            `yaml:"category" default:"spot" validate:"oneof=spot linear inverse"`
		Interval        string            `yaml:"interval" default:"1"`
		CandleLimit     int               `yaml:"candle_limit" default:"100" validate:"gte=50,lte=1000"`
		FetchTimeout    time.Duration     `yaml:"fetch_timeout" default:"10s" validate:"gt=0"`
		PingTimeout     time.Duration     `yaml:"ping_timeout" default:"3s" validate:"gt=0"`
	} `yaml:"exchange"`
	Session struct {
		Symbol       string   `yaml:"symbol" default:"BTCUSDT" validate:"required"`
		Symbols      []string `yaml:"symbols"`
		HistoryLimit int      `yaml:"history_limit" default:"0" validate:"gte=0"`
	} `yaml:"session"`
	Poller struct {
		CycleDelay   time.Duration `yaml:"cycle_delay" default:"5s" validate:"gt=0"`
		SleepStep    time.Duration `yaml:"sleep_step" default:"1s" validate:"gt=0"`
		ErrorBackoff time.Duration `yaml:"error_backoff" default:"5s" validate:"gt=0"`
		LatencyEvery int           `yaml:"latency_every" default:"10" validate:"gte=1"`
		AutoStart    bool          `yaml:"auto_start"`
	} `yaml:"poller"`
	Settings struct {
		Aggressiveness   float64 `yaml:"aggressiveness" default:"0.7" validate:"gte=0.1,lte=1"`
		CommissionPct    float64 `yaml:"commission_pct" default:"0.1" validate:"gte=0.01,lte=1"`
		MinProfitPct     float64 `yaml:"min_profit_pct" default:"0.2" validate:"gte=0.05,lte=2"`
		PredictionLength int     `yaml:"prediction_length" default:"5" validate:"gte=3,lte=10"`
		ShowPredictions  bool    `yaml:"show_predictions" default:"true"`
		ChartType        string  `yaml:"chart_type" default:"candles" validate:"oneof=candles line"`
	} `yaml:"settings"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Cache struct {
		Backend       string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
		TTL           time.Duration `yaml:"ttl" default:"10m"`
		LocalTTL      time.Duration `yaml:"local_ttl" default:"30s"`
		MemoryMaxSize int           `yaml:"memory_max_size" default:"256" validate:"gte=1"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Prefix   string `yaml:"prefix" default:"scalpsignal"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"scalp.signals"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=gzip snappy lz4 zstd"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	UI struct {
		Mode string `yaml:"mode" default:"tui" validate:"oneof=tui headless"`
	} `yaml:"ui"`
}

var validate = validator.New()

// Default returns a config populated only from struct defaults.
func Default() (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.applyFallbacks()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file. Defaults are applied
// first so keys missing from the file keep their default value.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML bytes into a validated Config.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	c.applyFallbacks()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SYMBOL"); v != "" {
		c.Session.Symbol = strings.ToUpper(v)
	}
	if v := os.Getenv("BYBIT_ENDPOINT"); v != "" {
		c.Exchange.DefaultEndpoint = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("UI_MODE"); v != "" {
		c.UI.Mode = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Cache.Redis.Port = p
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
}

func (c *Config) applyFallbacks() {
	if len(c.Exchange.Endpoints) == 0 {
		c.Exchange.Endpoints = append([]models.Endpoint(nil), DefaultEndpoints...)
	}
	if c.Exchange.DefaultEndpoint == "" {
		c.Exchange.DefaultEndpoint = c.Exchange.Endpoints[0].Name
	}
	if len(c.Session.Symbols) == 0 {
		c.Session.Symbols = append([]string(nil), PopularSymbols...)
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, ok := c.Endpoint(c.Exchange.DefaultEndpoint); !ok {
		return fmt.Errorf("exchange.default_endpoint %q is not in exchange.endpoints", c.Exchange.DefaultEndpoint)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// Endpoint looks up a configured endpoint by name.
func (c *Config) Endpoint(name string) (models.Endpoint, bool) {
	for _, ep := range c.Exchange.Endpoints {
		if ep.Name == name {
			return ep, true
		}
	}
	return models.Endpoint{}, false
}

// InitialSettings converts the settings section into the runtime model.
func (c *Config) InitialSettings() models.Settings {
	return models.Settings{
		Aggressiveness:   c.Settings.Aggressiveness,
		CommissionPct:    c.Settings.CommissionPct,
		MinProfitPct:     c.Settings.MinProfitPct,
		PredictionLength: c.Settings.PredictionLength,
		ShowPredictions:  c.Settings.ShowPredictions,
		ChartType:        models.ChartType(c.Settings.ChartType),
	}
}
