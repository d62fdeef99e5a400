package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"FinSight/pkg/util"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	ClickHouse struct {
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
		DefaultRowLimit  int           `yaml:"default_row_limit"`
	} `yaml:"clickhouse"`
	HuggingFace struct {
		APIKey           string        `yaml:"api_key"`
		BaseURL          string        `yaml:"base_url"`
		Model            string        `yaml:"model"`
		RequestsPerDay   int           `yaml:"requests_per_day"`
		RequestsPerMonth int           `yaml:"requests_per_month"`
		MinInterval      time.Duration `yaml:"min_interval"`
		Timeout          time.Duration `yaml:"timeout"`
		CacheTTL         time.Duration `yaml:"cache_ttl"`
		Temperature      float64       `yaml:"temperature"`
		TopP             float64       `yaml:"top_p"`
	} `yaml:"huggingface"`
	Models struct {
		ServiceURL   string        `yaml:"service_url"`
		Timeout      time.Duration `yaml:"timeout"`
		EmbeddingDim int           `yaml:"embedding_dim"`
	} `yaml:"models"`
	Vector struct {
		Table            string  `yaml:"table"`
		OverFetchFactor  int     `yaml:"over_fetch_factor"`
		SeedOnStart      bool    `yaml:"seed_on_start"`
		AnomalyThreshold float64 `yaml:"anomaly_threshold"`
	} `yaml:"vector"`
	Alerts struct {
		Enabled bool `yaml:"enabled"`
		Kafka   struct {
			Brokers      []string      `yaml:"brokers"`
			Topic        string        `yaml:"topic"`
			RequiredAcks int           `yaml:"required_acks"`
			Compression  string        `yaml:"compression"`
			MaxAttempts  int           `yaml:"max_attempts"`
			Linger       time.Duration `yaml:"linger"`
			BatchBytes   int           `yaml:"batch_bytes"`
			BatchSize    int           `yaml:"batch_size"`
			WriteTimeout time.Duration `yaml:"write_timeout"`
			ReadTimeout  time.Duration `yaml:"read_timeout"`
			Async        bool          `yaml:"async"`
		} `yaml:"kafka"`
	} `yaml:"alerts"`
	Cache struct {
		ResultTTL time.Duration `yaml:"result_ttl"`
		Redis     struct {
			Enabled  bool   `yaml:"enabled"`
			Host     string `yaml:"host"`
			Port     int    `yaml:"port"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("HF_API_KEY"); v != "" {
		c.HuggingFace.APIKey = v
	}
	if v := os.Getenv("HF_MODEL"); v != "" {
		c.HuggingFace.Model = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PORT"); v != "" {
		c.ClickHouse.Port = util.ParseIntDefault(v, c.ClickHouse.Port)
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}
	if v := os.Getenv("MODELS_SERVICE_URL"); v != "" {
		c.Models.ServiceURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Alerts.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PORT"); v != "" {
		c.Cache.Redis.Port = util.ParseIntDefault(v, c.Cache.Redis.Port)
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.HuggingFace.BaseURL == "" {
		c.HuggingFace.BaseURL = "https://api-inference.huggingface.co/models"
	}
	if c.HuggingFace.Model == "" {
		c.HuggingFace.Model = "mistralai/Mistral-7B-Instruct-v0.2"
	}
	if c.HuggingFace.RequestsPerDay <= 0 {
		c.HuggingFace.RequestsPerDay = 1000
	}
	if c.HuggingFace.RequestsPerMonth <= 0 {
		c.HuggingFace.RequestsPerMonth = 30000
	}
	if c.HuggingFace.MinInterval <= 0 {
		c.HuggingFace.MinInterval = time.Second
	}
	if c.HuggingFace.Timeout <= 0 {
		c.HuggingFace.Timeout = 30 * time.Second
	}
	if c.HuggingFace.CacheTTL <= 0 {
		c.HuggingFace.CacheTTL = time.Hour
	}
	if c.HuggingFace.Temperature <= 0 {
		c.HuggingFace.Temperature = 0.1
	}
	if c.HuggingFace.TopP <= 0 {
		c.HuggingFace.TopP = 0.9
	}
	if c.Models.Timeout <= 0 {
		c.Models.Timeout = 15 * time.Second
	}
	if c.Models.EmbeddingDim <= 0 {
		c.Models.EmbeddingDim = 384
	}
	if c.Vector.Table == "" {
		c.Vector.Table = "ai_vectors"
	}
	if c.Vector.OverFetchFactor <= 0 {
		c.Vector.OverFetchFactor = 2
	}
	if c.Vector.AnomalyThreshold <= 0 {
		c.Vector.AnomalyThreshold = 2.0
	}
	if c.ClickHouse.DefaultRowLimit <= 0 {
		c.ClickHouse.DefaultRowLimit = 100
	}
	if c.Cache.ResultTTL <= 0 {
		c.Cache.ResultTTL = 30 * time.Second
	}
	if c.Cache.Redis.Host == "" {
		c.Cache.Redis.Host = "localhost"
	}
	if c.Cache.Redis.Port <= 0 {
		c.Cache.Redis.Port = 6379
	}
}

// Validate checks if the configuration is valid.
//
// A missing HuggingFace API key is intentionally not an error: the service
// starts in degraded mode and answers template queries only.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required")
	}
	if c.Models.ServiceURL == "" {
		return fmt.Errorf("models.service_url is required")
	}
	if c.Alerts.Enabled && len(c.Alerts.Kafka.Brokers) == 0 {
		return fmt.Errorf("alerts.kafka.brokers cannot be empty when alerts are enabled")
	}
	return nil
}
