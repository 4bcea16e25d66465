package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	LLM      LLMConfig      `yaml:"llm"`
	Text     TextConfig     `yaml:"text"`
	Import   ImportConfig   `yaml:"import"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Notify   NotifyConfig   `yaml:"notify"`
	Watch    WatchConfig    `yaml:"watch"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	UploadDir       string        `yaml:"upload_dir"`
	MaxUploadMB     int           `yaml:"max_upload_mb"`
	RateLimitRPS    float64       `yaml:"rate_limit_rps"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // postgres | sqlite
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
	AutoMigrate      bool          `yaml:"auto_migrate"`
}

// LLMConfig holds extraction backend configuration
type LLMConfig struct {
	Provider     string        `yaml:"provider"` // openai | gemini
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxTextChars int           `yaml:"max_text_chars"`
}

// TextConfig holds PDF text extraction configuration
type TextConfig struct {
	Pdftotext      string        `yaml:"pdftotext"`
	Timeout        time.Duration `yaml:"timeout"`
	NativeFallback bool          `yaml:"native_fallback"`
}

// ImportConfig tunes the control-file pipeline
type ImportConfig struct {
	MinMatchScore        float64       `yaml:"min_match_score"`
	SeriesFamilies       []string      `yaml:"series_families"`
	DefaultSeriesSuffix  string        `yaml:"default_series_suffix"`
	MaxStayDays          int           `yaml:"max_stay_days"`
	MaxGuests            int           `yaml:"max_guests"`
	ReviewThreshold      float64       `yaml:"review_threshold"`
	IntraBatchDuplicates bool          `yaml:"intra_batch_duplicates"`
	ValidationWorkers    int           `yaml:"validation_workers"`
	CatalogCacheTTL      time.Duration `yaml:"catalog_cache_ttl"`
}

// ArchiveConfig holds MinIO settings for archiving uploaded files
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// NotifyConfig holds Mailgun settings for run summaries
type NotifyConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Domain     string   `yaml:"domain"`
	APIKey     string   `yaml:"api_key"`
	Sender     string   `yaml:"sender"`
	Recipients []string `yaml:"recipients"`
}

// WatchConfig holds drop-folder settings
type WatchConfig struct {
	Enabled        bool          `yaml:"enabled"`
	Dirs           []string      `yaml:"dirs"`
	Debounce       time.Duration `yaml:"debounce"`
	Workers        int           `yaml:"workers"`
	QueueSize      int           `yaml:"queue_size"`
	ProcessTimeout time.Duration `yaml:"process_timeout"`
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// Default returns the configuration used when no file or env override is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        ":8080",
			GRPCAddr:        ":9090",
			UploadDir:       os.TempDir(),
			MaxUploadMB:     10,
			RateLimitRPS:    5,
			RateLimitBurst:  10,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
			AutoMigrate:     true,
		},
		LLM: LLMConfig{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Timeout:      45 * time.Second,
			MaxTextChars: 60000,
		},
		Text: TextConfig{
			Pdftotext:      "pdftotext",
			Timeout:        30 * time.Second,
			NativeFallback: true,
		},
		Import: ImportConfig{
			MinMatchScore:        40,
			SeriesFamilies:       []string{"aroeira"},
			DefaultSeriesSuffix:  "I",
			MaxStayDays:          30,
			MaxGuests:            20,
			ReviewThreshold:      100000,
			IntraBatchDuplicates: true,
			ValidationWorkers:    8,
			CatalogCacheTTL:      5 * time.Minute,
		},
		Archive: ArchiveConfig{
			Bucket: "control-files",
		},
		Watch: WatchConfig{
			Debounce:       2 * time.Second,
			Workers:        2,
			QueueSize:      64,
			ProcessTimeout: 3 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads .env (if any), the YAML file at path (if it exists) and then
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// env-only configuration
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, NewAppError(CodeConfig, "invalid config file", err)
			}
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.HTTPAddr = getEnv("HTTP_ADDR", c.Server.HTTPAddr)
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.UploadDir = getEnv("UPLOAD_DIR", c.Server.UploadDir)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.LLM.Provider = strings.ToLower(getEnv("LLM_PROVIDER", c.LLM.Provider))
	c.LLM.Timeout = getEnvAsDuration("LLM_TIMEOUT", c.LLM.Timeout)
	switch c.LLM.Provider {
	case "gemini":
		c.LLM.APIKey = getEnv("GEMINI_API_KEY", c.LLM.APIKey)
		c.LLM.Model = getEnv("GEMINI_MODEL", c.LLM.Model)
	default:
		c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
		c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
		c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
		c.LLM.Temperature = getEnvAsFloat32("OPENAI_TEMPERATURE", c.LLM.Temperature)
	}

	c.Text.Pdftotext = getEnv("PDFTOTEXT_BIN", c.Text.Pdftotext)

	c.Archive.Endpoint = getEnv("MINIO_ENDPOINT", c.Archive.Endpoint)
	c.Archive.AccessKey = getEnv("MINIO_ACCESS_KEY", c.Archive.AccessKey)
	c.Archive.SecretKey = getEnv("MINIO_SECRET_KEY", c.Archive.SecretKey)
	c.Archive.Bucket = getEnv("MINIO_BUCKET", c.Archive.Bucket)

	c.Notify.Domain = getEnv("MAILGUN_DOMAIN", c.Notify.Domain)
	c.Notify.APIKey = getEnv("MAILGUN_API_KEY", c.Notify.APIKey)

	if dirs := getEnv("WATCH_DIRS", ""); dirs != "" {
		c.Watch.Enabled = true
		c.Watch.Dirs = splitList(dirs)
	}

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// MaxUploadBytes returns the upload cap in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Server.MaxUploadMB) << 20
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown database driver %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return NewAppError(CodeConfig, "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "gemini":
		if c.LLM.APIKey == "" {
			return NewAppError(CodeConfig, "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, fmt.Sprintf("unknown llm provider %q", c.LLM.Provider), ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Server.MaxUploadMB <= 0 {
		return NewAppError(CodeConfig, "server.max_upload_mb must be positive", ErrInvalidInput)
	}
	if c.Archive.Enabled && (c.Archive.Endpoint == "" || c.Archive.Bucket == "") {
		return NewAppError(CodeConfig, "archive requires endpoint and bucket", ErrInvalidInput)
	}
	if c.Notify.Enabled && (c.Notify.Domain == "" || c.Notify.APIKey == "" || len(c.Notify.Recipients) == 0) {
		return NewAppError(CodeConfig, "notify requires domain, api key and recipients", ErrInvalidInput)
	}
	if c.Watch.Enabled && len(c.Watch.Dirs) == 0 {
		return NewAppError(CodeConfig, "watch requires at least one directory", ErrInvalidInput)
	}
	return nil
}
