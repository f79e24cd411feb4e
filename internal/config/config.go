package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. EGX_SERVER_PORT.
const EnvPrefix = "EGX"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	Analytics  AnalyticsConfig  `yaml:"analytics" envconfig:"ANALYTICS"`
	Cache      CacheConfig      `yaml:"cache" envconfig:"CACHE"`
	Monitoring MonitoringConfig `yaml:"monitoring" envconfig:"MONITORING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// RequestTimeout bounds one API request, including a correlation scan.
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration. Relative
// directories are resolved against BaseDir.
type PathsConfig struct {
	BaseDir            string `yaml:"base_dir" envconfig:"BASE_DIR"`
	IntradayDir        string `yaml:"intraday_dir" envconfig:"INTRADAY_DIR"`
	TransactionDir     string `yaml:"transaction_dir" envconfig:"TRANSACTION_DIR"`
	CaseDir            string `yaml:"case_dir" envconfig:"CASE_DIR"`
	ReportsDir         string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir            string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
	IntradayPattern    string `yaml:"intraday_pattern" envconfig:"INTRADAY_PATTERN"`
	TransactionPattern string `yaml:"transaction_pattern" envconfig:"TRANSACTION_PATTERN"`
}

// AnalyticsConfig holds the default analytics parameters. API requests may
// override the correlation and list sizes per call.
type AnalyticsConfig struct {
	MinDays        int     `yaml:"min_days" envconfig:"MIN_DAYS"`
	MinAbsCorr     float64 `yaml:"min_abs_corr" envconfig:"MIN_ABS_CORR"`
	TopN           int     `yaml:"top_n" envconfig:"TOP_N"`
	CandidateCount int     `yaml:"candidate_count" envconfig:"CANDIDATE_COUNT"`
	OverviewSize   int     `yaml:"overview_size" envconfig:"OVERVIEW_SIZE"`
}

// CacheConfig selects where computed session snapshots are kept.
type CacheConfig struct {
	Backend       string        `yaml:"backend" envconfig:"BACKEND"`
	RedisAddr     string        `yaml:"redis_addr" envconfig:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password" envconfig:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db" envconfig:"REDIS_DB"`
	TTL           time.Duration `yaml:"ttl" envconfig:"TTL"`
}

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// MonitoringConfig controls metrics and tracing.
type MonitoringConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	MetricsEnabled bool   `yaml:"metrics_enabled" envconfig:"METRICS_ENABLED"`
	TraceStdout    bool   `yaml:"trace_stdout" envconfig:"TRACE_STDOUT"`
}

// Load builds the configuration from defaults, then the YAML file at path
// (searched for in the usual locations when empty), then a .env file, then
// EGX_* environment variables. Later sources win.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg. Keys absent from the file
// keep their current values.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and normalizes enumerations.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}
	if c.Security.RateLimit.Enabled && (c.Security.RateLimit.RPS <= 0 || c.Security.RateLimit.Burst <= 0) {
		return fmt.Errorf("rate limit rps and burst must be positive")
	}

	if c.Analytics.MinDays < 2 {
		return fmt.Errorf("analytics min_days must be at least 2, got %d", c.Analytics.MinDays)
	}
	if c.Analytics.MinAbsCorr < 0 || c.Analytics.MinAbsCorr > 1 {
		return fmt.Errorf("analytics min_abs_corr must be within [0, 1], got %v", c.Analytics.MinAbsCorr)
	}
	if c.Analytics.TopN < 2 {
		return fmt.Errorf("analytics top_n must be at least 2, got %d", c.Analytics.TopN)
	}
	if c.Analytics.CandidateCount <= 0 || c.Analytics.OverviewSize <= 0 {
		return fmt.Errorf("analytics list sizes must be positive")
	}

	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	switch c.Cache.Backend {
	case "":
		c.Cache.Backend = CacheBackendMemory
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.Cache.RedisAddr == "" {
			return fmt.Errorf("redis cache requires redis_addr")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	switch strings.ToLower(c.Logging.Output) {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			IntradayDir:        DefaultIntradayDir,
			TransactionDir:     DefaultTransactionDir,
			CaseDir:            DefaultCaseDir,
			ReportsDir:         DefaultReportsDir,
			LogsDir:            DefaultLogsDir,
			IntradayPattern:    IntradayPattern,
			TransactionPattern: TransactionPattern,
		},
		Analytics: AnalyticsConfig{
			MinDays:        60,
			MinAbsCorr:     0.7,
			TopN:           40,
			CandidateCount: 5,
			OverviewSize:   10,
		},
		Cache: CacheConfig{
			Backend: CacheBackendMemory,
			TTL:     SnapshotCacheTTL,
		},
		Monitoring: MonitoringConfig{
			ServiceName:    AppName,
			MetricsEnabled: true,
		},
	}
}
