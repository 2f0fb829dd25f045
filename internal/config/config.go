package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the prefix used for every environment variable read by Load.
const EnvPrefix = "SALESDASH"

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Security  SecurityConfig  `yaml:"security" envconfig:"SECURITY"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Data      DataConfig      `yaml:"data" envconfig:"DATA"`
	Forecast  ForecastConfig  `yaml:"forecast" envconfig:"FORECAST"`
	Cache     CacheConfig     `yaml:"cache" envconfig:"CACHE"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	RateLimit RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
	// AllowedOrigins lists CORS origins; empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	RootDir      string `yaml:"root_dir" envconfig:"ROOT_DIR"`
	DataDir      string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	LogsDir      string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	RawDataset   string `yaml:"raw_dataset" envconfig:"RAW_DATASET" default:"raw/Sales_dataset.xlsx"`
	CanonicalCSV string `yaml:"canonical_csv" envconfig:"CANONICAL_CSV" default:"sales_data.csv"`
	ProcessedCSV string `yaml:"processed_csv" envconfig:"PROCESSED_CSV" default:"processed/sales_dataset.csv"`
	ForecastFile string `yaml:"forecast_file" envconfig:"FORECAST_FILE" default:"processed/forecast_sales.csv"`
}

// DataConfig controls how the raw dataset is read.
type DataConfig struct {
	// Sheet selects the workbook sheet; empty means the first sheet.
	Sheet string `yaml:"sheet" envconfig:"SHEET"`
}

// ForecastConfig holds the offline forecasting pipeline settings.
type ForecastConfig struct {
	Method          string  `yaml:"method" envconfig:"METHOD" default:"moving_average" validate:"oneof=moving_average linear_trend"`
	Metric          string  `yaml:"metric" envconfig:"METRIC" default:"Sales" validate:"oneof=Sales 'Total Profit/Loss' 'Quantity Ordered'"`
	Horizon         int     `yaml:"horizon" envconfig:"HORIZON" default:"12" validate:"min=1,max=120"`
	Window          int     `yaml:"window" envconfig:"WINDOW" default:"3" validate:"min=1"`
	ConfidenceLevel float64 `yaml:"confidence_level" envconfig:"CONFIDENCE_LEVEL" default:"0.95" validate:"gt=0,lt=1"`
	// MinHistory is the number of monthly periods required before a model is fitted.
	MinHistory int `yaml:"min_history" envconfig:"MIN_HISTORY" default:"2" validate:"min=1"`
}

// CacheConfig controls the result cache.
type CacheConfig struct {
	// TTL of zero keeps entries for the process lifetime.
	TTL        time.Duration `yaml:"ttl" envconfig:"TTL" default:"0s"`
	MaxEntries int           `yaml:"max_entries" envconfig:"MAX_ENTRIES" default:"1024"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT" default:"development"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" default:"prometheus"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" default:"1.0"`
}

// Load loads configuration from a .env file, environment variables and
// an optional YAML config file. Environment values win over the file.
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := getConfigFilePath(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadDotEnv populates the process environment from path when it exists.
// Variables already set are left alone.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	return godotenv.Load(path)
}

// loadFromFile loads configuration from YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeConfigs overlays file values on the env config wherever the env
// config still holds its default.
func mergeConfigs(fileConfig, envConfig Config) Config {
	def := Default()

	if envConfig.Server.Port == def.Server.Port && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if envConfig.Logging.Level == def.Logging.Level && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if envConfig.Logging.Output == def.Logging.Output && fileConfig.Logging.Output != "" {
		envConfig.Logging.Output = fileConfig.Logging.Output
	}
	if envConfig.Paths.RootDir == "" {
		envConfig.Paths.RootDir = fileConfig.Paths.RootDir
	}
	if len(envConfig.Security.AllowedOrigins) == 0 {
		envConfig.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if envConfig.Data.Sheet == "" {
		envConfig.Data.Sheet = fileConfig.Data.Sheet
	}

	f := fileConfig.Forecast
	if envConfig.Forecast.Method == def.Forecast.Method && f.Method != "" {
		envConfig.Forecast.Method = f.Method
	}
	if envConfig.Forecast.Metric == def.Forecast.Metric && f.Metric != "" {
		envConfig.Forecast.Metric = f.Metric
	}
	if envConfig.Forecast.Horizon == def.Forecast.Horizon && f.Horizon != 0 {
		envConfig.Forecast.Horizon = f.Horizon
	}
	if envConfig.Forecast.Window == def.Forecast.Window && f.Window != 0 {
		envConfig.Forecast.Window = f.Window
	}
	if envConfig.Cache.TTL == def.Cache.TTL && fileConfig.Cache.TTL != 0 {
		envConfig.Cache.TTL = fileConfig.Cache.TTL
	}

	return envConfig
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}

	if err := validator.New().Struct(c.Forecast); err != nil {
		return fmt.Errorf("invalid forecast config: %w", err)
	}

	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
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
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  30 * time.Second,
		},
		Security: SecurityConfig{
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:      "data",
			LogsDir:      "logs",
			RawDataset:   "raw/Sales_dataset.xlsx",
			CanonicalCSV: "sales_data.csv",
			ProcessedCSV: "processed/sales_dataset.csv",
			ForecastFile: "processed/forecast_sales.csv",
		},
		Forecast: ForecastConfig{
			Method:          "moving_average",
			Metric:          "Sales",
			Horizon:         12,
			Window:          3,
			ConfidenceLevel: 0.95,
			MinHistory:      2,
		},
		Cache: CacheConfig{
			MaxEntries: 1024,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
