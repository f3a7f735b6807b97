package config

import (
	"time"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverNone     = "none"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Scraper   ScraperConfig   `mapstructure:"scraper"`
	Browser   BrowserConfig   `mapstructure:"browser"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Mongo     MongoConfig     `mapstructure:"mongo"`
	Redis     RedisConfig     `mapstructure:"redis"`
	AI        AIConfig        `mapstructure:"ai"`
	Artifacts ArtifactsConfig `mapstructure:"artifacts"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
}

type ScraperConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	LoadTimeout time.Duration `mapstructure:"load_timeout"`
	DebugDir    string        `mapstructure:"debug_dir"`
	SaveDebug   bool          `mapstructure:"save_debug_files"`
}

type BrowserConfig struct {
	Engine         string        `mapstructure:"engine"`
	Headless       bool          `mapstructure:"headless"`
	Timeout        time.Duration `mapstructure:"timeout"`
	ViewportWidth  int           `mapstructure:"viewport_width"`
	ViewportHeight int           `mapstructure:"viewport_height"`
	Locale         string        `mapstructure:"locale"`
	TimezoneID     string        `mapstructure:"timezone"`
	ProxyServer    string        `mapstructure:"proxy_server"`
}

type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"ssl_mode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
	BatchSize    int           `mapstructure:"batch_size"`
	StreamMaxLen int64         `mapstructure:"stream_max_len"`
}

type AIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// ArtifactsConfig enables S3 upload of debug captures when Bucket is set.
type ArtifactsConfig struct {
	Bucket string `mapstructure:"s3_bucket"`
	Prefix string `mapstructure:"s3_prefix"`
	Region string `mapstructure:"s3_region"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Scraper: ScraperConfig{
			BaseURL:     "https://www.riachuelo.com.br",
			LoadTimeout: 15 * time.Second,
			DebugDir:    ".",
		},
		Browser: BrowserConfig{
			Engine:         "firefox",
			Headless:       true,
			Timeout:        30 * time.Second,
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			Locale:         "pt-BR",
			TimezoneID:     "America/Sao_Paulo",
		},
		Storage: StorageConfig{
			Driver: DriverPostgres,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "postgres",
			Name:     "storefront",
			SSLMode:  "disable",
			MaxConns: 10,
		},
		Mongo: MongoConfig{
			URI:      "mongodb://localhost:27017",
			Database: "storefront",
		},
		Redis: RedisConfig{
			PollInterval: 5 * time.Second,
			BatchSize:    100,
		},
		AI: AIConfig{
			Model:       "gemini-1.5-flash",
			MaxTokens:   2048,
			Temperature: 0.2,
		},
		Artifacts: ArtifactsConfig{
			Prefix: "debug",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
