package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "STOREFRONT"

// Load resolves configuration with this priority, highest first:
// environment (STOREFRONT_*), config file, defaults. A .env file in the
// working directory is loaded into the environment first when present.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v, cfg)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Conventional names used by hosting platforms and the Gemini SDK docs.
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("ai.api_key", EnvPrefix+"_AI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "API_PORT")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("storefront")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers every key so environment overrides apply to it.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.host", cfg.Server.Host)
	v.SetDefault("server.port", cfg.Server.Port)
	v.SetDefault("server.read_timeout", cfg.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", cfg.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", cfg.Server.ShutdownTimeout)
	v.SetDefault("server.allowed_origins", cfg.Server.AllowedOrigins)

	v.SetDefault("scraper.base_url", cfg.Scraper.BaseURL)
	v.SetDefault("scraper.load_timeout", cfg.Scraper.LoadTimeout)
	v.SetDefault("scraper.debug_dir", cfg.Scraper.DebugDir)
	v.SetDefault("scraper.save_debug_files", cfg.Scraper.SaveDebug)

	v.SetDefault("browser.engine", cfg.Browser.Engine)
	v.SetDefault("browser.headless", cfg.Browser.Headless)
	v.SetDefault("browser.timeout", cfg.Browser.Timeout)
	v.SetDefault("browser.viewport_width", cfg.Browser.ViewportWidth)
	v.SetDefault("browser.viewport_height", cfg.Browser.ViewportHeight)
	v.SetDefault("browser.locale", cfg.Browser.Locale)
	v.SetDefault("browser.timezone", cfg.Browser.TimezoneID)
	v.SetDefault("browser.proxy_server", cfg.Browser.ProxyServer)

	v.SetDefault("storage.driver", cfg.Storage.Driver)

	v.SetDefault("database.url", cfg.Database.URL)
	v.SetDefault("database.host", cfg.Database.Host)
	v.SetDefault("database.port", cfg.Database.Port)
	v.SetDefault("database.user", cfg.Database.User)
	v.SetDefault("database.password", cfg.Database.Password)
	v.SetDefault("database.name", cfg.Database.Name)
	v.SetDefault("database.ssl_mode", cfg.Database.SSLMode)
	v.SetDefault("database.max_conns", cfg.Database.MaxConns)

	v.SetDefault("mongo.uri", cfg.Mongo.URI)
	v.SetDefault("mongo.database", cfg.Mongo.Database)

	v.SetDefault("redis.addr", cfg.Redis.Addr)
	v.SetDefault("redis.password", cfg.Redis.Password)
	v.SetDefault("redis.db", cfg.Redis.DB)
	v.SetDefault("redis.poll_interval", cfg.Redis.PollInterval)
	v.SetDefault("redis.batch_size", cfg.Redis.BatchSize)
	v.SetDefault("redis.stream_max_len", cfg.Redis.StreamMaxLen)

	v.SetDefault("ai.api_key", cfg.AI.APIKey)
	v.SetDefault("ai.model", cfg.AI.Model)
	v.SetDefault("ai.max_tokens", cfg.AI.MaxTokens)
	v.SetDefault("ai.temperature", cfg.AI.Temperature)

	v.SetDefault("artifacts.s3_bucket", cfg.Artifacts.Bucket)
	v.SetDefault("artifacts.s3_prefix", cfg.Artifacts.Prefix)
	v.SetDefault("artifacts.s3_region", cfg.Artifacts.Region)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
}
