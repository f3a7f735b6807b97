package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMissingAPIKey = errors.New("ai.api_key is required for enrichment (set STOREFRONT_AI_API_KEY or GEMINI_API_KEY)")

// Validate checks settings every command depends on. Enrichment commands
// additionally call RequireAI.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch c.Storage.Driver {
	case DriverPostgres, DriverMongo, DriverNone:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be one of postgres, mongo, none; got %q", c.Storage.Driver))
	}

	switch strings.ToLower(c.Browser.Engine) {
	case "firefox", "chromium":
	default:
		errs = append(errs, fmt.Errorf("browser.engine must be firefox or chromium, got %q", c.Browser.Engine))
	}

	if c.Scraper.BaseURL == "" {
		errs = append(errs, errors.New("scraper.base_url is required"))
	}

	if c.Redis.Addr != "" && c.Redis.BatchSize < 1 {
		errs = append(errs, errors.New("redis.batch_size must be at least 1"))
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be json or text, got %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

func (c *Config) RequireAI() error {
	if strings.TrimSpace(c.AI.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}
