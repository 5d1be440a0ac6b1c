package config

import (
	"fmt"
	"strings"

	"github.com/law-makers/sitescrape/internal/proxy"
)

func validate(c *Config) error {
	if c.Timeout.Duration <= 0 {
		return fmt.Errorf("timeout must be > 0")
	}
	if c.HTTPTimeout.Duration <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.MaxConcurrency < 1 || c.MaxConcurrency > MaxConcurrencyLimit {
		return fmt.Errorf("max concurrency must be between 1 and %d", MaxConcurrencyLimit)
	}
	if c.StaticRetryAttempts < 1 {
		return fmt.Errorf("static retry attempts must be >= 1")
	}
	if c.StaticRateLimitRPS < 0 || c.DynamicRateLimitRPS < 0 {
		return fmt.Errorf("rate limits must be >= 0")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return proxy.Validate(c.Proxies)
}
