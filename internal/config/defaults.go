package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel              = "info"
	DefaultJSONLog               = false
	DefaultTimeout               = 2 * time.Minute
	DefaultHTTPTimeout           = 15 * time.Second
	DefaultUserAgent             = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	DefaultCacheTTL              = 5 * time.Minute
	DefaultCacheMaxSizeBytes     = 100 * 1024 * 1024 // 100MB
	DefaultStaticRateLimitRPS    = 5.0
	DefaultStaticRateLimitBurst  = 10
	DefaultDynamicRateLimitRPS   = 1.0
	DefaultDynamicRateLimitBurst = 2
	DefaultBrowserHeadless       = true
	DefaultStaticRetryAttempts   = 2
	DefaultRespectRobots         = false
	DefaultRobotsCacheTTL        = 30 * time.Minute
	DefaultMaxConcurrency        = 8
	MaxConcurrencyLimit          = 50
	EnvPrefix                    = "SITESCRAPE_"
	DefaultEnvFile               = ".env"
)

// Default returns a Config populated with the default constants
func Default() *Config {
	return &Config{
		LogLevel:              DefaultLogLevel,
		JSONLog:               DefaultJSONLog,
		Timeout:               DurationFrom(DefaultTimeout),
		HTTPTimeout:           DurationFrom(DefaultHTTPTimeout),
		UserAgent:             DefaultUserAgent,
		StaticRateLimitRPS:    DefaultStaticRateLimitRPS,
		StaticRateLimitBurst:  DefaultStaticRateLimitBurst,
		DynamicRateLimitRPS:   DefaultDynamicRateLimitRPS,
		DynamicRateLimitBurst: DefaultDynamicRateLimitBurst,
		Headless:              DefaultBrowserHeadless,
		CacheTTL:              DurationFrom(DefaultCacheTTL),
		CacheMaxSizeBytes:     DefaultCacheMaxSizeBytes,
		StaticRetryAttempts:   DefaultStaticRetryAttempts,
		RespectRobots:         DefaultRespectRobots,
		RobotsCacheTTL:        DurationFrom(DefaultRobotsCacheTTL),
		MaxConcurrency:        DefaultMaxConcurrency,
	}
}
