package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/law-makers/sitescrape/internal/robots"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Scraping
	Timeout     Duration `yaml:"timeout"`
	HTTPTimeout Duration `yaml:"http_timeout"`
	UserAgent   string   `yaml:"user_agent"`
	Proxies     []string `yaml:"proxies"`

	// Rate limiting, per domain
	StaticRateLimitRPS    float64 `yaml:"static_rps"`
	StaticRateLimitBurst  int     `yaml:"static_burst"`
	DynamicRateLimitRPS   float64 `yaml:"dynamic_rps"`
	DynamicRateLimitBurst int     `yaml:"dynamic_burst"`

	// Browser
	Headless   bool   `yaml:"headless"`
	ChromePath string `yaml:"chrome_path"`

	// Caching
	CacheTTL          Duration `yaml:"cache_ttl"`
	CacheMaxSizeBytes int64    `yaml:"cache_max_size_bytes"`

	StaticRetryAttempts int `yaml:"static_retry_attempts"`

	// Robots
	RespectRobots   bool     `yaml:"respect_robots"`
	RobotsOverrides []string `yaml:"robots_overrides"`
	RobotsCacheTTL  Duration `yaml:"robots_cache_ttl"`

	MaxConcurrency int `yaml:"max_concurrency"`
}

// Load builds a Config by combining defaults, an optional config file, a
// .env file, environment variables, and CLI flags, in increasing priority.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(os.Getenv(EnvPrefix + "ENV_FILE")); err != nil {
		return nil, err
	}

	path := os.Getenv(EnvPrefix + "CONFIG")
	if s := flagString(cmd, "config"); s != "" {
		path = s
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	applyFlags(cmd, cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// LoadFromReader decodes YAML over the defaults and validates the result
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decodeYAML(r, cfg); err != nil {
		return nil, err
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// RobotsOptions returns the robots.txt policy described by c
func (c *Config) RobotsOptions() robots.Options {
	return robots.Options{
		Respect:   c.RespectRobots,
		UserAgent: c.UserAgent,
		CacheTTL:  c.RobotsCacheTTL.Duration,
		Overrides: c.RobotsOverrides,
	}
}

func loadDotEnv(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func loadFile(path string, cfg *Config) error {
	fh, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer fh.Close()
	return decodeYAML(fh, cfg)
}

func decodeYAML(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	env := func(name string) string {
		return strings.TrimSpace(os.Getenv(EnvPrefix + name))
	}

	if v := env("LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := env("USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := env("PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := env("CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := env("TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sTIMEOUT: %w", EnvPrefix, err)
		}
		cfg.Timeout = DurationFrom(d)
	}
	if v := env("CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%sCACHE_TTL: %w", EnvPrefix, err)
		}
		cfg.CacheTTL = DurationFrom(d)
	}
	if v := env("HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sHEADLESS: %w", EnvPrefix, err)
		}
		cfg.Headless = b
	}
	if v := env("RESPECT_ROBOTS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sRESPECT_ROBOTS: %w", EnvPrefix, err)
		}
		cfg.RespectRobots = b
	}
	if v := env("MAX_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_CONCURRENCY: %w", EnvPrefix, err)
		}
		cfg.MaxConcurrency = n
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *Config) {
	if cmd == nil {
		return
	}

	if s := flagString(cmd, "user-agent"); s != "" {
		cfg.UserAgent = s
	}
	if s := flagString(cmd, "chrome-path"); s != "" {
		cfg.ChromePath = s
	}
	if s := flagString(cmd, "timeout"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.Timeout = DurationFrom(d)
		}
	}
	if proxies, err := cmd.Flags().GetStringSlice("proxy"); err == nil && len(proxies) > 0 {
		cfg.Proxies = proxies
	}
	if flagBool(cmd, "json") {
		cfg.JSONLog = true
	}
	if flagBool(cmd, "headful") {
		cfg.Headless = false
	}
	if flagBool(cmd, "respect-robots") {
		cfg.RespectRobots = true
	}
	if flagBool(cmd, "quiet") {
		cfg.LogLevel = "error"
	}
	if flagBool(cmd, "verbose") {
		cfg.LogLevel = "debug"
	}
}

func flagString(cmd *cobra.Command, name string) string {
	if cmd == nil {
		return ""
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return strings.TrimSpace(f.Value.String())
	}
	return ""
}

func flagBool(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	if f := cmd.Flags().Lookup(name); f != nil {
		return f.Value.String() == "true"
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
