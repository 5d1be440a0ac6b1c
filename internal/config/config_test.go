package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "sitescrape"}
	RegisterFlags(cmd)
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultTimeout, cfg.Timeout.Duration)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout.Duration)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.True(t, cfg.Headless)
	assert.False(t, cfg.RespectRobots)
	assert.Equal(t, DefaultMaxConcurrency, cfg.MaxConcurrency)
}

func TestLoad_Precedence(t *testing.T) {
	path := writeFile(t, "config.yaml", strings.Join([]string{
		"user_agent: from-file",
		"timeout: 10s",
		"cache_ttl: 90",
		"max_concurrency: 4",
		"proxies: [\"http://file:8080\"]",
	}, "\n"))

	t.Setenv("SITESCRAPE_CONFIG", path)
	t.Setenv("SITESCRAPE_TIMEOUT", "20s")
	t.Setenv("SITESCRAPE_PROXY", "http://env-a:1, socks5://env-b:2")

	cfg, err := Load(newCmd(t, "--timeout", "30s"))
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.UserAgent)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL.Duration)
	assert.Equal(t, 4, cfg.MaxConcurrency)
	assert.Equal(t, []string{"http://env-a:1", "socks5://env-b:2"}, cfg.Proxies)
	assert.Equal(t, 30*time.Second, cfg.Timeout.Duration, "flags win over env")
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := Load(newCmd(t,
		"-v", "--json", "--headful", "--respect-robots",
		"--proxy", "http://p1:1", "--proxy", "http://p2:2",
		"--user-agent", "ua/1",
	))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.JSONLog)
	assert.False(t, cfg.Headless)
	assert.True(t, cfg.RespectRobots)
	assert.Equal(t, []string{"http://p1:1", "http://p2:2"}, cfg.Proxies)
	assert.Equal(t, "ua/1", cfg.UserAgent)
}

func TestLoad_Quiet(t *testing.T) {
	cfg, err := Load(newCmd(t, "-q"))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
}

func TestLoad_DotEnv(t *testing.T) {
	path := writeFile(t, "test.env", "SITESCRAPE_CHROME_PATH=/opt/chrome\n")
	t.Setenv("SITESCRAPE_ENV_FILE", path)
	t.Cleanup(func() { os.Unsetenv("SITESCRAPE_CHROME_PATH") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "/opt/chrome", cfg.ChromePath)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad timeout", map[string]string{"SITESCRAPE_TIMEOUT": "soon"}, "SITESCRAPE_TIMEOUT"},
		{"bad bool", map[string]string{"SITESCRAPE_HEADLESS": "maybe"}, "SITESCRAPE_HEADLESS"},
		{"concurrency", map[string]string{"SITESCRAPE_MAX_CONCURRENCY": "51"}, "max concurrency"},
		{"proxy", map[string]string{"SITESCRAPE_PROXY": "ftp://x"}, "unsupported scheme"},
		{"missing file", map[string]string{"SITESCRAPE_CONFIG": "/does/not/exist.yaml"}, "open config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFromReader(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader("respect_robots: true\nrobots_overrides: [example.com]\nrobots_cache_ttl: 1m\n"))
	require.NoError(t, err)

	opts := cfg.RobotsOptions()
	assert.True(t, opts.Respect)
	assert.Equal(t, []string{"example.com"}, opts.Overrides)
	assert.Equal(t, time.Minute, opts.CacheTTL)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
}

func TestLoadFromReader_Rejects(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("unknown_key: 1\n"))
	assert.Error(t, err)

	_, err = LoadFromReader(strings.NewReader("timeout: 0s\n"))
	assert.ErrorContains(t, err, "timeout must be > 0")

	_, err = LoadFromReader(strings.NewReader("log_level: loud\n"))
	assert.ErrorContains(t, err, "unknown log level")
}

func TestLoadFromReader_Empty(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	require.NoError(t, d.UnmarshalText([]byte("1m30s")))
	assert.Equal(t, 90*time.Second, d.Duration)

	assert.Error(t, d.UnmarshalText([]byte("later")))
}
