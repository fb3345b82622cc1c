package config

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	SetupFlags(cmd)
	return cmd
}

func TestDefaults(t *testing.T) {
	v := viper.New()
	cmd := newCmd()

	c, err := Load(v, cmd)
	require.NoError(t, err)
	assert.Equal(t, "localhost", c.Host)
	assert.Equal(t, "6379", c.Port)
	assert.Equal(t, 5*time.Second, c.Timeout)
	assert.Equal(t, uint(3), c.WatchRetries)
	assert.Equal(t, 100, c.ScanCount)
	assert.Equal(t, "warn", c.LogLevel)
	assert.False(t, c.Metrics)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	t.Setenv("REDISTX_HOST", "cache.internal")
	t.Setenv("REDISTX_WATCH_RETRIES", "7")
	t.Setenv("REDISTX_TIMEOUT", "250ms")

	v := viper.New()
	InitEnv(v)
	c, err := Load(v, newCmd())
	require.NoError(t, err)
	assert.Equal(t, "cache.internal", c.Host)
	assert.Equal(t, uint(7), c.WatchRetries)
	assert.Equal(t, 250*time.Millisecond, c.Timeout)
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("REDISTX_PORT", "6380")

	v := viper.New()
	InitEnv(v)
	cmd := newCmd()
	require.NoError(t, cmd.PersistentFlags().Set("port", "7000"))
	require.NoError(t, cmd.PersistentFlags().Set("db", "2"))

	c, err := Load(v, cmd)
	require.NoError(t, err)
	assert.Equal(t, "7000", c.Port)
	assert.Equal(t, 2, c.DB)

	opts := c.ConnOptions()
	assert.Equal(t, "7000", opts.Port)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, c.Timeout, opts.ReadTimeout)
}

func TestValidate(t *testing.T) {
	base := Config{Host: "h", Port: "6379", ScanCount: 10, LogLevel: "info"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty host", func(c *Config) { c.Host = "" }},
		{"port not a number", func(c *Config) { c.Port = "redis" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"negative db", func(c *Config) { c.DB = -1 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
		{"zero scan count", func(c *Config) { c.ScanCount = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
