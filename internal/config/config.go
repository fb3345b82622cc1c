// Package config resolves client settings from flags, REDISTX_* environment
// variables and .env files, in that order of precedence.
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/cosmez/redistx-go/internal/conn"
)

// EnvPrefix is prepended to every environment variable, so "watch-retries"
// is read from REDISTX_WATCH_RETRIES.
const EnvPrefix = "redistx"

// Config is the resolved client configuration.
type Config struct {
	Host         string
	Port         string
	Username     string
	Password     string
	DB           int
	Timeout      time.Duration
	WatchRetries uint
	ScanCount    int
	LogLevel     string
	Metrics      bool
}

// SetupFlags registers every setting as a persistent flag on cmd.
func SetupFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringP("host", "H", "localhost", "Server host")
	f.StringP("port", "p", "6379", "Server port")
	f.StringP("username", "u", "", "ACL username")
	f.StringP("password", "a", "", "Password")
	f.Int("db", 0, "Database number to SELECT after connecting")
	f.Duration("timeout", 5*time.Second, "Reply read timeout, 0 blocks")
	f.Uint("watch-retries", 3, "Retries after a WATCH conflict before giving up")
	f.Int("scan-count", 100, "COUNT hint for SCAN, SSCAN, HSCAN and ZSCAN")
	f.String("log-level", "warn", "Log level: debug, info, warn or error")
	f.Bool("metrics", false, "Print client metrics on exit")
}

// InitEnv loads .env and .env.local and points v at REDISTX_* variables.
// Missing env files are not an error.
func InitEnv(v *viper.Viper) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load binds cmd's flags to v and reads the configuration. Persistent flags
// are bound explicitly so Load also works before cobra has merged them.
func Load(v *viper.Viper, cmd *cobra.Command) (*Config, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, errors.Wrap(err, "bind flags")
	}
	if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
		return nil, errors.Wrap(err, "bind persistent flags")
	}

	c := &Config{
		Host:         v.GetString("host"),
		Port:         v.GetString("port"),
		Username:     v.GetString("username"),
		Password:     v.GetString("password"),
		DB:           v.GetInt("db"),
		Timeout:      v.GetDuration("timeout"),
		WatchRetries: v.GetUint("watch-retries"),
		ScanCount:    v.GetInt("scan-count"),
		LogLevel:     v.GetString("log-level"),
		Metrics:      v.GetBool("metrics"),
	}
	return c, c.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host must not be empty")
	}
	if p, err := strconv.Atoi(c.Port); err != nil || p <= 0 || p > 65535 {
		return errors.Errorf("invalid port %q", c.Port)
	}
	if c.DB < 0 {
		return errors.Errorf("invalid db %d", c.DB)
	}
	if c.Timeout < 0 {
		return errors.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if c.ScanCount <= 0 {
		return errors.Errorf("scan-count must be positive, got %d", c.ScanCount)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrap(err, "log-level")
	}
	return nil
}

// ConnOptions returns the transport settings.
func (c *Config) ConnOptions() conn.Options {
	return conn.Options{
		Host:        c.Host,
		Port:        c.Port,
		Username:    c.Username,
		Password:    c.Password,
		DB:          c.DB,
		DialTimeout: c.Timeout,
		ReadTimeout: c.Timeout,
	}
}
