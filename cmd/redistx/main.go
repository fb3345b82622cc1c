package main

import (
	"fmt"
	"os"

	"github.com/VictoriaMetrics/metrics"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cosmez/redistx-go/internal/client"
	"github.com/cosmez/redistx-go/internal/command"
	"github.com/cosmez/redistx-go/internal/config"
	"github.com/cosmez/redistx-go/internal/logging"
)

var version = "dev" // set at build time via -ldflags "-X main.version=..."

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var cmdStr string

	root := &cobra.Command{
		Use:           "redistx",
		Short:         "A Redis client with client-side transactions",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			config.InitEnv(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, cmd)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			s, err := newSession(cfg, log)
			if err != nil {
				return err
			}
			defer s.close()

			if cfg.Metrics {
				defer metrics.WritePrometheus(os.Stderr, false)
			}

			if cmdStr != "" {
				return s.runOneShot(cmdStr)
			}
			return runRepl(s)
		},
	}

	config.SetupFlags(root)
	root.Flags().StringVarP(&cmdStr, "command", "c", "", "Execute a single command and exit")
	return root
}

// newSession connects and loads the command registry, merging in whatever
// the server reports through COMMAND.
func newSession(cfg *config.Config, log *zap.Logger) (*session, error) {
	reg, err := command.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("load commands: %w", err)
	}

	c, err := dial(cfg, log)
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:    cfg,
		log:    log,
		reg:    reg,
		client: c,
		out:    color.Output,
		in:     os.Stdin,
		color:  !color.NoColor,
	}
	s.mergeServerCommands()
	return s, nil
}

func dial(cfg *config.Config, log *zap.Logger) (*client.Client, error) {
	c, err := client.Dial(cfg.ConnOptions(),
		client.WithLogger(log),
		client.WithTimeout(cfg.Timeout),
		client.WithScanCount(cfg.ScanCount),
	)
	if err != nil {
		return nil, fmt.Errorf("connection failed: %w", err)
	}
	log.Debug("connected", zap.String("host", cfg.Host), zap.String("port", cfg.Port), zap.Int("db", cfg.DB))
	return c, nil
}
