package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"bookmarkd/internal/config"
	"bookmarkd/internal/logging"
)

// options holds global flags. Flag defaults come from the environment.
type options struct {
	configPath string
	addr       string
	logLevel   string
	logFormat  string
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "bookmarkd",
		Short:         "Bookmark capture service with category-routed notifications",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveWithSignals(cmd, o)
		},
	}
	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", envOr("BOOKMARKD_CONFIG", ""), "Config file (.yaml, .json, .toml); env BOOKMARKD_CONFIG")
	root.PersistentFlags().StringVar(&o.addr, "addr", envOr("BOOKMARKD_ADDR", ""), "HTTP listen address, e.g. 127.0.0.1:5601; env BOOKMARKD_ADDR")
	root.PersistentFlags().StringVar(&o.logLevel, "log-level", envOr("BOOKMARKD_LOG_LEVEL", ""), "Log level: trace|debug|info|warn|error; env BOOKMARKD_LOG_LEVEL")
	root.PersistentFlags().StringVar(&o.logFormat, "log-format", "", "Log format: console|json")

	root.AddCommand(newServeCmd(o), newCheckConfigCmd(o), newSendTestCmd(o))
	return root
}

// loadConfig reads the config file (if any), applies defaults and lets
// non-empty flags override file values.
func loadConfig(o *options) (config.Config, error) {
	cfg := config.Config{}
	if o.configPath != "" {
		c, err := config.Load(o.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = c
	}
	if o.addr != "" {
		cfg.Addr = o.addr
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	if o.logFormat != "" {
		cfg.LogFormat = o.logFormat
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) (zerolog.Logger, error) {
	return logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
}
