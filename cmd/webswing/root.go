package main

import (
	"github.com/spf13/cobra"

	"github.com/zeusync/webswing/internal/config"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "dev"

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "webswing",
		Short:         "Swinging third-person character simulation served over WebSocket",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file (defaults when empty)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override log.level")
	cmd.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	cmd.AddCommand(
		newServeCmd(opts),
		newSimulateCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) load() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}
