package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const appName = "ucrawl"

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
	logLevel   string
	logJSON    bool
}

// NewRootCmd creates the root command for ucrawl.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Polite, depth-bounded web crawler with a full-text index",
		Long: `ucrawl crawls outward from a set of seed URLs, one worker per host at a
time, and indexes every fetched page. State is kept per index location so
later runs continue where earlier ones stopped.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a TOML config file (default: $XDG_CONFIG_HOME/ucrawl/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "Log level")
	cmd.PersistentFlags().BoolVar(&opts.logJSON, "log-json", false, "Log in JSON format")

	cmd.AddCommand(NewCrawlCmd(opts))
	cmd.AddCommand(NewPagesCmd(opts, "visited"))
	cmd.AddCommand(NewPagesCmd(opts, "excluded"))
	cmd.AddCommand(NewSearchCmd(opts))

	return cmd
}

// rootLogger returns the logger every component derives its own from.
func (opts *globalOptions) rootLogger() (*logrus.Entry, error) {
	level, err := logrus.ParseLevel(opts.logLevel)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetOutput(os.Stderr)
	if opts.logJSON {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	host, _ := os.Hostname()

	return logger.WithFields(logrus.Fields{
		"app":  appName,
		"host": host,
	}), nil
}
