package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/magabrotheeeer/contrarian-report/internal/config"
	"github.com/magabrotheeeer/contrarian-report/internal/lib/logger"
)

type cli struct {
	configPath string
	cfg        *config.Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:          "contrarianctl",
		Short:        "Administrative commands for The Contrarian Report",
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return c.loadConfig()
		},
	}
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("CONFIG_PATH"),
		"path to the config file (defaults to $CONFIG_PATH)")

	root.AddCommand(
		c.migrateCmd(),
		c.plansCmd(),
		c.sessionsCmd(),
		c.usersCmd(),
	)
	return root
}

func (c *cli) loadConfig() error {
	if c.configPath == "" {
		return errors.New("config path is not set, use --config or CONFIG_PATH")
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.New(os.Stderr, cfg.IsLocal())
	return nil
}
