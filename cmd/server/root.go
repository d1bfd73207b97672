package main

import (
	"github.com/spf13/cobra"

	"deedgate/internal/platform/config"
)

// commandContext holds the lazily loaded configuration shared by subcommands.
type commandContext struct {
	configPath string
	cfg        *config.Config
}

func (c *commandContext) config() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	return cfg, nil
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:           "server",
		Short:         "deedgate property registry and listing verification API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "YAML configuration file (DEEDGATE_* environment variables override it)")

	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newHashCommand())
	rootCmd.AddCommand(newTokenCommand(ctx))

	return rootCmd
}
