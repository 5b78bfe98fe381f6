package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/louisbranch/pbpkeeper/internal/platform/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect campaign configuration",
	}
	cmd.AddCommand(newConfigValidateCommand())
	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the campaign definition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var envCfg config.Env
			if err := config.ParseEnv(&envCfg); err != nil {
				return err
			}
			cfg, err := config.Load(envCfg.ConfigPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d campaigns)\n", envCfg.ConfigPath, len(cfg.Campaigns))
			return nil
		},
	}
}
