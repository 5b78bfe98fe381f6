package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/louisbranch/pbpkeeper/internal/checks"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	apperrors "github.com/louisbranch/pbpkeeper/internal/platform/errors"
	"github.com/louisbranch/pbpkeeper/internal/runner"
	boltstore "github.com/louisbranch/pbpkeeper/internal/storage/bbolt"
	"github.com/louisbranch/pbpkeeper/internal/telegram"
)

func newRunCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one batch pass: fetch updates, fold state, send notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			var envCfg config.Env
			if err := config.ParseEnv(&envCfg); err != nil {
				return err
			}
			if dryRun {
				envCfg.DryRun = true
			}
			if envCfg.BotToken == "" {
				return apperrors.New(apperrors.CodeConfigInvalid, "PBPKEEPER_BOT_TOKEN is required")
			}

			cfg, err := config.Load(envCfg.ConfigPath)
			if err != nil {
				return err
			}

			gateway, err := telegram.New(envCfg.BotToken)
			if err != nil {
				return err
			}

			store, err := boltstore.Open(envCfg.StatePath)
			if err != nil {
				return err
			}
			defer store.Close()

			r := &runner.Runner{
				Store:    store,
				Source:   gateway,
				Out:      gateway,
				Config:   cfg,
				Registry: checks.NewRegistry(),
				Log:      slog.Default(),
				DryRun:   envCfg.DryRun,
			}
			return r.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "fold updates in memory without sending or saving")
	return cmd
}
