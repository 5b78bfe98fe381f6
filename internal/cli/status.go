package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/pbpkeeper/internal/ledger"
	"github.com/louisbranch/pbpkeeper/internal/platform/config"
	boltstore "github.com/louisbranch/pbpkeeper/internal/storage/bbolt"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a per-campaign health overview from saved state",
		RunE: func(cmd *cobra.Command, args []string) error {
			var envCfg config.Env
			if err := config.ParseEnv(&envCfg); err != nil {
				return err
			}
			cfg, err := config.Load(envCfg.ConfigPath)
			if err != nil {
				return err
			}

			store, err := boltstore.Open(envCfg.StatePath)
			if err != nil {
				return err
			}
			defer store.Close()

			snap, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}

			now := time.Now().UTC()
			out := cmd.OutOrStdout()
			for _, def := range cfg.Campaigns {
				id := def.CanonicalID()
				c := snap.Campaign(id)
				gms := cfg.GMSet(id)

				weekly := 0
				for _, rec := range c.Records {
					weekly += ledger.WeeklyCount(rec, now)
				}

				fmt.Fprintf(out, "%s (%s)\n", def.Name, id)
				if c.Paused {
					fmt.Fprintf(out, "  paused: %s\n", c.PauseReason)
				}
				fmt.Fprintf(out, "  health: %s (%d posts this week, %d total)\n",
					ledger.ClassifyHealth(weekly), weekly, c.TotalPosts)
				fmt.Fprintf(out, "  players: %d active\n", len(c.ActivePlayers(gms)))
				if c.Combat.Active() {
					fmt.Fprintf(out, "  combat: round %d, %s acting\n", c.Combat.Round, c.Combat.Phase)
				}
				if !c.LastMessage.Time.IsZero() {
					fmt.Fprintf(out, "  last post: %s by %s\n",
						c.LastMessage.Time.Format(time.RFC3339), c.LastMessage.PlayerName)
				}
			}
			fmt.Fprintf(out, "global: %d posts across all campaigns\n", snap.GlobalTotalPosts)
			return nil
		},
	}
}
