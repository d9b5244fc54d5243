package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ivankudzin/botlist/internal/infra/logger"
	tginfra "github.com/ivankudzin/botlist/internal/infra/telegram"
	"github.com/ivankudzin/botlist/internal/jobs/rolesync"
	pgrepo "github.com/ivankudzin/botlist/internal/repo/postgres"
)

func NewRoleSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rolesync",
		Short: "Sync the bug hunter flag with the bug hunters chat once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg.Log.Level)
			if err != nil {
				return err
			}
			defer func() {
				_ = log.Sync()
			}()

			ctx := commandContext(cmd)
			telegram, err := tginfra.NewClient(cfg.Telegram.Token, cfg.Telegram.PollTimeoutSeconds, log)
			if err != nil {
				return err
			}
			if telegram.DryRun() {
				return fmt.Errorf("BOT_TOKEN is required for role sync")
			}

			pool, err := pgrepo.NewPool(ctx, cfg.Postgres.DSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			job := rolesync.New(telegram, pgrepo.NewUserRepo(pool), cfg.Telegram.BugHuntersChatID, cfg.RoleSync.Interval, log)
			return job.Run(ctx)
		},
	}
}
