package main

import (
	"github.com/sandevgo/syllabot/internal/config"
	"github.com/sandevgo/syllabot/internal/storage/sqlite"
	"github.com/sandevgo/syllabot/pkg/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Apply the embedded SQLite schema",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		appCfg := config.NewAppConfig(ctx)

		path := config.GetSQLitePath(appCfg)

		// NewDB runs the migrations.
		db, err := sqlite.NewDB(ctx, path)
		if err != nil {
			return err
		}
		defer db.Close()

		log.FromCtx(ctx).Info().Str("path", path).Msg("database is up to date")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
