package main

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sandevgo/syllabot/internal/auth"
	"github.com/sandevgo/syllabot/internal/config"
	"github.com/spf13/cobra"
)

var tokenOpts struct {
	email string
	ttl   time.Duration
}

var tokenCmd = &cobra.Command{
	Use:          "token <user-id>",
	Short:        "Issue a caller token for the sqlite store",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		sqlCfg := config.NewSQLiteConfig(ctx, config.NewAppConfig(ctx))

		v, err := auth.NewVerifier(sqlCfg.JWTSecret, sqlCfg.JWTAudience)
		if err != nil {
			return err
		}
		now := time.Now()
		token, err := v.Sign(args[0], tokenOpts.email, jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenOpts.ttl)),
		})
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOpts.email, "email", "", "email claim")
	tokenCmd.Flags().DurationVar(&tokenOpts.ttl, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
