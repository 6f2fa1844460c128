package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandevgo/syllabot/internal/config"
	"github.com/sandevgo/syllabot/internal/service/ui"
	"github.com/sandevgo/syllabot/pkg/env"
	"github.com/sandevgo/syllabot/pkg/log"
	"github.com/spf13/cobra"
)

var initOpts struct {
	force      bool
	store      string
	listenAddr string
	gatewayKey string
	gatewayURL string
	model      string
	storeURL   string
	storeKey   string
	jwtSecret  string
	dbPath     string
}

var initCmd = &cobra.Command{
	Use:          "init",
	Short:        "Write the runtime .env file",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, flushLog := setupLogger(cmd.Context())
		defer flushLog()

		runtimePath := config.GetRuntimePath()
		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil && !initOpts.force {
			return fmt.Errorf("%s already exists, use --force to overwrite", envPath)
		}

		content, err := renderEnv()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(runtimePath, 0o700); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}
		if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", envPath, err)
		}

		log.FromCtx(ctx).Info().Str("path", envPath).Msg("runtime config written")
		fmt.Println(ui.OKStyle.Render("Config written to"), ui.PathStyle.Render(envPath))
		fmt.Println(ui.DescStyle.Render("Run 'syllabot serve' to start the API."))
		return nil
	},
}

func renderEnv() (string, error) {
	app := &config.AppConfig{
		ListenAddr: initOpts.listenAddr,
		Store:      initOpts.store,
	}
	gateway := &config.GatewayConfig{
		URL:   initOpts.gatewayURL,
		Key:   initOpts.gatewayKey,
		Model: initOpts.model,
	}

	var store any
	switch initOpts.store {
	case config.StoreSupabase:
		if initOpts.storeURL == "" || initOpts.storeKey == "" {
			return "", errors.New("--store-url and --store-key are required for the supabase store")
		}
		store = &config.SupabaseConfig{URL: initOpts.storeURL, Key: initOpts.storeKey}
	case config.StoreSQLite:
		if initOpts.jwtSecret == "" {
			return "", errors.New("--jwt-secret is required for the sqlite store")
		}
		store = &config.SQLiteConfig{DBPath: initOpts.dbPath, JWTSecret: initOpts.jwtSecret}
	default:
		return "", fmt.Errorf("unknown store %q", initOpts.store)
	}

	var b strings.Builder
	for _, c := range []any{app, gateway, store} {
		s, err := env.MarshalEnv(c)
		if err != nil {
			return "", err
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

func init() {
	f := initCmd.Flags()
	f.BoolVar(&initOpts.force, "force", false, "overwrite an existing .env")
	f.StringVar(&initOpts.store, "store", config.StoreSupabase, "persistence backend: supabase or sqlite")
	f.StringVar(&initOpts.listenAddr, "listen", "", "HTTP listen address")
	f.StringVar(&initOpts.gatewayKey, "gateway-key", "", "AI gateway bearer key")
	f.StringVar(&initOpts.gatewayURL, "gateway-url", "", "AI gateway chat completions URL")
	f.StringVar(&initOpts.model, "model", "", "model name sent to the gateway")
	f.StringVar(&initOpts.storeURL, "store-url", "", "Supabase project URL")
	f.StringVar(&initOpts.storeKey, "store-key", "", "Supabase anon key")
	f.StringVar(&initOpts.jwtSecret, "jwt-secret", "", "HS256 secret for caller tokens (sqlite store)")
	f.StringVar(&initOpts.dbPath, "db-path", "", "SQLite database file")
	rootCmd.AddCommand(initCmd)
}
