package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/syllabot/pkg/log"
)

type SupabaseConfig struct {
	URL string `env:"STORE_URL,required,notEmpty"`
	Key string `env:"STORE_KEY,required,notEmpty"`
}

func NewSupabaseConfig(ctx context.Context) *SupabaseConfig {
	c := &SupabaseConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Supabase config")
	}
	return c
}

type SQLiteConfig struct {
	// Empty means <runtime>/syllabot.db.
	DBPath string `env:"STORE_DB_PATH"`
	// HS256 secret that signed the callers' access tokens.
	JWTSecret string `env:"STORE_JWT_SECRET,required,notEmpty"`
	// Expected "aud" claim. Empty skips the check.
	JWTAudience string `env:"STORE_JWT_AUDIENCE" envDefault:"authenticated"`
}

func NewSQLiteConfig(ctx context.Context, app *AppConfig) *SQLiteConfig {
	c := &SQLiteConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse SQLite config")
	}
	if c.DBPath == "" {
		c.DBPath = app.GetDatabasePath()
	}
	return c
}

// GetSQLitePath resolves the database file without requiring the JWT secret.
func GetSQLitePath(app *AppConfig) string {
	var c struct {
		DBPath string `env:"STORE_DB_PATH"`
	}
	if err := env.Parse(&c); err != nil || c.DBPath == "" {
		return app.GetDatabasePath()
	}
	return c.DBPath
}
