package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/syllabot/pkg/log"
)

const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
)

type AppConfig struct {
	RuntimePath string `env:"SYLLABOT_RUNTIME_PATH"`
	ListenAddr  string `env:"SYLLABOT_LISTEN_ADDR" envDefault:":8080"`
	Store       string `env:"SYLLABOT_STORE" envDefault:"supabase"`

	// Bounds the non-streaming extraction call to the gateway.
	ExtractTimeout time.Duration `env:"SYLLABOT_EXTRACT_TIMEOUT" envDefault:"60s"`
	// 0 disables the limit.
	MaxContentTokens int `env:"SYLLABOT_MAX_CONTENT_TOKENS" envDefault:"0"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	if c.RuntimePath == "" {
		c.RuntimePath = GetRuntimePath()
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "syllabot.db")
}

func (c AppConfig) GetExtractTimeout() time.Duration {
	return c.ExtractTimeout
}

func (c AppConfig) GetMaxContentTokens() int {
	return c.MaxContentTokens
}

func (c AppConfig) IsSQLiteSelected() bool {
	return c.Store == StoreSQLite
}
