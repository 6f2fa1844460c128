package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sandevgo/syllabot/internal/auth"
	"github.com/sandevgo/syllabot/internal/config"
	"github.com/sandevgo/syllabot/internal/core"
	"github.com/sandevgo/syllabot/internal/providers/llm"
	"github.com/sandevgo/syllabot/internal/service/syllabus"
	"github.com/sandevgo/syllabot/internal/storage/sqlite"
	"github.com/sandevgo/syllabot/internal/storage/supabase"
	"github.com/sandevgo/syllabot/internal/transport/api"
	"github.com/sandevgo/syllabot/pkg/log"
	"github.com/sandevgo/syllabot/pkg/retry"
	"github.com/sandevgo/syllabot/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	gatewayCfg := config.NewGatewayConfig(ctx)
	if gatewayCfg.Key == "" {
		logger.Warn().Msg("AI_GATEWAY_KEY is not set, gateway calls will fail until it is configured")
	}

	// 2. Storage
	store, cleanup, err := initStore(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize store")
	}
	if cleanup != nil {
		services = append(services, cleanup)
	}
	waitForStore(ctx, store)

	// 3. Gateway client
	metrics := api.NewMetrics()
	client := llm.NewGateway(gatewayCfg, llm.WithObserver(metrics.ObserveGateway))

	// 4. Pipelines
	extractor := syllabus.NewExtractor(client, store, appCfg, initTokenCounter(ctx, appCfg))
	relay := syllabus.NewRelay(client, store)

	// 5. Transport
	services = append(services, api.NewServer(appCfg.ListenAddr, extractor, relay, store, metrics))

	return services
}

func initStore(ctx context.Context, cfg *config.AppConfig) (core.Store, srv.Service, error) {
	logger := log.FromCtx(ctx)

	if !cfg.IsSQLiteSelected() {
		supaCfg := config.NewSupabaseConfig(ctx)
		store, err := supabase.NewStore(supaCfg.URL, supaCfg.Key)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("url", supaCfg.URL).Msg("using supabase store")
		return store, nil, nil
	}

	sqlCfg := config.NewSQLiteConfig(ctx, cfg)
	verifier, err := auth.NewVerifier(sqlCfg.JWTSecret, sqlCfg.JWTAudience)
	if err != nil {
		return nil, nil, err
	}
	db, err := sqlite.NewDB(ctx, sqlCfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Info().Str("path", sqlCfg.DBPath).Msg("using sqlite store")
	return sqlite.NewStore(db, verifier), srv.NewCleanup(db.Close), nil
}

// waitForStore gives a store that is still starting a few chances to answer.
// The server starts either way; /readyz keeps reporting the state.
func waitForStore(ctx context.Context, store core.Store) {
	r := retry.NewRetrier(&retry.Config{
		MaxRetries:    4,
		BackoffFactor: 2,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		Jitter:        100 * time.Millisecond,
	})
	err := r.Do(ctx, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return store.Ping(pingCtx)
	})
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("store is not reachable yet")
	}
}

func initTokenCounter(ctx context.Context, cfg *config.AppConfig) core.TokenCounter {
	if cfg.GetMaxContentTokens() <= 0 {
		return nil
	}
	counter, err := llm.NewTokenCounter(llm.DefaultEncoding)
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to load tokenizer")
	}
	return counter
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
