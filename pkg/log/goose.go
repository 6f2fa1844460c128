package log

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// MigrationLogger routes goose output into the context logger.
type MigrationLogger struct {
	logger *zerolog.Logger
}

func (m *MigrationLogger) Fatalf(format string, v ...interface{}) {
	m.logger.Fatal().Str("component", "migrate").Msgf(strings.TrimSpace(format), v...)
}

func (m *MigrationLogger) Printf(format string, v ...interface{}) {
	m.logger.Info().Str("component", "migrate").Msgf(strings.TrimSpace(format), v...)
}

func NewMigrationLoggerFromCtx(ctx context.Context) *MigrationLogger {
	return &MigrationLogger{
		logger: FromCtx(ctx),
	}
}
