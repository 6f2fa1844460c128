package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/syllabot/pkg/log"
)

// GatewayConfig describes the language-model gateway. The key is not
// required at startup: a missing key is reported per request.
type GatewayConfig struct {
	URL   string `env:"AI_GATEWAY_URL" envDefault:"https://ai.gateway.lovable.dev/v1/chat/completions"`
	Key   string `env:"AI_GATEWAY_KEY"`
	Model string `env:"AI_GATEWAY_MODEL" envDefault:"google/gemini-2.5-flash"`
}

func NewGatewayConfig(ctx context.Context) *GatewayConfig {
	c := &GatewayConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse Gateway config")
	}
	return c
}

func (c GatewayConfig) GetGatewayURL() string {
	return c.URL
}

func (c GatewayConfig) GetGatewayKey() string {
	return c.Key
}

func (c GatewayConfig) GetGatewayModel() string {
	return c.Model
}
