package core

import "time"

type ExtractorConfig interface {
	GetExtractTimeout() time.Duration
	GetMaxContentTokens() int
}

type GatewayConfig interface {
	GetGatewayURL() string
	GetGatewayKey() string
	GetGatewayModel() string
}
