package main

import (
	"testing"

	"github.com/sandevgo/syllabot/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEnv(t *testing.T) {
	saved := initOpts
	t.Cleanup(func() { initOpts = saved })

	initOpts.store = config.StoreSQLite
	initOpts.listenAddr = ":9090"
	initOpts.gatewayKey = "gw-key"
	initOpts.jwtSecret = "secret with space"

	out, err := renderEnv()
	require.NoError(t, err)
	assert.Equal(t, "SYLLABOT_LISTEN_ADDR=:9090\n"+
		"SYLLABOT_STORE=sqlite\n"+
		"AI_GATEWAY_KEY=gw-key\n"+
		"STORE_JWT_SECRET=\"secret with space\"\n", out)
}

func TestRenderEnv_RequiresStoreSettings(t *testing.T) {
	saved := initOpts
	t.Cleanup(func() { initOpts = saved })

	initOpts.store = config.StoreSupabase
	initOpts.storeURL = ""
	_, err := renderEnv()
	assert.Error(t, err)

	initOpts.store = "postgres"
	_, err = renderEnv()
	assert.Error(t, err)
}
