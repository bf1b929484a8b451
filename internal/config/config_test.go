package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/GoPolymarket/fusiongate/internal/chain"
	"github.com/GoPolymarket/fusiongate/internal/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
server:
  port: "9090"
order:
  order_expiration_delay: 30
  unwrap_native: true
  source: "0x12345678"
  preset: Medium
chain:
  rpc_urls:
    arbitrum: "http://arb.local"
    "1": "http://eth.local"
`

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, 72, cfg.Redis.SecretTTLHours)
	assert.Nil(t, cfg.DefaultPreset())

	opts := cfg.OrderOptions()
	assert.Equal(t, uint64(12), opts.OrderExpirationDelay)
	assert.True(t, opts.AllowPartialFills)
	assert.True(t, opts.AllowMultipleFills)
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigYAML), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("FUSIONGATE_LOG_LEVEL=debug\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("FUSIONGATE_SERVER_PORT", "7070")
	t.Cleanup(func() { _ = os.Unsetenv("FUSIONGATE_LOG_LEVEL") })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7070", cfg.Server.Port, "env overrides the file")
	assert.Equal(t, "debug", cfg.Log.Level, ".env is loaded")

	opts := cfg.OrderOptions()
	assert.Equal(t, uint64(30), opts.OrderExpirationDelay)
	assert.True(t, opts.UnwrapNative)
	assert.Equal(t, "0x12345678", opts.Source)

	require.NotNil(t, cfg.DefaultPreset())
	assert.Equal(t, quote.PresetMedium, *cfg.DefaultPreset())

	assert.Equal(t, "http://arb.local", cfg.RPCURL(chain.Arbitrum))
	assert.Equal(t, "http://eth.local", cfg.RPCURL(chain.Ethereum))
	assert.Empty(t, cfg.RPCURL(chain.Base))
}
