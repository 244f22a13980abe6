// internal/config/config_test.go
package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.True(t, cfg.Database.AutoMigrate)
	assert.Equal(t, NetworkAeneid, cfg.Chain.Network)
	assert.Equal(t, "https://aeneid.storyscan.io", cfg.Chain.ExplorerURL)
	assert.True(t, cfg.Chain.MaxMintingFee.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, 100, cfg.Chain.MaxRevenueShare)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CHAIN_NETWORK", NetworkMainnet)
	t.Setenv("CHAIN_MAX_MINTING_FEE", "0.25")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/ledger.db")
	t.Setenv("DB_AUTO_MIGRATE", "FALSE")
	t.Setenv("RATE_LIMIT_RPS", "2.5")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://mainnet.storyrpc.io", cfg.Chain.RPCURL)
	assert.Equal(t, "https://www.storyscan.io", cfg.Chain.ExplorerURL)
	assert.True(t, cfg.Chain.MaxMintingFee.Equal(decimal.RequireFromString("0.25")))
	assert.Equal(t, "/tmp/ledger.db", cfg.Database.DSN())
	assert.False(t, cfg.Database.AutoMigrate)
	assert.Equal(t, 2.5, cfg.RateLimit.RequestsPerSecond)
}

func TestLoadRejectsUnknownNetwork(t *testing.T) {
	t.Setenv("CHAIN_NETWORK", "goerli")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidateProduction(t *testing.T) {
	cfg := &Config{
		Environment: "production",
		Database:    DatabaseConfig{Driver: "postgres", Password: "secret"},
		JWT:         JWTConfig{SecretKey: "your-secret-key-change-in-production"},
		Chain:       DefaultChainConfig(),
	}
	assert.Error(t, cfg.Validate())

	cfg.JWT.SecretKey = "rotated"
	assert.NoError(t, cfg.Validate())

	cfg.Database.Password = ""
	assert.Error(t, cfg.Validate())

	cfg.Database.Driver = "mysql"
	assert.Error(t, cfg.Validate())
}

func TestChainConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*ChainConfig)
		valid  bool
	}{
		{"defaults", func(c *ChainConfig) {}, true},
		{"bad token", func(c *ChainConfig) { c.WIPToken = "wip" }, false},
		{"bad nft contract", func(c *ChainConfig) { c.SPGNFTContract = "0x12" }, false},
		{"negative fee", func(c *ChainConfig) { c.MaxMintingFee = decimal.NewFromInt(-1) }, false},
		{"share above 100", func(c *ChainConfig) { c.MaxRevenueShare = 101 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultChainConfig()
			tt.modify(&cfg)
			if tt.valid {
				assert.NoError(t, cfg.Validate())
			} else {
				assert.Error(t, cfg.Validate())
			}
		})
	}
}

func TestExplorerTxURL(t *testing.T) {
	cfg := DefaultChainConfig()
	cfg.ExplorerURL = "https://aeneid.storyscan.io/"

	assert.Equal(t, "https://aeneid.storyscan.io/tx/0xabc", cfg.ExplorerTxURL("0xabc"))
	assert.Empty(t, cfg.ExplorerTxURL(""))
}

func TestPostgresDSN(t *testing.T) {
	db := DatabaseConfig{
		Driver: "postgres", Host: "db", Port: "5432", User: "ledger",
		Password: "pw", Database: "royalty", SSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5432 user=ledger password=pw dbname=royalty sslmode=disable", db.DSN())
}
