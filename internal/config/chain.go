// internal/config/chain.go
package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const (
	NetworkAeneid  = "aeneid"
	NetworkMainnet = "mainnet"

	// Wrapped IP, the currency royalties are paid in.
	DefaultWIPToken       = "0x1514000000000000000000000000000000000000"
	DefaultSPGNFTContract = "0xc32A8a0FF3beDDDa58393d022aF433e78739FAbc"
)

type networkPreset struct {
	RPCURL      string
	ExplorerURL string
}

var presets = map[string]networkPreset{
	NetworkAeneid: {
		RPCURL:      "https://aeneid.storyrpc.io",
		ExplorerURL: "https://aeneid.storyscan.io",
	},
	NetworkMainnet: {
		RPCURL:      "https://mainnet.storyrpc.io",
		ExplorerURL: "https://www.storyscan.io",
	},
}

type ChainConfig struct {
	Network        string
	RPCURL         string
	ExplorerURL    string
	WIPToken       string
	SPGNFTContract string
	// Ceilings passed along with every license mint.
	MaxMintingFee   decimal.Decimal // in IP
	MaxRevenueShare int             // percent
}

func (c ChainConfig) Validate() error {
	if _, ok := presets[c.Network]; !ok {
		return fmt.Errorf("unsupported chain network %q", c.Network)
	}
	if !common.IsHexAddress(c.WIPToken) {
		return fmt.Errorf("invalid WIP token address %q", c.WIPToken)
	}
	if !common.IsHexAddress(c.SPGNFTContract) {
		return fmt.Errorf("invalid SPG NFT contract address %q", c.SPGNFTContract)
	}
	if c.MaxMintingFee.IsNegative() {
		return fmt.Errorf("max minting fee must not be negative")
	}
	if c.MaxRevenueShare < 0 || c.MaxRevenueShare > 100 {
		return fmt.Errorf("max revenue share must be between 0 and 100")
	}
	return nil
}

func (c ChainConfig) WIPTokenAddress() common.Address {
	return common.HexToAddress(c.WIPToken)
}

// ExplorerTxURL links a transaction hash on the configured block explorer.
func (c ChainConfig) ExplorerTxURL(txHash string) string {
	if txHash == "" {
		return ""
	}
	return strings.TrimRight(c.ExplorerURL, "/") + "/tx/" + txHash
}

// DefaultChainConfig returns the aeneid testnet settings.
func DefaultChainConfig() ChainConfig {
	preset := presets[NetworkAeneid]
	return ChainConfig{
		Network:         NetworkAeneid,
		RPCURL:          preset.RPCURL,
		ExplorerURL:     preset.ExplorerURL,
		WIPToken:        DefaultWIPToken,
		SPGNFTContract:  DefaultSPGNFTContract,
		MaxMintingFee:   decimal.RequireFromString("0.1"),
		MaxRevenueShare: 100,
	}
}
