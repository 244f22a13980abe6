// internal/services/blockchain_service_test.go
package services_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/logging"
	"github.com/javajoker/royalty-ledger/internal/services"
)

func TestBlockchainServiceVaultLifecycle(t *testing.T) {
	cfg := config.DefaultChainConfig()
	chain := services.NewBlockchainService(cfg, logging.Discard())
	ctx := context.Background()
	ipID := common.HexToAddress("0x00000000000000000000000000000000000000aa")

	first, err := chain.PayRoyalty(ctx, services.PayRoyaltyRequest{
		ReceiverIPID: ipID,
		Token:        cfg.WIPTokenAddress(),
		Amount:       big.NewInt(300),
	})
	require.NoError(t, err)
	second, err := chain.PayRoyalty(ctx, services.PayRoyaltyRequest{
		ReceiverIPID: ipID,
		Token:        cfg.WIPTokenAddress(),
		Amount:       big.NewInt(200),
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.TxHash, second.TxHash)

	claimable, err := chain.GetClaimableRevenue(ctx, ipID, ipID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), claimable.Int64())

	receipt, err := chain.ClaimRevenue(ctx, ipID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), receipt.Claimed.Int64())

	// The vault is drained
	again, err := chain.ClaimRevenue(ctx, ipID)
	require.NoError(t, err)
	assert.Zero(t, again.Claimed.Sign())
}

func TestBlockchainServiceRejectsBadRequests(t *testing.T) {
	cfg := config.DefaultChainConfig()
	chain := services.NewBlockchainService(cfg, logging.Discard())
	ctx := context.Background()
	ipID := common.HexToAddress("0x00000000000000000000000000000000000000bb")

	_, err := chain.PayRoyalty(ctx, services.PayRoyaltyRequest{ReceiverIPID: ipID, Token: ipID, Amount: big.NewInt(1)})
	assert.Error(t, err, "only WIP is accepted")

	_, err = chain.PayRoyalty(ctx, services.PayRoyaltyRequest{ReceiverIPID: ipID, Token: cfg.WIPTokenAddress(), Amount: big.NewInt(0)})
	assert.Error(t, err)

	_, err = chain.MintLicense(ctx, services.MintLicenseRequest{LicensorIPID: ipID})
	assert.Error(t, err, "license terms id is required")

	_, err = chain.MintLicense(ctx, services.MintLicenseRequest{LicenseTermsID: big.NewInt(1)})
	assert.Error(t, err, "licensor ip id is required")

	tx, err := chain.MintLicense(ctx, services.MintLicenseRequest{LicenseTermsID: big.NewInt(1), LicensorIPID: ipID, MaxRevenueShare: 100})
	require.NoError(t, err)
	assert.NotEqual(t, common.Hash{}, tx.TxHash)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = chain.ClaimRevenue(cancelled, ipID)
	assert.ErrorIs(t, err, context.Canceled)
}
