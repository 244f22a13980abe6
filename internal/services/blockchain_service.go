// internal/services/blockchain_service.go
package services

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/royalty-ledger/internal/config"
)

// ChainGateway submits the royalty-module transactions. Every call either
// returns a confirmed transaction or an error; there is no pending state.
type ChainGateway interface {
	MintLicense(ctx context.Context, req MintLicenseRequest) (*ChainTx, error)
	PayRoyalty(ctx context.Context, req PayRoyaltyRequest) (*ChainTx, error)
	ClaimRevenue(ctx context.Context, ipID common.Address) (*ClaimReceipt, error)
	GetClaimableRevenue(ctx context.Context, ipID, claimer common.Address) (*big.Int, error)
}

type MintLicenseRequest struct {
	LicenseTermsID  *big.Int
	LicensorIPID    common.Address
	Amount          uint64
	MaxMintingFee   *big.Int // wei
	MaxRevenueShare uint32   // percent
}

type PayRoyaltyRequest struct {
	ReceiverIPID common.Address
	// The zero address pays on behalf of an external wallet.
	PayerIPID common.Address
	Token     common.Address
	Amount    *big.Int // wei
}

type ChainTx struct {
	TxHash common.Hash
}

type ClaimReceipt struct {
	TxHash  common.Hash
	Claimed *big.Int // wei, per the claim event
}

// BlockchainService is an in-process stand-in for the royalty module. It
// keeps one revenue vault per IP asset: paying royalties credits the
// receiver's vault and claiming drains it. Transaction hashes are keccak
// digests of the call data.
type BlockchainService struct {
	config config.ChainConfig
	logger *logrus.Logger

	mu     sync.Mutex
	vaults map[common.Address]*big.Int
	nonce  uint64
}

func NewBlockchainService(cfg config.ChainConfig, logger *logrus.Logger) *BlockchainService {
	return &BlockchainService{
		config: cfg,
		logger: logger,
		vaults: make(map[common.Address]*big.Int),
	}
}

func (s *BlockchainService) MintLicense(ctx context.Context, req MintLicenseRequest) (*ChainTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.LicenseTermsID == nil || req.LicenseTermsID.Sign() <= 0 {
		return nil, errors.New("license terms id must be positive")
	}
	if req.LicensorIPID == (common.Address{}) {
		return nil, errors.New("licensor ip id is the zero address")
	}
	if req.MaxRevenueShare > 100 {
		return nil, errors.Newf("max revenue share %d exceeds 100", req.MaxRevenueShare)
	}

	hash := s.generateHash("mint_license_tokens", req.LicensorIPID.Bytes(), req.LicenseTermsID.Bytes())
	s.logger.WithFields(logrus.Fields{
		"ip_id":            req.LicensorIPID.Hex(),
		"license_terms_id": req.LicenseTermsID.String(),
		"tx_hash":          hash.Hex(),
	}).Debug("License tokens minted")

	return &ChainTx{TxHash: hash}, nil
}

func (s *BlockchainService) PayRoyalty(ctx context.Context, req PayRoyaltyRequest) (*ChainTx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.ReceiverIPID == (common.Address{}) {
		return nil, errors.New("receiver ip id is the zero address")
	}
	if req.Token != s.config.WIPTokenAddress() {
		return nil, errors.Newf("unsupported royalty token %s", req.Token.Hex())
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return nil, errors.New("royalty amount must be positive")
	}

	s.mu.Lock()
	vault, ok := s.vaults[req.ReceiverIPID]
	if !ok {
		vault = new(big.Int)
		s.vaults[req.ReceiverIPID] = vault
	}
	vault.Add(vault, req.Amount)
	s.mu.Unlock()

	hash := s.generateHash("pay_royalty_on_behalf", req.ReceiverIPID.Bytes(), req.PayerIPID.Bytes(), req.Amount.Bytes())
	s.logger.WithFields(logrus.Fields{
		"receiver_ip_id": req.ReceiverIPID.Hex(),
		"amount_wei":     req.Amount.String(),
		"tx_hash":        hash.Hex(),
	}).Debug("Royalty paid")

	return &ChainTx{TxHash: hash}, nil
}

func (s *BlockchainService) ClaimRevenue(ctx context.Context, ipID common.Address) (*ClaimReceipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ipID == (common.Address{}) {
		return nil, errors.New("ip id is the zero address")
	}

	s.mu.Lock()
	claimed := new(big.Int)
	if vault, ok := s.vaults[ipID]; ok {
		claimed.Set(vault)
		vault.SetInt64(0)
	}
	s.mu.Unlock()

	hash := s.generateHash("claim_all_revenue", ipID.Bytes(), claimed.Bytes())
	s.logger.WithFields(logrus.Fields{
		"ip_id":       ipID.Hex(),
		"claimed_wei": claimed.String(),
		"tx_hash":     hash.Hex(),
	}).Debug("Revenue claimed")

	return &ClaimReceipt{TxHash: hash, Claimed: claimed}, nil
}

func (s *BlockchainService) GetClaimableRevenue(ctx context.Context, ipID, claimer common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if vault, ok := s.vaults[ipID]; ok {
		return new(big.Int).Set(vault), nil
	}
	return new(big.Int), nil
}

func (s *BlockchainService) generateHash(method string, args ...[]byte) common.Hash {
	s.mu.Lock()
	s.nonce++
	nonce := s.nonce
	s.mu.Unlock()

	data := [][]byte{[]byte(method), []byte(fmt.Sprintf("%d:%d", nonce, time.Now().UnixNano()))}
	return crypto.Keccak256Hash(append(data, args...)...)
}
