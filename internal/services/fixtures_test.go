// internal/services/fixtures_test.go
package services_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/database"
	"github.com/javajoker/royalty-ledger/internal/models"
	"github.com/javajoker/royalty-ledger/internal/services"
)

var errInjected = errors.New("injected failure")

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close(db) })
	return db
}

func createAccount(t *testing.T, db *gorm.DB, username string) *models.Account {
	t.Helper()
	wallet := common.BytesToAddress(crypto.Keccak256([]byte(username))).Hex()
	account := &models.Account{
		Username:      username,
		Name:          username,
		WalletAddress: models.NormalizeWallet(wallet),
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

type trackOption func(*models.Music)

func unregistered() trackOption {
	return func(m *models.Music) {
		m.IPID = nil
		m.LicenseTermsID = nil
		m.Status = models.MusicStatusPending
	}
}

func withRoyalty(percent string) trackOption {
	return func(m *models.Music) {
		m.Pricing.Royalty = decimal.RequireFromString(percent)
	}
}

func withoutTips() trackOption {
	return func(m *models.Music) {
		m.Rights.AllowTips = false
	}
}

func createTrack(t *testing.T, db *gorm.DB, owner *models.Account, opts ...trackOption) *models.Music {
	t.Helper()
	id := uuid.New()
	ipID := strings.ToLower(common.BytesToAddress(id[:]).Hex())
	termsID := "1"
	music := &models.Music{
		BaseModel:      models.BaseModel{ID: id},
		AccountID:      owner.ID,
		Title:          "Track " + id.String()[:8],
		AudioIPFSCID:   "bafyaudio",
		ImageIPFSCID:   "bafyimage",
		IPID:           &ipID,
		LicenseTermsID: &termsID,
		Status:         models.MusicStatusSuccess,
		Rights:         models.Rights{AllowTips: true, AllowCommercial: true},
		Pricing: models.Pricing{
			Price:   decimal.RequireFromString("0.1"),
			Royalty: decimal.RequireFromString("10"),
		},
	}
	for _, opt := range opts {
		opt(music)
	}
	require.NoError(t, db.Create(music).Error)
	return music
}

func createPayment(t *testing.T, db *gorm.DB, music *models.Music, license *models.License, amount string) *models.RoyaltyPayment {
	t.Helper()
	payment := &models.RoyaltyPayment{
		MusicID:         music.ID,
		LicenseID:       license.ID,
		Amount:          models.NewAmount(decimal.RequireFromString(amount)),
		TransactionHash: "0xpayment",
	}
	require.NoError(t, db.Create(payment).Error)
	return payment
}

func createLicense(t *testing.T, db *gorm.DB, music *models.Music, licensor *models.Account) *models.License {
	t.Helper()
	license := &models.License{
		MusicID:           music.ID,
		LicensorAccountID: licensor.ID,
		TransactionHash:   "0xlicense",
	}
	require.NoError(t, db.Create(license).Error)
	return license
}

// fakeChain records every call and fails on demand.
type fakeChain struct {
	mu sync.Mutex

	mintCalls      int
	payCalls       int
	claimCalls     int
	claimableCalls int

	lastMint  services.MintLicenseRequest
	lastPay   services.PayRoyaltyRequest
	lastClaim common.Address

	err       error
	claimed   *big.Int
	claimable *big.Int
}

func newFakeChain() *fakeChain {
	return &fakeChain{claimed: new(big.Int), claimable: new(big.Int)}
}

func (f *fakeChain) hash(kind string, n int) common.Hash {
	return crypto.Keccak256Hash([]byte(fmt.Sprintf("%s-%d", kind, n)))
}

func (f *fakeChain) MintLicense(ctx context.Context, req services.MintLicenseRequest) (*services.ChainTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mintCalls++
	f.lastMint = req
	if f.err != nil {
		return nil, f.err
	}
	return &services.ChainTx{TxHash: f.hash("mint", f.mintCalls)}, nil
}

func (f *fakeChain) PayRoyalty(ctx context.Context, req services.PayRoyaltyRequest) (*services.ChainTx, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payCalls++
	f.lastPay = req
	if f.err != nil {
		return nil, f.err
	}
	return &services.ChainTx{TxHash: f.hash("pay", f.payCalls)}, nil
}

func (f *fakeChain) ClaimRevenue(ctx context.Context, ipID common.Address) (*services.ClaimReceipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimCalls++
	f.lastClaim = ipID
	if f.err != nil {
		return nil, f.err
	}
	return &services.ClaimReceipt{TxHash: f.hash("claim", f.claimCalls), Claimed: f.claimed}, nil
}

func (f *fakeChain) GetClaimableRevenue(ctx context.Context, ipID, claimer common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claimableCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.claimable, nil
}

// faultyRepo wraps a real repository and fails selected operations.
type faultyRepo struct {
	services.LedgerRepository

	failReads    bool
	failWrites   bool
	failLicenses bool
	failPayments bool
	failClaims   bool
}

func (r *faultyRepo) GetMusic(ctx context.Context, musicID uuid.UUID) (*models.Music, error) {
	if r.failReads {
		return nil, errInjected
	}
	return r.LedgerRepository.GetMusic(ctx, musicID)
}

func (r *faultyRepo) CreateLicense(ctx context.Context, license *models.License) error {
	if r.failWrites {
		return errInjected
	}
	return r.LedgerRepository.CreateLicense(ctx, license)
}

func (r *faultyRepo) CreateRoyaltyPayment(ctx context.Context, payment *models.RoyaltyPayment) error {
	if r.failWrites {
		return errInjected
	}
	return r.LedgerRepository.CreateRoyaltyPayment(ctx, payment)
}

func (r *faultyRepo) CreateTip(ctx context.Context, tip *models.Tip) error {
	if r.failWrites {
		return errInjected
	}
	return r.LedgerRepository.CreateTip(ctx, tip)
}

func (r *faultyRepo) RecordClaim(ctx context.Context, claim *models.RoyaltyClaim, paymentIDs []uuid.UUID) error {
	if r.failWrites {
		return errInjected
	}
	return r.LedgerRepository.RecordClaim(ctx, claim, paymentIDs)
}

func (r *faultyRepo) ListLicenses(ctx context.Context, musicID uuid.UUID) ([]models.LicenseWithRelations, error) {
	if r.failLicenses {
		return nil, errInjected
	}
	return r.LedgerRepository.ListLicenses(ctx, musicID)
}

func (r *faultyRepo) ListRoyaltyPayments(ctx context.Context, musicID uuid.UUID) ([]models.PaymentWithRelations, error) {
	if r.failPayments {
		return nil, errInjected
	}
	return r.LedgerRepository.ListRoyaltyPayments(ctx, musicID)
}

func (r *faultyRepo) ListRoyaltyClaims(ctx context.Context, musicID uuid.UUID) ([]models.ClaimWithRelations, error) {
	if r.failClaims {
		return nil, errInjected
	}
	return r.LedgerRepository.ListRoyaltyClaims(ctx, musicID)
}

type failingRefresher struct {
	calls int
}

func (r *failingRefresher) FetchAll(ctx context.Context, musicID uuid.UUID) error {
	r.calls++
	return errInjected
}
