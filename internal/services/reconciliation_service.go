// internal/services/reconciliation_service.go
package services

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/models"
)

// Refresher re-reads the ledger of a track after a workflow has written to it.
type Refresher interface {
	FetchAll(ctx context.Context, musicID uuid.UUID) error
}

// ReconciliationService runs the workflows that pair an irreversible chain
// transaction with a local ledger write. Each workflow validates, performs
// the chain step, records it, then refreshes. Nothing is retried: once a
// chain step succeeded a failed write is reported with the transaction hash
// and never repeated.
type ReconciliationService struct {
	repo   LedgerRepository
	chain  ChainGateway
	config config.ChainConfig
	logger *logrus.Logger
}

func NewReconciliationService(repo LedgerRepository, chain ChainGateway, cfg config.ChainConfig, logger *logrus.Logger) *ReconciliationService {
	return &ReconciliationService{
		repo:   repo,
		chain:  chain,
		config: cfg,
		logger: logger,
	}
}

type MintLicenseResult struct {
	Outcome
	License    *models.License `json:"license,omitempty"`
	RefreshErr error           `json:"-"`
}

type PayRoyaltyResult struct {
	Outcome
	Payment    *models.RoyaltyPayment `json:"payment,omitempty"`
	RefreshErr error                  `json:"-"`
}

type ClaimRevenueResult struct {
	Outcome
	Claim           *models.RoyaltyClaim `json:"claim,omitempty"`
	ClaimedPayments int                  `json:"claimed_payments"`
	RefreshErr      error                `json:"-"`
}

type TipResult struct {
	Outcome
	Tip        *models.Tip `json:"tip,omitempty"`
	RefreshErr error       `json:"-"`
}

type ClaimableRevenue struct {
	IPID     string          `json:"ip_id"`
	Claimer  string          `json:"claimer"`
	OnChain  decimal.Decimal `json:"onchain"`
	Tracked  decimal.Decimal `json:"tracked"`
	Payments int             `json:"unclaimed_payments"`
}

// MintLicense mints a license token for a registered track and records the
// license for licensorAccountID.
func (s *ReconciliationService) MintLicense(ctx context.Context, refresher Refresher, musicID, licensorAccountID uuid.UUID) (*MintLicenseResult, error) {
	log := s.logger.WithFields(logrus.Fields{"workflow": "mint_license", "music_id": musicID})
	result := &MintLicenseResult{}

	fail := func(err error) (*MintLicenseResult, error) {
		result.Outcome = aborted(err)
		log.WithError(err).Warn("Workflow aborted")
		return result, err
	}

	if licensorAccountID == uuid.Nil {
		return fail(invalid("account_id", "required"))
	}

	music, err := s.loadMusic(ctx, musicID)
	if err != nil {
		return fail(err)
	}
	if !music.IsRegistered() {
		return fail(precondition("music %s has no ip_id or license_id", musicID))
	}
	if err := s.ensureAccount(ctx, licensorAccountID); err != nil {
		return fail(err)
	}

	termsID, ok := new(big.Int).SetString(*music.LicenseTermsID, 10)
	if !ok {
		return fail(precondition("music %s has a malformed license_id %q", musicID, *music.LicenseTermsID))
	}
	ipID, err := ipAddress(music)
	if err != nil {
		return fail(err)
	}

	log.WithField("step", "chain").Info("Minting license tokens")
	tx, err := s.chain.MintLicense(ctx, MintLicenseRequest{
		LicenseTermsID:  termsID,
		LicensorIPID:    ipID,
		Amount:          1,
		MaxMintingFee:   ToWei(s.config.MaxMintingFee),
		MaxRevenueShare: uint32(s.config.MaxRevenueShare),
	})
	if err != nil {
		return fail(&ChainError{Op: "mint license", Err: err})
	}
	txHash := tx.TxHash.Hex()
	log = log.WithField("tx_hash", txHash)

	// The transaction is final; the write must not be cut short by the caller.
	persistCtx := context.WithoutCancel(ctx)

	license := &models.License{
		MusicID:           musicID,
		LicensorAccountID: licensorAccountID,
		TransactionHash:   txHash,
	}
	log.WithField("step", "persist").Info("Recording license")
	if err := s.repo.CreateLicense(persistCtx, license); err != nil {
		perr := &PersistenceError{Op: "license", TxHash: txHash, Err: err}
		result.Outcome = recordFailed(txHash, perr)
		log.WithError(err).Error("License minted on-chain but not recorded")
		return result, perr
	}

	result.Outcome = committed(txHash)
	result.License = license
	result.RefreshErr = s.refresh(ctx, log, refresher, musicID)
	return result, nil
}

// PayRoyalty pays amount WIP to the track's IP asset against one of its
// licenses and records the payment as unclaimed.
func (s *ReconciliationService) PayRoyalty(ctx context.Context, refresher Refresher, musicID, licenseID uuid.UUID, amount string) (*PayRoyaltyResult, error) {
	log := s.logger.WithFields(logrus.Fields{"workflow": "pay_royalty", "music_id": musicID, "license_id": licenseID})
	result := &PayRoyaltyResult{}

	fail := func(err error) (*PayRoyaltyResult, error) {
		result.Outcome = aborted(err)
		log.WithError(err).Warn("Workflow aborted")
		return result, err
	}

	value, err := ParseAmount("amount", amount)
	if err != nil {
		return fail(err)
	}

	music, err := s.loadMusic(ctx, musicID)
	if err != nil {
		return fail(err)
	}
	ipID, err := ipAddress(music)
	if err != nil {
		return fail(err)
	}

	license, err := s.repo.GetLicense(ctx, licenseID)
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && license.MusicID != musicID) {
		return fail(notFound("license", licenseID.String()))
	}
	if err != nil {
		return fail(&LookupError{Op: "license", Err: err})
	}

	log.WithFields(logrus.Fields{"step": "chain", "amount": value.String()}).Info("Paying royalty")
	tx, err := s.chain.PayRoyalty(ctx, PayRoyaltyRequest{
		ReceiverIPID: ipID,
		PayerIPID:    common.Address{},
		Token:        s.config.WIPTokenAddress(),
		Amount:       ToWei(value),
	})
	if err != nil {
		return fail(&ChainError{Op: "pay royalty", Err: err})
	}
	txHash := tx.TxHash.Hex()
	log = log.WithField("tx_hash", txHash)

	persistCtx := context.WithoutCancel(ctx)

	payment := &models.RoyaltyPayment{
		MusicID:         musicID,
		LicenseID:       licenseID,
		Amount:          models.NewAmount(value),
		IsClaimed:       false,
		TransactionHash: txHash,
	}
	log.WithField("step", "persist").Info("Recording royalty payment")
	if err := s.repo.CreateRoyaltyPayment(persistCtx, payment); err != nil {
		perr := &PersistenceError{Op: "royalty payment", TxHash: txHash, Err: err}
		result.Outcome = recordFailed(txHash, perr)
		log.WithError(err).Error("Royalty paid on-chain but not recorded")
		return result, perr
	}

	result.Outcome = committed(txHash)
	result.Payment = payment
	result.RefreshErr = s.refresh(ctx, log, refresher, musicID)
	return result, nil
}

// ClaimRevenue claims the IP asset's revenue on-chain, then records a claim
// for the owner's share of every unclaimed payment and marks those payments
// claimed.
func (s *ReconciliationService) ClaimRevenue(ctx context.Context, refresher Refresher, musicID uuid.UUID, ipID string) (*ClaimRevenueResult, error) {
	log := s.logger.WithFields(logrus.Fields{"workflow": "claim_revenue", "music_id": musicID, "ip_id": ipID})
	result := &ClaimRevenueResult{}

	fail := func(err error) (*ClaimRevenueResult, error) {
		result.Outcome = aborted(err)
		log.WithError(err).Warn("Workflow aborted")
		return result, err
	}

	if !common.IsHexAddress(ipID) {
		return fail(invalid("ip_id", "not a hex address"))
	}

	music, err := s.loadMusic(ctx, musicID)
	if err != nil {
		return fail(err)
	}
	if music.IPID == nil || *music.IPID == "" {
		return fail(precondition("music %s has no ip_id", musicID))
	}
	if !strings.EqualFold(*music.IPID, ipID) {
		return fail(precondition("ip_id %s does not belong to music %s", ipID, musicID))
	}

	log.WithField("step", "chain").Info("Claiming revenue")
	receipt, err := s.chain.ClaimRevenue(ctx, common.HexToAddress(ipID))
	if err != nil {
		return fail(&ChainError{Op: "claim revenue", Err: err})
	}
	txHash := receipt.TxHash.Hex()
	log = log.WithField("tx_hash", txHash)

	persistCtx := context.WithoutCancel(ctx)
	recordErr := func(op string, err error) (*ClaimRevenueResult, error) {
		perr := &PersistenceError{Op: op, TxHash: txHash, Err: err}
		result.Outcome = recordFailed(txHash, perr)
		log.WithError(err).Error("Revenue claimed on-chain but not recorded")
		return result, perr
	}

	unclaimed, err := s.repo.ListUnclaimedPayments(persistCtx, musicID)
	if err != nil {
		return recordErr("unclaimed payments lookup", err)
	}

	total := Claimable(paymentAmounts(unclaimed), music.Pricing.Royalty)
	onChain := FromWei(receipt.Claimed)
	if !total.Equal(onChain) {
		log.WithFields(logrus.Fields{
			"tracked":  total.String(),
			"onchain":  onChain.String(),
			"payments": len(unclaimed),
		}).Warn("Tracked claim amount differs from on-chain claim")
	}

	claim := &models.RoyaltyClaim{
		MusicID:         musicID,
		Amount:          models.NewAmount(total),
		OnChainAmount:   models.NewAmount(onChain),
		Status:          models.ClaimStatusClaimed,
		TransactionHash: txHash,
		ClaimedAt:       time.Now(),
	}
	paymentIDs := lo.Map(unclaimed, func(p models.RoyaltyPayment, _ int) uuid.UUID { return p.ID })

	log.WithFields(logrus.Fields{"step": "persist", "amount": total.String()}).Info("Recording royalty claim")
	if err := s.repo.RecordClaim(persistCtx, claim, paymentIDs); err != nil {
		return recordErr("royalty claim", err)
	}

	result.Outcome = committed(txHash)
	result.Claim = claim
	result.ClaimedPayments = len(paymentIDs)
	result.RefreshErr = s.refresh(ctx, log, refresher, musicID)
	return result, nil
}

// Tip sends amount WIP to the track's IP asset from accountID. The creator
// must allow tips.
func (s *ReconciliationService) Tip(ctx context.Context, refresher Refresher, musicID, accountID uuid.UUID, amount string) (*TipResult, error) {
	log := s.logger.WithFields(logrus.Fields{"workflow": "tip", "music_id": musicID})
	result := &TipResult{}

	fail := func(err error) (*TipResult, error) {
		result.Outcome = aborted(err)
		log.WithError(err).Warn("Workflow aborted")
		return result, err
	}

	if accountID == uuid.Nil {
		return fail(invalid("account_id", "required"))
	}
	value, err := ParseAmount("amount", amount)
	if err != nil {
		return fail(err)
	}

	music, err := s.loadMusic(ctx, musicID)
	if err != nil {
		return fail(err)
	}
	if !music.Rights.AllowTips {
		return fail(precondition("music %s does not accept tips", musicID))
	}
	ipID, err := ipAddress(music)
	if err != nil {
		return fail(err)
	}
	if err := s.ensureAccount(ctx, accountID); err != nil {
		return fail(err)
	}

	log.WithFields(logrus.Fields{"step": "chain", "amount": value.String()}).Info("Sending tip")
	tx, err := s.chain.PayRoyalty(ctx, PayRoyaltyRequest{
		ReceiverIPID: ipID,
		PayerIPID:    common.Address{},
		Token:        s.config.WIPTokenAddress(),
		Amount:       ToWei(value),
	})
	if err != nil {
		return fail(&ChainError{Op: "tip", Err: err})
	}
	txHash := tx.TxHash.Hex()
	log = log.WithField("tx_hash", txHash)

	tip := &models.Tip{
		MusicID:         musicID,
		AccountID:       accountID,
		Amount:          models.NewAmount(value),
		TransactionHash: txHash,
	}
	log.WithField("step", "persist").Info("Recording tip")
	if err := s.repo.CreateTip(context.WithoutCancel(ctx), tip); err != nil {
		perr := &PersistenceError{Op: "tip", TxHash: txHash, Err: err}
		result.Outcome = recordFailed(txHash, perr)
		log.WithError(err).Error("Tip sent on-chain but not recorded")
		return result, perr
	}

	result.Outcome = committed(txHash)
	result.Tip = tip
	result.RefreshErr = s.refresh(ctx, log, refresher, musicID)
	return result, nil
}

// GetClaimableRevenue reads the revenue the chain would pay out next to the
// amount the local ledger expects. claimer defaults to the IP asset itself.
func (s *ReconciliationService) GetClaimableRevenue(ctx context.Context, musicID uuid.UUID, claimer string) (*ClaimableRevenue, error) {
	music, err := s.loadMusic(ctx, musicID)
	if err != nil {
		return nil, err
	}
	ipID, err := ipAddress(music)
	if err != nil {
		return nil, err
	}

	claimerAddr := ipID
	if claimer != "" {
		if !common.IsHexAddress(claimer) {
			return nil, invalid("claimer", "not a hex address")
		}
		claimerAddr = common.HexToAddress(claimer)
	}

	wei, err := s.chain.GetClaimableRevenue(ctx, ipID, claimerAddr)
	if err != nil {
		return nil, &ChainError{Op: "claimable revenue", Err: err}
	}

	unclaimed, err := s.repo.ListUnclaimedPayments(ctx, musicID)
	if err != nil {
		return nil, &LookupError{Op: "unclaimed payments", Err: err}
	}

	return &ClaimableRevenue{
		IPID:     ipID.Hex(),
		Claimer:  claimerAddr.Hex(),
		OnChain:  FromWei(wei),
		Tracked:  Claimable(paymentAmounts(unclaimed), music.Pricing.Royalty),
		Payments: len(unclaimed),
	}, nil
}

func (s *ReconciliationService) loadMusic(ctx context.Context, musicID uuid.UUID) (*models.Music, error) {
	if musicID == uuid.Nil {
		return nil, invalid("music_id", "required")
	}
	music, err := s.repo.GetMusic(ctx, musicID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("music", musicID.String())
	}
	if err != nil {
		return nil, &LookupError{Op: "music", Err: err}
	}
	return music, nil
}

func (s *ReconciliationService) ensureAccount(ctx context.Context, accountID uuid.UUID) error {
	_, err := s.repo.GetAccount(ctx, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("account", accountID.String())
	}
	if err != nil {
		return &LookupError{Op: "account", Err: err}
	}
	return nil
}

func (s *ReconciliationService) refresh(ctx context.Context, log *logrus.Entry, refresher Refresher, musicID uuid.UUID) error {
	if refresher == nil {
		return nil
	}
	if err := refresher.FetchAll(ctx, musicID); err != nil {
		log.WithError(err).Warn("Ledger refresh failed after committed workflow")
		return &RefreshError{MusicID: musicID.String(), Err: err}
	}
	return nil
}

func ipAddress(music *models.Music) (common.Address, error) {
	if music.IPID == nil || *music.IPID == "" {
		return common.Address{}, precondition("music %s has no ip_id", music.ID)
	}
	if !common.IsHexAddress(*music.IPID) {
		return common.Address{}, precondition("music %s has a malformed ip_id %q", music.ID, *music.IPID)
	}
	return common.HexToAddress(*music.IPID), nil
}
