// internal/services/music_service.go
package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/models"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

const (
	defaultPrice        = "0.1"
	defaultRoyalty      = "10"
	defaultLicenseLabel = "non-commercial"
	defaultMediaType    = "audio/mpeg"
)

type MusicService struct {
	db     *gorm.DB
	ledger LedgerRepository
}

type RightsRequest struct {
	AllowTips       *bool `json:"allowTips,omitempty"`
	AllowCommercial *bool `json:"allowCommercial,omitempty"`
	AllowRemixing   *bool `json:"allowRemixing,omitempty"`
}

type PricingRequest struct {
	Price   string `json:"price,omitempty" validate:"omitempty,decimal_amount"`
	Royalty string `json:"royalty,omitempty" validate:"omitempty,royalty_percent"`
}

// RegisterTrackRequest describes a track whose media is already pinned.
// The IP asset fields are set when the client registered it on-chain during
// upload; otherwise they can be attached later with AttachIPAsset.
type RegisterTrackRequest struct {
	Title           string             `json:"title" validate:"required,max=255"`
	Description     string             `json:"description,omitempty"`
	ImageIPFSCID    string             `json:"image_ipfs_cid" validate:"required,max=100"`
	AudioIPFSCID    string             `json:"audio_ipfs_cid" validate:"required,max=100"`
	MetadataIPFSCID string             `json:"metadata_ipfs_cid,omitempty" validate:"max=100"`
	MediaType       string             `json:"media_type,omitempty" validate:"max=20"`
	Genre           string             `json:"genre,omitempty" validate:"max=50"`
	Duration        int                `json:"duration,omitempty" validate:"min=0"`
	License         string             `json:"license,omitempty" validate:"max=50"`
	ExternalURL     string             `json:"external_url,omitempty" validate:"omitempty,url"`
	IPID            string             `json:"ip_id,omitempty" validate:"omitempty,eth_address"`
	LicenseTermsID  string             `json:"license_id,omitempty" validate:"omitempty,license_terms"`
	TransactionHash string             `json:"transaction_hash,omitempty" validate:"omitempty,len=66"`
	Status          models.MusicStatus `json:"status,omitempty" validate:"omitempty,oneof=pending success failed"`
	Rights          *RightsRequest     `json:"rights,omitempty"`
	Pricing         *PricingRequest    `json:"pricing,omitempty"`
}

type AttachIPAssetRequest struct {
	IPID            string `json:"ip_id" validate:"required,eth_address"`
	LicenseTermsID  string `json:"license_id" validate:"required,license_terms"`
	TransactionHash string `json:"transaction_hash,omitempty" validate:"omitempty,len=66"`
}

type LikeStatus struct {
	Liked bool  `json:"liked"`
	Likes int64 `json:"likes"`
}

func NewMusicService(db *gorm.DB, ledger LedgerRepository) *MusicService {
	return &MusicService{
		db:     db,
		ledger: ledger,
	}
}

func (s *MusicService) RegisterTrack(ctx context.Context, accountID uuid.UUID, req *RegisterTrackRequest) (*models.Music, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if (req.IPID == "") != (req.LicenseTermsID == "") {
		return nil, invalid("ip_id", "ip_id and license_id must be set together")
	}

	var owner models.Account
	if err := s.db.WithContext(ctx).First(&owner, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("account", accountID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	music := &models.Music{
		AccountID:       accountID,
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		ImageIPFSCID:    req.ImageIPFSCID,
		AudioIPFSCID:    req.AudioIPFSCID,
		MetadataIPFSCID: req.MetadataIPFSCID,
		MediaType:       firstNonEmpty(req.MediaType, defaultMediaType),
		Genre:           req.Genre,
		Duration:        req.Duration,
		License:         firstNonEmpty(req.License, defaultLicenseLabel),
		ExternalURL:     req.ExternalURL,
		TransactionHash: req.TransactionHash,
		Status:          req.Status,
		Rights:          buildRights(req.Rights),
		Pricing:         buildPricing(req.Pricing),
	}

	if req.IPID != "" {
		ipID := models.NormalizeWallet(req.IPID)
		termsID := canonicalTermsID(req.LicenseTermsID)
		music.IPID = &ipID
		music.LicenseTermsID = &termsID
	}
	if music.Status == "" {
		music.Status = models.MusicStatusPending
		if music.IsRegistered() {
			music.Status = models.MusicStatusSuccess
		}
	}

	if err := s.db.WithContext(ctx).Create(music).Error; err != nil {
		return nil, fmt.Errorf("failed to register music: %w", err)
	}

	music.Account = &owner
	return music, nil
}

// AttachIPAsset sets the on-chain identifiers of a track. They can only be
// set once.
func (s *MusicService) AttachIPAsset(ctx context.Context, accountID, musicID uuid.UUID, req *AttachIPAssetRequest) (*models.Music, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	music, err := s.GetTrack(ctx, musicID)
	if err != nil {
		return nil, err
	}
	if music.AccountID != accountID {
		return nil, errors.WithStack(&ForbiddenError{Reason: "only the owner can attach an IP asset"})
	}

	updates := map[string]interface{}{
		"ip_id":      models.NormalizeWallet(req.IPID),
		"license_id": canonicalTermsID(req.LicenseTermsID),
		"status":     models.MusicStatusSuccess,
	}
	if req.TransactionHash != "" {
		updates["transaction_hash"] = req.TransactionHash
	}

	result := s.db.WithContext(ctx).Model(&models.Music{}).
		Where("id = ? AND (ip_id IS NULL OR ip_id = '')", musicID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to attach IP asset: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, precondition("music %s already has an IP asset", musicID)
	}

	return s.GetTrack(ctx, musicID)
}

func (s *MusicService) GetTrack(ctx context.Context, musicID uuid.UUID) (*models.Music, error) {
	var music models.Music
	if err := s.db.WithContext(ctx).Preload("Account").First(&music, "id = ?", musicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("music", musicID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &music, nil
}

// ListTracks is the discover feed: newest tracks first.
func (s *MusicService) ListTracks(ctx context.Context, params utils.PaginationParams) (*utils.PaginationResult, error) {
	return s.listTracks(ctx, s.db.WithContext(ctx).Model(&models.Music{}), params)
}

func (s *MusicService) ListAccountTracks(ctx context.Context, accountID uuid.UUID, params utils.PaginationParams) (*utils.PaginationResult, error) {
	query := s.db.WithContext(ctx).Model(&models.Music{}).Where("account_id = ?", accountID)
	return s.listTracks(ctx, query, params)
}

func (s *MusicService) listTracks(ctx context.Context, query *gorm.DB, params utils.PaginationParams) (*utils.PaginationResult, error) {
	if params.Genre != "" {
		query = query.Where("genre = ?", params.Genre)
	}
	if params.Search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+strings.ToLower(params.Search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count music: %w", err)
	}

	var tracks []models.Music
	query = utils.ApplySort(query, params, []string{"created_at", "title", "duration"})
	if err := utils.ApplyPagination(query, params).Preload("Account").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to list music: %w", err)
	}

	result := utils.CreatePaginationResult(tracks, total, params)
	return &result, nil
}

func (s *MusicService) ListTips(ctx context.Context, musicID uuid.UUID) ([]models.TipWithAccount, error) {
	if _, err := s.GetTrack(ctx, musicID); err != nil {
		return nil, err
	}
	tips, err := s.ledger.ListTips(ctx, musicID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tips: %w", err)
	}
	return tips, nil
}

// ListAccountTips returns the tips sent by an account, newest first.
func (s *MusicService) ListAccountTips(ctx context.Context, accountID uuid.UUID) ([]models.TipWithAccount, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("account", accountID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	tips, err := s.ledger.ListAccountTips(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account tips: %w", err)
	}
	return tips, nil
}

// ToggleLike likes the track for the account, or removes the like if it
// already exists.
func (s *MusicService) ToggleLike(ctx context.Context, musicID, accountID uuid.UUID) (*LikeStatus, error) {
	if _, err := s.GetTrack(ctx, musicID); err != nil {
		return nil, err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("music_id = ? AND account_id = ? AND action_type = ?", musicID, accountID, models.MusicActionLike).
			Delete(&models.MusicAction{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
		return tx.Create(&models.MusicAction{
			MusicID:    musicID,
			AccountID:  accountID,
			ActionType: models.MusicActionLike,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to toggle like: %w", err)
	}

	return s.LikeStatus(ctx, musicID, accountID)
}

// LikeStatus reports the like count of a track and whether accountID likes
// it. A nil accountID only counts.
func (s *MusicService) LikeStatus(ctx context.Context, musicID, accountID uuid.UUID) (*LikeStatus, error) {
	status := &LikeStatus{}
	likes := s.db.WithContext(ctx).Model(&models.MusicAction{}).
		Where("music_id = ? AND action_type = ?", musicID, models.MusicActionLike)

	if err := likes.Count(&status.Likes).Error; err != nil {
		return nil, fmt.Errorf("failed to count likes: %w", err)
	}

	if accountID != uuid.Nil {
		var mine int64
		if err := s.db.WithContext(ctx).Model(&models.MusicAction{}).
			Where("music_id = ? AND account_id = ? AND action_type = ?", musicID, accountID, models.MusicActionLike).
			Count(&mine).Error; err != nil {
			return nil, fmt.Errorf("failed to read like: %w", err)
		}
		status.Liked = mine > 0
	}

	return status, nil
}

func buildRights(req *RightsRequest) models.Rights {
	rights := models.Rights{AllowTips: true, AllowCommercial: true, AllowRemixing: false}
	if req == nil {
		return rights
	}
	if req.AllowTips != nil {
		rights.AllowTips = *req.AllowTips
	}
	if req.AllowCommercial != nil {
		rights.AllowCommercial = *req.AllowCommercial
	}
	if req.AllowRemixing != nil {
		rights.AllowRemixing = *req.AllowRemixing
	}
	return rights
}

// Values were checked by the request validator.
func buildPricing(req *PricingRequest) models.Pricing {
	pricing := models.Pricing{
		Price:   decimal.RequireFromString(defaultPrice),
		Royalty: decimal.RequireFromString(defaultRoyalty),
	}
	if req == nil {
		return pricing
	}
	if req.Price != "" {
		pricing.Price = decimal.RequireFromString(req.Price)
	}
	if req.Royalty != "" {
		pricing.Royalty = decimal.RequireFromString(req.Royalty)
	}
	return pricing
}

func canonicalTermsID(raw string) string {
	if n, ok := new(big.Int).SetString(raw, 10); ok {
		return n.String()
	}
	return raw
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
