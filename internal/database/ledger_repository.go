// internal/database/ledger_repository.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/models"
)

// ErrClaimConflict means some of the payments being claimed were claimed by
// someone else in the meantime.
var ErrClaimConflict = errors.New("royalty payments already claimed")

const newestFirst = "created_at DESC, id DESC"

type LedgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := r.db.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *LedgerRepository) GetMusic(ctx context.Context, musicID uuid.UUID) (*models.Music, error) {
	var music models.Music
	if err := r.db.WithContext(ctx).Preload("Account").First(&music, "id = ?", musicID).Error; err != nil {
		return nil, err
	}
	return &music, nil
}

func (r *LedgerRepository) GetLicense(ctx context.Context, licenseID uuid.UUID) (*models.License, error) {
	var license models.License
	if err := r.db.WithContext(ctx).First(&license, "id = ?", licenseID).Error; err != nil {
		return nil, err
	}
	return &license, nil
}

func (r *LedgerRepository) CreateLicense(ctx context.Context, license *models.License) error {
	return r.db.WithContext(ctx).Create(license).Error
}

func (r *LedgerRepository) CreateRoyaltyPayment(ctx context.Context, payment *models.RoyaltyPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *LedgerRepository) CreateTip(ctx context.Context, tip *models.Tip) error {
	return r.db.WithContext(ctx).Create(tip).Error
}

func (r *LedgerRepository) ListUnclaimedPayments(ctx context.Context, musicID uuid.UUID) ([]models.RoyaltyPayment, error) {
	var payments []models.RoyaltyPayment
	err := r.db.WithContext(ctx).
		Where("music_id = ? AND is_claimed = ?", musicID, false).
		Order(newestFirst).
		Find(&payments).Error
	return payments, err
}

func (r *LedgerRepository) RecordClaim(ctx context.Context, claim *models.RoyaltyClaim, paymentIDs []uuid.UUID) error {
	return WithTransaction(r.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Create(claim).Error; err != nil {
			return fmt.Errorf("failed to insert royalty claim: %w", err)
		}

		if len(paymentIDs) == 0 {
			return nil
		}

		result := tx.Model(&models.RoyaltyPayment{}).
			Where("id IN ? AND music_id = ? AND is_claimed = ?", paymentIDs, claim.MusicID, false).
			Update("is_claimed", true)
		if result.Error != nil {
			return fmt.Errorf("failed to mark royalty payments claimed: %w", result.Error)
		}
		if result.RowsAffected != int64(len(paymentIDs)) {
			return fmt.Errorf("%w: flipped %d of %d", ErrClaimConflict, result.RowsAffected, len(paymentIDs))
		}
		return nil
	})
}

func (r *LedgerRepository) ListLicenses(ctx context.Context, musicID uuid.UUID) ([]models.LicenseWithRelations, error) {
	var licenses []models.LicenseWithRelations
	err := r.db.WithContext(ctx).
		Preload("Music.Account").
		Preload("Licensor").
		Where("music_id = ?", musicID).
		Order(newestFirst).
		Find(&licenses).Error
	return licenses, err
}

func (r *LedgerRepository) ListRoyaltyPayments(ctx context.Context, musicID uuid.UUID) ([]models.PaymentWithRelations, error) {
	var payments []models.PaymentWithRelations
	err := r.db.WithContext(ctx).
		Preload("License.Licensor").
		Where("music_id = ?", musicID).
		Order(newestFirst).
		Find(&payments).Error
	return payments, err
}

func (r *LedgerRepository) ListRoyaltyClaims(ctx context.Context, musicID uuid.UUID) ([]models.ClaimWithRelations, error) {
	var claims []models.ClaimWithRelations
	err := r.db.WithContext(ctx).
		Preload("Music.Account").
		Where("music_id = ?", musicID).
		Order(newestFirst).
		Find(&claims).Error
	return claims, err
}

func (r *LedgerRepository) ListTips(ctx context.Context, musicID uuid.UUID) ([]models.TipWithAccount, error) {
	var tips []models.TipWithAccount
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("music_id = ?", musicID).
		Order(newestFirst).
		Find(&tips).Error
	return tips, err
}

// ListAccountTips returns the tips an account has sent, newest first.
func (r *LedgerRepository) ListAccountTips(ctx context.Context, accountID uuid.UUID) ([]models.TipWithAccount, error) {
	var tips []models.TipWithAccount
	err := r.db.WithContext(ctx).
		Preload("Account").
		Where("account_id = ?", accountID).
		Order(newestFirst).
		Find(&tips).Error
	return tips, err
}
