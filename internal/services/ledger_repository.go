// internal/services/ledger_repository.go
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/javajoker/royalty-ledger/internal/models"
)

// LedgerRepository is the persistence side of the ledger. Missing rows are
// reported as gorm.ErrRecordNotFound.
type LedgerRepository interface {
	GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error)
	GetMusic(ctx context.Context, musicID uuid.UUID) (*models.Music, error)
	GetLicense(ctx context.Context, licenseID uuid.UUID) (*models.License, error)

	CreateLicense(ctx context.Context, license *models.License) error
	CreateRoyaltyPayment(ctx context.Context, payment *models.RoyaltyPayment) error
	CreateTip(ctx context.Context, tip *models.Tip) error

	// ListUnclaimedPayments returns the royalty payments of a track that
	// have not been claimed yet.
	ListUnclaimedPayments(ctx context.Context, musicID uuid.UUID) ([]models.RoyaltyPayment, error)

	// RecordClaim inserts the claim and marks exactly paymentIDs as claimed
	// in one transaction. If any of them was already claimed nothing is
	// written.
	RecordClaim(ctx context.Context, claim *models.RoyaltyClaim, paymentIDs []uuid.UUID) error

	ListLicenses(ctx context.Context, musicID uuid.UUID) ([]models.LicenseWithRelations, error)
	ListRoyaltyPayments(ctx context.Context, musicID uuid.UUID) ([]models.PaymentWithRelations, error)
	ListRoyaltyClaims(ctx context.Context, musicID uuid.UUID) ([]models.ClaimWithRelations, error)
	ListTips(ctx context.Context, musicID uuid.UUID) ([]models.TipWithAccount, error)
	ListAccountTips(ctx context.Context, accountID uuid.UUID) ([]models.TipWithAccount, error)
}
