// internal/models/royalty.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// RoyaltyPayment is a royalty paid against a license. IsClaimed only ever
// moves from false to true.
type RoyaltyPayment struct {
	BaseModel
	MusicID         uuid.UUID `json:"music_id" gorm:"type:uuid;not null;index"`
	LicenseID       uuid.UUID `json:"license_id" gorm:"type:uuid;not null;index"`
	Amount          Amount    `json:"amount" gorm:"not null"`
	IsClaimed       bool      `json:"is_claimed" gorm:"not null;index"`
	TransactionHash string    `json:"transaction_hash" gorm:"size:66"`
}

// PaymentWithRelations follows royalty_payment -> license -> licensor account.
type PaymentWithRelations struct {
	RoyaltyPayment

	// Relationships
	License *LicenseWithRelations `json:"license,omitempty" gorm:"foreignKey:LicenseID"`
}

func (PaymentWithRelations) TableName() string {
	return "royalty_payments"
}

// RoyaltyClaim is immutable once written. Amount is the locally tracked
// total; OnChainAmount is what the claim transaction actually reported.
type RoyaltyClaim struct {
	BaseModel
	MusicID         uuid.UUID   `json:"music_id" gorm:"type:uuid;not null;index"`
	Amount          Amount      `json:"amount" gorm:"not null"`
	OnChainAmount   Amount      `json:"onchain_amount" gorm:"not null"`
	Status          ClaimStatus `json:"status" gorm:"type:varchar(20);not null"`
	TransactionHash string      `json:"transaction_hash" gorm:"size:66"`
	ClaimedAt       time.Time   `json:"claimed_at"`
}

type ClaimWithRelations struct {
	RoyaltyClaim

	// Relationships
	Music *Music `json:"music,omitempty" gorm:"foreignKey:MusicID"`
}

func (ClaimWithRelations) TableName() string {
	return "royalty_claims"
}

type Tip struct {
	BaseModel
	MusicID         uuid.UUID `json:"music_id" gorm:"type:uuid;not null;index"`
	AccountID       uuid.UUID `json:"account_id" gorm:"type:uuid;not null;index"`
	Amount          Amount    `json:"tip_amount" gorm:"not null"`
	TransactionHash string    `json:"transaction_hash,omitempty" gorm:"size:66"`
}

type TipWithAccount struct {
	Tip

	// Relationships
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (TipWithAccount) TableName() string {
	return "tips"
}
