// internal/models/license.go
package models

import (
	"github.com/google/uuid"
)

// License records one successful on-chain license mint. Rows are insert-only.
type License struct {
	BaseModel
	MusicID           uuid.UUID `json:"music_id" gorm:"type:uuid;not null;index"`
	LicensorAccountID uuid.UUID `json:"licensor_account_id" gorm:"type:uuid;not null;index"`
	TransactionHash   string    `json:"transaction_hash" gorm:"size:66;not null"`
}

// LicenseWithRelations is the shape returned by the ledger's license query:
// license -> music -> account and license -> licensor account.
type LicenseWithRelations struct {
	License

	// Relationships
	Music    *Music   `json:"music,omitempty" gorm:"foreignKey:MusicID"`
	Licensor *Account `json:"licensor,omitempty" gorm:"foreignKey:LicensorAccountID"`
}

func (LicenseWithRelations) TableName() string {
	return "licenses"
}
