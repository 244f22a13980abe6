// internal/models/music.go
package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Pricing terms set at registration. Royalty is a percentage in [0, 100].
type Pricing struct {
	Price   decimal.Decimal `json:"price" gorm:"type:decimal(36,18);not null"`
	Royalty decimal.Decimal `json:"royalty" gorm:"type:decimal(5,2);not null"`
}

type Rights struct {
	AllowTips       bool `json:"allowTips" gorm:"not null"`
	AllowCommercial bool `json:"allowCommercial" gorm:"not null"`
	AllowRemixing   bool `json:"allowRemixing" gorm:"not null"`
}

// Music is a registered track. IPID and LicenseTermsID are write-once: they
// are set by the on-chain registration and never change afterwards.
type Music struct {
	BaseModel
	AccountID       uuid.UUID   `json:"account_id" gorm:"type:uuid;not null;index"`
	Title           string      `json:"title" gorm:"size:255;not null"`
	Description     string      `json:"description,omitempty" gorm:"type:text"`
	ImageIPFSCID    string      `json:"image_ipfs_cid" gorm:"column:image_ipfs_cid;size:100"`
	AudioIPFSCID    string      `json:"audio_ipfs_cid" gorm:"column:audio_ipfs_cid;size:100"`
	MetadataIPFSCID string      `json:"metadata_ipfs_cid" gorm:"column:metadata_ipfs_cid;size:100"`
	MediaType       string      `json:"media_type" gorm:"size:20"`
	Genre           string      `json:"genre,omitempty" gorm:"size:50;index"`
	Duration        int         `json:"duration,omitempty"`
	License         string      `json:"license" gorm:"size:50"`
	ExternalURL     string      `json:"external_url,omitempty" gorm:"size:512"`
	IPID            *string     `json:"ip_id" gorm:"column:ip_id;size:42;index"`
	LicenseTermsID  *string     `json:"license_id" gorm:"column:license_id;size:78"`
	TransactionHash string      `json:"transaction_hash,omitempty" gorm:"size:66"`
	Status          MusicStatus `json:"status" gorm:"type:varchar(20);not null;index"`
	Rights          Rights      `json:"rights" gorm:"embedded;embeddedPrefix:rights_"`
	Pricing         Pricing     `json:"pricing" gorm:"embedded;embeddedPrefix:pricing_"`

	// Relationships
	Account *Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (Music) TableName() string {
	return "music"
}

// IsRegistered reports whether the track carries both on-chain identifiers.
func (m *Music) IsRegistered() bool {
	return m.IPID != nil && *m.IPID != "" && m.LicenseTermsID != nil && *m.LicenseTermsID != ""
}

type MusicAction struct {
	BaseModel
	MusicID    uuid.UUID       `json:"music_id" gorm:"type:uuid;not null;uniqueIndex:idx_music_actions_unique"`
	AccountID  uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;uniqueIndex:idx_music_actions_unique"`
	ActionType MusicActionType `json:"action_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_music_actions_unique"`
}
