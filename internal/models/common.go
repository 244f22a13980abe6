// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key on the client so inserts work the same
// against postgres and sqlite.
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Enums
type MusicStatus string

const (
	MusicStatusPending MusicStatus = "pending"
	MusicStatusSuccess MusicStatus = "success"
	MusicStatusFailed  MusicStatus = "failed"
)

type ClaimStatus string

const (
	ClaimStatusClaimed ClaimStatus = "claimed"
)

type MusicActionType string

const (
	MusicActionLike MusicActionType = "like"
)
