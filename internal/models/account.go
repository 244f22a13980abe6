// internal/models/account.go
package models

import "strings"

type Account struct {
	BaseModel
	Username      string `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Name          string `json:"name" gorm:"size:100"`
	Bio           string `json:"bio" gorm:"type:text"`
	AvatarURL     string `json:"avatar_url" gorm:"size:512"`
	WalletAddress string `json:"wallet_address" gorm:"uniqueIndex;size:42;not null"`
}

// NormalizeWallet lowercases a hex wallet address so lookups are case-insensitive.
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
