// internal/services/account_service.go
package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/models"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

type AccountService struct {
	db  *gorm.DB
	cfg *config.Config
}

type ConnectAccountRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required,eth_address"`
}

type UpdateAccountRequest struct {
	Username  *string `json:"username,omitempty" validate:"omitempty,username"`
	Name      *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Bio       *string `json:"bio,omitempty" validate:"omitempty,max=1000"`
	AvatarURL *string `json:"avatar_url,omitempty" validate:"omitempty,url,max=512"`
}

type AuthResponse struct {
	Account     *models.Account `json:"account"`
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int             `json:"expires_in"`
	Created     bool            `json:"created"`
}

func NewAccountService(db *gorm.DB, cfg *config.Config) *AccountService {
	return &AccountService{
		db:  db,
		cfg: cfg,
	}
}

// ConnectAccount returns the account owning the wallet, registering a new
// one with a generated profile on first connect, and issues an access token.
func (s *AccountService) ConnectAccount(ctx context.Context, req *ConnectAccountRequest) (*AuthResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	wallet := models.NormalizeWallet(req.WalletAddress)
	created := false

	var account models.Account
	err := s.db.WithContext(ctx).Where("wallet_address = ?", wallet).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		account, err = s.registerAccount(ctx, wallet)
		created = true
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect account: %w", err)
	}

	accessToken, err := utils.GenerateJWT(account.ID, account.Username, account.WalletAddress, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		Account:     &account,
		AccessToken: accessToken,
		TokenType:   "Bearer",
		ExpiresIn:   s.cfg.JWT.AccessTokenTTL * 3600, // Convert hours to seconds
		Created:     created,
	}, nil
}

func (s *AccountService) registerAccount(ctx context.Context, wallet string) (models.Account, error) {
	suffix, err := utils.GenerateRandomString(8)
	if err != nil {
		return models.Account{}, err
	}
	username := "listener_" + suffix

	account := models.Account{
		Username:      username,
		Name:          "Listener " + suffix[:4],
		WalletAddress: wallet,
		AvatarURL:     "https://api.dicebear.com/7.x/pixel-art/svg?seed=" + url.QueryEscape(username),
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (s *AccountService) GetAccount(ctx context.Context, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", accountID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound("account", accountID.String())
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &account, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, accountID uuid.UUID, req *UpdateAccountRequest) (*models.Account, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	// Check username uniqueness if updating
	if req.Username != nil && *req.Username != account.Username {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.Account{}).
			Where("username = ? AND id != ?", *req.Username, accountID).
			Count(&count).Error; err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if count > 0 {
			return nil, precondition("username %s is already taken", *req.Username)
		}
		account.Username = *req.Username
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.Bio != nil {
		account.Bio = *req.Bio
	}
	if req.AvatarURL != nil {
		account.AvatarURL = *req.AvatarURL
	}

	if err := s.db.WithContext(ctx).Save(account).Error; err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}

	return account, nil
}
