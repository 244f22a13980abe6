// internal/handlers/account.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/services"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

type AccountHandler struct {
	accountService *services.AccountService
	musicService   *services.MusicService
	chain          config.ChainConfig
}

func NewAccountHandler(accountService *services.AccountService, musicService *services.MusicService, chain config.ChainConfig) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		musicService:   musicService,
		chain:          chain,
	}
}

// POST /accounts/connect
func (h *AccountHandler) Connect(c *gin.Context) {
	var req services.ConnectAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.accountService.ConnectAccount(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	if response.Created {
		utils.CreatedResponse(c, response)
		return
	}
	utils.SuccessResponse(c, response)
}

// GET /accounts/me
func (h *AccountHandler) GetMe(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, account)
}

// PUT /accounts/me
func (h *AccountHandler) UpdateMe(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, &req)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, account)
}

// GET /accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	accountID, ok := parseIDParam(c, "id", "account")
	if !ok {
		return
	}

	account, err := h.accountService.GetAccount(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, account)
}

// GET /accounts/:id/music
func (h *AccountHandler) GetAccountMusic(c *gin.Context) {
	accountID, ok := parseIDParam(c, "id", "account")
	if !ok {
		return
	}

	result, err := h.musicService.ListAccountTracks(c.Request.Context(), accountID, utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /accounts/:id/tips
func (h *AccountHandler) GetAccountTips(c *gin.Context) {
	accountID, ok := parseIDParam(c, "id", "account")
	if !ok {
		return
	}

	tips, err := h.musicService.ListAccountTips(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"tips": tips})
}
