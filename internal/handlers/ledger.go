// internal/handlers/ledger.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/i18n"
	"github.com/javajoker/royalty-ledger/internal/services"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

type LedgerHandler struct {
	repo         services.LedgerRepository
	engine       *services.ReconciliationService
	musicService *services.MusicService
	chain        config.ChainConfig
	logger       *logrus.Logger
}

type PayRoyaltyRequest struct {
	LicenseID string `json:"license_id" binding:"required,uuid"`
	Amount    string `json:"amount" binding:"required"`
}

type ClaimRoyaltyRequest struct {
	IPID string `json:"ip_id" binding:"required"`
}

type TipRequest struct {
	Amount string `json:"amount" binding:"required"`
}

func NewLedgerHandler(repo services.LedgerRepository, engine *services.ReconciliationService, musicService *services.MusicService, chain config.ChainConfig, logger *logrus.Logger) *LedgerHandler {
	return &LedgerHandler{
		repo:         repo,
		engine:       engine,
		musicService: musicService,
		chain:        chain,
		logger:       logger,
	}
}

// Each request gets its own store.
func (h *LedgerHandler) newStore() *services.LedgerStore {
	return services.NewLedgerStore(h.repo, h.engine, h.logger)
}

// GET /music/:id/ledger
func (h *LedgerHandler) GetLedger(c *gin.Context) {
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}
	if _, err := h.musicService.GetTrack(c.Request.Context(), musicID); err != nil {
		respondError(c, h.chain, err)
		return
	}

	store := h.newStore()
	if err := store.FetchAll(c.Request.Context(), musicID); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, store.Snapshot())
}

// POST /music/:id/licenses
func (h *LedgerHandler) MintLicense(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	store := h.newStore()
	result, err := store.MintLicense(c.Request.Context(), musicID, accountID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	h.respondWorkflow(c, store, result, result.TxHash, result.RefreshErr)
}

// POST /music/:id/royalties
func (h *LedgerHandler) PayRoyalty(c *gin.Context) {
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	var req PayRoyaltyRequest
	if !bindJSON(c, &req) {
		return
	}
	licenseID, err := uuid.Parse(req.LicenseID)
	if err != nil {
		utils.NotFoundResponse(c, "license")
		return
	}

	store := h.newStore()
	result, err := store.PayRoyalty(c.Request.Context(), musicID, licenseID, req.Amount)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	h.respondWorkflow(c, store, result, result.TxHash, result.RefreshErr)
}

// POST /music/:id/royalties/claim
func (h *LedgerHandler) ClaimRoyalty(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	var req ClaimRoyaltyRequest
	if !bindJSON(c, &req) {
		return
	}

	music, err := h.musicService.GetTrack(c.Request.Context(), musicID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}
	if music.AccountID != accountID {
		utils.ForbiddenResponse(c, "")
		return
	}

	store := h.newStore()
	result, err := store.ClaimRoyalty(c.Request.Context(), musicID, req.IPID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	h.respondWorkflow(c, store, result, result.TxHash, result.RefreshErr)
}

// GET /music/:id/royalties/claimable
func (h *LedgerHandler) GetClaimable(c *gin.Context) {
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	claimable, err := h.engine.GetClaimableRevenue(c.Request.Context(), musicID, c.Query("claimer"))
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, claimable)
}

// POST /music/:id/tips
func (h *LedgerHandler) Tip(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	var req TipRequest
	if !bindJSON(c, &req) {
		return
	}

	store := h.newStore()
	result, err := store.Tip(c.Request.Context(), musicID, accountID, req.Amount)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	h.respondWorkflow(c, store, result, result.TxHash, result.RefreshErr)
}

// respondWorkflow answers a committed workflow with its result and the
// refreshed ledger. A failed refresh is reported as a warning only.
func (h *LedgerHandler) respondWorkflow(c *gin.Context, store *services.LedgerStore, result interface{}, txHash string, refreshErr error) {
	data := gin.H{
		"result":       result,
		"ledger":       store.Snapshot(),
		"explorer_url": h.chain.ExplorerTxURL(txHash),
	}
	if refreshErr != nil {
		data["warning"] = i18n.T(utils.GetLangFromContext(c), i18n.KeyLedgerRefreshFailed)
	}

	utils.CreatedResponse(c, data)
}
