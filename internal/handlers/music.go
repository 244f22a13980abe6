// internal/handlers/music.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/royalty-ledger/internal/config"
	"github.com/javajoker/royalty-ledger/internal/services"
	"github.com/javajoker/royalty-ledger/internal/utils"
)

type MusicHandler struct {
	musicService *services.MusicService
	chain        config.ChainConfig
}

func NewMusicHandler(musicService *services.MusicService, chain config.ChainConfig) *MusicHandler {
	return &MusicHandler{
		musicService: musicService,
		chain:        chain,
	}
}

// GET /music
func (h *MusicHandler) ListMusic(c *gin.Context) {
	result, err := h.musicService.ListTracks(c.Request.Context(), utils.GetPaginationParams(c))
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.PaginatedResponse(c, *result)
}

// GET /music/:id
func (h *MusicHandler) GetMusic(c *gin.Context) {
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	music, err := h.musicService.GetTrack(c.Request.Context(), musicID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	// Anonymous callers only get the like count
	accountID, _ := utils.GetAccountIDFromContext(c)
	likes, err := h.musicService.LikeStatus(c.Request.Context(), musicID, accountID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"music":        music,
		"likes":        likes,
		"explorer_url": h.chain.ExplorerTxURL(music.TransactionHash),
	})
}

// POST /music
func (h *MusicHandler) RegisterMusic(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.RegisterTrackRequest
	if !bindJSON(c, &req) {
		return
	}

	music, err := h.musicService.RegisterTrack(c.Request.Context(), accountID, &req)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.CreatedResponse(c, music)
}

// PUT /music/:id/ip-asset
func (h *MusicHandler) AttachIPAsset(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	var req services.AttachIPAssetRequest
	if !bindJSON(c, &req) {
		return
	}

	music, err := h.musicService.AttachIPAsset(c.Request.Context(), accountID, musicID, &req)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, music)
}

// POST /music/:id/like
func (h *MusicHandler) ToggleLike(c *gin.Context) {
	accountID, ok := utils.GetAccountIDFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	status, err := h.musicService.ToggleLike(c.Request.Context(), musicID, accountID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, status)
}

// GET /music/:id/tips
func (h *MusicHandler) ListTips(c *gin.Context) {
	musicID, ok := parseIDParam(c, "id", "music")
	if !ok {
		return
	}

	tips, err := h.musicService.ListTips(c.Request.Context(), musicID)
	if err != nil {
		respondError(c, h.chain, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"tips": tips})
}
